package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetContentUTF8(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.txt")
	writeTestFile(t, path, "hello, world\n")

	content, ok := NewFileReader(nil, nil).GetContent(path)
	require.True(t, ok)
	assert.Equal(t, "hello, world\n", content)
}

func TestGetContentLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "latin.txt")
	// 0xE9 is not valid UTF-8 on its own; latin-1 reads it as é.
	require.NoError(t, os.WriteFile(path, []byte("caf\xe9\n"), 0o644))

	content, ok := NewFileReader(nil, nil).GetContent(path)
	require.True(t, ok)
	assert.Equal(t, "café\n", content)
}

func TestGetContentRejectsEmptyAndWhitespace(t *testing.T) {
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.txt")
	writeTestFile(t, empty, "")
	_, ok := NewFileReader(nil, nil).GetContent(empty)
	assert.False(t, ok)

	blank := filepath.Join(dir, "blank.txt")
	writeTestFile(t, blank, " \n\t\n")
	_, ok = NewFileReader(nil, nil).GetContent(blank)
	assert.False(t, ok)
}

func TestGetContentRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}, 0o644))

	_, ok := NewFileReader(nil, nil).GetContent(path)
	assert.False(t, ok)
}

func TestGetContentMissingFile(t *testing.T) {
	_, ok := NewFileReader(nil, nil).GetContent(filepath.Join(t.TempDir(), "nope.txt"))
	assert.False(t, ok)
}

func TestDecodeStrict(t *testing.T) {
	t.Run("utf-8-sig requires the BOM", func(t *testing.T) {
		_, err := decodeStrict("utf-8-sig", []byte("no bom"))
		assert.Error(t, err)

		got, err := decodeStrict("utf-8-sig", []byte("\xef\xbb\xbfwith bom"))
		require.NoError(t, err)
		assert.Equal(t, "with bom", got)
	})

	t.Run("ascii rejects high bytes", func(t *testing.T) {
		_, err := decodeStrict("ascii", []byte("caf\xe9"))
		assert.Error(t, err)
	})

	t.Run("cp1252 rejects undefined bytes", func(t *testing.T) {
		_, err := decodeStrict("cp1252", []byte{0x81})
		assert.Error(t, err)

		got, err := decodeStrict("cp1252", []byte{0x93, 'h', 'i', 0x94})
		require.NoError(t, err)
		assert.Equal(t, "\u201chi\u201d", got)
	})

	t.Run("latin-1 never fails", func(t *testing.T) {
		got, err := decodeStrict("latin-1", []byte{0xff, 0x00, 0x41})
		require.NoError(t, err)
		assert.Equal(t, "\u00ff\x00A", got)
	})
}
