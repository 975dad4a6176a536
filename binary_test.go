package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBinaryFile(t *testing.T) {
	dir := t.TempDir()

	text := filepath.Join(dir, "notes.txt")
	writeTestFile(t, text, "just text")
	assert.False(t, isBinaryFile(text))

	blob := filepath.Join(dir, "blob")
	require.NoError(t, os.WriteFile(blob, []byte{'M', 'Z', 0x00, 0x01}, 0o644))
	assert.True(t, isBinaryFile(blob))

	// Unreadable means binary so the file is excluded, not garbled.
	assert.True(t, isBinaryFile(filepath.Join(dir, "missing")))
}

func TestIsBinaryFileOnlySniffsTheHead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tail-nul")
	data := append(bytes.Repeat([]byte{'a'}, binarySniffSize), 0x00)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	assert.False(t, isBinaryFile(path), "a NUL past the sniff window is not seen")
}

func TestIsLikelyTextFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("conventional filenames", func(t *testing.T) {
		assert.True(t, isLikelyTextFile(write("LICENSE", "MIT")))
		assert.True(t, isLikelyTextFile(write("Makefile", "all:\n")))
	})

	t.Run("dotfiles minus the binary blocklist", func(t *testing.T) {
		assert.True(t, isLikelyTextFile(write(".gitattributes", "* text")))
		assert.False(t, isLikelyTextFile(write(".DS_Store", "\x00\x01")))
	})

	t.Run("no extension", func(t *testing.T) {
		assert.True(t, isLikelyTextFile(write("CODEOWNERS", "* @team")))
	})

	t.Run("plausible config extensions", func(t *testing.T) {
		assert.True(t, isLikelyTextFile(write("app.conf", "key = value")))
		assert.True(t, isLikelyTextFile(write("deploy.tfvars", "region = \"eu\"")))
	})

	t.Run("unknown extensions are not text", func(t *testing.T) {
		assert.False(t, isLikelyTextFile(write("photo.jpg", "\xff\xd8\xff")))
		assert.False(t, isLikelyTextFile(write("data.xyz", "actually text")))
	})
}
