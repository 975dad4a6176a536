package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchesFileType(t *testing.T) {
	cfg := testFilter()
	docs := t.TempDir()

	t.Run("selected extension", func(t *testing.T) {
		assert.True(t, matchesFileType("src/main.go", &cfg))
		assert.True(t, matchesFileType("README.MD", &cfg), "extension match is case-insensitive")
	})

	t.Run("selected filename beats extension", func(t *testing.T) {
		assert.True(t, matchesFileType("build/Makefile", &cfg))
	})

	t.Run("unselected known extension", func(t *testing.T) {
		assert.False(t, matchesFileType("src/lib.rs", &cfg))
	})

	t.Run("catch-all disabled rejects the unknown", func(t *testing.T) {
		path := filepath.Join(docs, "notes.conf")
		writeTestFile(t, path, "key = value")
		assert.False(t, matchesFileType(path, &cfg))
	})

	t.Run("catch-all enabled accepts likely text, still not known categories", func(t *testing.T) {
		catchAll := cfg
		catchAll.HandleOtherText = true

		conf := filepath.Join(docs, "other.conf")
		writeTestFile(t, conf, "key = value")
		assert.True(t, matchesFileType(conf, &catchAll))

		// .rs belongs to a known category that was not selected, so the
		// catch-all must not resurrect it.
		rs := filepath.Join(docs, "lib.rs")
		writeTestFile(t, rs, "fn main() {}")
		assert.False(t, matchesFileType(rs, &catchAll))

		jpg := filepath.Join(docs, "photo.jpg")
		writeTestFile(t, jpg, "\xff\xd8")
		assert.False(t, matchesFileType(jpg, &catchAll))
	})
}
