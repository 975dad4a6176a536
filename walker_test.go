package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func relPaths(t *testing.T, base string, paths []string) []string {
	t.Helper()
	out := make([]string, len(paths))
	for i, p := range paths {
		rel, err := filepath.Rel(base, p)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}

// testFilter builds a small category universe: .go/.txt/.md selected, .rs
// known but unselected.
func testFilter() FilterConfig {
	set := func(keys ...string) map[string]struct{} {
		m := make(map[string]struct{}, len(keys))
		for _, k := range keys {
			m[k] = struct{}{}
		}
		return m
	}
	return FilterConfig{
		SelectedExtensions: set(".go", ".txt", ".md"),
		SelectedFilenames:  set("makefile"),
		AllKnownExtensions: set(".go", ".txt", ".md", ".rs"),
		AllKnownFilenames:  set("makefile"),
		UseGitignore:       true,
	}
}

func discover(t *testing.T, cfg FilterConfig, paths []string, base string) []string {
	t.Helper()
	w := NewProjectFileWalker(cfg, WalkRequest{SelectedPaths: paths, BaseDirectory: base}, nopReporter{})
	files, n, err := w.DiscoverFiles()
	require.NoError(t, err)
	require.Len(t, files, n)
	return files
}

func TestDiscoverFilesOrdering(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "beta.txt"), "b")
	writeTestFile(t, filepath.Join(dir, "Alpha.txt"), "a")
	writeTestFile(t, filepath.Join(dir, "zdir", "inner.txt"), "z")
	writeTestFile(t, filepath.Join(dir, "Adir", "x.txt"), "x")

	files := discover(t, testFilter(), []string{dir}, dir)
	assert.Equal(t,
		[]string{"Alpha.txt", "beta.txt", "Adir/x.txt", "zdir/inner.txt"},
		relPaths(t, dir, files),
		"files come before subdirectories, both case-insensitively sorted")
}

func TestDiscoverFilesSelectedPathOrdering(t *testing.T) {
	base := t.TempDir()
	writeTestFile(t, filepath.Join(base, "b", "one.txt"), "1")
	writeTestFile(t, filepath.Join(base, "A", "two.txt"), "2")

	files := discover(t, testFilter(),
		[]string{filepath.Join(base, "b"), filepath.Join(base, "A")}, base)
	assert.Equal(t, []string{"A/two.txt", "b/one.txt"}, relPaths(t, base, files))
}

func TestDiscoverFilesExcludesHiddenEntries(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "kept.txt"), "k")
	writeTestFile(t, filepath.Join(dir, ".hidden.txt"), "h")
	writeTestFile(t, filepath.Join(dir, ".secrets", "inner.txt"), "s")

	files := discover(t, testFilter(), []string{dir}, dir)
	assert.Equal(t, []string{"kept.txt"}, relPaths(t, dir, files))
}

func TestDiscoverFilesExcludesEmptyAndBinary(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "kept.txt"), "text")
	writeTestFile(t, filepath.Join(dir, "empty.txt"), "")
	writeTestFile(t, filepath.Join(dir, "blob.txt"), "PK\x03\x04\x00data")

	files := discover(t, testFilter(), []string{dir}, dir)
	assert.Equal(t, []string{"kept.txt"}, relPaths(t, dir, files))
}

func TestDiscoverFilesHonorsGitignoreTiers(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ".gitignore"), "dropped.txt\nbuild/\n")
	writeTestFile(t, filepath.Join(dir, "kept.txt"), "k")
	writeTestFile(t, filepath.Join(dir, "dropped.txt"), "d")
	writeTestFile(t, filepath.Join(dir, "build", "out.txt"), "o")

	cfg := testFilter()
	cfg.ProjectIgnore = LoadIgnoreSpec(dir, true, false, false, nil)
	require.NotNil(t, cfg.ProjectIgnore)

	files := discover(t, cfg, []string{dir}, dir)
	assert.Equal(t, []string{"kept.txt"}, relPaths(t, dir, files))
}

func TestDiscoverFilesNestedGitignoreAnchorsAtOwnDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "local.txt"), "root copy stays")
	writeTestFile(t, filepath.Join(dir, "sub", ".gitignore"), "local.txt\n")
	writeTestFile(t, filepath.Join(dir, "sub", "local.txt"), "dropped")
	writeTestFile(t, filepath.Join(dir, "sub", "other.txt"), "kept")

	files := discover(t, testFilter(), []string{dir}, dir)
	assert.Equal(t, []string{"local.txt", "sub/other.txt"}, relPaths(t, dir, files))
}

func TestDiscoverFilesKnownButUnselectedNeverFallsToCatchAll(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "lib.rs"), "fn main() {}")
	writeTestFile(t, filepath.Join(dir, "LICENSE"), "MIT")

	cfg := testFilter()
	cfg.HandleOtherText = true
	files := discover(t, cfg, []string{dir}, dir)
	assert.Equal(t, []string{"LICENSE"}, relPaths(t, dir, files),
		"a file whose category exists but was not selected must not ride the catch-all")

	cfg.HandleOtherText = false
	files = discover(t, cfg, []string{dir}, dir)
	assert.Empty(t, relPaths(t, dir, files))
}

func TestDiscoverFilesDeduplicatesHardlinks(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.txt")
	writeTestFile(t, first, "shared")
	if err := os.Link(first, filepath.Join(dir, "z.txt")); err != nil {
		t.Skipf("hardlinks not supported: %v", err)
	}

	files := discover(t, testFilter(), []string{dir}, dir)
	assert.Equal(t, []string{"a.txt"}, relPaths(t, dir, files))
}

func TestDiscoverFilesIdempotent(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "a")
	writeTestFile(t, filepath.Join(dir, "sub", "b.txt"), "b")

	w := NewProjectFileWalker(testFilter(), WalkRequest{SelectedPaths: []string{dir}, BaseDirectory: dir}, nopReporter{})
	first, _, err := w.DiscoverFiles()
	require.NoError(t, err)
	second, _, err := w.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDiscoverFilesCancellation(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "a.txt"), "a")

	w := NewProjectFileWalker(testFilter(), WalkRequest{SelectedPaths: []string{dir}, BaseDirectory: dir}, nopReporter{})
	w.Cancel()
	_, _, err := w.DiscoverFiles()
	assert.ErrorIs(t, err, errCancelled)
}

func TestDiscoverFilesSelectedRegularFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "single.txt")
	writeTestFile(t, path, "content")
	writeTestFile(t, filepath.Join(dir, "unpicked.txt"), "no")

	files := discover(t, testFilter(), []string{path}, dir)
	assert.Equal(t, []string{"single.txt"}, relPaths(t, dir, files))
}
