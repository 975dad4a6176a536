package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
)

// devIno is the filesystem-level identity of a physical file, used to detect
// the same file reached via two different paths.
type devIno struct {
	dev uint64
	ino uint64
}

// ProjectFileWalker performs one filesystem traversal per DiscoverFiles call,
// applying ignore specs, the file type matcher, binary detection and
// duplicate-inode suppression in a single pass. It runs synchronously on the
// calling goroutine; cancellation is cooperative via a flag polled at each
// selected path, each directory level and each file.
type ProjectFileWalker struct {
	config   FilterConfig
	request  WalkRequest
	reporter Reporter

	cancelled atomic.Bool
	seen      map[devIno]struct{}
	files     []string
}

func NewProjectFileWalker(cfg FilterConfig, req WalkRequest, rep Reporter) *ProjectFileWalker {
	if rep == nil {
		rep = nopReporter{}
	}
	return &ProjectFileWalker{config: cfg, request: req, reporter: rep}
}

// Cancel requests the walk to stop. Safe to call from another goroutine.
func (w *ProjectFileWalker) Cancel() {
	w.cancelled.Store(true)
}

// DiscoverFiles walks the selected paths and returns the ordered,
// deduplicated list of eligible files and its length. A cancelled walk
// returns errCancelled; whatever was accumulated must not be treated as a
// usable partial result. Per-entry filesystem problems are reported and
// skipped, never returned.
func (w *ProjectFileWalker) DiscoverFiles() ([]string, int, error) {
	// Accumulators are scoped to this call so a walker can be reused.
	w.seen = make(map[devIno]struct{})
	w.files = nil

	selected := append([]string(nil), w.request.SelectedPaths...)
	sort.Slice(selected, func(i, j int) bool {
		return strings.ToLower(filepath.Base(selected[i])) < strings.ToLower(filepath.Base(selected[j]))
	})

	for _, path := range selected {
		if w.cancelled.Load() {
			return w.files, len(w.files), errCancelled
		}
		w.reporter.Status(fmt.Sprintf("Scanning %s...", filepath.Base(path)))

		info, err := os.Lstat(path)
		if err != nil {
			w.reporter.Warnf("could not stat %s: %v", path, err)
			continue
		}

		switch {
		case info.Mode().IsRegular():
			w.considerFile(path, nil)
		case info.IsDir():
			if w.isTopLevelDirIgnored(path) {
				continue
			}
			if err := w.walkDirectory(path, nil); err != nil {
				return w.files, len(w.files), err
			}
		default:
			// symlinks and special files at the top level are skipped
		}
	}

	return w.files, len(w.files), nil
}

// isTopLevelDirIgnored tests whether a selected directory itself is excluded
// by the project or global spec before any descent happens.
func (w *ProjectFileWalker) isTopLevelDirIgnored(dir string) bool {
	if _, err := filepath.Rel(w.request.BaseDirectory, dir); err != nil {
		return false
	}
	return w.config.ProjectIgnore.Matches(dir, true) ||
		w.config.GlobalIgnore.Matches(dir, true)
}

// walkDirectory recursively descends into dir. localSpec is the nearest
// enclosing local ignore spec; if dir carries ignore files of its own, they
// replace it for this subtree. Symlinks are never followed. The only error
// walkDirectory returns is errCancelled.
func (w *ProjectFileWalker) walkDirectory(dir string, localSpec *IgnoreSpec) error {
	if w.cancelled.Load() {
		return errCancelled
	}

	if spec := LoadIgnoreSpec(dir, w.config.UseGitignore, w.config.UseNpmignore, w.config.UseDockerignore, w.reporter); spec != nil {
		localSpec = spec
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		w.reporter.Warnf("could not read directory %s: %v", dir, err)
		return nil
	}

	var subdirs, files []string
	for _, entry := range entries {
		// DirEntry types are lstat semantics: a symlink to a directory is
		// not IsDir, so it falls into the file bucket and fails the
		// regular-file test there instead of being descended into.
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
		} else {
			files = append(files, entry.Name())
		}
	}
	caseInsensitive := func(names []string) {
		sort.Slice(names, func(i, j int) bool {
			return strings.ToLower(names[i]) < strings.ToLower(names[j])
		})
	}
	caseInsensitive(subdirs)
	caseInsensitive(files)

	for _, name := range files {
		if w.cancelled.Load() {
			return errCancelled
		}
		w.considerFile(filepath.Join(dir, name), localSpec)
	}

	for _, name := range subdirs {
		if w.cancelled.Load() {
			return errCancelled
		}
		sub := filepath.Join(dir, name)
		if w.isDirectoryPruned(name, sub, localSpec) {
			continue
		}
		if err := w.walkDirectory(sub, localSpec); err != nil {
			return err
		}
	}
	return nil
}

// isDirectoryPruned applies the directory exclusion rules: hidden name,
// project spec, nearest local spec, global spec. Pruned directories are never
// entered.
func (w *ProjectFileWalker) isDirectoryPruned(name, path string, localSpec *IgnoreSpec) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if w.config.ProjectIgnore.Matches(path, true) {
		return true
	}
	if localSpec.Matches(path, true) {
		return true
	}
	if w.config.GlobalIgnore.Matches(path, true) {
		return true
	}
	return false
}

// considerFile runs the full single-file inclusion test and, on success,
// appends the path and records its identity so later duplicates are
// rejected.
func (w *ProjectFileWalker) considerFile(path string, localSpec *IgnoreSpec) {
	info, err := os.Lstat(path)
	if err != nil {
		w.reporter.Warnf("could not stat %s: %v", path, err)
		return
	}
	if !info.Mode().IsRegular() || info.Size() == 0 {
		return
	}
	if strings.HasPrefix(info.Name(), ".") {
		return
	}

	id, haveID := fileID(info)
	if haveID {
		if _, dup := w.seen[id]; dup {
			return
		}
	}

	if _, err := filepath.Rel(w.request.BaseDirectory, path); err != nil {
		w.reporter.Warnf("could not make %s relative to %s", path, w.request.BaseDirectory)
		return
	}

	if w.config.ProjectIgnore.Matches(path, false) {
		return
	}
	if localSpec.Matches(path, false) {
		return
	}
	if w.config.GlobalIgnore.Matches(path, false) {
		return
	}

	if !matchesFileType(path, &w.config) {
		return
	}
	if isBinaryFile(path) {
		return
	}

	w.files = append(w.files, path)
	if haveID {
		w.seen[id] = struct{}{}
	}
}
