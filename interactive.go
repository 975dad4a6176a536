package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
)

// selectPathsInteractively walks the current directory and lets the user pick
// paths with a fuzzy finder. Hidden entries stay out of the candidate list,
// matching what the walk would exclude anyway. An aborted finder returns an
// empty selection, not an error.
func selectPathsInteractively() ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == "." {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		candidates = append(candidates, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning for candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("nothing to select in the current directory")
	}

	idx, err := fuzzyfinder.FindMulti(
		candidates,
		func(i int) string { return candidates[i] },
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Tab to multi-select, Enter to confirm."
			}
			info, statErr := os.Stat(candidates[i])
			if statErr != nil {
				return fmt.Sprintf("Path: %s\n%v", candidates[i], statErr)
			}
			kind := "File"
			if info.IsDir() {
				kind = "Directory"
			}
			return fmt.Sprintf("Path: %s\nType: %s\nSize: %s", candidates[i], kind, formatSize(info.Size()))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("interactive selection: %w", err)
	}

	selected := make([]string, len(idx))
	for i, n := range idx {
		selected[i] = candidates[n]
	}
	return selected, nil
}
