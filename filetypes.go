package main

import (
	"path/filepath"
	"strings"
)

// matchesFileType decides inclusion for a single file under the current
// filter configuration. Exact filename wins over extension; both sides are
// lower-cased.
//
// The catch-all only applies to files unknown to the complete category
// universe: a file whose name or extension belongs to any category, selected
// or not, never falls through to it. Catch-all candidates are additionally
// gated by the likely-text heuristic.
func matchesFileType(path string, cfg *FilterConfig) bool {
	name := strings.ToLower(filepath.Base(path))
	ext := strings.ToLower(filepath.Ext(name))

	if _, ok := cfg.SelectedFilenames[name]; ok {
		return true
	}
	if ext != "" {
		if _, ok := cfg.SelectedExtensions[ext]; ok {
			return true
		}
	}

	if !cfg.HandleOtherText {
		return false
	}
	if _, known := cfg.AllKnownFilenames[name]; known {
		return false
	}
	if ext != "" {
		if _, known := cfg.AllKnownExtensions[ext]; known {
			return false
		}
	}
	return isLikelyTextFile(path)
}
