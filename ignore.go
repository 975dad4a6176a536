package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	gitconfig "github.com/go-git/go-git/v5/config"
	gitignore "github.com/monochromegane/go-gitignore"
)

// IgnoreSpec is a compiled gitignore-style matcher anchored at a directory.
// Match input is a full path (the matcher relativizes against its anchor);
// directory-ness is passed explicitly instead of a trailing slash.
type IgnoreSpec struct {
	matcher gitignore.IgnoreMatcher
	anchor  string
}

// Matches reports whether the spec excludes the given path. A nil spec never
// matches.
func (s *IgnoreSpec) Matches(path string, isDir bool) bool {
	if s == nil {
		return false
	}
	return s.matcher.Match(path, isDir)
}

// Anchor returns the directory the spec's patterns are relative to.
func (s *IgnoreSpec) Anchor() string {
	if s == nil {
		return ""
	}
	return s.anchor
}

func compileIgnoreLines(anchor string, patterns []byte) *IgnoreSpec {
	if len(bytes.TrimSpace(patterns)) == 0 {
		return nil
	}
	return &IgnoreSpec{
		matcher: gitignore.NewGitIgnoreFromReader(anchor, bytes.NewReader(patterns)),
		anchor:  anchor,
	}
}

// LoadIgnoreSpec reads a directory's local ignore files into one compiled
// spec anchored at that directory. Which files are consulted depends on the
// enabled toggles: .gitignore, .npmignore, .dockerignore, in that order, plus
// .git/info/exclude when gitignore handling is on and the directory holds a
// .git directory. Patterns from later files are additive. Unreadable files
// are skipped with a warning; a directory with no usable patterns yields nil.
func LoadIgnoreSpec(dir string, useGit, useNpm, useDocker bool, rep Reporter) *IgnoreSpec {
	if rep == nil {
		rep = nopReporter{}
	}

	var names []string
	if useGit {
		names = append(names, ".gitignore")
	}
	if useNpm {
		names = append(names, ".npmignore")
	}
	if useDocker {
		names = append(names, ".dockerignore")
	}

	var patterns bytes.Buffer
	appendFile := func(path string) {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				rep.Warnf("could not read %s: %v", path, err)
			}
			return
		}
		patterns.Write(data)
		if len(data) > 0 && data[len(data)-1] != '\n' {
			patterns.WriteByte('\n')
		}
	}

	for _, name := range names {
		appendFile(filepath.Join(dir, name))
	}
	if useGit {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			appendFile(filepath.Join(dir, ".git", "info", "exclude"))
		}
	}

	return compileIgnoreLines(dir, patterns.Bytes())
}

// LoadIgnoreFile compiles a single ignore file (e.g. one named with
// --ignore-file) anchored at the given base directory.
func LoadIgnoreFile(path, base string, rep Reporter) *IgnoreSpec {
	if rep == nil {
		rep = nopReporter{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		rep.Warnf("could not read ignore file %s: %v", path, err)
		return nil
	}
	return compileIgnoreLines(base, data)
}

type multiMatcher []gitignore.IgnoreMatcher

func (m multiMatcher) Match(path string, isDir bool) bool {
	for _, sub := range m {
		if sub.Match(path, isDir) {
			return true
		}
	}
	return false
}

// CombineIgnoreSpecs folds several specs into one that matches when any part
// matches. Nil parts are dropped; the anchor of the first surviving part is
// kept for display purposes.
func CombineIgnoreSpecs(specs ...*IgnoreSpec) *IgnoreSpec {
	var parts multiMatcher
	anchor := ""
	for _, s := range specs {
		if s == nil {
			continue
		}
		parts = append(parts, s.matcher)
		if anchor == "" {
			anchor = s.anchor
		}
	}
	switch len(parts) {
	case 0:
		return nil
	case 1:
		return &IgnoreSpec{matcher: parts[0], anchor: anchor}
	default:
		return &IgnoreSpec{matcher: parts, anchor: anchor}
	}
}

// LoadGlobalIgnoreSpec loads the user's global git excludes file, discovered
// through git's own configuration (core.excludesFile), anchored at the walk's
// base directory so it applies uniformly throughout. Its absence is normal
// and silent.
func LoadGlobalIgnoreSpec(base string, rep Reporter) *IgnoreSpec {
	if rep == nil {
		rep = nopReporter{}
	}

	cfg, err := gitconfig.LoadConfig(gitconfig.GlobalScope)
	if err != nil {
		return nil
	}
	excludes := cfg.Raw.Section("core").Option("excludesfile")
	if excludes == "" {
		return nil
	}
	if strings.HasPrefix(excludes, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		excludes = filepath.Join(home, strings.TrimPrefix(excludes, "~"))
	}

	data, err := os.ReadFile(excludes)
	if err != nil {
		if !os.IsNotExist(err) {
			rep.Warnf("could not read global excludes %s: %v", excludes, err)
		}
		return nil
	}
	return compileIgnoreLines(base, data)
}
