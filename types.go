package main

import "errors"

// FilterConfig describes what the walker should include. It is assembled once
// by the composition root and treated as immutable afterwards.
//
// Extension keys always begin with a dot and are lower-cased; filename keys
// never begin with a dot and are lower-cased. The AllKnown* sets span every
// category, not just the selected ones, so the catch-all can tell apart files
// that belong to no category at all from files whose category simply was not
// selected.
type FilterConfig struct {
	SelectedExtensions map[string]struct{}
	SelectedFilenames  map[string]struct{}
	AllKnownExtensions map[string]struct{}
	AllKnownFilenames  map[string]struct{}

	// HandleOtherText enables the "Other Text Files" catch-all for files
	// unknown to every category.
	HandleOtherText bool

	// ProjectIgnore and GlobalIgnore are matched against paths relative to the
	// walk's base directory. Either may be nil.
	ProjectIgnore *IgnoreSpec
	GlobalIgnore  *IgnoreSpec

	// Which local ignore files the walker honors while descending.
	UseGitignore    bool
	UseNpmignore    bool
	UseDockerignore bool
}

// WalkRequest names the paths the caller selected and the directory all
// relative display paths and root-level ignore matching are anchored at.
type WalkRequest struct {
	SelectedPaths []string
	BaseDirectory string
}

// StitchedFile is one document section: a discovered file whose content
// survived decoding, or a fetched remote page.
type StitchedFile struct {
	Path       string
	RelPath    string
	Content    string
	Size       int64
	TokenCount int
}

// Summary aggregates the processed sections.
type Summary struct {
	TotalFiles  int
	TotalSize   int64
	TotalTokens int
}

// Reporter receives status text, coarse progress and warnings from the walk
// and the content phase. Implementations decide where any of it goes.
type Reporter interface {
	Status(msg string)
	Progress(percent int)
	Warnf(format string, args ...any)
}

// Terminal states the generator distinguishes from real errors. A cancelled
// run produces no usable output; zero matches is informational, not a failure.
var (
	errCancelled = errors.New("operation cancelled")
	errNoMatches = errors.New("no matching files found")
)

type nopReporter struct{}

func (nopReporter) Status(string)         {}
func (nopReporter) Progress(int)          {}
func (nopReporter) Warnf(string, ...any)  {}
