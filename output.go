package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
)

const sectionRule = "============================================================"

// RenderOptions controls how the stitched document is framed.
type RenderOptions struct {
	Format           string // "markdown", "plain" or "json"
	IncludeStats     bool
	IncludeTimestamp bool
	IncludeTokens    bool
	LineEnding       string // "\n", "\r\n" or "\r"
}

// Result is everything the generator produced for one run.
type Result struct {
	BaseDirectory      string
	SelectedCategories []string
	Files              []StitchedFile
	Summary            Summary
}

// RenderDocument writes the stitched document for the result in the requested
// format.
func RenderDocument(w io.Writer, res *Result, opts RenderOptions) error {
	switch opts.Format {
	case "json":
		return renderJSON(w, res, opts)
	case "plain":
		return renderText(w, res, opts, false)
	case "", "markdown":
		return renderText(w, res, opts, true)
	default:
		return fmt.Errorf("unsupported output format %q", opts.Format)
	}
}

func renderText(w io.Writer, res *Result, opts RenderOptions, markdown bool) error {
	nl := opts.LineEnding
	if nl == "" {
		nl = "\n"
	}
	out := &lineWriter{w: w, nl: nl}

	out.Linef("# Concatenated Files from: %s", res.BaseDirectory)
	if opts.IncludeTimestamp {
		out.Linef("# Generated on: %s", time.Now().Format("2006-01-02 15:04:05"))
	}
	if opts.IncludeStats {
		out.Linef("# Total size: %s", formatSize(res.Summary.TotalSize))
	}
	if len(res.SelectedCategories) == 0 {
		out.Linef("# Selected file types: All types")
	} else {
		out.Linef("# Selected file types: %s", strings.Join(res.SelectedCategories, ", "))
	}

	paths := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		if f.Path != "" {
			paths = append(paths, f.Path)
		}
	}
	if tree := generateTree(res.BaseDirectory, paths); tree != "" {
		out.Linef("")
		out.Linef("# Selected Files")
		if markdown {
			out.Linef("```")
		}
		out.Raw(tree + "\n")
		if markdown {
			out.Linef("```")
		}
	}

	out.Linef("")
	out.Linef(sectionRule)
	out.Linef("START OF CONCATENATED CONTENT")
	out.Linef(sectionRule)

	for _, f := range res.Files {
		out.Linef("")
		out.Linef("--- File: %s ---", f.RelPath)
		if opts.IncludeTokens {
			out.Linef("--- Tokens: %d ---", f.TokenCount)
		}
		if markdown {
			out.Linef("```%s", fenceLanguage(f.RelPath))
		}
		out.Raw(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			out.Raw("\n")
		}
		if markdown {
			out.Linef("```")
		}
	}

	out.Linef("")
	out.Linef(sectionRule)
	out.Linef("END OF CONCATENATED CONTENT")
	out.Linef(sectionRule)

	if opts.IncludeStats {
		out.Linef("")
		out.Linef("Total files processed: %d", res.Summary.TotalFiles)
		out.Linef("Total size: %s", formatSize(res.Summary.TotalSize))
		if opts.IncludeTokens {
			out.Linef("Total tokens: %d", res.Summary.TotalTokens)
		}
	}
	return out.err
}

type jsonDocument struct {
	BaseDirectory string       `json:"base_directory"`
	GeneratedAt   string       `json:"generated_at,omitempty"`
	SelectedTypes []string     `json:"selected_types"`
	Files         []jsonFile   `json:"files"`
	Summary       *jsonSummary `json:"summary,omitempty"`
}

type jsonFile struct {
	Path    string `json:"path"`
	Size    int64  `json:"size"`
	Tokens  int    `json:"tokens,omitempty"`
	Content string `json:"content"`
}

type jsonSummary struct {
	TotalFiles  int   `json:"total_files"`
	TotalSize   int64 `json:"total_size"`
	TotalTokens int   `json:"total_tokens,omitempty"`
}

func renderJSON(w io.Writer, res *Result, opts RenderOptions) error {
	doc := jsonDocument{
		BaseDirectory: res.BaseDirectory,
		SelectedTypes: res.SelectedCategories,
		Files:         make([]jsonFile, 0, len(res.Files)),
	}
	if opts.IncludeTimestamp {
		doc.GeneratedAt = time.Now().Format(time.RFC3339)
	}
	for _, f := range res.Files {
		jf := jsonFile{Path: f.RelPath, Size: f.Size, Content: f.Content}
		if opts.IncludeTokens {
			jf.Tokens = f.TokenCount
		}
		doc.Files = append(doc.Files, jf)
	}
	if opts.IncludeStats {
		doc.Summary = &jsonSummary{
			TotalFiles: res.Summary.TotalFiles,
			TotalSize:  res.Summary.TotalSize,
		}
		if opts.IncludeTokens {
			doc.Summary.TotalTokens = res.Summary.TotalTokens
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// fenceLanguage picks a code fence language from a path's extension.
func fenceLanguage(relPath string) string {
	ext := filepath.Ext(relPath)
	if ext == "" || ext == filepath.Base(relPath) {
		return "txt"
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

func formatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d bytes", n)
	}
	value, suffix := float64(n), ""
	for _, u := range []string{"KB", "MB", "GB", "TB"} {
		value /= unit
		suffix = u
		if value < unit {
			break
		}
	}
	return fmt.Sprintf("%.1f %s", value, suffix)
}

// lineWriter keeps error handling and line ending replacement in one place.
type lineWriter struct {
	w   io.Writer
	nl  string
	err error
}

// Linef and Raw take strings with "\n" endings; Raw translates them to the
// configured line ending on the way out.
func (lw *lineWriter) Linef(format string, args ...any) {
	lw.Raw(fmt.Sprintf(format, args...) + "\n")
}

func (lw *lineWriter) Raw(s string) {
	if lw.err != nil {
		return
	}
	if lw.nl != "\n" {
		s = strings.ReplaceAll(s, "\n", lw.nl)
	}
	_, lw.err = io.WriteString(lw.w, s)
}
