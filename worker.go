package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
)

// GeneratorConfig bundles everything a generation run needs. Extra carries
// pre-fetched remote sections (web pages) that bypass the walk but still go
// through token counting and the summary.
type GeneratorConfig struct {
	Filter     FilterConfig
	Request    WalkRequest
	Encodings  []string
	Categories []string
	Extra      []StitchedFile
	Tokenizer  Tokenizer
	Threads    int
	Reporter   Reporter
}

// Generator runs the pipeline: discover eligible files, decode their content,
// count tokens, aggregate. It is single-shot; build a new one per run.
type Generator struct {
	cfg       GeneratorConfig
	walker    *ProjectFileWalker
	reader    *FileReader
	reporter  Reporter
	cancelled atomic.Bool
}

func NewGenerator(cfg GeneratorConfig) *Generator {
	rep := cfg.Reporter
	if rep == nil {
		rep = nopReporter{}
	}
	return &Generator{
		cfg:      cfg,
		walker:   NewProjectFileWalker(cfg.Filter, cfg.Request, rep),
		reader:   NewFileReader(cfg.Encodings, rep),
		reporter: rep,
	}
}

// Cancel stops the run at the next cancellation point. Safe to call from any
// goroutine, including a signal handler.
func (g *Generator) Cancel() {
	g.cancelled.Store(true)
	g.walker.Cancel()
}

// Run executes the full pipeline. A cancelled run returns errCancelled and a
// run that discovers nothing returns errNoMatches; both leave the result nil.
func (g *Generator) Run() (*Result, error) {
	g.reporter.Status("Scanning files...")
	g.reporter.Progress(0)

	paths, total, err := g.walker.DiscoverFiles()
	if err != nil {
		return nil, err
	}
	if total == 0 && len(g.cfg.Extra) == 0 {
		return nil, errNoMatches
	}
	g.reporter.Progress(10)

	files := make([]StitchedFile, 0, total+len(g.cfg.Extra))
	for i, path := range paths {
		if g.cancelled.Load() {
			return nil, errCancelled
		}
		g.reporter.Status(fmt.Sprintf("Reading %s...", filepath.Base(path)))

		content, ok := g.reader.GetContent(path)
		if !ok {
			continue
		}
		files = append(files, StitchedFile{
			Path:    path,
			RelPath: g.displayPath(path),
			Content: content,
			Size:    fileSize(path, content),
		})
		g.reporter.Progress(10 + (i+1)*80/total)
	}
	files = append(files, g.cfg.Extra...)
	if len(files) == 0 {
		return nil, errNoMatches
	}

	if g.cfg.Tokenizer != nil {
		g.reporter.Status("Counting tokens...")
		g.countTokens(files)
	}
	if g.cancelled.Load() {
		return nil, errCancelled
	}
	g.reporter.Progress(100)

	res := &Result{
		BaseDirectory:      g.cfg.Request.BaseDirectory,
		SelectedCategories: g.cfg.Categories,
		Files:              files,
	}
	for _, f := range files {
		res.Summary.TotalFiles++
		res.Summary.TotalSize += f.Size
		res.Summary.TotalTokens += f.TokenCount
	}
	return res, nil
}

// countTokens fans the sections out over a fixed worker pool. Workers write
// by index so the document order is untouched.
func (g *Generator) countTokens(files []StitchedFile) {
	threads := g.cfg.Threads
	if threads < 1 {
		threads = 1
	}
	if threads > len(files) {
		threads = len(files)
	}

	jobs := make(chan int, len(files))
	var wg sync.WaitGroup
	for w := 0; w < threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if g.cancelled.Load() {
					continue
				}
				files[i].TokenCount = g.cfg.Tokenizer.CountTokens(files[i].Content)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// displayPath relativizes against the base directory with forward slashes, so
// section headers look the same on every platform.
func (g *Generator) displayPath(path string) string {
	rel, err := filepath.Rel(g.cfg.Request.BaseDirectory, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func fileSize(path, content string) int64 {
	if info, err := os.Stat(path); err == nil {
		return info.Size()
	}
	return int64(len(content))
}
