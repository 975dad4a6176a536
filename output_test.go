package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(base string) *Result {
	files := []StitchedFile{
		{Path: filepath.Join(base, "main.go"), RelPath: "main.go", Content: "package main\n", Size: 13, TokenCount: 3},
		{Path: filepath.Join(base, "docs", "guide.md"), RelPath: "docs/guide.md", Content: "# Guide", Size: 7, TokenCount: 2},
	}
	res := &Result{
		BaseDirectory:      base,
		SelectedCategories: []string{"Documentation", "Go"},
		Files:              files,
	}
	for _, f := range files {
		res.Summary.TotalFiles++
		res.Summary.TotalSize += f.Size
		res.Summary.TotalTokens += f.TokenCount
	}
	return res
}

func TestRenderDocumentMarkdown(t *testing.T) {
	base := filepath.Join("/tmp", "project")
	var buf bytes.Buffer
	err := RenderDocument(&buf, sampleResult(base), RenderOptions{
		Format:        "markdown",
		IncludeStats:  true,
		IncludeTokens: true,
	})
	require.NoError(t, err)
	doc := buf.String()

	assert.Contains(t, doc, "# Concatenated Files from: "+base)
	assert.Contains(t, doc, "# Selected file types: Documentation, Go")
	assert.Contains(t, doc, "START OF CONCATENATED CONTENT")
	assert.Contains(t, doc, "END OF CONCATENATED CONTENT")
	assert.Contains(t, doc, "--- File: main.go ---")
	assert.Contains(t, doc, "```go\npackage main\n```")
	assert.Contains(t, doc, "```md\n# Guide\n```", "missing trailing newline is supplied before the fence closes")
	assert.Contains(t, doc, "Total files processed: 2")
	assert.Contains(t, doc, "Total tokens: 5")

	// Tree section lists the hierarchy inside a fence.
	assert.Contains(t, doc, "# Selected Files")
	assert.Contains(t, doc, "project/")
	assert.Contains(t, doc, "guide.md")
}

func TestRenderDocumentPlainHasNoFences(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDocument(&buf, sampleResult("/tmp/project"), RenderOptions{Format: "plain"})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "```")
	assert.Contains(t, buf.String(), "--- File: main.go ---")
}

func TestRenderDocumentJSON(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDocument(&buf, sampleResult("/tmp/project"), RenderOptions{
		Format:        "json",
		IncludeStats:  true,
		IncludeTokens: true,
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "/tmp/project", doc["base_directory"])
	files, ok := doc["files"].([]any)
	require.True(t, ok)
	require.Len(t, files, 2)
	first, ok := files[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "main.go", first["path"])
}

func TestRenderDocumentCustomLineEnding(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDocument(&buf, sampleResult("/tmp/project"), RenderOptions{
		Format:     "plain",
		LineEnding: "\r\n",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "START OF CONCATENATED CONTENT\r\n")
	assert.NotContains(t, buf.String(), "\r\r")
}

func TestRenderDocumentUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := RenderDocument(&buf, sampleResult("/tmp"), RenderOptions{Format: "html"})
	assert.Error(t, err)
}

func TestGenerateTree(t *testing.T) {
	base := filepath.Join("/srv", "app")
	tree := generateTree(base, []string{
		filepath.Join(base, "cmd", "main.go"),
		filepath.Join(base, "README.md"),
		filepath.Join(base, "cmd", "util.go"),
	})

	lines := strings.Split(strings.TrimRight(tree, "\n"), "\n")
	require.Equal(t, []string{
		"app/",
		"├── cmd/",
		"│   ├── main.go",
		"│   └── util.go",
		"└── README.md",
	}, lines, "directories come before files, entries sorted case-insensitively")
}

func TestGenerateTreeEmpty(t *testing.T) {
	assert.Equal(t, "", generateTree("/srv/app", nil))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 bytes", formatSize(512))
	assert.Equal(t, "1.0 KB", formatSize(1024))
	assert.Equal(t, "1.5 MB", formatSize(3<<20/2))
	assert.Equal(t, "2.0 GB", formatSize(2<<30))
}

func TestFenceLanguage(t *testing.T) {
	assert.Equal(t, "go", fenceLanguage("cmd/main.go"))
	assert.Equal(t, "txt", fenceLanguage("LICENSE"))
	assert.Equal(t, "txt", fenceLanguage(".gitignore"))
}
