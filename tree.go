package main

import (
	"path/filepath"
	"sort"
	"strings"
)

// treeNode is one level of the rendered file tree; nil children marks a file.
type treeNode map[string]treeNode

// generateTree renders an ASCII tree of the discovered files, rooted at the
// base directory's name, with directories listed before files and both sorted
// case-insensitively.
func generateTree(baseDir string, files []string) string {
	if len(files) == 0 {
		return ""
	}

	root := treeNode{}
	for _, path := range files {
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			continue
		}
		parts := strings.Split(filepath.ToSlash(rel), "/")
		current := root
		for i, part := range parts {
			if i == len(parts)-1 {
				if _, exists := current[part]; !exists {
					current[part] = nil
				}
				continue
			}
			child, exists := current[part]
			if !exists || child == nil {
				child = treeNode{}
				current[part] = child
			}
			current = child
		}
	}

	var sb strings.Builder
	name := filepath.Base(baseDir)
	if name == "" || name == string(filepath.Separator) {
		name = baseDir
	}
	sb.WriteString(name + "/")
	renderTree(&sb, root, "")
	return sb.String()
}

func renderTree(sb *strings.Builder, node treeNode, prefix string) {
	names := make([]string, 0, len(node))
	for name := range node {
		names = append(names, name)
	}
	// directories first, then case-insensitive alphabetical
	sort.Slice(names, func(i, j int) bool {
		di, dj := node[names[i]] != nil, node[names[j]] != nil
		if di != dj {
			return di
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for i, name := range names {
		connector := "├── "
		childPrefix := prefix + "│   "
		if i == len(names)-1 {
			connector = "└── "
			childPrefix = prefix + "    "
		}
		child := node[name]
		if child != nil {
			name += "/"
		}
		sb.WriteString("\n" + prefix + connector + name)
		if child != nil {
			renderTree(sb, child, childPrefix)
		}
	}
}
