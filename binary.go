package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// binarySniffSize is how much of a file the NUL-byte sniff reads.
const binarySniffSize = 1024

// conventional extension-less text files, lower-cased
var textFilenames = map[string]struct{}{
	"readme": {}, "license": {}, "licence": {}, "changelog": {}, "changes": {},
	"authors": {}, "contributors": {}, "copying": {}, "install": {}, "news": {},
	"todo": {}, "version": {}, "dockerfile": {}, "makefile": {}, "rakefile": {},
	"gemfile": {}, "pipfile": {}, "procfile": {}, "vagrantfile": {},
	"jenkinsfile": {}, "cname": {}, "notice": {}, "manifest": {}, "copyright": {},
}

// dotfiles and dot-suffixed names that are known to be binary
var skipDotfiles = map[string]struct{}{
	".git": {}, ".ds_store": {}, ".pyc": {}, ".pyo": {}, ".pyd": {},
	".so": {}, ".dylib": {}, ".dll": {},
}

// extensions that plausibly hold config or template text
var possibleTextExtensions = map[string]struct{}{
	".ini": {}, ".cfg": {}, ".conf": {}, ".config": {}, ".properties": {},
	".env": {}, ".envrc": {}, ".ignore": {}, ".keep": {}, ".gitkeep": {},
	".npmignore": {}, ".dockerignore": {}, ".editorconfig": {}, ".flake8": {},
	".pylintrc": {}, ".prettierrc": {}, ".eslintrc": {}, ".stylelintrc": {},
	".babelrc": {}, ".npmrc": {}, ".yarnrc": {}, ".nvmrc": {},
	".ruby-version": {}, ".python-version": {}, ".node-version": {},
	".terraform": {}, ".tf": {}, ".tfvars": {}, ".ansible": {}, ".playbook": {},
	".vault": {}, ".j2": {}, ".jinja": {}, ".jinja2": {}, ".template": {},
	".tmpl": {}, ".tpl": {}, ".mustache": {}, ".hbs": {}, ".handlebars": {},
}

// isBinaryFile sniffs the first kilobyte for a NUL byte. Files that cannot be
// read are treated as binary so they are excluded rather than risk garbling
// the output.
func isBinaryFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return true
	}
	defer f.Close()

	buf := make([]byte, binarySniffSize)
	n, err := f.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return true
	}
	return bytes.IndexByte(buf[:n], 0) >= 0
}

// isLikelyTextFile decides whether a file that belongs to no category should
// still count as text for the catch-all category. Rules apply in order and
// short-circuit on the first match; anything that falls through is not text.
func isLikelyTextFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))

	if _, ok := textFilenames[name]; ok {
		return !isBinaryFile(path)
	}

	if strings.HasPrefix(name, ".") && len(name) > 1 {
		if _, skip := skipDotfiles[name]; skip {
			return false
		}
		return !isBinaryFile(path)
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return !isBinaryFile(path)
	}

	if _, ok := possibleTextExtensions[ext]; ok {
		return !isBinaryFile(path)
	}

	return false
}
