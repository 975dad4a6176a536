package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// CategoryInfo holds the file patterns of one named category.
type CategoryInfo struct {
	Extensions  []string `yaml:"extensions"`
	Filenames   []string `yaml:"filenames"`
	Description string   `yaml:"description,omitempty"`
}

// CategoryDefinitions maps category names ("Python", "Documentation") to their
// extensions and filenames, with lookup maps built once at load time. The rest
// of the program only ever consumes this resolved value, never the loading
// mechanism.
type CategoryDefinitions struct {
	Categories map[string]CategoryInfo

	extensionMap map[string]string // ".go" -> "Go"
	filenameMap  map[string]string // "makefile" -> "C/C++"
}

// defaultCategoriesVersion identifies the embedded table below. Bump it when
// the table changes so a user-edited categories.yml can be told apart from a
// stale generated one.
const defaultCategoriesVersion = "1"

// defaultCategoriesYAML is the built-in category table, used whenever no
// categories.yml is found. Users can copy it out and customize.
const defaultCategoriesYAML = `# stitcher category definitions (version ` + defaultCategoriesVersion + `)
Python:
  extensions: [".py", ".pyw", ".pyx", ".pyi"]
  filenames: ["requirements.txt", "setup.py", "setup.cfg", "pyproject.toml", "pipfile"]
JavaScript/TypeScript:
  extensions: [".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs"]
  filenames: ["package.json", "package-lock.json", "yarn.lock"]
Web Frontend:
  extensions: [".html", ".htm", ".css", ".scss", ".sass", ".less", ".vue", ".svelte", ".astro"]
Java/Kotlin:
  extensions: [".java", ".kt", ".kts", ".gradle"]
  filenames: ["pom.xml", "build.gradle", "gradle.properties"]
C/C++:
  extensions: [".c", ".cpp", ".cxx", ".cc", ".h", ".hpp", ".hxx", ".cmake"]
  filenames: ["makefile", "cmakelists.txt"]
C#/.NET:
  extensions: [".cs", ".fs", ".vb", ".csproj", ".fsproj", ".vbproj", ".sln"]
Ruby:
  extensions: [".rb", ".rake", ".gemspec", ".ru"]
  filenames: ["gemfile", "gemfile.lock", "rakefile"]
PHP:
  extensions: [".php", ".phtml", ".php3", ".php4", ".php5"]
  filenames: ["composer.json", "composer.lock"]
Go:
  extensions: [".go"]
  filenames: ["go.mod", "go.sum", "go.work", "go.work.sum"]
Rust:
  extensions: [".rs"]
  filenames: ["cargo.toml", "cargo.lock"]
Swift/Objective-C:
  extensions: [".swift", ".m", ".mm"]
  filenames: ["package.swift", "podfile", "podfile.lock"]
Shell Scripts:
  extensions: [".sh", ".bash", ".zsh", ".fish", ".ps1", ".bat", ".cmd"]
Config & Data:
  extensions: [".json", ".yaml", ".yml", ".toml", ".xml", ".ini", ".cfg", ".conf", ".config", ".properties", ".plist", ".env", ".envrc"]
Documentation:
  extensions: [".md", ".markdown", ".rst", ".txt", ".adoc", ".org"]
  filenames: ["readme", "changelog", "license", "authors"]
DevOps & CI:
  extensions: [".dockerfile", ".tf", ".tfvars"]
  filenames: ["dockerfile", "docker-compose.yml", "docker-compose.yaml", ".travis.yml", ".gitlab-ci.yml", "jenkinsfile", "vagrantfile"]
Version Control:
  extensions: [".gitignore", ".gitattributes", ".gitmodules", ".gitkeep"]
Build & Package:
  extensions: [".ninja", ".bazel", ".bzl", ".sbt"]
  filenames: ["makefile", "cmakelists.txt", "meson.build", "build.xml", "configure.ac",
    "build.gradle", "settings.gradle", "pom.xml", "build.sbt",
    "uv.lock", "poetry.lock", "pipfile.lock", "environment.yml",
    "npm-shrinkwrap.json", "pnpm-lock.yaml", "pnpm-workspace.yaml", "bun.lockb",
    "lerna.json", "turbo.json", "flake.lock", "flake.nix",
    "cargo.toml", "cargo.lock", "gemfile", "gemfile.lock", "rakefile",
    "composer.json", "composer.lock", "go.mod", "go.sum"]
`

// LoadCategoryDefinitions resolves the category table. An explicit path wins;
// otherwise categories.yml is searched in ~/.config/stitcher and the current
// directory; if nothing is found the embedded default is used. A file that
// exists but does not parse is an error rather than a silent fallback, since a
// user who wrote one wants to know it is broken.
func LoadCategoryDefinitions(explicitPath string) (*CategoryDefinitions, error) {
	path := explicitPath
	if path == "" {
		candidates := []string{}
		if home, err := os.UserHomeDir(); err == nil {
			candidates = append(candidates, filepath.Join(home, ".config", "stitcher", "categories.yml"))
		}
		candidates = append(candidates, "categories.yml")
		for _, c := range candidates {
			if _, err := os.Stat(c); err == nil {
				path = c
				break
			}
		}
	}

	var raw []byte
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading category definitions %s: %w", path, err)
		}
		raw = data
	} else {
		raw = []byte(defaultCategoriesYAML)
	}

	var cats map[string]CategoryInfo
	if err := yaml.Unmarshal(raw, &cats); err != nil {
		if path != "" {
			return nil, fmt.Errorf("parsing category definitions %s: %w", path, err)
		}
		return nil, fmt.Errorf("parsing built-in category definitions: %w", err)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("category definitions are empty")
	}

	defs := &CategoryDefinitions{
		Categories:   cats,
		extensionMap: make(map[string]string),
		filenameMap:  make(map[string]string),
	}
	for name, info := range cats {
		for _, ext := range info.Extensions {
			key := strings.ToLower(ext)
			if _, taken := defs.extensionMap[key]; !taken {
				defs.extensionMap[key] = name
			}
		}
		for _, fname := range info.Filenames {
			key := strings.ToLower(fname)
			if _, taken := defs.filenameMap[key]; !taken {
				defs.filenameMap[key] = name
			}
		}
	}
	return defs, nil
}

// Names returns the category names sorted case-insensitively.
func (cd *CategoryDefinitions) Names() []string {
	names := make([]string, 0, len(cd.Categories))
	for name := range cd.Categories {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

// AllExtensions returns the union of extensions across every category.
func (cd *CategoryDefinitions) AllExtensions() map[string]struct{} {
	all := make(map[string]struct{}, len(cd.extensionMap))
	for ext := range cd.extensionMap {
		all[ext] = struct{}{}
	}
	return all
}

// AllFilenames returns the union of exact filenames across every category.
func (cd *CategoryDefinitions) AllFilenames() map[string]struct{} {
	all := make(map[string]struct{}, len(cd.filenameMap))
	for name := range cd.filenameMap {
		all[name] = struct{}{}
	}
	return all
}

// CategoryForFile reports which category a file belongs to, filename match
// taking precedence over extension match.
func (cd *CategoryDefinitions) CategoryForFile(path string) (string, bool) {
	name := strings.ToLower(filepath.Base(path))
	if cat, ok := cd.filenameMap[name]; ok {
		return cat, true
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != "" {
		if cat, ok := cd.extensionMap[ext]; ok {
			return cat, true
		}
	}
	return "", false
}

// matchCategoryNames resolves a user-supplied type name ("python", "web")
// against the category table the way the original tool did: case-insensitive
// substring in either direction.
func (cd *CategoryDefinitions) matchCategoryNames(typeName string) []string {
	want := strings.ToLower(strings.TrimSpace(typeName))
	if want == "" {
		return nil
	}
	var matched []string
	for _, name := range cd.Names() {
		lower := strings.ToLower(name)
		if strings.Contains(lower, want) || strings.Contains(want, lower) {
			matched = append(matched, name)
		}
	}
	return matched
}

// Select computes the selected extension/filename sets from include/exclude
// category names plus explicit extension adjustments. With no includes, every
// category starts selected. It also returns the display names of the selected
// categories for the document header.
func (cd *CategoryDefinitions) Select(includeTypes, excludeTypes, includeExts, excludeExts []string) (exts, names map[string]struct{}, selected []string, err error) {
	exts = make(map[string]struct{})
	names = make(map[string]struct{})
	chosen := make(map[string]bool)

	addCategory := func(cat string) {
		chosen[cat] = true
		for _, e := range cd.Categories[cat].Extensions {
			exts[strings.ToLower(e)] = struct{}{}
		}
		for _, f := range cd.Categories[cat].Filenames {
			names[strings.ToLower(f)] = struct{}{}
		}
	}
	dropCategory := func(cat string) {
		delete(chosen, cat)
		for _, e := range cd.Categories[cat].Extensions {
			delete(exts, strings.ToLower(e))
		}
		for _, f := range cd.Categories[cat].Filenames {
			delete(names, strings.ToLower(f))
		}
	}

	if len(includeTypes) > 0 {
		for _, t := range includeTypes {
			matched := cd.matchCategoryNames(t)
			if len(matched) == 0 {
				return nil, nil, nil, fmt.Errorf("unknown file type %q (use --list-types to see supported types)", t)
			}
			for _, cat := range matched {
				addCategory(cat)
			}
		}
	} else {
		for _, cat := range cd.Names() {
			addCategory(cat)
		}
	}

	for _, t := range excludeTypes {
		matched := cd.matchCategoryNames(t)
		if len(matched) == 0 {
			return nil, nil, nil, fmt.Errorf("unknown file type %q (use --list-types to see supported types)", t)
		}
		for _, cat := range matched {
			dropCategory(cat)
		}
	}

	for _, e := range includeExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = struct{}{}
	}
	for _, e := range excludeExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		delete(exts, e)
	}

	for cat := range chosen {
		selected = append(selected, cat)
	}
	sort.Slice(selected, func(i, j int) bool {
		return strings.ToLower(selected[i]) < strings.ToLower(selected[j])
	})
	return exts, names, selected, nil
}
