package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL recognizes the unambiguous remote forms. Plain https:// URLs
// without the .git suffix are treated as web pages instead.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") || strings.HasPrefix(input, "git@")
}

// cloneGitRepo shallow-clones the default branch of url into a fresh
// temporary directory and returns its path. The caller owns the cleanup.
func cloneGitRepo(url string, rep Reporter) (string, error) {
	tempDir, err := os.MkdirTemp("", "stitcher-git-")
	if err != nil {
		return "", fmt.Errorf("creating temporary directory: %w", err)
	}

	rep.Status(fmt.Sprintf("Cloning %s...", url))
	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}
	return tempDir, nil
}
