package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

var webClient = &http.Client{Timeout: 30 * time.Second}

// isWebURL recognizes http(s) page URLs. Git remotes are classified first by
// isGitURL, so anything ending in .git never reaches here.
func isWebURL(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// fetchWebPage downloads a single HTML page and converts it to a Markdown
// section. The page title, when present, becomes the section's display path.
func fetchWebPage(pageURL string, rep Reporter) (StitchedFile, error) {
	rep.Status(fmt.Sprintf("Fetching %s...", pageURL))

	res, err := webClient.Get(pageURL)
	if err != nil {
		return StitchedFile{}, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return StitchedFile{}, fmt.Errorf("fetching %s: status %d", pageURL, res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "text/html") {
		return StitchedFile{}, fmt.Errorf("fetching %s: unsupported content type %q", pageURL, ct)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return StitchedFile{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}

	html, err := doc.Html()
	if err != nil {
		return StitchedFile{}, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	markdown, err := md.NewConverter("", true, nil).ConvertString(html)
	if err != nil {
		return StitchedFile{}, fmt.Errorf("converting %s: %w", pageURL, err)
	}

	display := pageURL
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		display = fmt.Sprintf("%s (%s)", title, pageURL)
	}
	return StitchedFile{
		Path:    pageURL,
		RelPath: display,
		Content: markdown,
		Size:    int64(len(markdown)),
	}, nil
}
