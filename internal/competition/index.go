package competition

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// ErrNoInfo is returned for an index page with no text above its results table.
var ErrNoInfo = errors.New("no competition info on page")

var rinkLine = regexp.MustCompile(`^(?:Patinoire|PATINOIRE)\b`)

// FetchIndex downloads and parses a competition results index page.
func FetchIndex(ctx context.Context, client *http.Client, pageURL string) (Info, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Info{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return Info{}, fmt.Errorf("get %s: %w", pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Info{}, fmt.Errorf("get %s: status %d", pageURL, resp.StatusCode)
	}
	return ParseIndexPage(resp.Body, resp.Header.Get("Content-Type"), pageURL)
}

// ParseIndexPage reads competition info from a results index page. The page
// opens with the competition name, optionally repeated, followed by lines
// holding the location, the dates and the rink. Links to score PDFs are
// collected from the results table and resolved against pageURL.
func ParseIndexPage(r io.Reader, contentType, pageURL string) (Info, error) {
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return Info{}, fmt.Errorf("detect charset: %w", err)
	}
	doc, err := html.Parse(decoded)
	if err != nil {
		return Info{}, fmt.Errorf("parse html: %w", err)
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	lines, table := leadingLines(root)
	if len(lines) == 0 {
		return Info{}, ErrNoInfo
	}

	info := Info{URL: pageURL, Competition: lines[0]}
	rest := lines[1:]
	if len(rest) > 0 && strings.EqualFold(rest[0], info.Competition) {
		rest = rest[1:]
	}

	var others []string
	var dates []DateRange
	var rinks []string
	for _, l := range rest {
		if d, err := ParseDateRange(l); err == nil {
			dates = append(dates, d)
			continue
		}
		if rinkLine.MatchString(l) {
			rinks = append(rinks, l)
			continue
		}
		others = append(others, l)
	}
	if len(dates) == 1 {
		info.Start = dates[0].Start.Format("2006-01-02")
		info.End = dates[0].End.Format("2006-01-02")
	}
	if len(rinks) == 1 {
		info.RinkName = rinks[0]
	}
	if len(others) > 0 && others[0] != info.Competition {
		info.Location = others[0]
	}
	info.Type = InferType(info.Competition, pageURL)

	if table != nil {
		base, _ := url.Parse(pageURL)
		info.ScoreLinks = pdfLinks(table, base)
	}
	return info, nil
}

// leadingLines returns the non-blank text lines that precede the first
// table, and that table.
func leadingLines(root *html.Node) ([]string, *html.Node) {
	var lines []string
	var table *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if table != nil {
			return
		}
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "nav":
				return
			case "table":
				table = n
				return
			}
		case html.TextNode:
			for _, l := range strings.Split(n.Data, "\n") {
				if l = strings.Join(strings.Fields(l), " "); l != "" {
					lines = append(lines, l)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return lines, table
}

func pdfLinks(n *html.Node, base *url.URL) []string {
	var links []string
	seen := make(map[string]bool)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); strings.HasSuffix(strings.ToLower(href), ".pdf") {
				if ref, err := url.Parse(href); err == nil {
					if base != nil {
						ref = base.ResolveReference(ref)
					}
					if s := ref.String(); !seen[s] {
						seen[s] = true
						links = append(links, s)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
