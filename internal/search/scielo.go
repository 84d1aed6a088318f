// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/research-assistant/internal/httputil"
	"github.com/pdiddy/research-assistant/pkg/types"
)

// scieloSearchBase is the SciELO search page. Declared as a var so tests
// can substitute an httptest server.
var scieloSearchBase = "https://search.scielo.org/"

// SciELOBackend scrapes the SciELO search results page. SciELO has no
// public JSON search API.
type SciELOBackend struct {
	Client *httputil.Client
}

// Name returns the backend identifier.
func (b *SciELOBackend) Name() string { return types.SourceSciELO }

// Search fetches the Spanish results page and parses each result item.
// Items without a title are skipped.
func (b *SciELOBackend) Search(ctx context.Context, query Query, cfg types.SearchConfig) ([]types.Reference, error) {
	q := query.Text()
	if q == "" {
		return nil, fmt.Errorf("empty SciELO query")
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	params := url.Values{
		"q":     {q},
		"lang":  {"es"},
		"count": {strconv.Itoa(maxResults)},
	}

	resp, err := b.Client.Get(ctx, scieloSearchBase+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("SciELO request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SciELO returned HTTP %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing SciELO page: %w", err)
	}

	var refs []types.Reference
	for _, item := range findByClass(doc, "item") {
		if len(refs) >= maxResults {
			break
		}
		ref, ok := parseSciELOItem(item)
		if !ok {
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// parseSciELOItem reads .title, .authors, and the first ".line a" link of
// one result block.
func parseSciELOItem(item *html.Node) (types.Reference, bool) {
	title := firstText(item, "title")
	if title == "" {
		return types.Reference{}, false
	}

	ref := types.Reference{
		Author:     firstText(item, "authors"),
		Year:       types.NoDate,
		Title:      title,
		Venue:      "SciELO",
		SourceName: "SciELO",
	}

	for _, line := range findByClass(item, "line") {
		if a := findElement(line, "a"); a != nil {
			ref.URL = absoluteURL(attr(a, "href"))
			break
		}
	}
	return ref, true
}

// absoluteURL turns SciELO's protocol-relative links into https URLs.
func absoluteURL(href string) string {
	href = strings.TrimSpace(href)
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	default:
		return href
	}
}

// findByClass returns every element under n (excluding n) whose class
// attribute contains class, in document order. Matches are not descended
// into.
func findByClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && hasClass(c, class) {
				out = append(out, c)
				continue
			}
			traverse(c)
		}
	}
	traverse(n)
	return out
}

// findElement returns the first descendant element named tag.
func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func firstText(n *html.Node, class string) string {
	nodes := findByClass(n, class)
	if len(nodes) == 0 {
		return ""
	}
	return textContent(nodes[0])
}

// textContent concatenates the text nodes under n with collapsed whitespace.
func textContent(n *html.Node) string {
	var b strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
			b.WriteByte(' ')
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
