// Package search finds candidate paper pages on the web.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/matsen/bibscrape/internal/fetch"
)

const (
	// DuckDuckGoURL is the JavaScript-free results endpoint.
	DuckDuckGoURL = "https://html.duckduckgo.com/html/"

	// DefaultMaxResults bounds how many result links are returned.
	DefaultMaxResults = 10
)

// Searcher returns result URLs for a query, best match first.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// DuckDuckGo searches through DuckDuckGo's HTML interface.
type DuckDuckGo struct {
	fetcher    fetch.Fetcher
	baseURL    string
	maxResults int
}

// Option configures a DuckDuckGo searcher.
type Option func(*DuckDuckGo)

// WithBaseURL sets a custom endpoint (for testing).
func WithBaseURL(u string) Option {
	return func(d *DuckDuckGo) {
		d.baseURL = u
	}
}

// WithMaxResults bounds the number of results.
func WithMaxResults(n int) Option {
	return func(d *DuckDuckGo) {
		if n > 0 {
			d.maxResults = n
		}
	}
}

// NewDuckDuckGo creates a searcher that downloads result pages with f.
func NewDuckDuckGo(f fetch.Fetcher, opts ...Option) *DuckDuckGo {
	d := &DuckDuckGo{
		fetcher:    f,
		baseURL:    DuckDuckGoURL,
		maxResults: DefaultMaxResults,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search runs query and returns the result links.
func (d *DuckDuckGo) Search(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	page, err := d.fetcher.Fetch(ctx, d.baseURL+"?q="+url.QueryEscape(query))
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}

	results, err := ParseResults(page, d.maxResults)
	if err != nil {
		return nil, fmt.Errorf("parsing results for %q: %w", query, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("query", query).
		Int("results", len(results)).
		Msg("web search")
	return results, nil
}

// ParseResults extracts result links from a DuckDuckGo HTML results page.
// Redirect links are unwrapped, duplicates and non-http links dropped.
func ParseResults(page string, max int) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var results []string
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		link := unwrapRedirect(href)
		if link == "" || seen[link] {
			return true
		}
		seen[link] = true
		results = append(results, link)
		return max <= 0 || len(results) < max
	})
	return results, nil
}

// unwrapRedirect turns "//duckduckgo.com/l/?uddg=<escaped>" into the target
// URL. Links that are not http(s) give "".
func unwrapRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Hostname(), "duckduckgo.com") {
		target := u.Query().Get("uddg")
		if target == "" {
			return ""
		}
		if u, err = url.Parse(target); err != nil {
			return ""
		}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}
