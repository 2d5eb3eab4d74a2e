// Package lookup turns a URL or a local PDF into a bibtex record.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/matsen/bibscrape/internal/bibtex"
	"github.com/matsen/bibscrape/internal/fetch"
	"github.com/matsen/bibscrape/internal/highwire"
	"github.com/matsen/bibscrape/internal/pdf"
	"github.com/matsen/bibscrape/internal/search"
)

// MaxCandidates bounds how many search results are scraped for one PDF.
const MaxCandidates = 5

var (
	// ErrNoCandidates means no page produced a record for a PDF.
	ErrNoCandidates = errors.New("no candidate page found")

	// ErrUnsupportedInput means an argument is neither a URL nor a PDF file.
	ErrUnsupportedInput = errors.New("not a URL or PDF file")
)

// Service resolves citations by downloading and scraping pages.
type Service struct {
	fetcher       fetch.Fetcher
	searcher      search.Searcher
	extractor     *highwire.Extractor
	readPDF       func(path string) (pdf.Info, error)
	maxCandidates int
}

// Option configures a Service.
type Option func(*Service)

// WithPDFReader replaces how PDF metadata is read.
func WithPDFReader(fn func(path string) (pdf.Info, error)) Option {
	return func(s *Service) {
		s.readPDF = fn
	}
}

// WithMaxCandidates bounds the number of search results tried per PDF.
func WithMaxCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// New creates a Service.
func New(f fetch.Fetcher, s search.Searcher, e *highwire.Extractor, opts ...Option) *Service {
	svc := &Service{
		fetcher:       f,
		searcher:      s,
		extractor:     e,
		readPDF:       pdf.ReadMetadata,
		maxCandidates: MaxCandidates,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// IsURL reports whether arg should be fetched rather than opened.
func IsURL(arg string) bool {
	return strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://")
}

// Resolve dispatches arg to FromURL or FromPDF.
func (s *Service) Resolve(ctx context.Context, arg string) (*bibtex.Record, error) {
	if IsURL(arg) {
		return s.FromURL(ctx, arg)
	}
	return s.FromPDF(ctx, arg)
}

// FromURL downloads a page and extracts its citation.
func (s *Service) FromURL(ctx context.Context, pageURL string) (*bibtex.Record, error) {
	page, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	rec, err := s.extractor.Extract(pageURL, page)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", pageURL, err)
	}
	return rec, nil
}

// FromPDF finds the citation of a local PDF. A DOI in its metadata is
// tried first, then web search results for its title and authors. The first
// record with a real key wins; otherwise the first record scraped is
// returned.
func (s *Service) FromPDF(ctx context.Context, path string) (*bibtex.Record, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedInput)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	info, err := s.readPDF(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	candidates, err := s.candidates(ctx, info)
	if err != nil {
		return nil, err
	}

	log := zerolog.Ctx(ctx)
	var first *bibtex.Record
	for _, u := range candidates {
		rec, err := s.FromURL(ctx, u)
		if err != nil {
			log.Debug().Err(err).Str("url", u).Msg("skipping candidate")
			continue
		}
		if rec.Key != highwire.KeyUnknown {
			return rec, nil
		}
		if first == nil {
			first = rec
		}
	}
	if first == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrNoCandidates)
	}
	return first, nil
}

// candidates lists the pages to scrape for a PDF, best first.
func (s *Service) candidates(ctx context.Context, info pdf.Info) ([]string, error) {
	doi := info.DOI
	if doi == "" {
		doi = pdf.InfoDOI(info)
	}
	var urls []string
	if doi != "" {
		urls = append(urls, pdf.DOIURL(doi))
	}

	query := pdf.SearchQuery(info)
	if query == "" || s.searcher == nil {
		return urls, nil
	}

	results, err := s.searcher.Search(ctx, query)
	if err != nil {
		if len(urls) > 0 {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("search failed, using DOI only")
			return urls, nil
		}
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	if len(results) > s.maxCandidates {
		results = results[:s.maxCandidates]
	}
	return append(urls, results...), nil
}
