package main

import (
	"github.com/matsen/bibscrape/internal/config"
	"github.com/matsen/bibscrape/internal/fetch"
	"github.com/matsen/bibscrape/internal/highwire"
	"github.com/matsen/bibscrape/internal/lookup"
	"github.com/matsen/bibscrape/internal/search"
)

// newLookupService wires the fetcher, searcher and extractor from config.
func newLookupService(cfg *config.Config) *lookup.Service {
	opts := []fetch.ClientOption{fetch.WithRateLimit(cfg.RequestsPerSecond)}
	if cfg.UserAgent != "" {
		opts = append(opts, fetch.WithUserAgent(cfg.UserAgent))
	}
	client := fetch.NewClient(opts...)

	mode := highwire.TypeModeInferred
	if cfg.LegacyTypeDefault {
		mode = highwire.TypeModeLegacy
	}

	return lookup.New(
		client,
		search.NewDuckDuckGo(client),
		highwire.NewExtractor(highwire.WithTypeMode(mode)),
	)
}
