package highwire

import (
	"github.com/matsen/bibscrape/internal/bibtex"
)

// Extractor turns a page into a bibtex record. It is safe for concurrent use
// once built; extraction does not mutate it.
type Extractor struct {
	overrides *Overrides
	resolvers Resolvers
	custom    Resolvers
	typeMode  TypeMode
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithTypeMode selects the entry type fallback. TypeModeLegacy also selects
// LegacyCitationKey.
func WithTypeMode(mode TypeMode) Option {
	return func(e *Extractor) {
		e.typeMode = mode
	}
}

// WithOverrides replaces the site override registry.
func WithOverrides(o *Overrides) Option {
	return func(e *Extractor) {
		e.overrides = o
	}
}

// WithResolver adds or replaces the resolver of one field.
func WithResolver(attr string, fn Resolver) Option {
	return func(e *Extractor) {
		e.custom[attr] = fn
	}
}

// NewExtractor creates an Extractor with the default resolvers and overrides.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{custom: make(Resolvers)}
	for _, opt := range opts {
		opt(e)
	}

	e.resolvers = DefaultResolvers(e.typeMode)
	for attr, fn := range e.custom {
		e.resolvers[attr] = fn
	}
	if e.overrides == nil {
		e.overrides = DefaultOverrides()
	}
	return e
}

// Metadata collects the page's citation tags and fills attributes the tags
// lack from the site overrides of the URL's domain.
func (e *Extractor) Metadata(pageURL, page string) (RawMetadata, error) {
	domain, err := Domain(pageURL)
	if err != nil {
		return nil, err
	}

	meta := ExtractTags(page)
	for _, attr := range e.attributes() {
		if meta.Has(attr) {
			continue
		}
		fn, ok := e.overrides.Lookup(domain, attr)
		if !ok {
			continue
		}
		if vals := fn(page); len(vals) > 0 {
			meta.Add(attr, vals...)
		}
	}
	return meta, nil
}

// Extract builds the record for a page. The only error is an unusable URL;
// pages without metadata give a record with just a type and KeyUnknown.
func (e *Extractor) Extract(pageURL, page string) (*bibtex.Record, error) {
	meta, err := e.Metadata(pageURL, page)
	if err != nil {
		return nil, err
	}
	return e.Resolve(meta, pageURL, page), nil
}

// Resolve runs every resolver over collected metadata.
func (e *Extractor) Resolve(meta RawMetadata, pageURL, page string) *bibtex.Record {
	rec := bibtex.NewRecord(DefaultType)
	for _, attr := range e.resolvers.Attributes() {
		val, ok := e.resolvers[attr](meta, pageURL, page)
		if !ok {
			continue
		}
		val = bibtex.Sanitize(val)
		if attr == "type" {
			if val != "" {
				rec.Type = val
			}
			continue
		}
		rec.Set(attr, val)
	}
	if e.typeMode == TypeModeLegacy {
		rec.Key = LegacyCitationKey(rec)
	} else {
		rec.Key = CitationKey(rec)
	}
	return rec
}

// ToBibTeX extracts a page and renders the record.
func (e *Extractor) ToBibTeX(pageURL, page string) (string, error) {
	rec, err := e.Extract(pageURL, page)
	if err != nil {
		return "", err
	}
	return bibtex.Marshal(rec)
}

// attributes lists every attribute a resolver or override handles.
func (e *Extractor) attributes() []string {
	seen := make(map[string]bool)
	var attrs []string
	for _, attr := range append(e.resolvers.Attributes(), e.overrides.Attributes()...) {
		if !seen[attr] {
			seen[attr] = true
			attrs = append(attrs, attr)
		}
	}
	return attrs
}
