// Package highwire extracts HighWire Press citation metadata from HTML pages
// and turns it into bibtex records.
//
// See https://scholar.google.com/intl/en-us/scholar/inclusion.html#indexing
// for the tag vocabulary.
package highwire

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const (
	// TagPrefix starts every meta-tag name the extractor keeps.
	TagPrefix = "citation_"

	// referenceTag lists works cited by the paper, not the paper itself.
	referenceTag = "citation_reference"
)

var (
	metaTagRegex   = regexp.MustCompile(`(?i)<\s*meta[^>]*>`)
	attributeRegex = regexp.MustCompile(`(?i)([a-z]+)="([^"]*)"`)
)

// RawMetadata maps an attribute name (tag name without the citation_ prefix)
// to its values in document order. Values are always kept as a list.
type RawMetadata map[string][]string

// Has reports whether the attribute has at least one value.
func (m RawMetadata) Has(attr string) bool {
	return len(m[attr]) > 0
}

// First returns the first value of an attribute. Later values are ignored.
func (m RawMetadata) First(attr string) (string, bool) {
	vals := m[attr]
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}

// Add appends values to an attribute.
func (m RawMetadata) Add(attr string, vals ...string) {
	m[attr] = append(m[attr], vals...)
}

// ExtractTags scans html for citation_* meta-tags. Matching is deliberately
// permissive: anything that looks like a meta element is inspected and
// malformed markup simply contributes nothing.
func ExtractTags(page string) RawMetadata {
	meta := make(RawMetadata)
	for _, tag := range metaTagRegex.FindAllString(page, -1) {
		attrs := make(map[string]string)
		for _, m := range attributeRegex.FindAllStringSubmatch(tag, -1) {
			attrs[strings.ToLower(m[1])] = m[2]
		}

		name := attrs["name"]
		if !strings.HasPrefix(name, TagPrefix) || name == referenceTag {
			continue
		}
		meta.Add(strings.TrimPrefix(name, TagPrefix), html.UnescapeString(attrs["content"]))
	}
	return meta
}
