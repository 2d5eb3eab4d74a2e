package highwire

import (
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Override extracts one attribute from a publisher's page layout when the
// page lacks the corresponding meta-tag. It returns nil when the page does not
// have the expected structure.
type Override func(page string) []string

type overrideKey struct {
	domain string
	attr   string
}

// Overrides is a registry of site-specific extractors keyed by domain and
// attribute.
type Overrides struct {
	funcs map[overrideKey]Override
}

// NewOverrides creates an empty registry.
func NewOverrides() *Overrides {
	return &Overrides{funcs: make(map[overrideKey]Override)}
}

// DefaultOverrides returns a registry with the built-in site extractors.
func DefaultOverrides() *Overrides {
	o := NewOverrides()
	o.Register("sciencedirect", "author", ScienceDirectAuthors)
	return o
}

// Register adds or replaces the extractor for a domain and attribute.
func (o *Overrides) Register(domain, attr string, fn Override) {
	o.funcs[overrideKey{domain: domain, attr: attr}] = fn
}

// Lookup returns the extractor for a domain and attribute.
func (o *Overrides) Lookup(domain, attr string) (Override, bool) {
	fn, ok := o.funcs[overrideKey{domain: domain, attr: attr}]
	return fn, ok
}

// Attributes returns every attribute some override can supply, sorted.
func (o *Overrides) Attributes() []string {
	seen := make(map[string]bool)
	var attrs []string
	for k := range o.funcs {
		if !seen[k.attr] {
			seen[k.attr] = true
			attrs = append(attrs, k.attr)
		}
	}
	sort.Strings(attrs)
	return attrs
}

// ScienceDirectAuthors reads authors from the #author-group block that
// ScienceDirect renders in place of citation_author tags.
func ScienceDirectAuthors(page string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil
	}

	group := doc.Find("#author-group").First()
	if group.Length() == 0 {
		return nil
	}

	var authors []string
	group.Find(".author").Each(func(_ int, s *goquery.Selection) {
		given := elementText(s.Find(".given-name").First())
		surname := elementText(s.Find(".surname").First())
		switch {
		case surname == "":
			return
		case given == "":
			// Keep the comma so ResolveAuthor sees every name in comma form.
			authors = append(authors, surname+",")
		default:
			authors = append(authors, surname+", "+given)
		}
	})
	return authors
}

// elementText returns the text of a selection with whitespace collapsed.
func elementText(s *goquery.Selection) string {
	return strings.Join(strings.Fields(s.Text()), " ")
}
