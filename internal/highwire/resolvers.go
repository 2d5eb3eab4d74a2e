package highwire

import (
	"regexp"
	"sort"
	"strings"
)

// Resolver derives one record field from the collected metadata. The page URL
// and HTML are available for resolvers that need them.
type Resolver func(meta RawMetadata, pageURL, page string) (string, bool)

// TypeMode controls the entry type used when no type tag identifies the work.
type TypeMode int

const (
	// TypeModeInferred guesses the type from other tags (journal, conference,
	// thesis and report institutions) and otherwise uses DefaultType.
	TypeModeInferred TypeMode = iota
	// TypeModeLegacy always falls back to inproceedings. Libraries built with
	// older versions of this tool rely on it.
	TypeModeLegacy
)

const (
	// DefaultType is the entry type of pages that identify nothing.
	DefaultType = "misc"
	// LegacyDefaultType is the fallback of TypeModeLegacy.
	LegacyDefaultType = "inproceedings"
)

var (
	yearRegex = regexp.MustCompile(`[0-9]{4}`)

	typeAttrs = []string{"type", "article_type"}
	dateAttrs = []string{"date", "publication_date", "online_date", "cover_date"}

	// typeHints maps a tag whose presence implies an entry type.
	typeHints = []struct {
		attr      string
		entryType string
	}{
		{"journal", "article"},
		{"journal_title", "article"},
		{"conference_title", "inproceedings"},
		{"dissertation_institution", "phdthesis"},
		{"technical_report_institution", "techreport"},
	}
)

// Resolvers maps record field names to the resolver that produces them.
type Resolvers map[string]Resolver

// DefaultResolvers returns a resolver for every field the extractor emits.
func DefaultResolvers(mode TypeMode) Resolvers {
	return Resolvers{
		"author":    ResolveAuthor,
		"doi":       ResolveDOI,
		"journal":   ResolveJournal,
		"number":    ResolveNumber,
		"pages":     ResolvePages,
		"publisher": ResolvePublisher,
		"title":     ResolveTitle,
		"type":      TypeResolver(mode),
		"volume":    ResolveVolume,
		"year":      ResolveYear,
	}
}

// Attributes returns the field names in sorted order.
func (r Resolvers) Attributes() []string {
	attrs := make([]string, 0, len(r))
	for attr := range r {
		attrs = append(attrs, attr)
	}
	sort.Strings(attrs)
	return attrs
}

// ResolveAuthor joins all authors with " and " in "Surname, Given" form.
// Names that already contain a comma are assumed to be in that form, but only
// if every name does; otherwise each name is split at its last space.
//
// Known limitation: multi-word surnames ("van der Berg") and suffixes ("Jr")
// are split incorrectly.
func ResolveAuthor(meta RawMetadata, _, _ string) (string, bool) {
	names := meta["author"]
	if len(names) == 0 {
		return "", false
	}

	allCommaForm := true
	for _, name := range names {
		if !strings.Contains(name, ",") {
			allCommaForm = false
			break
		}
	}
	if allCommaForm {
		return strings.Join(names, " and "), true
	}

	authors := make([]string, 0, len(names))
	for _, name := range names {
		parts := strings.Fields(name)
		switch len(parts) {
		case 0:
			continue
		case 1:
			authors = append(authors, parts[0])
		default:
			last := len(parts) - 1
			authors = append(authors, parts[last]+", "+strings.Join(parts[:last], " "))
		}
	}
	if len(authors) == 0 {
		return "", false
	}
	return strings.Join(authors, " and "), true
}

// ResolveDOI passes citation_doi through.
func ResolveDOI(meta RawMetadata, _, _ string) (string, bool) {
	return meta.First("doi")
}

// ResolveJournal passes citation_journal through.
func ResolveJournal(meta RawMetadata, _, _ string) (string, bool) {
	return meta.First("journal")
}

// ResolveNumber uses citation_number, then citation_issue.
func ResolveNumber(meta RawMetadata, _, _ string) (string, bool) {
	return firstOf(meta, "number", "issue")
}

// ResolvePages joins first and last page as "first--last". Single-page
// articles (equal first and last page) get no pages field.
func ResolvePages(meta RawMetadata, _, _ string) (string, bool) {
	first, ok := meta.First("firstpage")
	if !ok {
		return "", false
	}
	last, ok := meta.First("lastpage")
	if !ok || first == last {
		return "", false
	}
	return first + "--" + last, true
}

// ResolvePublisher passes citation_publisher through.
func ResolvePublisher(meta RawMetadata, _, _ string) (string, bool) {
	return meta.First("publisher")
}

// ResolveTitle passes citation_title through.
func ResolveTitle(meta RawMetadata, _, _ string) (string, bool) {
	return meta.First("title")
}

// ResolveVolume passes citation_volume through.
func ResolveVolume(meta RawMetadata, _, _ string) (string, bool) {
	return meta.First("volume")
}

// ResolveType is the TypeModeInferred type resolver.
func ResolveType(meta RawMetadata, pageURL, page string) (string, bool) {
	return TypeResolver(TypeModeInferred)(meta, pageURL, page)
}

// TypeResolver returns a resolver that always produces an entry type.
// citation_type and citation_article_type are checked in that order; a value
// of "jour" or one mentioning "article" means article. Without a match the
// mode decides the fallback.
func TypeResolver(mode TypeMode) Resolver {
	return func(meta RawMetadata, _, _ string) (string, bool) {
		for _, attr := range typeAttrs {
			val, ok := meta.First(attr)
			if !ok {
				continue
			}
			lower := strings.ToLower(val)
			if lower == "jour" || strings.Contains(lower, "article") {
				return "article", true
			}
		}

		if mode == TypeModeLegacy {
			return LegacyDefaultType, true
		}
		for _, hint := range typeHints {
			if meta.Has(hint.attr) {
				return hint.entryType, true
			}
		}
		return DefaultType, true
	}
}

// ResolveYear takes the first four-digit run from the first date tag that has
// one, trying citation_date, publication_date, online_date and cover_date.
func ResolveYear(meta RawMetadata, _, _ string) (string, bool) {
	for _, attr := range dateAttrs {
		val, ok := meta.First(attr)
		if !ok {
			continue
		}
		if year := yearRegex.FindString(val); year != "" {
			return year, true
		}
	}
	return "", false
}

func firstOf(meta RawMetadata, attrs ...string) (string, bool) {
	for _, attr := range attrs {
		if val, ok := meta.First(attr); ok {
			return val, true
		}
	}
	return "", false
}
