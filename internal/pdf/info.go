// Package pdf reads the metadata of paper PDFs and opens them in a viewer.
package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Info is the subset of a PDF's document information dictionary used to find
// the paper online.
type Info struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Keywords string `json:"keywords,omitempty"`
	DOI      string `json:"doi,omitempty"`
}

// ReadInfo reads the document information dictionary of a PDF.
func ReadInfo(filePath string) (Info, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer f.Close()

	dict := r.Trailer().Key("Info")
	if dict.IsNull() {
		return Info{}, nil
	}

	return Info{
		Title:    strings.TrimSpace(dict.Key("Title").Text()),
		Author:   strings.TrimSpace(dict.Key("Author").Text()),
		Subject:  strings.TrimSpace(dict.Key("Subject").Text()),
		Keywords: strings.TrimSpace(dict.Key("Keywords").Text()),
	}, nil
}

// ReadMetadata returns the info dictionary with DOI set from InfoDOI. Page
// content is never read.
func ReadMetadata(filePath string) (Info, error) {
	info, err := ReadInfo(filePath)
	if err != nil {
		return Info{}, err
	}
	info.DOI = InfoDOI(info)
	return info, nil
}

// SearchTerms turns PDF metadata into quoted web search terms: the title,
// unless it is a placeholder left by the authoring tool, and each author.
func SearchTerms(info Info) []string {
	var terms []string

	if title := strings.TrimSpace(info.Title); title != "" && !isPlaceholderTitle(title) {
		terms = append(terms, quote(title))
	}

	for _, group := range strings.Split(info.Author, " and ") {
		for _, name := range strings.Split(group, ",") {
			if name = strings.TrimSpace(name); name != "" {
				terms = append(terms, quote(name))
			}
		}
	}
	return terms
}

// SearchQuery joins SearchTerms with spaces.
func SearchQuery(info Info) string {
	return strings.Join(SearchTerms(info), " ")
}

// isPlaceholderTitle reports titles that describe the file, not the paper.
func isPlaceholderTitle(title string) bool {
	lower := strings.ToLower(title)
	return strings.HasPrefix(lower, "doi:") ||
		strings.Contains(lower, "microsoft word") ||
		strings.HasSuffix(lower, ".pdf") ||
		strings.HasSuffix(lower, ".dvi") ||
		lower == "untitled"
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, "") + `"`
}
