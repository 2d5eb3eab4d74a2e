package highwire

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibscrape/internal/bibtex"
)

// KeyUnknown is the citation key of records missing author, year or title.
const KeyUnknown = "FIXME"

// titleKeyWords is how many title words go into a citation key.
const titleKeyWords = 3

// CitationKey builds "SurnameYearTitleWords": the first author's surname, the
// year and the first three title words with their first letters upper-cased.
// "Public, Jane Q", "2019", "A Study of Things" gives "Public2019AStudyOf".
// Keys are not unique; callers storing records resolve collisions.
func CitationKey(r *bibtex.Record) string {
	return citationKey(r, isWordRune)
}

// LegacyCitationKey is CitationKey with only ASCII letters and digits counting
// as title word characters, so "Über Graphen" contributes "BerGraphen". It
// reproduces the keys of libraries built by older versions of this tool.
func LegacyCitationKey(r *bibtex.Record) string {
	return citationKey(r, isASCIIWordRune)
}

func citationKey(r *bibtex.Record, isWord func(rune) bool) string {
	if !r.Has("author", "year", "title") {
		return KeyUnknown
	}

	author := r.Fields["author"]
	surname, _, _ := strings.Cut(author, ",")

	var b strings.Builder
	b.WriteString(surname)
	b.WriteString(r.Fields["year"])
	for _, word := range titleWords(r.Fields["title"], titleKeyWords, isWord) {
		b.WriteString(capitalize(word))
	}
	return keyCleaner.Replace(strings.Join(strings.Fields(b.String()), ""))
}

// keyCleaner drops characters that cannot appear in a key line.
var keyCleaner = strings.NewReplacer("{", "", "}", "", ",", "")

// titleWords returns up to n words of title, treating every character that
// isWord rejects as a separator.
func titleWords(title string, n int, isWord func(rune) bool) []string {
	words := strings.FieldsFunc(title, func(r rune) bool {
		return !isWord(r)
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isASCIIWordRune(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z'
}

// capitalize upper-cases the first letter and keeps the rest as is.
func capitalize(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}
