package bibtex

import (
	"errors"
	"fmt"
	"strings"
)

// Indent prefixes every field line.
const Indent = "    "

// ErrUnsafeValue is returned when a value cannot be written without breaking
// the line-oriented entry format.
var ErrUnsafeValue = errors.New("value breaks entry format")

// Marshal renders a record as
//
//	@type {key,
//	    field = {value},
//	}
//
// with fields sorted by name and no trailing newline. Values containing line
// breaks or unbalanced braces are rejected so the output always parses back.
func Marshal(r *Record) (string, error) {
	if r.Type == "" {
		return "", fmt.Errorf("record %q has no entry type", r.Key)
	}
	if r.Key == "" || strings.ContainsAny(r.Key, ", {}\n") {
		return "", fmt.Errorf("%w: key %q", ErrUnsafeValue, r.Key)
	}
	for _, name := range r.FieldNames() {
		if !SafeValue(r.Fields[name]) {
			return "", fmt.Errorf("%w: field %s of %s", ErrUnsafeValue, name, r.Key)
		}
	}
	return r.String(), nil
}

// String renders the record without validating it.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("@%s {%s,\n", r.Type, r.Key))
	for _, name := range r.FieldNames() {
		b.WriteString(fmt.Sprintf("%s%s = {%s},\n", Indent, name, r.Fields[name]))
	}
	b.WriteString("}")
	return b.String()
}

// MarshalList renders several records separated by blank lines.
func MarshalList(records []*Record) (string, error) {
	entries := make([]string, 0, len(records))
	for _, r := range records {
		s, err := Marshal(r)
		if err != nil {
			return "", err
		}
		entries = append(entries, s)
	}
	return strings.Join(entries, "\n\n"), nil
}

// SafeValue reports whether v can be written inside a field's braces.
func SafeValue(v string) bool {
	if strings.ContainsAny(v, "\r\n") {
		return false
	}
	depth := 0
	for _, c := range v {
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}

// Sanitize makes v safe to marshal: line breaks and runs of whitespace become
// single spaces, and braces that have no partner are dropped.
func Sanitize(v string) string {
	v = strings.Join(strings.Fields(v), " ")
	if SafeValue(v) {
		return v
	}

	// Find the unmatched braces, then copy everything else.
	drop := make(map[int]bool)
	var open []int
	for i, c := range v {
		switch c {
		case '{':
			open = append(open, i)
		case '}':
			if len(open) == 0 {
				drop[i] = true
			} else {
				open = open[:len(open)-1]
			}
		}
	}
	for _, i := range open {
		drop[i] = true
	}

	var b strings.Builder
	for i, c := range v {
		if !drop[i] {
			b.WriteRune(c)
		}
	}
	return strings.TrimSpace(b.String())
}
