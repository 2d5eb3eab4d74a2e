// Package bibtex holds the citation record type and its canonical text form.
package bibtex

import (
	"sort"
)

// Record is one citation entry: an entry type, a citation key and a set of
// non-empty fields.
type Record struct {
	Type   string            `json:"type"`
	Key    string            `json:"key"`
	Fields map[string]string `json:"fields"`
}

// NewRecord creates an empty record of the given type.
func NewRecord(entryType string) *Record {
	return &Record{
		Type:   entryType,
		Fields: make(map[string]string),
	}
}

// Get returns a field value and whether it is present.
func (r *Record) Get(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// Set stores a field. Empty values remove the field instead.
func (r *Record) Set(name, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	if value == "" {
		delete(r.Fields, name)
		return
	}
	r.Fields[name] = value
}

// Has reports whether all named fields are present.
func (r *Record) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := r.Fields[name]; !ok {
			return false
		}
	}
	return true
}

// FieldNames returns the field names in lexicographic order.
func (r *Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{Type: r.Type, Key: r.Key, Fields: make(map[string]string, len(r.Fields))}
	for k, v := range r.Fields {
		c.Fields[k] = v
	}
	return c
}
