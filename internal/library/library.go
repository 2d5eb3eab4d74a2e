// Package library manages a flat .bib file of citation records and the paper
// PDFs that go with them.
package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/bibscrape/internal/bibtex"
)

// ErrNotFound is returned when a key is not in the library.
var ErrNotFound = errors.New("not in library")

// unknownKey is the key the extractor gives records it cannot name.
const unknownKey = "FIXME"

// Library is an in-memory view of a .bib file.
type Library struct {
	path   string
	papers map[string]*bibtex.Record
}

// Open reads the library at path. A missing file is an empty library.
// Duplicate keys in the file are an error.
func Open(path string) (*Library, error) {
	records, err := bibtex.ParseFile(path)
	if err != nil {
		return nil, err
	}

	lib := &Library{path: path, papers: make(map[string]*bibtex.Record, len(records))}
	for _, r := range records {
		if _, dup := lib.papers[r.Key]; dup {
			return nil, fmt.Errorf("reading %s: duplicate key %s", path, r.Key)
		}
		lib.papers[r.Key] = r
	}
	return lib, nil
}

// Path returns the file the library was read from.
func (l *Library) Path() string {
	return l.path
}

// Len returns the number of records.
func (l *Library) Len() int {
	return len(l.papers)
}

// Contains reports whether key is in the library.
func (l *Library) Contains(key string) bool {
	_, ok := l.papers[key]
	return ok
}

// Get returns the record with the given key.
func (l *Library) Get(key string) (*bibtex.Record, error) {
	r, ok := l.papers[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return r, nil
}

// Keys returns all keys in sorted order.
func (l *Library) Keys() []string {
	keys := make([]string, 0, len(l.papers))
	for k := range l.papers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Records returns all records sorted by key.
func (l *Library) Records() []*bibtex.Record {
	keys := l.Keys()
	records := make([]*bibtex.Record, len(keys))
	for i, k := range keys {
		records[i] = l.papers[k]
	}
	return records
}

// FindDOI returns the key of the first record, in key order, whose DOI
// matches doi case-insensitively.
func (l *Library) FindDOI(doi string) (string, bool) {
	if doi == "" {
		return "", false
	}
	for _, r := range l.Records() {
		if strings.EqualFold(r.Fields["doi"], doi) {
			return r.Key, true
		}
	}
	return "", false
}

// Add stores a copy of r under a key no other record uses and returns that
// key. A taken key gets -2, -3, ... appended; records without a proper key
// are always numbered so they stand out.
func (l *Library) Add(r *bibtex.Record) string {
	rec := r.Clone()
	rec.Key = l.UniqueKey(rec.Key)
	l.papers[rec.Key] = rec
	return rec.Key
}

// UniqueKey returns base if it is free, otherwise the first free base-N.
func (l *Library) UniqueKey(base string) string {
	if base == "" {
		base = unknownKey
	}
	if base != unknownKey && !l.Contains(base) {
		return base
	}

	// Start at 2: base is taken, so the first duplicate becomes base-2.
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !l.Contains(candidate) {
			return candidate
		}
	}
}

// Remove deletes a record.
func (l *Library) Remove(key string) error {
	if !l.Contains(key) {
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	delete(l.papers, key)
	return nil
}

// Save writes the library back to its file, entries sorted by key and
// separated by blank lines. The file is replaced atomically.
func (l *Library) Save() error {
	text, err := bibtex.MarshalList(l.Records())
	if err != nil {
		return fmt.Errorf("encoding library: %w", err)
	}
	if text != "" {
		text += "\n"
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("creating library directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".library-*.bib")
	if err != nil {
		return fmt.Errorf("creating temporary library file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("writing library: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing library: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replacing library: %w", err)
	}
	return nil
}

// LocalPath returns where the PDF for key lives under papersDir:
// papersDir/<first letter, lower-cased>/<key>.pdf.
func LocalPath(papersDir, key string) string {
	return filepath.Join(papersDir, shard(key), key+".pdf")
}

// ErrPDFExists is returned when a PDF is already filed under a key.
var ErrPDFExists = errors.New("PDF already filed")

// FilePDF copies src to LocalPath(papersDir, key) and returns that path.
// An existing file is never overwritten.
func FilePDF(papersDir, key, src string) (string, error) {
	dst := LocalPath(papersDir, key)
	if _, err := os.Stat(dst); err == nil {
		return dst, fmt.Errorf("%s: %w", dst, ErrPDFExists)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("creating papers directory: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	return dst, nil
}

// RemotePath returns the PDF path for key under a remote directory.
func RemotePath(remoteDir, key string) string {
	return strings.TrimRight(remoteDir, "/") + "/" + shard(key) + "/" + key + ".pdf"
}

// RemoteURL returns the public URL of the mirrored PDF for key.
func RemoteURL(host, key string) string {
	return "https://" + host + RemotePath("/papers", key)
}

// shard is the lower-cased first letter of key.
func shard(key string) string {
	r, _ := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError {
		return "_"
	}
	return string(unicode.ToLower(r))
}
