package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matsen/bibscrape/internal/bibtex"
	"github.com/matsen/bibscrape/internal/fetch"
	"github.com/matsen/bibscrape/internal/highwire"
	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/lookup"
)

func TestResolveAll_OrderAndBound(t *testing.T) {
	inputs := []string{"a", "b", "c", "d", "e", "f"}
	var inFlight, peak int32

	resolve := func(_ context.Context, in string) (*bibtex.Record, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)

		if in == "c" {
			return nil, errors.New("boom")
		}
		r := bibtex.NewRecord("misc")
		r.Key = strings.ToUpper(in)
		return r, nil
	}

	results := resolveAll(context.Background(), inputs, 2, resolve)

	if len(results) != len(inputs) {
		t.Fatalf("resolveAll() returned %d results, want %d", len(results), len(inputs))
	}
	for i, r := range results {
		if r.Input != inputs[i] {
			t.Errorf("results[%d].Input = %q, want %q", i, r.Input, inputs[i])
		}
		if r.Input == "c" {
			if r.Err == nil {
				t.Error("results for c should carry the error")
			}
			continue
		}
		if r.Record.Key != strings.ToUpper(inputs[i]) {
			t.Errorf("results[%d].Key = %q", i, r.Record.Key)
		}
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not in library", fmt.Errorf("x: %w", library.ErrNotFound), ExitNotFound},
		{"no candidates", fmt.Errorf("x: %w", lookup.ErrNoCandidates), ExitNotFound},
		{"network", fmt.Errorf("%w: refused", fetch.ErrNetworkError), ExitNetworkError},
		{"status", fmt.Errorf("fetching: %w", &fetch.StatusError{URL: "u", StatusCode: 403}), ExitNetworkError},
		{"unsupported input", fmt.Errorf("x: %w", lookup.ErrUnsupportedInput), ExitDataError},
		{"no domain", fmt.Errorf("x: %w", highwire.ErrNoDomain), ExitDataError},
		{"missing file", fmt.Errorf("x: %w", os.ErrNotExist), ExitDataError},
		{"syntax", &bibtex.SyntaxError{Line: 3, Msg: "bad"}, ExitDataError},
		{"other", errors.New("other"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func resolved(input, key, doi string) resolution {
	r := bibtex.NewRecord("article")
	r.Key = key
	r.Set("title", "T")
	r.Set("doi", doi)
	return resolution{Input: input, Record: r}
}

func TestAddOne(t *testing.T) {
	lib, err := library.Open(filepath.Join(t.TempDir(), "library.bib"))
	if err != nil {
		t.Fatal(err)
	}
	papers := t.TempDir()

	src := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(src, []byte("%PDF"), 0644); err != nil {
		t.Fatal(err)
	}

	first := addOne(lib, resolved("https://a.org/1", "Doe2020Graphs", "10.1/a"), papers)
	if first.Status != "added" || first.Key != "Doe2020Graphs" || first.PDF != "" {
		t.Errorf("first = %+v", first)
	}

	dup := addOne(lib, resolved("https://b.org/1", "Doe2020GraphsAgain", "10.1/A"), papers)
	if dup.Status != "duplicate" || dup.Key != "Doe2020Graphs" {
		t.Errorf("dup = %+v", dup)
	}

	pdfEntry := addOne(lib, resolved(src, "Doe2020Graphs", "10.1/b"), papers)
	if pdfEntry.Status != "added" || pdfEntry.Key != "Doe2020Graphs-2" {
		t.Errorf("pdfEntry = %+v", pdfEntry)
	}
	if !fileExists(library.LocalPath(papers, "Doe2020Graphs-2")) {
		t.Error("PDF argument was not filed")
	}

	failed := addOne(lib, resolution{Input: "x.pdf", Err: lookup.ErrNoCandidates}, papers)
	if failed.Status != "failed" || failed.Error == "" {
		t.Errorf("failed = %+v", failed)
	}

	if lib.Len() != 2 {
		t.Errorf("library has %d entries, want 2", lib.Len())
	}
}

func TestAddOne_PDFNotFiled(t *testing.T) {
	lib, err := library.Open(filepath.Join(t.TempDir(), "library.bib"))
	if err != nil {
		t.Fatal(err)
	}
	gone := filepath.Join(t.TempDir(), "gone.pdf")

	entry := addOne(lib, resolved(gone, "Doe2020Graphs", "10.1/a"), t.TempDir())
	if entry.Status != StatusAddedNoPDF {
		t.Errorf("Status = %q, want %q", entry.Status, StatusAddedNoPDF)
	}
	if entry.Key != "Doe2020Graphs" || entry.Error == "" || entry.PDF != "" {
		t.Errorf("entry = %+v", entry)
	}
	if lib.Len() != 1 {
		t.Errorf("library has %d entries, want 1", lib.Len())
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		"pdf-reader":          "pdf_reader",
		"PDF_Reader":          "pdf_reader",
		"requests_per_second": "requests_per_second",
	}
	for in, want := range tests {
		if got := normalizeKey(in); got != want {
			t.Errorf("normalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestIndexStale(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "library.bib")
	db := filepath.Join(dir, "library.db")

	if err := os.WriteFile(lib, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if !indexStale(lib, db) {
		t.Error("missing index should be stale")
	}

	if err := os.WriteFile(db, nil, 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(lib, old, old); err != nil {
		t.Fatal(err)
	}
	if indexStale(lib, db) {
		t.Error("index newer than library should not be stale")
	}

	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(lib, future, future); err != nil {
		t.Fatal(err)
	}
	if !indexStale(lib, db) {
		t.Error("index older than library should be stale")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	quiet := newLogger(&buf, false)
	quiet.Debug().Msg("hidden")
	quiet.Warn().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Errorf("quiet logger output = %q", out)
	}

	buf.Reset()
	loud := newLogger(&buf, true)
	loud.Debug().Str("url", "https://a.org").Msg("fetched page")
	if !strings.Contains(buf.String(), "fetched page") {
		t.Errorf("verbose logger output = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("one two three four", 9, "  ")
	want := "one two\n  three\n  four"
	if got != want {
		t.Errorf("wrapText() = %q, want %q", got, want)
	}
	if got := truncateString("abcdefghij", 8); got != "abcde..." {
		t.Errorf("truncateString() = %q", got)
	}
	if got := truncateString("Über größere Graphen", 8); got != "Über ..." {
		t.Errorf("truncateString(non-ascii) = %q", got)
	}
	if got := truncateString("Über", 8); got != "Über" {
		t.Errorf("truncateString(short non-ascii) = %q", got)
	}
}
