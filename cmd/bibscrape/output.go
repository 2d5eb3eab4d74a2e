package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/bibscrape/internal/bibtex"
	"github.com/matsen/bibscrape/internal/fetch"
	"github.com/matsen/bibscrape/internal/highwire"
	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/lookup"
)

// Constants for output formatting.
const (
	DefaultSearchLimit = 50 // Default limit for search/list commands

	ListTitleMaxLen = 60 // Used in list and search output
	TextWrapWidth   = 60 // Standard text wrap width
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitCodeFor maps an error to the exit code that describes it.
func exitCodeFor(err error) int {
	var statusErr *fetch.StatusError
	switch {
	case errors.Is(err, library.ErrNotFound), errors.Is(err, lookup.ErrNoCandidates):
		return ExitNotFound
	case errors.Is(err, fetch.ErrNetworkError), errors.As(err, &statusErr):
		return ExitNetworkError
	case errors.Is(err, lookup.ErrUnsupportedInput),
		errors.Is(err, highwire.ErrNoDomain),
		errors.Is(err, bibtex.ErrUnsafeValue),
		errors.Is(err, os.ErrNotExist),
		bibtex.IsSyntaxError(err):
		return ExitDataError
	default:
		return ExitError
	}
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RecordResponse is a record plus its rendered entry.
type RecordResponse struct {
	*bibtex.Record
	BibTeX string `json:"bibtex"`
}

// printRecordSummary prints one line per record for list and search.
func printRecordSummary(records []*bibtex.Record) {
	for _, r := range records {
		title := r.Fields["title"]
		if title == "" {
			title = "(untitled)"
		}
		outputHuman("%-32s %s\n", r.Key, truncateString(title, ListTitleMaxLen))
	}
}

// printRecordDetail prints a record as labelled lines.
func printRecordDetail(r *bibtex.Record) {
	fmt.Printf("%s (%s)\n", r.Key, r.Type)
	fmt.Println(strings.Repeat("=", len(r.Key)+len(r.Type)+3))
	for _, name := range r.FieldNames() {
		fmt.Printf("%-10s %s\n", name+":", wrapText(r.Fields[name], TextWrapWidth, strings.Repeat(" ", 11)))
	}
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	words := strings.Fields(text)
	var currentLine strings.Builder

	for _, word := range words {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}
