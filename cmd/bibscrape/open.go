package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/pdf"
)

func init() {
	rootCmd.AddCommand(openCmd)
}

var openCmd = &cobra.Command{
	Use:   "open <key>...",
	Short: "Open entries' PDFs in the configured viewer",
	Long: `Open the filed PDF of each entry in the reader set by pdf_reader.

Examples:
  bibscrape open Public2019DeepLearning
  bibscrape open Public2019DeepLearning Doe2020Graphs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOpen,
}

// OpenedPaper is a PDF that was opened.
type OpenedPaper struct {
	Key  string `json:"key"`
	Path string `json:"path"`
}

// OpenError is a key whose PDF could not be opened.
type OpenError struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

// OpenResult is the response for the open command.
type OpenResult struct {
	Opened []OpenedPaper `json:"opened,omitempty"`
	Errors []OpenError   `json:"errors,omitempty"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	opener := pdf.NewOpener(cfg.PDFReader)

	var result OpenResult
	for _, key := range args {
		if !lib.Contains(key) {
			result.Errors = append(result.Errors, OpenError{Key: key, Error: library.ErrNotFound.Error()})
			continue
		}
		p := library.LocalPath(cfg.PapersDir, key)
		if err := opener.Open(p); err != nil {
			result.Errors = append(result.Errors, OpenError{Key: key, Error: err.Error()})
			continue
		}
		result.Opened = append(result.Opened, OpenedPaper{Key: key, Path: p})
	}

	if humanOutput {
		for _, o := range result.Opened {
			fmt.Printf("  ✓ %s: %s\n", o.Key, o.Path)
		}
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "  ✗ %s: %s\n", e.Key, e.Error)
		}
	} else {
		outputJSON(result)
	}

	if len(result.Opened) == 0 {
		os.Exit(ExitNotFound)
	}
	return nil
}

// fileExists reports whether path names an existing file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
