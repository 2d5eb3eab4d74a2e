// Package main provides the bibscrape CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/config"
	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/storage"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// verbose enables debug logging on stderr
	verbose bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bibscrape",
	Short: "Scrape BibTeX citations from paper pages and PDFs",
	Long: `bibscrape builds BibTeX entries from the citation_* meta tags of
publisher pages, and finds the page for a local PDF by its DOI or a web
search on its title and authors.

Entries can be kept in a BibTeX library file, with PDFs filed under a
papers directory and mirrored to a web host over SSH.

All commands except bibtex output JSON by default; use --human for text.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		logger := newLogger(os.Stderr, verbose)
		cmd.SetContext(logger.WithContext(cmd.Context()))
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and decisions to stderr")
	rootCmd.Version = Version
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustOpenLibrary reads the library file, exits on error.
func mustOpenLibrary(cfg *config.Config) *library.Library {
	lib, err := library.Open(cfg.LibraryPath)
	if err != nil {
		exitWithError(ExitDataError, "opening library: %v", err)
	}
	return lib
}

// mustOpenIndex opens the search index, rebuilding it first when the library
// file is newer. The caller is responsible for calling Close() on the DB.
func mustOpenIndex(lib *library.Library) *storage.DB {
	dbPath := config.DBPath()
	stale := indexStale(lib.Path(), dbPath)

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	db, err := storage.OpenDB(dbPath)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if stale {
		if _, err := db.RebuildFromLibrary(lib.Records()); err != nil {
			db.Close()
			exitWithError(ExitError, "rebuilding index: %v", err)
		}
	}
	return db
}

// indexStale reports whether the index is missing or older than the library.
func indexStale(libraryPath, dbPath string) bool {
	dbInfo, err := os.Stat(dbPath)
	if err != nil {
		return true
	}
	libInfo, err := os.Stat(libraryPath)
	if err != nil {
		return false
	}
	return libInfo.ModTime().After(dbInfo.ModTime())
}
