package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/bibtex"
)

var (
	searchLimit int
	searchField string
)

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	searchCmd.Flags().StringVarP(&searchField, "field", "f", "", "Search one field only: author, title or journal")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>...",
	Short: "Search library entries by keyword",
	Long: `Full-text search over the key, title, authors, journal and year of every
library entry. Words must all match; punctuation makes the query a phrase.

Query Syntax:
  Plain text     - Searches every indexed field
  author:name    - Search author names only
  title:text     - Search title only
  journal:text   - Search journal only

Authors are indexed as "First Last", so "Jane Public" matches
"Public, Jane Q".

Examples:
  bibscrape search deep learning
  bibscrape search author:Public
  bibscrape search --field title "graph neural"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	db := mustOpenIndex(lib)
	defer db.Close()

	query := strings.Join(args, " ")
	field := searchField
	if field == "" {
		if prefix, rest, ok := strings.Cut(query, ":"); ok && isSearchField(prefix) {
			field, query = prefix, rest
		}
	}

	var records []*bibtex.Record
	var err error
	if field != "" {
		records, err = db.SearchField(field, query, searchLimit)
	} else {
		records, err = db.Search(query, searchLimit)
	}
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			outputHuman("No entries match %q\n", query)
			return nil
		}
		printRecordSummary(records)
	} else {
		if records == nil {
			records = []*bibtex.Record{}
		}
		outputJSON(records)
	}
	return nil
}

func isSearchField(s string) bool {
	switch s {
	case "author", "title", "journal":
		return true
	}
	return false
}
