package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/bibtex"
)

var (
	getDOI    bool
	getBibtex bool
)

func init() {
	getCmd.Flags().BoolVar(&getDOI, "doi", false, "Look the argument up as a DOI instead of a key")
	getCmd.Flags().BoolVar(&getBibtex, "bibtex", false, "Print the BibTeX entry")
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a single library entry by key",
	Long: `Get a single library entry by its key, or by DOI with --doi.

Examples:
  bibscrape get Public2019DeepLearning
  bibscrape get --doi 10.1038/nature14539 --bibtex`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	var rec *bibtex.Record
	if getDOI {
		db := mustOpenIndex(lib)
		defer db.Close()

		found, err := db.GetByDOI(args[0])
		if err != nil {
			exitWithError(ExitError, "looking up DOI: %v", err)
		}
		if found == nil {
			exitWithError(ExitNotFound, "no entry with DOI %s", args[0])
		}
		rec = found
	} else {
		found, err := lib.Get(args[0])
		if err != nil {
			exitWithError(exitCodeFor(err), "%v", err)
		}
		rec = found
	}

	entry := rec.String()
	switch {
	case getBibtex:
		fmt.Println(entry)
	case humanOutput:
		printRecordDetail(rec)
	default:
		outputJSON(RecordResponse{Record: rec, BibTeX: entry})
	}
	return nil
}
