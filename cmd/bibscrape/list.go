package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/bibtex"
)

var listLimit int

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "Maximum number of entries (0 for all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List library entries",
	Long: `List library entries ordered by key.

Examples:
  bibscrape list
  bibscrape list --limit 20 --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	db := mustOpenIndex(lib)
	defer db.Close()

	records, err := db.ListAll(listLimit)
	if err != nil {
		exitWithError(ExitError, "listing entries: %v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			outputHuman("Library is empty: %s\n", lib.Path())
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
