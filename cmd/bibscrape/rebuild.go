package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/config"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index from the library file",
	Long: `Rebuild the SQLite search index from the library file.

The index is rebuilt automatically when the library file changes; use this
if the index becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Index   string `json:"index"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	db := mustOpenIndex(lib)
	defer db.Close()

	count, err := db.RebuildFromLibrary(lib.Records())
	if err != nil {
		exitWithError(ExitDataError, "rebuilding index: %v", err)
	}

	if humanOutput {
		outputHuman("Indexed %d entries from %s\n", count, lib.Path())
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Entries: count, Index: config.DBPath()})
	}
	return nil
}
