package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/library"
)

var pathRemote bool

func init() {
	pathCmd.Flags().BoolVar(&pathRemote, "remote", false, "Print the public URL of the mirrored PDF instead")
	rootCmd.AddCommand(pathCmd)
}

var pathCmd = &cobra.Command{
	Use:   "path <key>...",
	Short: "Print where the PDF of an entry is kept",
	Long: `Print the local path of each entry's PDF, or its public URL on the
remote mirror with --remote. Keys must be in the library.

Examples:
  bibscrape path Public2019DeepLearning
  bibscrape path --remote Public2019DeepLearning`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPath,
}

// PathResult is one entry of the path command's response.
type PathResult struct {
	Key    string `json:"key"`
	Path   string `json:"path"`
	Exists *bool  `json:"exists,omitempty"`
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)

	if pathRemote && cfg.RemoteHost == "" {
		exitWithError(ExitConfigError, "remote_host not configured\n  Hint: Use 'bibscrape config remote_host example.org'")
	}

	var results []PathResult
	for _, key := range args {
		if !lib.Contains(key) {
			exitWithError(ExitNotFound, "%s: %v", key, library.ErrNotFound)
		}
		if pathRemote {
			results = append(results, PathResult{Key: key, Path: library.RemoteURL(cfg.RemoteHost, key)})
			continue
		}
		p := library.LocalPath(cfg.PapersDir, key)
		exists := fileExists(p)
		results = append(results, PathResult{Key: key, Path: p, Exists: &exists})
	}

	if humanOutput {
		for _, r := range results {
			fmt.Println(r.Path)
		}
	} else {
		outputJSON(results)
	}
	return nil
}
