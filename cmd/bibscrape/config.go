package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values.

With no arguments, shows the effective configuration: the config file with
defaults, BIBSCRAPE_LIBRARY and BIBSCRAPE_PAPERS applied. Setting a value
writes the config file and leaves environment overrides out of it.

Usage:
  bibscrape config                             # Show all config
  bibscrape config remote_host                 # Get specific value
  bibscrape config remote_host example.org     # Set value
  bibscrape config pdf-reader zathura          # Dashes work too

Keys:
  library_path         BibTeX library file (default ~/pim/library.bib)
  papers_dir           Directory of filed PDFs (default ~/papers)
  remote_host          Host serving https://<host>/papers/
  remote_dir           Directory on the host that holds the PDFs
  remote_user          SSH user on the host (default: current user)
  remote_proxy_jump    SSH jump host
  pdf_reader           PDF reader (system, skim, zathura, evince, okular)
  user_agent           User-Agent sent with page requests
  requests_per_second  Page request rate limit (0 for none)
  legacy_type_default  Use inproceedings instead of inferring the entry type`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	// No args: show all config
	if len(args) == 0 {
		cfg := mustLoadConfig()
		values := make(map[string]string, len(config.Keys))
		for _, key := range config.Keys {
			values[key], _ = cfg.Get(key)
		}
		if humanOutput {
			for _, key := range config.Keys {
				fmt.Printf("%-20s %s\n", key+":", values[key])
			}
			fmt.Printf("%-20s %s\n", "(file):", config.Path())
		} else {
			outputJSON(values)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		cfg := mustLoadConfig()
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value in the file, not the effective config
	path := config.Path()
	cfg, err := config.ReadFile(path)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(path); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	config.ResetCache()

	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{Status: "updated", Key: key, Value: value})
	}
	return nil
}

// normalizeKey accepts dashed key names (pdf-reader) as well as the file's
// underscored ones.
func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(key), "-", "_")
}
