package main

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/bibtex"
	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/lookup"
)

var (
	addDryRun bool
	addNoFile bool
)

func init() {
	addCmd.Flags().BoolVar(&addDryRun, "dry-run", false, "Show what would be added without writing anything")
	addCmd.Flags().BoolVar(&addNoFile, "no-file", false, "Do not copy PDF arguments into the papers directory")
	addCmd.Flags().IntVarP(&bibtexJobs, "jobs", "j", DefaultJobs, "Number of inputs to resolve in parallel")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <url|pdf>...",
	Short: "Add entries for paper pages or PDFs to the library",
	Long: `Resolve each argument like the bibtex command and add the entry to the
library file. Keys already in use get -2, -3, ... appended; entries whose
DOI is already in the library are skipped. PDF arguments are copied to
<papers_dir>/<first letter>/<key>.pdf unless --no-file is given.

Examples:
  bibscrape add https://www.nature.com/articles/nature14539
  bibscrape add ~/Downloads/paper.pdf --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

// StatusAddedNoPDF marks an entry saved to the library whose PDF could not be
// copied into the papers directory.
const StatusAddedNoPDF = "added_no_pdf"

// AddedEntry reports what happened to one input.
type AddedEntry struct {
	Input  string `json:"input"`
	Key    string `json:"key,omitempty"`
	Status string `json:"status"` // added, added_no_pdf, duplicate, failed
	PDF    string `json:"pdf,omitempty"`
	Error  string `json:"error,omitempty"`
}

// AddResponse is the response for the add command.
type AddResponse struct {
	DryRun  bool         `json:"dry_run"`
	Entries []AddedEntry `json:"entries"`
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	lib := mustOpenLibrary(cfg)
	svc := newLookupService(cfg)
	log := zerolog.Ctx(cmd.Context())

	results := resolveAll(cmd.Context(), args, bibtexJobs, svc.Resolve)

	resp := AddResponse{DryRun: addDryRun}
	exitCode := ExitSuccess
	added := 0
	for _, r := range results {
		entry := addOne(lib, r, cfg.PapersDir)
		if entry.Status == "failed" {
			exitCode = exitCodeFor(r.Err)
			if r.Err == nil {
				exitCode = ExitError
			}
		}
		if entry.Status == StatusAddedNoPDF {
			exitCode = ExitError
		}
		if entry.Status == "added" || entry.Status == StatusAddedNoPDF {
			added++
		}
		resp.Entries = append(resp.Entries, entry)
	}

	if added > 0 && !addDryRun {
		if err := lib.Save(); err != nil {
			exitWithError(ExitError, "saving library: %v", err)
		}
		log.Debug().Int("added", added).Str("library", lib.Path()).Msg("saved library")
	}

	if humanOutput {
		for _, e := range resp.Entries {
			switch e.Status {
			case "added":
				outputHuman("added %s", e.Key)
				if e.PDF != "" {
					outputHuman(" (%s)", e.PDF)
				}
				outputHuman("\n")
			case StatusAddedNoPDF:
				outputHuman("added %s, PDF not filed: %s\n", e.Key, e.Error)
			case "duplicate":
				outputHuman("skipped %s: same DOI as %s\n", e.Input, e.Key)
			default:
				outputHuman("failed %s: %s\n", e.Input, e.Error)
			}
		}
		if addDryRun {
			outputHuman("(dry run, nothing written)\n")
		}
	} else {
		outputJSON(resp)
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}

// addOne adds a resolved input to lib and files its PDF.
func addOne(lib *library.Library, r resolution, papersDir string) AddedEntry {
	entry := AddedEntry{Input: r.Input}
	if r.Err != nil {
		entry.Status = "failed"
		entry.Error = r.Err.Error()
		return entry
	}
	if _, err := bibtex.Marshal(r.Record); err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
		return entry
	}

	if key, ok := lib.FindDOI(r.Record.Fields["doi"]); ok {
		entry.Status = "duplicate"
		entry.Key = key
		return entry
	}

	// Dry runs still add to the in-memory library so that keys and DOIs
	// later in the batch see earlier ones.
	entry.Key = lib.Add(r.Record)
	entry.Status = "added"

	if !lookup.IsURL(r.Input) && !addNoFile && !addDryRun {
		dst, err := library.FilePDF(papersDir, entry.Key, r.Input)
		if err != nil && !errors.Is(err, library.ErrPDFExists) {
			entry.Status = StatusAddedNoPDF
			entry.Error = err.Error()
			return entry
		}
		entry.PDF = dst
	}
	return entry
}
