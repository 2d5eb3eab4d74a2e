package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/bibtex"
	"github.com/matsen/bibscrape/internal/clipboard"
)

// DefaultJobs is how many inputs are resolved at once.
const DefaultJobs = 4

var (
	bibtexCopy bool
	bibtexJobs int
)

func init() {
	bibtexCmd.Flags().BoolVar(&bibtexCopy, "copy", false, "Also copy the entries to the clipboard")
	bibtexCmd.Flags().IntVarP(&bibtexJobs, "jobs", "j", DefaultJobs, "Number of inputs to resolve in parallel")
	rootCmd.AddCommand(bibtexCmd)
}

var bibtexCmd = &cobra.Command{
	Use:   "bibtex <url|pdf>...",
	Short: "Print BibTeX entries for paper pages or PDFs",
	Long: `Print a BibTeX entry for each argument.

Arguments starting with http:// or https:// are downloaded and scraped.
Anything else must be a local .pdf file: its DOI, or else a web search on
its title and authors, leads to the page that is scraped.

Entries are printed in argument order, each followed by a blank line.
This command always prints BibTeX; failures are reported on stderr.

Examples:
  bibscrape bibtex https://www.nature.com/articles/nature14539
  bibscrape bibtex ~/Downloads/paper.pdf --copy`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBibtex,
}

// resolution is the outcome for one input.
type resolution struct {
	Input  string
	Record *bibtex.Record
	Err    error
}

func runBibtex(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	svc := newLookupService(cfg)

	results := resolveAll(cmd.Context(), args, bibtexJobs, svc.Resolve)

	var entries []string
	exitCode := ExitSuccess
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", r.Input, r.Err)
			exitCode = exitCodeFor(r.Err)
			continue
		}
		entry, err := bibtex.Marshal(r.Record)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", r.Input, err)
			exitCode = exitCodeFor(err)
			continue
		}
		fmt.Println(entry)
		fmt.Println()
		entries = append(entries, entry)
	}

	if bibtexCopy && len(entries) > 0 {
		if err := clipboard.Copy(strings.Join(entries, "\n\n") + "\n"); err != nil {
			zerolog.Ctx(cmd.Context()).Warn().Err(err).Msg("could not copy to clipboard")
		}
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}

// resolveAll runs resolve on every input with at most jobs in flight and
// returns the results in input order.
func resolveAll(ctx context.Context, inputs []string, jobs int, resolve func(context.Context, string) (*bibtex.Record, error)) []resolution {
	if jobs < 1 {
		jobs = 1
	}
	results := make([]resolution, len(inputs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, jobs)

	for i, input := range inputs {
		wg.Add(1)
		go func(idx int, in string) {
			defer wg.Done()
			sem <- struct{}{}        // acquire semaphore
			defer func() { <-sem }() // release semaphore
			rec, err := resolve(ctx, in)
			results[idx] = resolution{Input: in, Record: rec, Err: err}
		}(i, input)
	}

	wg.Wait()
	return results
}
