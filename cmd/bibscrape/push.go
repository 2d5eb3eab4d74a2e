package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/bibscrape/internal/library"
	"github.com/matsen/bibscrape/internal/remote"
)

var (
	pushAll     bool
	pushTimeout int
)

func init() {
	pushCmd.Flags().BoolVar(&pushAll, "all", false, "Push every library entry")
	pushCmd.Flags().IntVar(&pushTimeout, "connect-timeout", 10, "SSH connect timeout in seconds")
	rootCmd.AddCommand(pushCmd)
}

var pushCmd = &cobra.Command{
	Use:   "push [<key>...]",
	Short: "Upload PDFs to the remote mirror",
	Long: `Upload the filed PDF of each entry to remote_dir on remote_host over SSH,
skipping files the host already has. Authentication uses the SSH agent.

Examples:
  bibscrape push Public2019DeepLearning
  bibscrape push --all`,
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	if cfg.RemoteHost == "" {
		exitWithError(ExitConfigError, "remote_host not configured\n  Hint: Use 'bibscrape config remote_host example.org'")
	}
	if pushAll == (len(args) > 0) {
		exitWithError(ExitError, "specify entry keys or --all")
	}

	lib := mustOpenLibrary(cfg)
	keys := args
	if pushAll {
		keys = lib.Keys()
	}
	for _, key := range keys {
		if !lib.Contains(key) {
			exitWithError(ExitNotFound, "%s: %v", key, library.ErrNotFound)
		}
	}

	client, err := remote.NewSSHClient(remote.Config{
		Host:           cfg.RemoteHost,
		User:           cfg.RemoteUser,
		ProxyJump:      cfg.RemoteProxyJump,
		ConnectTimeout: time.Duration(pushTimeout) * time.Second,
	})
	if err != nil {
		exitWithError(ExitNetworkError, "%v", err)
	}
	defer client.Close()

	result, err := remote.Push(cmd.Context(), client, keys, cfg.PapersDir, cfg.RemoteDir)
	if err != nil {
		exitWithError(ExitNetworkError, "%v", err)
	}

	if humanOutput {
		for _, key := range result.Uploaded {
			outputHuman("uploaded %s\n", key)
		}
		outputHuman("%d uploaded, %d already present, %d without a local PDF\n",
			len(result.Uploaded), len(result.Present), len(result.Missing))
	} else {
		outputJSON(result)
	}
	return nil
}
