package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for imgfetcher.
// Without a subcommand it behaves like "imgfetcher fetch".
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imgfetcher [url...]",
		Short: "Mindfully collect images from the web",
		Long: `imgfetcher downloads images into the Fetched_Images directory.

Responses that are not images are skipped, and an image whose content was
already saved during the same run is not saved again. Without arguments the
built-in list of nature images is fetched.

Running imgfetcher without a subcommand is the same as "imgfetcher fetch".`,
		Version:       getVersion(),
		Args:          cobra.ArbitraryArgs,
		RunE:          runFetchCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write diagnostics to stderr as JSON")

	addFetchFlags(cmd)

	cmd.AddCommand(NewFetchCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
