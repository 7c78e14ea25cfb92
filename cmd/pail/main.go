package main

import (
	"fmt"
	"os"

	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	quiet   bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "pail",
	Short: "Windows package metadata tools",
	Long:  `Discovers installed packages and bucket manifests, keeps a persistent search index, and reports per-app status.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Configure logging based on flags
		if verbose {
			logger.SetVerbose(true)
		}
		if quiet {
			logger.SetQuiet(true)
		}
		if noColor {
			output.NoColor()
		}
	},
}

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage manifest buckets",
	Long:  `Commands for listing, adding, and updating the manifest repositories ("buckets") known to each scope.`,
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the persistent package index",
	Long:  `Commands for refreshing, inspecting, and clearing the disk-persisted package index.`,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-error output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(bucketCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
