package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/installed"
	"github.com/pailkit/pail/internal/status"
	"github.com/spf13/cobra"
)

var statusAll bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show outdated, held, failed, and removed apps",
	Long:  `Evaluates every installed app against the local bucket manifests and reports outdated, deprecated, held, failed, and removed state.`,
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusAll, "all", "a", false, "Include up-to-date apps in the listing")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	lister := installed.NewLister(resolver)
	apps, err := lister.List()
	if err != nil {
		logger.Error("listing installed apps: %v", err)
		os.Exit(1)
	}

	if len(apps) == 0 {
		output.PrintInfo("No installed apps")
		return
	}

	buckets, err := bucket.ListAll(resolver)
	if err != nil {
		logger.Error("listing buckets: %v", err)
		os.Exit(1)
	}

	showProgress := output.IsTerminal() && !quiet
	results := status.Check(apps, buckets, status.CheckOptions{
		OnProgress: func(done, total int) {
			if showProgress {
				fmt.Printf("\rChecking %d/%d...", done, total)
			}
		},
	})
	if showProgress {
		fmt.Print("\r\033[K")
	}

	shown := 0
	for _, r := range results {
		if !statusAll && !r.Interesting() {
			continue
		}
		shown++

		labels := make([]string, 0, 2)
		for _, l := range r.Labels() {
			labels = append(labels, output.FormatState(l))
		}

		line := fmt.Sprintf("%-24s %-12s", r.Name, r.Installed)
		if r.Outdated {
			line += fmt.Sprintf(" -> %-12s", r.Latest)
		} else {
			line += strings.Repeat(" ", 16)
		}
		fmt.Printf("%s %s\n", line, strings.Join(labels, " "))
	}

	if shown == 0 {
		output.PrintSuccess("Everything is up to date")
	}
}
