package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/installed"
	"github.com/pailkit/pail/internal/manifest"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show manifest details for a package",
	Long:  `Shows every manifest found for the name: the installed copy first, then each bucket that defines it. A "bucket/name" argument restricts the lookup to one bucket.`,
	Args:  cobra.ExactArgs(1),
	Run:   runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) {
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

	locations, err := installed.LocateAll(resolver, args[0])
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if len(locations) == 0 {
		output.PrintWarning("No manifest found for %s", args[0])
		return
	}

	for i, loc := range locations {
		rec, err := manifest.ParseFile(loc.Path)
		if err != nil {
			logger.Debug("skipping %s: %v", loc.Path, err)
			continue
		}
		if i > 0 {
			fmt.Println()
		}
		printLocation(loc, rec)
	}
}

func printLocation(loc installed.Location, rec *manifest.Record) {
	origin := "installed"
	if !loc.Installed {
		origin = "bucket " + loc.Bucket
	}
	fmt.Printf("%s (%s, %s scope)\n", output.FormatPackage(loc.Bucket, loc.Name), origin, loc.Scope)

	fmt.Printf("  Version:     %s\n", rec.Version)
	if rec.Description != "" {
		fmt.Printf("  Description: %s\n", rec.Description)
	}
	if rec.Homepage != "" {
		fmt.Printf("  Homepage:    %s\n", rec.Homepage)
	}
	if license := rec.LicenseName(); license != "" {
		fmt.Printf("  License:     %s\n", license)
	}
	if bins := rec.BinNames(); len(bins) > 0 {
		fmt.Printf("  Binaries:    %s\n", strings.Join(bins, ", "))
	}
	if deps := rec.DependsOn(); len(deps) > 0 {
		fmt.Printf("  Depends:     %s\n", strings.Join(deps, ", "))
	}
	if rec.IsDeprecated() {
		output.PrintWarning("  Deprecated")
	}
}
