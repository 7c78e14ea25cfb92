package main

import (
	"fmt"
	"os"

	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/index"
	"github.com/spf13/cobra"
)

var cacheRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Rescan all buckets and rebuild the package index",
	Run:   runCacheRefresh,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset the package index to empty",
	Run:   runCacheClear,
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show package index statistics",
	Run:   runCacheInfo,
}

func init() {
	cacheCmd.AddCommand(cacheRefreshCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheInfoCmd)
}

func runCacheRefresh(cmd *cobra.Command, args []string) {
	idx, err := cacheIndex()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if err := idx.Refresh(true); err != nil {
		logger.Error("refreshing index: %v", err)
		os.Exit(1)
	}

	stats := idx.Stats()
	output.PrintSuccess("Indexed %d package(s) across %d bucket(s)", stats.Packages, stats.Buckets)
}

func runCacheClear(cmd *cobra.Command, args []string) {
	idx, err := cacheIndex()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	if err := idx.Clear(); err != nil {
		logger.Error("clearing index: %v", err)
		os.Exit(1)
	}
	output.PrintSuccess("Package index cleared")
}

func runCacheInfo(cmd *cobra.Command, args []string) {
	idx, err := cacheIndex()
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	stats := idx.Stats()
	fmt.Printf("Buckets:  %d\n", stats.Buckets)
	fmt.Printf("Packages: %d\n", stats.Packages)
	if stats.LastUpdated.IsZero() {
		fmt.Println("Updated:  never")
	} else {
		fmt.Printf("Updated:  %s\n", stats.LastUpdated.Format("2006-01-02 15:04:05"))
	}
}

func cacheIndex() (*index.Index, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}

	return newIndex(cfg, resolver)
}
