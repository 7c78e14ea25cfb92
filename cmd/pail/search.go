package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/dispatch"
	"github.com/pailkit/pail/internal/index"
	"github.com/pailkit/pail/internal/paths"
	"github.com/spf13/cobra"
)

var (
	searchCaseSensitive bool
	searchBucket        string
	searchDirect        bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search bucket packages by name or binary",
	Long: `Searches the persistent package index for packages whose name or any declared executable matches the query. Literal queries match as substrings; queries with regex metacharacters match as regular expressions.

With --direct the index is bypassed: every bucket is scanned live by its own worker, each under a hard timeout.`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

func init() {
	searchCmd.Flags().BoolVarP(&searchCaseSensitive, "case-sensitive", "c", false, "Match case-sensitively")
	searchCmd.Flags().StringVarP(&searchBucket, "bucket", "b", "", "Restrict search to one bucket")
	searchCmd.Flags().BoolVar(&searchDirect, "direct", false, "Scan bucket directories instead of the index")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	if !searchCaseSensitive {
		searchCaseSensitive = cfg.Search.CaseSensitive
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	var matches []index.Entry
	if searchDirect {
		matches = directSearch(resolver, args[0])
	} else {
		idx, err := newIndex(cfg, resolver)
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		if err := idx.EnsureFresh(); err != nil {
			logger.Error("refreshing index: %v", err)
			os.Exit(1)
		}
		matches = idx.Search(args[0], index.Options{
			CaseSensitive: searchCaseSensitive,
			Bucket:        searchBucket,
		})
	}

	if len(matches) == 0 {
		output.PrintInfo("No matches for %q", args[0])
		return
	}

	for _, m := range matches {
		fmt.Printf("%s %s\n", output.FormatPackage(m.Bucket, m.Name),
			output.Sprint(output.Dim, m.Version))
		if m.Description != "" {
			fmt.Printf("    %s\n", m.Description)
		}
	}
}

// directSearch fans one worker out per bucket and merges their live scans,
// deduplicated by (bucket, name) with a name-then-bucket ordering
func directSearch(resolver *paths.Resolver, query string) []index.Entry {
	buckets, err := bucket.ListAll(resolver)
	if err != nil {
		logger.Error("listing buckets: %v", err)
		os.Exit(1)
	}

	if searchBucket != "" {
		var filtered []bucket.Entry
		for _, b := range buckets {
			if strings.EqualFold(b.Name, searchBucket) {
				filtered = append(filtered, b)
			}
		}
		buckets = filtered
	}

	matches, reports := dispatch.SearchWave(buckets, query, searchCaseSensitive, nil, 0)
	for _, r := range reports {
		if r.State != dispatch.StateCompleted {
			output.PrintWarning("bucket %s: %s", r.Bucket, r.State)
		}
	}

	seen := make(map[string]bool, len(matches))
	deduped := matches[:0]
	for _, m := range matches {
		key := strings.ToLower(m.Bucket) + "/" + strings.ToLower(m.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, m)
	}

	sort.Slice(deduped, func(a, b int) bool {
		na, nb := strings.ToLower(deduped[a].Name), strings.ToLower(deduped[b].Name)
		if na != nb {
			return na < nb
		}
		return deduped[a].Bucket < deduped[b].Bucket
	})

	return deduped
}
