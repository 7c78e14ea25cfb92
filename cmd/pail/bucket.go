package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/git"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/paths"
	"github.com/spf13/cobra"
)

var bucketGlobal bool

var bucketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known buckets",
	Run:   runBucketList,
}

var bucketAddCmd = &cobra.Command{
	Use:   "add <name> [url]",
	Short: "Add a bucket by catalog name or clone URL",
	Long:  `Clones a bucket repository into the scope's bucket root. With no URL the name is resolved through the buckets.toml catalog next to the config file.`,
	Args:  cobra.RangeArgs(1, 2),
	Run:   runBucketAdd,
}

var bucketUpdateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update buckets from their remotes",
	Args:  cobra.MaximumNArgs(1),
	Run:   runBucketUpdate,
}

func init() {
	bucketAddCmd.Flags().BoolVarP(&bucketGlobal, "global", "g", false, "Add to the global scope")

	bucketCmd.AddCommand(bucketListCmd)
	bucketCmd.AddCommand(bucketAddCmd)
	bucketCmd.AddCommand(bucketUpdateCmd)
}

func bucketScope() paths.Scope {
	if bucketGlobal {
		return paths.ScopeGlobal
	}
	return paths.ScopeUser
}

func runBucketList(cmd *cobra.Command, args []string) {
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

	buckets, err := bucket.ListAll(resolver)
	if err != nil {
		logger.Error("listing buckets: %v", err)
		os.Exit(1)
	}

	if len(buckets) == 0 {
		output.PrintInfo("No buckets configured")
		return
	}

	for _, b := range bucket.WithRemotes(buckets, git.NewRunner()) {
		fmt.Printf("%-20s %-8s %s\n", b.Name, b.Scope, b.Remote)
	}
}

func runBucketAdd(cmd *cobra.Command, args []string) {
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

	name := args[0]
	url := ""
	if len(args) == 2 {
		url = args[1]
	} else {
		src, err := resolveCatalogSource(name)
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		url = src.URL
	}

	entry, err := bucket.Add(git.NewRunner(), resolver, bucketScope(), name, url)
	if err != nil {
		if errors.Is(err, bucket.ErrBucketExists) {
			output.PrintWarning("Bucket %s already exists", name)
			return
		}
		logger.Error("%v", err)
		os.Exit(1)
	}

	output.PrintSuccess("Added bucket %s (%s)", entry.Name, entry.Remote)
}

func runBucketUpdate(cmd *cobra.Command, args []string) {
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

	buckets, err := bucket.ListAll(resolver)
	if err != nil {
		logger.Error("listing buckets: %v", err)
		os.Exit(1)
	}

	syncer := git.NewRunner()
	updated := 0
	for _, b := range buckets {
		if len(args) == 1 && b.Name != args[0] {
			continue
		}

		messages, err := bucket.Update(syncer, b)
		if err != nil {
			// One bucket failing to sync must not stop the rest
			output.PrintWarning("Skipping %s: %v", b.Key(), err)
			continue
		}
		updated++

		if len(messages) == 0 {
			logger.Debug("%s already up to date", b.Key())
			continue
		}
		output.PrintInfo("%s:", b.Key())
		for _, msg := range messages {
			fmt.Printf("    %s\n", msg)
		}
	}

	if updated == 0 && len(args) == 1 {
		output.PrintWarning("No bucket named %s", args[0])
		return
	}
	output.PrintSuccess("Updated %d bucket(s)", updated)
}

// resolveCatalogSource looks a short bucket name up in buckets.toml next
// to the config file
func resolveCatalogSource(name string) (bucket.Source, error) {
	configPath, err := config.FindConfigPath()
	if err != nil {
		return bucket.Source{}, err
	}

	catalog, err := bucket.LoadCatalog(filepath.Join(filepath.Dir(configPath), "buckets.toml"))
	if err != nil {
		return bucket.Source{}, err
	}

	return catalog.Resolve(name)
}
