package main

import (
	"path/filepath"
	"time"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/index"
	"github.com/pailkit/pail/internal/paths"
)

// newResolver builds a path resolver with config overrides applied
func newResolver(cfg *config.Config) (*paths.Resolver, error) {
	userRoot, err := cfg.UserRoot()
	if err != nil {
		return nil, err
	}
	globalRoot, err := cfg.GlobalRoot()
	if err != nil {
		return nil, err
	}

	dataRoot := ""
	if cfg.Cache.Dir != "" {
		dataRoot, err = config.ExpandHome(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
	}

	return &paths.Resolver{
		UserRoot:   userRoot,
		GlobalRoot: globalRoot,
		DataRoot:   dataRoot,
	}, nil
}

// newIndex builds the package index over all buckets of both scopes
func newIndex(cfg *config.Config, resolver *paths.Resolver) (*index.Index, error) {
	dataDir, err := resolver.DataDir()
	if err != nil {
		return nil, err
	}

	var opts []index.Option
	if cfg.Cache.StalenessMinutes > 0 {
		opts = append(opts, index.WithStaleness(time.Duration(cfg.Cache.StalenessMinutes)*time.Minute))
	}

	source := func() ([]bucket.Entry, error) {
		return bucket.ListAll(resolver)
	}

	return index.New(filepath.Join(dataDir, "index.json"), source, opts...), nil
}
