package bucket

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
)

var (
	// ErrCatalogNotFound is returned when no buckets.toml exists at the
	// given path
	ErrCatalogNotFound = errors.New("bucket catalog not found")
	// ErrUnknownBucket is returned when a short name is not in the catalog
	ErrUnknownBucket = errors.New("bucket not in catalog")
)

// Source describes a bucket repository in the catalog
type Source struct {
	// URL is the repository clone URL
	URL string `toml:"url"`
	// Branch optionally pins the branch to track
	Branch string `toml:"branch,omitempty"`
}

// Catalog maps short bucket names to their repository sources. The
// buckets.toml file is a map of sections, one per bucket:
//
//	[main]
//	url = "https://example.com/buckets/main"
//
//	[extras]
//	url = "https://example.com/buckets/extras"
//	branch = "stable"
type Catalog struct {
	Sources map[string]Source
}

// LoadCatalog reads a buckets.toml catalog file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, err
	}

	var sources map[string]Source
	if err := toml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse bucket catalog: %w", err)
	}

	return &Catalog{Sources: sources}, nil
}

// Resolve looks up a short bucket name
func (c *Catalog) Resolve(name string) (Source, error) {
	src, ok := c.Sources[name]
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrUnknownBucket, name)
	}
	if src.URL == "" {
		return Source{}, fmt.Errorf("%w: %s has no url", ErrUnknownBucket, name)
	}
	return src, nil
}

// Names returns the catalog's bucket names in sorted order
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
