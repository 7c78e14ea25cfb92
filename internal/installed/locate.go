package installed

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/paths"
)

// Location is one place a package's manifest was found
type Location struct {
	Name  string
	Path  string
	Scope paths.Scope
	// Bucket is empty for the installed copy of a manifest
	Bucket string
	// Installed marks the manifest resolved through a "current" link
	Installed bool
}

// LocateAll finds every candidate manifest for the input, which is a bare
// name or "bucket/name". Ordering: the installed manifest first (user
// scope before global), then one entry per bucket across both scopes that
// defines the name; a qualified input restricts the bucket pass to the
// named bucket. A name may match zero, one, or many locations.
func LocateAll(r *paths.Resolver, input string) ([]Location, error) {
	name := input
	bucketFilter := ""
	if idx := strings.Index(input, "/"); idx >= 0 {
		bucketFilter = input[:idx]
		name = input[idx+1:]
	}

	var locations []Location

	// Installed copies first, user scope before global
	for _, scope := range paths.Scopes() {
		link, err := r.CurrentLink(scope, name)
		if err != nil {
			return nil, err
		}

		currentDir, _ := ResolveCurrent(link)
		if currentDir == "" {
			continue
		}

		manifestPath := filepath.Join(currentDir, "manifest.json")
		if !readable(manifestPath) {
			continue
		}

		locations = append(locations, Location{
			Name:      name,
			Path:      manifestPath,
			Scope:     scope,
			Installed: true,
		})
	}

	buckets, err := bucket.ListAll(r)
	if err != nil {
		return nil, err
	}

	for _, b := range buckets {
		if bucketFilter != "" && !strings.EqualFold(b.Name, bucketFilter) {
			continue
		}

		path := b.ManifestPath(name)
		if !readable(path) {
			continue
		}

		locations = append(locations, Location{
			Name:   name,
			Path:   path,
			Scope:  b.Scope,
			Bucket: b.Name,
		})
	}

	return locations, nil
}

// readable reports whether path is a regular file we can open. Unreadable
// bucket content is skipped silently, not surfaced.
func readable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
