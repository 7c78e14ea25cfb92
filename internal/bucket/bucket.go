// Package bucket enumerates the manifest repositories ("buckets") known to
// each scope and resolves manifest file locations inside them.
package bucket

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pailkit/pail/internal/common/git"
	"github.com/pailkit/pail/internal/paths"
)

// Entry represents one bucket directory under a scope's bucket root
type Entry struct {
	Name  string
	Scope paths.Scope
	// Dir is the bucket repository root
	Dir string
	// ManifestDir is the directory actually holding <name>.json files:
	// a nested "bucket" subdirectory when one exists and holds manifests,
	// else the repository root
	ManifestDir string
	// Remote is the bucket's remote source URL, when resolved
	Remote string
}

// Key returns the scope-qualified bucket identifier used as a cache key
func (e Entry) Key() string {
	return e.Scope.String() + ":" + e.Name
}

// ManifestPath returns the path a manifest for name would occupy in this
// bucket. The file may or may not exist.
func (e Entry) ManifestPath(name string) string {
	return filepath.Join(e.ManifestDir, name+".json")
}

// Contains reports whether this bucket defines a manifest for name
func (e Entry) Contains(name string) bool {
	info, err := os.Stat(e.ManifestPath(name))
	return err == nil && !info.IsDir()
}

// List returns the buckets under a scope's bucket root, sorted by name.
// An absent bucket root yields an empty list, not an error.
func List(r *paths.Resolver, scope paths.Scope) ([]Entry, error) {
	root, err := r.BucketsDir(scope)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var buckets []Entry
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		dir := filepath.Join(root, name)
		buckets = append(buckets, Entry{
			Name:        name,
			Scope:       scope,
			Dir:         dir,
			ManifestDir: manifestDir(dir),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Name < buckets[j].Name
	})

	return buckets, nil
}

// ListAll returns the buckets of both scopes, user scope first
func ListAll(r *paths.Resolver) ([]Entry, error) {
	var all []Entry
	for _, scope := range paths.Scopes() {
		buckets, err := List(r, scope)
		if err != nil {
			return nil, err
		}
		all = append(all, buckets...)
	}
	return all, nil
}

// WithRemotes fills each entry's Remote from its git repository.
// Entries that are not repositories are returned unchanged.
func WithRemotes(entries []Entry, s git.Syncer) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)

	for i := range out {
		if !s.IsRepo(out[i].Dir) {
			continue
		}
		if remote, err := s.Remote(out[i].Dir); err == nil {
			out[i].Remote = remote
		}
	}

	return out
}

// manifestDir decides where a bucket keeps its manifests. Newer bucket
// layouts nest them in a "bucket" subdirectory; older ones keep them at
// the repository root.
func manifestDir(dir string) string {
	nested := filepath.Join(dir, "bucket")
	if hasManifests(nested) {
		return nested
	}
	return dir
}

// hasManifests reports whether dir holds at least one .json file
func hasManifests(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".json") {
			return true
		}
	}
	return false
}
