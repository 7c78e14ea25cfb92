package bucket

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pailkit/pail/internal/common/git"
	"github.com/pailkit/pail/internal/paths"
)

var (
	// ErrBucketExists is returned when adding a bucket whose directory is
	// already present
	ErrBucketExists = errors.New("bucket already exists")
	// ErrNotARepo is returned when updating a bucket directory that is not
	// a git working tree
	ErrNotARepo = errors.New("bucket directory is not a repository")
)

// Add clones a bucket repository into the scope's bucket root and returns
// the resulting entry
func Add(s git.Syncer, r *paths.Resolver, scope paths.Scope, name, url string) (Entry, error) {
	root, err := r.BucketsDir(scope)
	if err != nil {
		return Entry{}, err
	}

	dest := filepath.Join(root, name)
	if _, err := os.Stat(dest); err == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrBucketExists, name)
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return Entry{}, err
	}

	if err := s.Clone(url, dest); err != nil {
		return Entry{}, fmt.Errorf("failed to clone bucket %s: %w", name, err)
	}

	return Entry{
		Name:        name,
		Scope:       scope,
		Dir:         dest,
		ManifestDir: manifestDir(dest),
		Remote:      url,
	}, nil
}

// Update fast-forwards a bucket from its remote and returns the subject
// lines of the commits that were pulled in
func Update(s git.Syncer, e Entry) ([]string, error) {
	if !s.IsRepo(e.Dir) {
		return nil, fmt.Errorf("%w: %s", ErrNotARepo, e.Dir)
	}

	if err := s.Fetch(e.Dir); err != nil {
		return nil, fmt.Errorf("failed to fetch bucket %s: %w", e.Name, err)
	}

	messages, err := s.CommitsSinceRemote(e.Dir)
	if err != nil {
		return nil, err
	}

	if err := s.Pull(e.Dir); err != nil {
		return nil, fmt.Errorf("failed to pull bucket %s: %w", e.Name, err)
	}

	return messages, nil
}
