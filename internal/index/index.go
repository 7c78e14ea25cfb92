// Package index maintains the searchable, disk-persisted package index
// across all buckets. The index file is owned exclusively by the
// orchestrator: scan workers receive immutable job data and hand results
// back over channels, and the orchestrator alone loads, mutates, and
// flushes the document. A corrupt or version-mismatched document degrades
// to an empty index; correctness is preserved at the cost of speed, never
// at the cost of a hard failure.
package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/manifest"
)

// FormatVersion identifies the on-disk document layout. A bump invalidates
// all prior caches.
const FormatVersion = 1

const (
	// DefaultStaleness is the maximum age a bucket scan may reach before
	// being considered untrustworthy
	DefaultStaleness = 5 * time.Minute
	// DefaultBatchSize is how many manifest files are processed between
	// cooperative yields
	DefaultBatchSize = 100
	// DefaultWorkerCap bounds concurrent bucket scans during refresh
	DefaultWorkerCap = 4
	// maxManifestSize is the largest manifest file the scanner will read
	maxManifestSize = 100_000
)

// Entry is one indexed package, keyed by (bucket, name) with the name
// compared case-insensitively
type Entry struct {
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	Description  string    `json:"description"`
	Bucket       string    `json:"bucket"`
	Scope        string    `json:"scope"`
	Binaries     []string  `json:"binaries,omitempty"`
	ManifestPath string    `json:"manifestPath"`
	LastModified time.Time `json:"lastModifiedTimestamp"`
}

// bucketCache is the per-bucket slice of the persisted document
type bucketCache struct {
	LastScannedAt  time.Time `json:"lastScannedAt"`
	LastModifiedAt time.Time `json:"lastModifiedAt"`
	Packages       []Entry   `json:"packages"`
}

// document is the persisted cache structure
type document struct {
	FormatVersion int                    `json:"formatVersion"`
	LastUpdated   time.Time              `json:"lastUpdated"`
	Buckets       map[string]bucketCache `json:"buckets"`
}

func emptyDocument() document {
	return document{
		FormatVersion: FormatVersion,
		Buckets:       make(map[string]bucketCache),
	}
}

// BucketSource supplies the buckets to scan
type BucketSource func() ([]bucket.Entry, error)

// Index builds and incrementally refreshes the persistent package index
type Index struct {
	path      string
	buckets   BucketSource
	staleness time.Duration
	batchSize int
	workerCap int
	nowFunc   func() time.Time

	mu     sync.Mutex
	doc    document
	loaded bool
}

// Option is a functional option for configuring Index
type Option func(*Index)

// WithStaleness sets a custom staleness window
func WithStaleness(d time.Duration) Option {
	return func(i *Index) {
		i.staleness = d
	}
}

// WithBatchSize sets how many files are processed between yields
func WithBatchSize(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.batchSize = n
		}
	}
}

// WithWorkerCap bounds concurrent bucket scans
func WithWorkerCap(n int) Option {
	return func(i *Index) {
		if n > 0 {
			i.workerCap = n
		}
	}
}

// WithNowFunc sets a custom time function for testing
func WithNowFunc(fn func() time.Time) Option {
	return func(i *Index) {
		i.nowFunc = fn
	}
}

// New creates an index persisted at path, fed by the given bucket source
func New(path string, buckets BucketSource, opts ...Option) *Index {
	idx := &Index{
		path:      path,
		buckets:   buckets,
		staleness: DefaultStaleness,
		batchSize: DefaultBatchSize,
		workerCap: DefaultWorkerCap,
		nowFunc:   time.Now,
		doc:       emptyDocument(),
	}

	for _, opt := range opts {
		opt(idx)
	}

	return idx
}

// EnsureFresh loads the persisted index and refreshes it when it is empty
// or older than the staleness window
func (i *Index) EnsureFresh() error {
	i.mu.Lock()
	i.loadLocked()
	stale := len(i.doc.Buckets) == 0 ||
		i.nowFunc().Sub(i.doc.LastUpdated) >= i.staleness
	i.mu.Unlock()

	if stale {
		return i.Refresh(false)
	}
	return nil
}

// Refresh rescans buckets and flushes the updated document. Buckets
// scanned within the staleness window are skipped unless forced. Cached
// entries whose stored timestamp is at least the file's current mtime are
// reused without reparsing.
func (i *Index) Refresh(forced bool) error {
	buckets, err := i.buckets()
	if err != nil {
		return err
	}

	i.mu.Lock()
	i.loadLocked()
	now := i.nowFunc()

	// Snapshot jobs: each worker gets the bucket plus a copy of its prior
	// cache slice, and writes only to its own result slot
	type job struct {
		bucket bucket.Entry
		prior  bucketCache
	}

	var jobs []job
	kept := make(map[string]bucketCache, len(buckets))
	for _, b := range buckets {
		prior, ok := i.doc.Buckets[b.Key()]
		if ok && !forced && now.Sub(prior.LastScannedAt) < i.staleness {
			kept[b.Key()] = prior
			continue
		}
		jobs = append(jobs, job{bucket: b, prior: prior})
	}
	i.mu.Unlock()

	results := make([]bucketCache, len(jobs))

	var g errgroup.Group
	g.SetLimit(i.workerCap)
	for idx, j := range jobs {
		idx, j := idx, j
		g.Go(func() error {
			results[idx] = i.scanBucket(j.bucket, j.prior, now)
			return nil
		})
	}
	// Workers never return errors; per-file failures degrade to skips
	_ = g.Wait()

	i.mu.Lock()
	defer i.mu.Unlock()

	doc := emptyDocument()
	doc.LastUpdated = now
	for key, cache := range kept {
		doc.Buckets[key] = cache
	}
	for idx, j := range jobs {
		doc.Buckets[j.bucket.Key()] = results[idx]
	}
	i.doc = doc

	return i.saveLocked()
}

// Clear overwrites the persisted document with a valid empty structure
// rather than deleting the file, avoiding partial-state races with
// concurrent readers
func (i *Index) Clear() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.doc = emptyDocument()
	i.loaded = true
	return i.saveLocked()
}

// Stats summarizes the loaded index
type Stats struct {
	Buckets     int
	Packages    int
	LastUpdated time.Time
}

// Stats returns summary counts for the loaded index
func (i *Index) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.loadLocked()

	s := Stats{
		Buckets:     len(i.doc.Buckets),
		LastUpdated: i.doc.LastUpdated,
	}
	for _, cache := range i.doc.Buckets {
		s.Packages += len(cache.Packages)
	}
	return s
}

// scanBucket lists a bucket's manifest files and rebuilds its cache slice,
// reusing prior entries whose stored timestamp is not older than the
// file's current mtime. Any per-file error degrades to skipping that file.
func (i *Index) scanBucket(b bucket.Entry, prior bucketCache, now time.Time) bucketCache {
	cache := bucketCache{LastScannedAt: now}

	priorByName := make(map[string]Entry, len(prior.Packages))
	for _, e := range prior.Packages {
		priorByName[strings.ToLower(e.Name)] = e
	}

	entries, err := os.ReadDir(b.ManifestDir)
	if err != nil {
		// Unreadable bucket contributes nothing this round
		logger.Debug("skipping bucket %s: %v", b.Key(), err)
		return cache
	}

	seen := make(map[string]bool, len(entries))
	processed := 0

	for _, dirEntry := range entries {
		if dirEntry.IsDir() {
			continue
		}

		filename := dirEntry.Name()
		if !strings.HasSuffix(filename, ".json") || strings.HasPrefix(filename, ".") {
			continue
		}

		// One large bucket must not monopolize the process
		if processed > 0 && processed%i.batchSize == 0 {
			runtime.Gosched()
		}
		processed++

		name := strings.TrimSuffix(filename, ".json")
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}

		path := filepath.Join(b.ManifestDir, filename)
		info, err := dirEntry.Info()
		if err != nil {
			continue
		}
		if info.Size() > maxManifestSize {
			logger.Debug("skipping oversized manifest %s (%d bytes)", path, info.Size())
			continue
		}

		mtime := info.ModTime()
		if cached, ok := priorByName[key]; ok && !cached.LastModified.Before(mtime) {
			// Unchanged since last scan; reuse without reparsing
			seen[key] = true
			cache.Packages = append(cache.Packages, cached)
			if mtime.After(cache.LastModifiedAt) {
				cache.LastModifiedAt = mtime
			}
			continue
		}

		rec, err := manifest.ParseFile(path)
		if err != nil {
			continue
		}

		seen[key] = true
		cache.Packages = append(cache.Packages, Entry{
			Name:         name,
			Version:      rec.Version,
			Description:  rec.Description,
			Bucket:       b.Name,
			Scope:        b.Scope.String(),
			Binaries:     rec.BinNames(),
			ManifestPath: path,
			LastModified: mtime,
		})
		if mtime.After(cache.LastModifiedAt) {
			cache.LastModifiedAt = mtime
		}
	}

	return cache
}

// loadLocked reads the persisted document once. Caller must hold the lock.
func (i *Index) loadLocked() {
	if i.loaded {
		return
	}
	i.loaded = true

	data, err := os.ReadFile(i.path)
	if err != nil {
		return
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Debug("discarding corrupt index %s: %v", i.path, err)
		return
	}
	if doc.FormatVersion != FormatVersion {
		logger.Debug("discarding index %s: format %d, want %d",
			i.path, doc.FormatVersion, FormatVersion)
		return
	}
	if doc.Buckets == nil {
		doc.Buckets = make(map[string]bucketCache)
	}

	i.doc = doc
}

// saveLocked persists the document atomically. Caller must hold the lock.
func (i *Index) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(i.path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	data, err := json.MarshalIndent(i.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	// Write to temp file first, then rename for atomicity
	tmpPath := i.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}

	if err := os.Rename(tmpPath, i.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename index file: %w", err)
	}

	return nil
}
