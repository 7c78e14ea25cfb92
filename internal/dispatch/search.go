package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/index"
	"github.com/pailkit/pail/internal/manifest"
)

// SearchJob is the immutable work description handed to one search worker
type SearchJob struct {
	Bucket        bucket.Entry
	Query         string
	CaseSensitive bool
	// Allowlist optionally restricts matches to these package names
	// (case-insensitive); nil means no restriction
	Allowlist []string
}

// SearchReport records how one bucket's worker finished
type SearchReport struct {
	Bucket string
	State  State
	Found  int
}

// SearchWave runs one worker per target bucket concurrently, each under a
// hard timeout, and concatenates their bucket-local matches. No
// cross-bucket deduplication is applied; that is left to the caller.
// A worker that times out or errors contributes an empty slice.
func SearchWave(buckets []bucket.Entry, query string, caseSensitive bool, allowlist []string, timeout time.Duration) ([]index.Entry, []SearchReport) {
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}

	results := make([][]index.Entry, len(buckets))
	reports := make([]SearchReport, len(buckets))
	for i, b := range buckets {
		reports[i] = SearchReport{Bucket: b.Key(), State: StatePending}
	}

	var wg sync.WaitGroup
	for i, b := range buckets {
		i := i
		wg.Add(1)
		job := SearchJob{
			Bucket:        b,
			Query:         query,
			CaseSensitive: caseSensitive,
			Allowlist:     allowlist,
		}
		go func() {
			defer wg.Done()
			reports[i].State = StateRunning
			matches, state := runUnit(timeout, func(ctx context.Context) ([]index.Entry, error) {
				return searchBucket(ctx, job)
			})
			results[i] = matches
			reports[i].State = state
			reports[i].Found = len(matches)
		}()
	}
	wg.Wait()

	var merged []index.Entry
	for i := range results {
		if reports[i].State != StateCompleted {
			logger.Debug("search worker %s: %s", reports[i].Bucket, reports[i].State)
			continue
		}
		merged = append(merged, results[i]...)
	}

	return merged, reports
}

// searchBucket scans one bucket directory for matches. The name-substring
// pre-check runs on the filename before any manifest is parsed, keeping
// the common non-matching case cheap.
func searchBucket(ctx context.Context, job SearchJob) ([]index.Entry, error) {
	m := index.NewMatcher(job.Query, job.CaseSensitive)

	var allow map[string]bool
	if job.Allowlist != nil {
		allow = make(map[string]bool, len(job.Allowlist))
		for _, name := range job.Allowlist {
			allow[strings.ToLower(name)] = true
		}
	}

	entries, err := os.ReadDir(job.Bucket.ManifestDir)
	if err != nil {
		return nil, err
	}

	var matches []index.Entry
	for _, dirEntry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if dirEntry.IsDir() {
			continue
		}

		filename := dirEntry.Name()
		if !strings.HasSuffix(filename, ".json") || strings.HasPrefix(filename, ".") {
			continue
		}

		name := strings.TrimSuffix(filename, ".json")
		if allow != nil && !allow[strings.ToLower(name)] {
			continue
		}
		if !m.Match(name) {
			continue
		}

		path := filepath.Join(job.Bucket.ManifestDir, filename)
		rec, err := manifest.ParseFile(path)
		if err != nil {
			// Untrusted bucket content; skip silently
			continue
		}

		var lastModified time.Time
		if info, err := dirEntry.Info(); err == nil {
			lastModified = info.ModTime()
		}

		matches = append(matches, index.Entry{
			Name:         name,
			Version:      rec.Version,
			Description:  rec.Description,
			Bucket:       job.Bucket.Name,
			Scope:        job.Bucket.Scope.String(),
			Binaries:     rec.BinNames(),
			ManifestPath: path,
			LastModified: lastModified,
		})
	}

	return matches, nil
}
