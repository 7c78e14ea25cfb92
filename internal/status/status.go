// Package status computes per-app install state: outdated, deprecated,
// held, failed, removed. Evaluation runs against the local bucket listing
// only; version comparison is the engine's tolerant heuristic and never
// fails on arbitrary upstream strings.
package status

import (
	"sort"
	"strings"
	"time"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/dispatch"
	"github.com/pailkit/pail/internal/installed"
	"github.com/pailkit/pail/internal/manifest"
	"github.com/pailkit/pail/internal/paths"
)

// AppStatus is the evaluated state of one installed app
type AppStatus struct {
	Name      string
	Scope     paths.Scope
	Installed string
	Latest    string
	Bucket    string

	// Failed: the current link target is missing or its version is
	// unresolvable
	Failed bool
	// Held: an install.json sidecar marks the app held
	Held bool
	// Deprecated: the defining manifest's path contains "deprecated" or
	// its deprecation marker is set
	Deprecated bool
	// Removed: no bucket defines the name anymore
	Removed bool
	// Outdated: the installed version is older than the best known version
	Outdated bool
}

// Labels returns the app's state labels for rendering, "ok" when none apply
func (s AppStatus) Labels() []string {
	var labels []string
	if s.Failed {
		labels = append(labels, "failed")
	}
	if s.Held {
		labels = append(labels, "held")
	}
	if s.Deprecated {
		labels = append(labels, "deprecated")
	}
	if s.Removed {
		labels = append(labels, "removed")
	}
	if s.Outdated {
		labels = append(labels, "outdated")
	}
	if len(labels) == 0 {
		labels = append(labels, "ok")
	}
	return labels
}

// Interesting reports whether the app has any state worth surfacing
func (s AppStatus) Interesting() bool {
	return s.Failed || s.Held || s.Deprecated || s.Removed || s.Outdated
}

// Evaluate computes one app's status against the full bucket listing.
// Pure over its inputs plus the manifests on disk; safe to run inside an
// isolated worker.
func Evaluate(app installed.Package, buckets []bucket.Entry) AppStatus {
	st := AppStatus{
		Name:      app.Name,
		Scope:     app.Scope,
		Installed: app.Version,
		Bucket:    app.Bucket,
		Held:      app.Held,
		Failed:    app.Failed(),
	}

	var (
		versions   []string
		originRec  *manifest.Record
		originPath string
		firstRec   *manifest.Record
		firstPath  string
	)

	for _, b := range buckets {
		path := b.ManifestPath(app.Name)
		rec, err := manifest.ParseFile(path)
		if err != nil {
			// Missing or malformed in this bucket; not a definition
			continue
		}

		versions = append(versions, rec.Version)
		if firstRec == nil {
			firstRec, firstPath = rec, path
		}
		if originRec == nil && app.Bucket != "" && strings.EqualFold(b.Name, app.Bucket) {
			originRec, originPath = rec, path
		}
	}

	if len(versions) == 0 {
		st.Removed = true
		return st
	}

	// Prefer the bucket recorded at install time, else the best across all
	chosenRec, chosenPath := originRec, originPath
	if chosenRec != nil {
		st.Latest = chosenRec.Version
	} else {
		chosenRec, chosenPath = firstRec, firstPath
		st.Latest = manifest.MaxVersion(versions)
	}

	st.Deprecated = chosenRec.IsDeprecated() ||
		strings.Contains(strings.ToLower(chosenPath), "deprecated")

	if !st.Failed && st.Latest != "" {
		st.Outdated = manifest.CompareVersions(st.Installed, st.Latest) < 0
	}

	return st
}

// CheckOptions configures a status check
type CheckOptions struct {
	// Timeout bounds each worker batch; zero uses the dispatcher default
	Timeout time.Duration
	// OnProgress receives the summed cumulative counter for a live display
	OnProgress func(done, total int)
}

// Check evaluates all apps through the dispatcher's status wave, then
// merges: hold markers propagate across scopes sharing a name, and the
// final ordering is by case-insensitive name.
func Check(apps []installed.Package, buckets []bucket.Entry, opts CheckOptions) []AppStatus {
	results, _ := dispatch.StatusWave(apps, buckets, Evaluate, opts.OnProgress, opts.Timeout)

	// A hold in either scope holds the name everywhere
	heldNames := make(map[string]bool)
	for _, r := range results {
		if r.Held {
			heldNames[strings.ToLower(r.Name)] = true
		}
	}
	for i := range results {
		if heldNames[strings.ToLower(results[i].Name)] {
			results[i].Held = true
		}
	}

	sort.Slice(results, func(i, j int) bool {
		ni, nj := strings.ToLower(results[i].Name), strings.ToLower(results[j].Name)
		if ni != nj {
			return ni < nj
		}
		return results[i].Scope.String() < results[j].Scope.String()
	})

	return results
}
