package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pailkit/pail/internal/bucket"
	"github.com/pailkit/pail/internal/installed"
	"github.com/pailkit/pail/internal/paths"
)

// makeBucket lays out a bucket directory with the given manifest bodies
func makeBucket(t *testing.T, name string, manifests map[string]string) bucket.Entry {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for pkg, body := range manifests {
		if err := os.WriteFile(filepath.Join(dir, pkg+".json"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return bucket.Entry{Name: name, Scope: paths.ScopeUser, Dir: dir, ManifestDir: dir}
}

func TestEvaluate_Outdated(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.2.0"}`})
	app := installed.Package{Name: "git", Version: "1.1.0", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{main})

	if !st.Outdated {
		t.Error("1.1.0 against 1.2.0 should be outdated")
	}
	if st.Latest != "1.2.0" {
		t.Errorf("Latest = %q, want %q", st.Latest, "1.2.0")
	}
	if st.Removed || st.Failed || st.Deprecated {
		t.Errorf("unexpected flags: %+v", st)
	}
}

func TestEvaluate_UpToDate(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.2.0"}`})
	app := installed.Package{Name: "git", Version: "1.2.0", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{main})

	if st.Interesting() {
		t.Errorf("up-to-date app should have no flags, got %+v", st)
	}
	if labels := st.Labels(); len(labels) != 1 || labels[0] != "ok" {
		t.Errorf("Labels = %v, want [ok]", labels)
	}
}

func TestEvaluate_OriginBucketPreferred(t *testing.T) {
	// extras carries a newer version, but the app was installed from main
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.2.0"}`})
	extras := makeBucket(t, "extras", map[string]string{"git": `{"version":"2.0.0"}`})
	app := installed.Package{Name: "git", Version: "1.2.0", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{extras, main})

	if st.Latest != "1.2.0" {
		t.Errorf("Latest = %q, want origin bucket's 1.2.0", st.Latest)
	}
	if st.Outdated {
		t.Error("app at its origin bucket's version is not outdated")
	}
}

func TestEvaluate_NoOriginFallsBackToMax(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.9.0"}`})
	extras := makeBucket(t, "extras", map[string]string{"git": `{"version":"1.10.0"}`})
	app := installed.Package{Name: "git", Version: "1.9.0"}

	st := Evaluate(app, []bucket.Entry{main, extras})

	if st.Latest != "1.10.0" {
		t.Errorf("Latest = %q, want the max across buckets", st.Latest)
	}
	if !st.Outdated {
		t.Error("1.9.0 against max 1.10.0 should be outdated")
	}
}

func TestEvaluate_Removed(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.0"}`})
	app := installed.Package{Name: "vanished", Version: "3.2", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{main})

	if !st.Removed {
		t.Error("app absent from every bucket should be removed")
	}
	// Removed never reports outdated: there is nothing to compare against
	if st.Outdated {
		t.Error("removed app must not be outdated")
	}
	if st.Latest != "" {
		t.Errorf("Latest = %q, want empty", st.Latest)
	}
}

func TestEvaluate_FailedNeverOutdated(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"99.0"}`})
	// Broken current link: no version resolvable
	app := installed.Package{Name: "git", Version: "", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{main})

	if !st.Failed {
		t.Error("app without a resolvable version should be failed")
	}
	if st.Outdated {
		t.Error("failed app must not also be outdated")
	}
	if st.Latest != "99.0" {
		t.Errorf("Latest = %q, want the bucket version", st.Latest)
	}
}

func TestEvaluate_DeprecatedMarker(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{
		"old": `{"version":"1.0","deprecated":"use new instead"}`,
	})
	app := installed.Package{Name: "old", Version: "1.0", Bucket: "main"}

	st := Evaluate(app, []bucket.Entry{main})
	if !st.Deprecated {
		t.Error("manifest with a deprecation marker should flag deprecated")
	}
}

func TestEvaluate_DeprecatedPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deprecated-bucket")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "old.json"), []byte(`{"version":"1.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	b := bucket.Entry{Name: "deprecated-bucket", Scope: paths.ScopeUser, Dir: dir, ManifestDir: dir}
	app := installed.Package{Name: "old", Version: "1.0", Bucket: "deprecated-bucket"}

	st := Evaluate(app, []bucket.Entry{b})
	if !st.Deprecated {
		t.Error("manifest under a deprecated path should flag deprecated")
	}
}

func TestEvaluate_HeldCarriesThrough(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"vim": `{"version":"9.1"}`})
	app := installed.Package{Name: "vim", Version: "9.0", Bucket: "main", Held: true}

	st := Evaluate(app, []bucket.Entry{main})
	if !st.Held {
		t.Error("held install should stay held in its status")
	}
	if !st.Outdated {
		t.Error("held does not mask outdated")
	}
}

func TestCheck_EndToEnd(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.2.0"}`})
	extras := makeBucket(t, "extras", map[string]string{"7zip": `{"version":"21.0"}`})

	apps := []installed.Package{
		{Name: "git", Scope: paths.ScopeUser, Version: "1.1.0", Bucket: "main"},
		{Name: "7zip", Scope: paths.ScopeUser, Version: "21.0", Bucket: "extras"},
	}

	results := Check(apps, []bucket.Entry{main, extras}, CheckOptions{})

	if len(results) != 2 {
		t.Fatalf("Check returned %d results, want 2", len(results))
	}
	// Sorted case-insensitively by name: 7zip before git
	if results[0].Name != "7zip" || results[1].Name != "git" {
		t.Errorf("order = [%s %s], want [7zip git]", results[0].Name, results[1].Name)
	}
	if results[0].Interesting() {
		t.Errorf("7zip should be up to date, got %+v", results[0])
	}
	if !results[1].Outdated || results[1].Latest != "1.2.0" {
		t.Errorf("git = %+v, want outdated at latest 1.2.0", results[1])
	}
}

func TestCheck_HoldPropagatesAcrossScopes(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"2.0"}`})

	apps := []installed.Package{
		{Name: "git", Scope: paths.ScopeUser, Version: "1.0", Bucket: "main", Held: true},
		{Name: "Git", Scope: paths.ScopeGlobal, Version: "1.0", Bucket: "main"},
	}

	results := Check(apps, []bucket.Entry{main}, CheckOptions{})

	if len(results) != 2 {
		t.Fatalf("Check returned %d results, want 2", len(results))
	}
	for _, r := range results {
		if !r.Held {
			t.Errorf("%s/%v should inherit the hold", r.Name, r.Scope)
		}
	}
}

func TestCheck_ProgressReachesTotal(t *testing.T) {
	main := makeBucket(t, "main", map[string]string{"git": `{"version":"1.0"}`})

	apps := []installed.Package{
		{Name: "git", Scope: paths.ScopeUser, Version: "1.0", Bucket: "main"},
		{Name: "vim", Scope: paths.ScopeUser, Version: "9.1", Bucket: "main"},
	}

	var lastDone, lastTotal int
	Check(apps, []bucket.Entry{main}, CheckOptions{
		OnProgress: func(done, total int) {
			lastDone, lastTotal = done, total
		},
	})

	if lastTotal != 2 {
		t.Errorf("total = %d, want 2", lastTotal)
	}
	if lastDone < 1 || lastDone > 2 {
		t.Errorf("done = %d, want within [1, 2]", lastDone)
	}
}

func TestCheck_NoApps(t *testing.T) {
	if results := Check(nil, nil, CheckOptions{}); len(results) != 0 {
		t.Errorf("Check(nil) = %v, want empty", results)
	}
}
