package bucket

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pailkit/pail/internal/common/git"
	"github.com/pailkit/pail/internal/paths"
)

// writeManifest drops a minimal manifest file into dir
func writeManifest(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, []byte(`{"version":"1.0"}`), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testResolver(t *testing.T) *paths.Resolver {
	t.Helper()
	return &paths.Resolver{
		UserRoot:   filepath.Join(t.TempDir(), "user"),
		GlobalRoot: filepath.Join(t.TempDir(), "global"),
	}
}

func TestList_MissingRoot(t *testing.T) {
	r := testResolver(t)

	buckets, err := List(r, paths.ScopeUser)
	if err != nil {
		t.Fatalf("List returned error for absent root: %v", err)
	}
	if len(buckets) != 0 {
		t.Errorf("List = %v, want empty", buckets)
	}
}

func TestList_SortedAndFiltered(t *testing.T) {
	r := testResolver(t)
	root, _ := r.BucketsDir(paths.ScopeUser)

	writeManifest(t, filepath.Join(root, "zeta"), "tool")
	writeManifest(t, filepath.Join(root, "alpha"), "tool")
	writeManifest(t, filepath.Join(root, ".git"), "tool")
	// A stray file next to the bucket dirs is not a bucket
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	buckets, err := List(r, paths.ScopeUser)
	if err != nil {
		t.Fatal(err)
	}

	if len(buckets) != 2 {
		t.Fatalf("List returned %d buckets, want 2", len(buckets))
	}
	if buckets[0].Name != "alpha" || buckets[1].Name != "zeta" {
		t.Errorf("bucket order = [%s %s], want [alpha zeta]", buckets[0].Name, buckets[1].Name)
	}
	if buckets[0].Scope != paths.ScopeUser {
		t.Errorf("Scope = %v, want user", buckets[0].Scope)
	}
}

func TestList_NestedManifestDir(t *testing.T) {
	r := testResolver(t)
	root, _ := r.BucketsDir(paths.ScopeUser)

	// Newer layout: manifests under <bucket>/bucket/
	nestedDir := filepath.Join(root, "nested")
	writeManifest(t, filepath.Join(nestedDir, "bucket"), "git")

	// Older layout: manifests at the repository root
	flatDir := filepath.Join(root, "flat")
	writeManifest(t, flatDir, "7zip")

	// A "bucket" subdir without manifests does not win
	emptyNested := filepath.Join(root, "emptynested")
	writeManifest(t, emptyNested, "vim")
	if err := os.MkdirAll(filepath.Join(emptyNested, "bucket"), 0o755); err != nil {
		t.Fatal(err)
	}

	buckets, err := List(r, paths.ScopeUser)
	if err != nil {
		t.Fatal(err)
	}

	byName := map[string]Entry{}
	for _, b := range buckets {
		byName[b.Name] = b
	}

	if got, want := byName["nested"].ManifestDir, filepath.Join(nestedDir, "bucket"); got != want {
		t.Errorf("nested ManifestDir = %q, want %q", got, want)
	}
	if got, want := byName["flat"].ManifestDir, flatDir; got != want {
		t.Errorf("flat ManifestDir = %q, want %q", got, want)
	}
	if got, want := byName["emptynested"].ManifestDir, emptyNested; got != want {
		t.Errorf("emptynested ManifestDir = %q, want %q", got, want)
	}
}

func TestListAll_UserScopeFirst(t *testing.T) {
	r := testResolver(t)
	userRoot, _ := r.BucketsDir(paths.ScopeUser)
	globalRoot, _ := r.BucketsDir(paths.ScopeGlobal)

	writeManifest(t, filepath.Join(userRoot, "main"), "git")
	writeManifest(t, filepath.Join(globalRoot, "main"), "git")
	writeManifest(t, filepath.Join(globalRoot, "extras"), "7zip")

	buckets, err := ListAll(r)
	if err != nil {
		t.Fatal(err)
	}

	if len(buckets) != 3 {
		t.Fatalf("ListAll returned %d buckets, want 3", len(buckets))
	}
	if buckets[0].Scope != paths.ScopeUser {
		t.Errorf("first bucket scope = %v, want user", buckets[0].Scope)
	}
	if buckets[1].Scope != paths.ScopeGlobal || buckets[2].Scope != paths.ScopeGlobal {
		t.Error("global buckets should follow user buckets")
	}
}

func TestEntry_ManifestPathAndContains(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "git")

	e := Entry{Name: "main", Scope: paths.ScopeUser, Dir: dir, ManifestDir: dir}

	if want := filepath.Join(dir, "git.json"); e.ManifestPath("git") != want {
		t.Errorf("ManifestPath = %q, want %q", e.ManifestPath("git"), want)
	}
	if !e.Contains("git") {
		t.Error("Contains(git) = false, want true")
	}
	if e.Contains("missing") {
		t.Error("Contains(missing) = true, want false")
	}
}

func TestEntry_Key(t *testing.T) {
	e := Entry{Name: "main", Scope: paths.ScopeGlobal}
	if e.Key() != "global:main" {
		t.Errorf("Key() = %q, want %q", e.Key(), "global:main")
	}
}

func TestWithRemotes(t *testing.T) {
	mock := git.NewMock()
	mock.IsRepoFunc = func(dir string) bool {
		return filepath.Base(dir) == "repo"
	}
	mock.RemoteFunc = func(dir string) (string, error) {
		return "https://example.com/buckets/main", nil
	}

	entries := []Entry{
		{Name: "repo", Dir: "/b/repo"},
		{Name: "plain", Dir: "/b/plain"},
	}

	out := WithRemotes(entries, mock)

	if out[0].Remote != "https://example.com/buckets/main" {
		t.Errorf("repo Remote = %q, want the mock URL", out[0].Remote)
	}
	if out[1].Remote != "" {
		t.Errorf("plain Remote = %q, want empty", out[1].Remote)
	}
	// Input slice must not be mutated
	if entries[0].Remote != "" {
		t.Error("WithRemotes mutated its input")
	}
}
