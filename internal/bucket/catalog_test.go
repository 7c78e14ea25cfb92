package bucket

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const testCatalog = `
[main]
url = "https://example.com/buckets/main"

[extras]
url = "https://example.com/buckets/extras"
branch = "stable"

[broken]
branch = "main"
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buckets.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCatalog(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, testCatalog))
	if err != nil {
		t.Fatalf("LoadCatalog returned error: %v", err)
	}

	if len(catalog.Sources) != 3 {
		t.Fatalf("loaded %d sources, want 3", len(catalog.Sources))
	}

	main := catalog.Sources["main"]
	if main.URL != "https://example.com/buckets/main" || main.Branch != "" {
		t.Errorf("main = %+v", main)
	}

	extras := catalog.Sources["extras"]
	if extras.Branch != "stable" {
		t.Errorf("extras.Branch = %q, want %q", extras.Branch, "stable")
	}
}

func TestLoadCatalog_NotFound(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "buckets.toml"))
	if !errors.Is(err, ErrCatalogNotFound) {
		t.Errorf("error = %v, want ErrCatalogNotFound", err)
	}
}

func TestLoadCatalog_Malformed(t *testing.T) {
	_, err := LoadCatalog(writeCatalog(t, "[main\nurl ="))
	if err == nil {
		t.Error("LoadCatalog should reject malformed toml")
	}
}

func TestCatalogResolve(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	src, err := catalog.Resolve("main")
	if err != nil {
		t.Fatalf("Resolve(main) returned error: %v", err)
	}
	if src.URL != "https://example.com/buckets/main" {
		t.Errorf("URL = %q", src.URL)
	}

	if _, err := catalog.Resolve("nope"); !errors.Is(err, ErrUnknownBucket) {
		t.Errorf("Resolve(nope) error = %v, want ErrUnknownBucket", err)
	}

	// A section without a url is unusable
	if _, err := catalog.Resolve("broken"); !errors.Is(err, ErrUnknownBucket) {
		t.Errorf("Resolve(broken) error = %v, want ErrUnknownBucket", err)
	}
}

func TestCatalogNames(t *testing.T) {
	catalog, err := LoadCatalog(writeCatalog(t, testCatalog))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"broken", "extras", "main"}
	if got := catalog.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
