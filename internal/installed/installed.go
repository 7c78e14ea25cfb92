// Package installed lists installed packages per scope. A package's active
// version is the target of its "current" directory link; a broken or
// missing link leaves version and current directory empty, never an error.
package installed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pailkit/pail/internal/paths"
)

// Package represents one installed package
type Package struct {
	Name  string
	Scope paths.Scope
	// Dir is the package's install directory (holding version dirs)
	Dir string
	// CurrentDir is the resolved target of the "current" link, empty when
	// the link is missing or broken
	CurrentDir string
	// Version is the basename of CurrentDir, empty when unresolvable
	Version string
	// Bucket is the bucket recorded at install time, when known
	Bucket string
	// LastModified is the modification time of the active version
	LastModified time.Time
	// Held marks a package excluded from updates
	Held bool
}

// Failed reports whether the package's active version is unresolvable
func (p Package) Failed() bool {
	return p.Version == ""
}

// installReference is the install.json sidecar written at install time.
// Read permissively: absent fields and junk values degrade to zero values.
type installReference struct {
	Bucket string `json:"bucket"`
	Hold   bool   `json:"hold"`
}

// List returns the installed packages of one scope, sorted by name.
// An absent apps directory yields an empty list, not an error.
func List(r *paths.Resolver, scope paths.Scope) ([]Package, error) {
	apps, err := r.AppsDir(scope)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(apps)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var pkgs []Package
	for _, entry := range entries {
		if !entry.IsDir() && entry.Type()&os.ModeSymlink == 0 {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		pkgs = append(pkgs, inspect(scope, filepath.Join(apps, name), name))
	}

	sort.Slice(pkgs, func(i, j int) bool {
		return strings.ToLower(pkgs[i].Name) < strings.ToLower(pkgs[j].Name)
	})

	return pkgs, nil
}

// ListAll returns the installed packages of both scopes, user scope first
func ListAll(r *paths.Resolver) ([]Package, error) {
	var all []Package
	for _, scope := range paths.Scopes() {
		pkgs, err := List(r, scope)
		if err != nil {
			return nil, err
		}
		all = append(all, pkgs...)
	}
	return all, nil
}

// inspect assembles one Package from its install directory
func inspect(scope paths.Scope, dir, name string) Package {
	pkg := Package{
		Name:  name,
		Scope: scope,
		Dir:   dir,
	}

	currentDir, version := ResolveCurrent(filepath.Join(dir, "current"))
	pkg.CurrentDir = currentDir
	pkg.Version = version

	statTarget := currentDir
	if statTarget == "" {
		statTarget = dir
	}
	if info, err := os.Stat(statTarget); err == nil {
		pkg.LastModified = info.ModTime()
	}

	if currentDir != "" {
		ref := readInstallReference(filepath.Join(currentDir, "install.json"))
		pkg.Bucket = ref.Bucket
		pkg.Held = ref.Hold
	}

	return pkg
}

// ResolveCurrent resolves a "current" link in two steps: link target, then
// basename as version. Missing, broken, or non-link paths yield ("", "").
func ResolveCurrent(link string) (dir, version string) {
	target, err := os.Readlink(link)
	if err == nil {
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(link), target)
		}
		target = filepath.Clean(target)

		info, err := os.Stat(target)
		if err != nil || !info.IsDir() {
			return "", ""
		}
		return target, filepath.Base(target)
	}

	// Junctions do not always read as symlinks; EvalSymlinks covers them.
	// A plain directory resolves to itself and is rejected: a "current"
	// that points nowhere carries no version.
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return "", ""
	}
	if filepath.Clean(resolved) == filepath.Clean(link) {
		return "", ""
	}

	info, err := os.Stat(resolved)
	if err != nil || !info.IsDir() {
		return "", ""
	}
	return resolved, filepath.Base(resolved)
}

// readInstallReference reads an install.json sidecar, degrading any
// failure to zero values
func readInstallReference(path string) installReference {
	var ref installReference

	data, err := os.ReadFile(path)
	if err != nil {
		return ref
	}

	// Best effort; a malformed sidecar is not an error condition
	_ = json.Unmarshal(data, &ref)
	return ref
}
