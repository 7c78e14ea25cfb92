// Package paths resolves per-scope root directories and their well-known
// subdirectories. Lookup is purely environment-based; the only fatal
// condition is an unresolvable home/profile directory.
package paths

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrHomeUnresolved is returned when the user profile directory cannot
	// be determined from the environment
	ErrHomeUnresolved = errors.New("user home directory is unresolvable")
	// ErrUnknownScope is returned for a scope name that is neither "user"
	// nor "global"
	ErrUnknownScope = errors.New("unknown scope")
)

// Scope selects one of the two independent installation roots
type Scope int

const (
	// ScopeUser is the per-user installation root
	ScopeUser Scope = iota
	// ScopeGlobal is the system-wide installation root
	ScopeGlobal
)

// Scopes lists all scopes in lookup-priority order (user before global)
func Scopes() []Scope {
	return []Scope{ScopeUser, ScopeGlobal}
}

// String returns the scope name
func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// ParseScope parses a scope name
func ParseScope(name string) (Scope, error) {
	switch name {
	case "user":
		return ScopeUser, nil
	case "global":
		return ScopeGlobal, nil
	default:
		return ScopeUser, fmt.Errorf("%w: %q", ErrUnknownScope, name)
	}
}

// Resolver computes scope roots. Zero-value fields defer to environment
// variables and platform defaults; set fields take priority (used to apply
// config file overrides).
type Resolver struct {
	UserRoot   string
	GlobalRoot string
	DataRoot   string
}

// Root returns the root directory for a scope
func (r *Resolver) Root(scope Scope) (string, error) {
	switch scope {
	case ScopeGlobal:
		if r.GlobalRoot != "" {
			return r.GlobalRoot, nil
		}
		if v := os.Getenv("PAIL_GLOBAL_ROOT"); v != "" {
			return v, nil
		}
		// %ProgramData% on Windows; fixed system path elsewhere
		if pd := os.Getenv("ProgramData"); pd != "" {
			return filepath.Join(pd, "pail"), nil
		}
		return filepath.Join("/var", "lib", "pail"), nil
	default:
		if r.UserRoot != "" {
			return r.UserRoot, nil
		}
		if v := os.Getenv("PAIL_ROOT"); v != "" {
			return v, nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHomeUnresolved, err)
		}
		return filepath.Join(home, "pail"), nil
	}
}

// AppsDir returns the installed-package directory for a scope
func (r *Resolver) AppsDir(scope Scope) (string, error) {
	return r.subdir(scope, "apps")
}

// ShimsDir returns the shim directory for a scope
func (r *Resolver) ShimsDir(scope Scope) (string, error) {
	return r.subdir(scope, "shims")
}

// BucketsDir returns the bucket root directory for a scope
func (r *Resolver) BucketsDir(scope Scope) (string, error) {
	return r.subdir(scope, "buckets")
}

// DownloadCacheDir returns the download cache directory for a scope
func (r *Resolver) DownloadCacheDir(scope Scope) (string, error) {
	return r.subdir(scope, "cache")
}

// AppDir returns the install directory of one package
func (r *Resolver) AppDir(scope Scope, name string) (string, error) {
	apps, err := r.AppsDir(scope)
	if err != nil {
		return "", err
	}
	return filepath.Join(apps, name), nil
}

// CurrentLink returns the path of a package's "current" version link
func (r *Resolver) CurrentLink(scope Scope, name string) (string, error) {
	app, err := r.AppDir(scope, name)
	if err != nil {
		return "", err
	}
	return filepath.Join(app, "current"), nil
}

// DataDir returns the directory holding persisted engine state (the
// package index document). Overridable via PAIL_DATA_DIR.
func (r *Resolver) DataDir() (string, error) {
	if r.DataRoot != "" {
		return r.DataRoot, nil
	}
	if v := os.Getenv("PAIL_DATA_DIR"); v != "" {
		return v, nil
	}
	root, err := r.Root(ScopeUser)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "data"), nil
}

func (r *Resolver) subdir(scope Scope, name string) (string, error) {
	root, err := r.Root(scope)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}
