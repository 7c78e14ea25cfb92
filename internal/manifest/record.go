// Package manifest reads package manifest documents. Manifests are
// third-party bucket content and therefore untrusted input: absent and
// extra fields are tolerated, malformed values degrade to zero values,
// and parse failures are reported as errors for the caller to skip.
package manifest

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrMalformed = errors.New("malformed manifest")
)

// Record is a parsed manifest. Fields with more than one accepted wire
// shape are kept raw and decoded on demand.
type Record struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Homepage    string `json:"homepage"`

	// License is a string or an object with an "identifier" field
	License json.RawMessage `json:"license"`
	// Bin is a string, an array of strings, or an array mixing strings
	// and [target, alias] pairs
	Bin json.RawMessage `json:"bin"`
	// Depends is a string or an array of strings
	Depends json.RawMessage `json:"depends"`
	// Deprecated is a boolean or string marker set by bucket maintainers
	Deprecated json.RawMessage `json:"deprecated"`
}

// Parse decodes a manifest document
func Parse(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return &rec, nil
}

// ParseFile reads and decodes a manifest file
func ParseFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LicenseName returns the license identifier, from either accepted shape
func (r *Record) LicenseName() string {
	if len(r.License) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(r.License, &s); err == nil {
		return s
	}

	var obj struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(r.License, &obj); err == nil {
		return obj.Identifier
	}

	return ""
}

// BinNames returns the normalized executable names declared by the
// manifest. Accepted shapes: a single string, an array of strings, or an
// array mixing strings and [target, alias] pairs (the alias wins).
// Unrecognized elements are skipped.
func (r *Record) BinNames() []string {
	if len(r.Bin) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(r.Bin, &single); err == nil {
		if n := normalizeBin(single); n != "" {
			return []string{n}
		}
		return nil
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(r.Bin, &elements); err != nil {
		return nil
	}

	var names []string
	for _, el := range elements {
		var s string
		if err := json.Unmarshal(el, &s); err == nil {
			if n := normalizeBin(s); n != "" {
				names = append(names, n)
			}
			continue
		}

		// [target, alias] pair; the alias is the name on PATH
		var pair []string
		if err := json.Unmarshal(el, &pair); err == nil && len(pair) > 0 {
			s = pair[0]
			if len(pair) > 1 && pair[1] != "" {
				s = pair[1]
			}
			if n := normalizeBin(s); n != "" {
				names = append(names, n)
			}
		}
	}

	return names
}

// DependsOn returns declared dependency names, from either accepted shape
func (r *Record) DependsOn() []string {
	if len(r.Depends) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(r.Depends, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	var many []string
	if err := json.Unmarshal(r.Depends, &many); err == nil {
		return many
	}

	return nil
}

// IsDeprecated reports whether the manifest carries a deprecation marker
// (boolean true or any non-empty string)
func (r *Record) IsDeprecated() bool {
	if len(r.Deprecated) == 0 {
		return false
	}

	var b bool
	if err := json.Unmarshal(r.Deprecated, &b); err == nil {
		return b
	}

	var s string
	if err := json.Unmarshal(r.Deprecated, &s); err == nil {
		return s != ""
	}

	return false
}

// normalizeBin reduces a bin declaration to the bare name a shim would
// expose: path stripped (either separator convention), extension dropped
func normalizeBin(bin string) string {
	bin = strings.TrimSpace(bin)
	if bin == "" {
		return ""
	}

	// Manifests written for Windows use backslash paths
	bin = strings.ReplaceAll(bin, "\\", "/")
	bin = filepath.Base(bin)

	if ext := filepath.Ext(bin); ext != "" && ext != bin {
		bin = strings.TrimSuffix(bin, ext)
	}

	return bin
}
