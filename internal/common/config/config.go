package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var (
	ErrRootNotFound = errors.New("configured root directory does not exist")
)

// Config represents the application configuration
type Config struct {
	Roots  RootsConfig  `yaml:"roots"`
	Cache  CacheConfig  `yaml:"cache"`
	Search SearchConfig `yaml:"search"`
}

// RootsConfig holds optional overrides for the scope root directories.
// Empty values defer to the environment-based defaults.
type RootsConfig struct {
	User   string `yaml:"user,omitempty"`
	Global string `yaml:"global,omitempty"`
}

// CacheConfig holds settings for the persistent package index
type CacheConfig struct {
	Dir              string `yaml:"dir,omitempty"`               // Override for the engine data directory
	StalenessMinutes int    `yaml:"staleness_minutes,omitempty"` // Index staleness window (default 5)
}

// SearchConfig holds default search behavior
type SearchConfig struct {
	CaseSensitive bool `yaml:"case_sensitive"`
}

// ConfigPaths returns all possible config file paths in priority order
// 1. ~/.config/pail/config.yaml (XDG standard - priority)
// 2. ~/.pail/config.yaml (legacy fallback)
func ConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	// Check XDG_CONFIG_HOME first, fallback to ~/.config
	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}

	return []string{
		filepath.Join(xdgConfig, "pail", "config.yaml"),
		filepath.Join(home, ".pail", "config.yaml"),
	}, nil
}

// DefaultConfigPath returns the default config file path (XDG standard)
func DefaultConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}
	return paths[0], nil
}

// FindConfigPath returns the first existing config file path
// Returns the default path if no config file exists yet
func FindConfigPath() (string, error) {
	paths, err := ConfigPaths()
	if err != nil {
		return "", err
	}

	// Return first existing config file
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	// No config exists, return default (XDG) path for creation
	return paths[0], nil
}

// Load reads configuration from the first available config file
// Priority: ~/.config/pail/config.yaml > ~/.pail/config.yaml
func Load() (*Config, error) {
	configPath, err := FindConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configuration from a specific file path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Create default config
			cfg := &Config{
				Cache: CacheConfig{
					StalenessMinutes: 5,
				},
			}
			if saveErr := cfg.SaveTo(path); saveErr != nil {
				return nil, saveErr
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes configuration to the default config file
func (c *Config) Save() error {
	configPath, err := DefaultConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes configuration to a specific file path
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// UserRoot returns the configured user root override, home-expanded and
// validated. An empty override returns "" with no error.
func (c *Config) UserRoot() (string, error) {
	return c.rootOverride(c.Roots.User)
}

// GlobalRoot returns the configured global root override, home-expanded and
// validated. An empty override returns "" with no error.
func (c *Config) GlobalRoot() (string, error) {
	return c.rootOverride(c.Roots.Global)
}

func (c *Config) rootOverride(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	expanded, err := ExpandHome(path)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrRootNotFound
		}
		return "", err
	}
	if !info.IsDir() {
		return "", ErrRootNotFound
	}

	return expanded, nil
}

// ExpandHome expands a leading ~ to the user home directory
func ExpandHome(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
