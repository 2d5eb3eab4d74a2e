package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// AppDir is the directory name under the XDG config and cache homes.
	AppDir = "bibscrape"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// DBFile is the search index file name.
	DBFile = "library.db"

	// EnvLibrary overrides library_path.
	EnvLibrary = "BIBSCRAPE_LIBRARY"
	// EnvPapers overrides papers_dir.
	EnvPapers = "BIBSCRAPE_PAPERS"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/bibscrape/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, AppDir, ConfigFile)
}

// DBPath returns the path of the search index.
// Respects XDG_CACHE_HOME, defaults to ~/.cache/bibscrape/library.db.
func DBPath() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), AppDir, DBFile)
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, AppDir, DBFile)
}

// Load reads the config file, applies defaults and environment overrides,
// and expands ~ in paths. A missing file gives the defaults.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg, err := ReadFile(Path())
	if err != nil {
		return nil, err
	}

	if v := os.Getenv(EnvLibrary); v != "" {
		cfg.LibraryPath = v
	}
	if v := os.Getenv(EnvPapers); v != "" {
		cfg.PapersDir = v
	}
	cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	cfg.PapersDir = ExpandPath(cfg.PapersDir)

	if err := ValidatePDFReader(cfg.PDFReader); err != nil {
		return nil, fmt.Errorf("%s: %w", Path(), err)
	}

	configCache = cfg
	return cfg, nil
}

// ReadFile parses a config file with defaults applied but without
// environment overrides or path expansion. A missing file gives the defaults.
func ReadFile(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ResetCache clears the cached config.
// Useful for testing.
func ResetCache() {
	configCache = nil
}
