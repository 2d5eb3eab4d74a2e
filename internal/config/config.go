// Package config handles the user's bibscrape configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Config holds every setting of config.yml.
type Config struct {
	LibraryPath       string  `yaml:"library_path,omitempty"`
	PapersDir         string  `yaml:"papers_dir,omitempty"`
	RemoteHost        string  `yaml:"remote_host,omitempty"`
	RemoteDir         string  `yaml:"remote_dir,omitempty"`
	RemoteUser        string  `yaml:"remote_user,omitempty"`
	RemoteProxyJump   string  `yaml:"remote_proxy_jump,omitempty"`
	PDFReader         string  `yaml:"pdf_reader,omitempty"`
	UserAgent         string  `yaml:"user_agent,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	LegacyTypeDefault bool    `yaml:"legacy_type_default,omitempty"`
}

const (
	DefaultLibraryPath       = "~/pim/library.bib"
	DefaultPapersDir         = "~/papers"
	DefaultRemoteDir         = "public_html/papers"
	DefaultPDFReader         = "system"
	DefaultRequestsPerSecond = 2.0
)

// ValidReaders lists the supported PDF reader values.
var ValidReaders = []string{"system", "skim", "zathura", "evince", "okular"}

// Keys lists the settings accepted by Get and Set, in file order.
var Keys = []string{
	"library_path",
	"papers_dir",
	"remote_host",
	"remote_dir",
	"remote_user",
	"remote_proxy_jump",
	"pdf_reader",
	"user_agent",
	"requests_per_second",
	"legacy_type_default",
}

// Default returns a config with every default filled in.
func Default() *Config {
	return &Config{
		LibraryPath:       DefaultLibraryPath,
		PapersDir:         DefaultPapersDir,
		RemoteDir:         DefaultRemoteDir,
		PDFReader:         DefaultPDFReader,
		RequestsPerSecond: DefaultRequestsPerSecond,
	}
}

// applyDefaults fills unset fields from Default.
func (c *Config) applyDefaults() {
	d := Default()
	if c.LibraryPath == "" {
		c.LibraryPath = d.LibraryPath
	}
	if c.PapersDir == "" {
		c.PapersDir = d.PapersDir
	}
	if c.RemoteDir == "" {
		c.RemoteDir = d.RemoteDir
	}
	if c.PDFReader == "" {
		c.PDFReader = d.PDFReader
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = d.RequestsPerSecond
	}
}

// Get returns the string form of a setting.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "library_path":
		return c.LibraryPath, nil
	case "papers_dir":
		return c.PapersDir, nil
	case "remote_host":
		return c.RemoteHost, nil
	case "remote_dir":
		return c.RemoteDir, nil
	case "remote_user":
		return c.RemoteUser, nil
	case "remote_proxy_jump":
		return c.RemoteProxyJump, nil
	case "pdf_reader":
		return c.PDFReader, nil
	case "user_agent":
		return c.UserAgent, nil
	case "requests_per_second":
		return strconv.FormatFloat(c.RequestsPerSecond, 'g', -1, 64), nil
	case "legacy_type_default":
		return strconv.FormatBool(c.LegacyTypeDefault), nil
	default:
		return "", unknownKeyError(key)
	}
}

// Set validates and stores a setting given as a string.
func (c *Config) Set(key, value string) error {
	switch key {
	case "library_path":
		c.LibraryPath = value
	case "papers_dir":
		c.PapersDir = value
	case "remote_host":
		c.RemoteHost = value
	case "remote_dir":
		c.RemoteDir = value
	case "remote_user":
		c.RemoteUser = value
	case "remote_proxy_jump":
		c.RemoteProxyJump = value
	case "pdf_reader":
		if err := ValidatePDFReader(value); err != nil {
			return err
		}
		c.PDFReader = value
	case "user_agent":
		c.UserAgent = value
	case "requests_per_second":
		rps, err := strconv.ParseFloat(value, 64)
		if err != nil || rps < 0 {
			return fmt.Errorf("invalid requests_per_second: %q (want a non-negative number)", value)
		}
		c.RequestsPerSecond = rps
	case "legacy_type_default":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid legacy_type_default: %q (want true or false)", value)
		}
		c.LegacyTypeDefault = b
	default:
		return unknownKeyError(key)
	}
	return nil
}

func unknownKeyError(key string) error {
	return fmt.Errorf("unknown config key: %s (valid: %s)", key, strings.Join(Keys, ", "))
}

// ValidatePDFReader checks that the reader value is valid.
func ValidatePDFReader(reader string) error {
	if reader == "" {
		return nil // Empty defaults to "system"
	}
	if slices.Contains(ValidReaders, reader) {
		return nil
	}
	return fmt.Errorf("invalid pdf_reader: %s (valid: %v)", reader, ValidReaders)
}

// ValidatePapersDir checks that the papers directory exists and is a directory.
func ValidatePapersDir(path string) error {
	expandedPath := ExpandPath(path)

	info, err := os.Stat(expandedPath)
	if err != nil {
		return fmt.Errorf("path does not exist: %s", expandedPath)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory: %s", expandedPath)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
