// Package config loads publist settings from a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no config file is named and it exists.
const DefaultPath = "publist.yaml"

// Configuration validation errors.
var (
	ErrNoSources          = errors.New("one of orcid_id, scopus_id or pdf_dirs is required")
	ErrMissingBasename    = errors.New("output_basename is required")
	ErrInvalidWorkers     = errors.New("workers must be at least 1")
	ErrInvalidTimeout     = errors.New("timeout_sec must be at least 1")
	ErrInvalidRate        = errors.New("requests_per_second must be non-negative")
	ErrInvalidLogLevel    = errors.New("log_level must be one of: debug, info, warn, error")
	ErrInvalidCachePath   = errors.New("cache_path must end in .xlsx, .csv, .db or .sqlite")
	ErrMissingScopusKey   = errors.New("scopus_id is set but SCOPUS_API_KEY is not")
	ErrInvalidEnvOverride = errors.New("invalid environment override")
)

// Config is the complete run configuration.
type Config struct {
	OrcidID           string    `yaml:"orcid_id"`
	ScopusID          string    `yaml:"scopus_id"`
	OutputBasename    string    `yaml:"output_basename"`
	HighlightName     string    `yaml:"highlight_name"`
	OutputDir         string    `yaml:"output_dir"`
	CachePath         string    `yaml:"cache_path"`
	SaveRaw           bool      `yaml:"save_raw"`
	PDFDirs           []string  `yaml:"pdf_dirs"`
	Workers           int       `yaml:"workers"`
	RequestsPerSecond float64   `yaml:"requests_per_second"`
	TimeoutSec        int       `yaml:"timeout_sec"`
	NewTabLinks       bool      `yaml:"new_tab_links"`
	LogLevel          string    `yaml:"log_level"`
	Git               GitConfig `yaml:"git"`

	// ScopusAPIKey only comes from the environment.
	ScopusAPIKey string `yaml:"-"`
}

// GitConfig controls committing the generated files.
type GitConfig struct {
	Commit  bool   `yaml:"commit"`
	Push    bool   `yaml:"push"`
	Message string `yaml:"message"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		OutputBasename: "publications",
		OutputDir:      ".",
		Workers:        1,
		TimeoutSec:     30,
		LogLevel:       "info",
		Git:            GitConfig{Message: "Update publication list"},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path falls back to DefaultPath, which may be absent; a named file
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	name := path
	if name == "" {
		name = DefaultPath
	}
	data, err := os.ReadFile(name)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML %s: %w", name, err)
		}
	case path == "" && errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from PUBLIST_* variables and SCOPUS_API_KEY.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"PUBLIST_ORCID_ID":        &c.OrcidID,
		"PUBLIST_SCOPUS_ID":       &c.ScopusID,
		"PUBLIST_OUTPUT_BASENAME": &c.OutputBasename,
		"PUBLIST_HIGHLIGHT_NAME":  &c.HighlightName,
		"PUBLIST_OUTPUT_DIR":      &c.OutputDir,
		"PUBLIST_CACHE_PATH":      &c.CachePath,
		"PUBLIST_LOG_LEVEL":       &c.LogLevel,
		"SCOPUS_API_KEY":          &c.ScopusAPIKey,
	}
	for k, dst := range str {
		if v, ok := lookup(k); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	if v, ok := lookup("PUBLIST_WORKERS"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: PUBLIST_WORKERS=%q", ErrInvalidEnvOverride, v)
		}
		c.Workers = n
	}
	if v, ok := lookup("PUBLIST_SAVE_RAW"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%w: PUBLIST_SAVE_RAW=%q", ErrInvalidEnvOverride, v)
		}
		c.SaveRaw = b
	}
	return nil
}

// Validate checks the configuration for a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.OrcidID) == "" && strings.TrimSpace(c.ScopusID) == "" && len(c.PDFDirs) == 0 {
		return ErrNoSources
	}
	if strings.TrimSpace(c.ScopusID) != "" && strings.TrimSpace(c.ScopusAPIKey) == "" {
		return ErrMissingScopusKey
	}
	return c.ValidateOutput()
}

// ValidateOutput checks the settings that do not depend on sources.
func (c *Config) ValidateOutput() error {
	if strings.TrimSpace(c.OutputBasename) == "" {
		return ErrMissingBasename
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRate
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch strings.ToLower(filepath.Ext(c.ResolvedCachePath())) {
	case ".xlsx", ".csv", ".db", ".sqlite", ".sqlite3":
	default:
		return ErrInvalidCachePath
	}
	return nil
}

// ResolvedCachePath is cache_path, defaulting to {output_dir}/{output_basename}.xlsx.
func (c *Config) ResolvedCachePath() string {
	if c.CachePath != "" {
		return c.CachePath
	}
	return filepath.Join(c.OutputDir, c.OutputBasename+".xlsx")
}

// RawDir is where raw registry records go, or "" when they are not saved.
func (c *Config) RawDir() string {
	if !c.SaveRaw {
		return ""
	}
	return c.OutputDir
}

// Timeout is timeout_sec as a duration.
func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutSec) * time.Second }
