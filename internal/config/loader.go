package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".previewscan"

// ErrConfigNotFound is returned when the configuration file does not exist.
// Callers should handle this error based on whether the config file path
// was explicitly specified by the user.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the YAML shape of the optional configuration file.
// Every key is optional; absent keys leave the defaults untouched.
// Durations are plain strings in Go duration syntax (e.g. "60s", "500ms")
// because YAML has no native duration type.
type File struct {
	BaseURL              string   `yaml:"base_url"`
	MinValidSize         *int64   `yaml:"min_valid_size"`
	PageSize             *int     `yaml:"page_size"`
	Timeout              string   `yaml:"timeout"`
	CatalogTimeout       string   `yaml:"catalog_timeout"`
	ProbeDelay           string   `yaml:"probe_delay"`
	RefreshDelay         string   `yaml:"refresh_delay"`
	RemediationDelay     string   `yaml:"remediation_delay"`
	FailureRateThreshold *float64 `yaml:"failure_rate_threshold"`
	MaxBodySize          *int64   `yaml:"max_body_size"`
	UserAgent            string   `yaml:"user_agent"`
}

// LoadConfigFile loads configuration overrides from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// Apply merges the file's overrides into cfg.
// Zero-valued keys (empty strings, nil pointers) are skipped, so the file
// only overrides what it mentions. Duration strings that fail to parse
// return an error naming the offending key.
func (f *File) Apply(cfg *Config) error {
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.MinValidSize != nil {
		cfg.MinValidSize = *f.MinValidSize
	}
	if f.PageSize != nil {
		cfg.PageSize = *f.PageSize
	}
	if f.FailureRateThreshold != nil {
		cfg.FailureRateThreshold = *f.FailureRateThreshold
	}
	if f.MaxBodySize != nil {
		cfg.MaxBodySize = *f.MaxBodySize
	}
	if f.UserAgent != "" {
		cfg.UserAgent = f.UserAgent
	}

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{"timeout", f.Timeout, &cfg.Timeout},
		{"catalog_timeout", f.CatalogTimeout, &cfg.CatalogTimeout},
		{"probe_delay", f.ProbeDelay, &cfg.ProbeDelay},
		{"refresh_delay", f.RefreshDelay, &cfg.RefreshDelay},
		{"remediation_delay", f.RemediationDelay, &cfg.RemediationDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", d.key, d.value, err)
		}
		*d.dst = parsed
	}

	return nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. Look for .previewscan in the current directory
//  3. Look for .previewscan in the user's home directory
//  4. Look for config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if
// not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	xdgConfig := filepath.Join(XDGConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig
	}

	return ""
}
