// Package config handles reading and writing the crib configuration file (~/.crib/config.toml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds crib configuration settings.
type Config struct {
	DefaultSource    string   `toml:"default_source,omitempty" json:"default_source,omitempty"`
	ContextBudget    int      `toml:"context_budget,omitempty" json:"context_budget,omitempty"`
	SourceExtensions []string `toml:"source_extensions,omitempty" json:"source_extensions,omitempty"`
	ExcludeDirs      []string `toml:"exclude_dirs,omitempty" json:"exclude_dirs,omitempty"`
	DefaultFormat    string   `toml:"default_format,omitempty" json:"default_format,omitempty"`
	LogLevel         string   `toml:"log_level,omitempty" json:"log_level,omitempty"`
	Concurrency      int      `toml:"concurrency,omitempty" json:"concurrency,omitempty"`
}

// validKeys lists the allowed configuration keys.
var validKeys = map[string]bool{
	"default_source":    true,
	"context_budget":    true,
	"source_extensions": true,
	"exclude_dirs":      true,
	"default_format":    true,
	"log_level":         true,
	"concurrency":       true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{"concurrency", "context_budget", "default_format", "default_source", "exclude_dirs", "log_level", "source_extensions"}
}

// HomeDir returns the crib home directory. CRIB_HOME overrides the
// default of ~/.crib.
func HomeDir() string {
	if dir := os.Getenv("CRIB_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".crib")
	}
	return filepath.Join(home, ".crib")
}

// Path returns the default config file path (~/.crib/config.toml).
func Path() string {
	return filepath.Join(HomeDir(), "config.toml")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from a specific path. Returns an empty Config
// if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to a specific path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the string value of a configuration key. Unset keys return
// the empty string.
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "default_source":
		return c.DefaultSource, nil
	case "context_budget":
		if c.ContextBudget == 0 {
			return "", nil
		}
		return strconv.Itoa(c.ContextBudget), nil
	case "source_extensions":
		return strings.Join(c.SourceExtensions, ","), nil
	case "exclude_dirs":
		return strings.Join(c.ExcludeDirs, ","), nil
	case "default_format":
		return c.DefaultFormat, nil
	case "log_level":
		return c.LogLevel, nil
	case "concurrency":
		if c.Concurrency == 0 {
			return "", nil
		}
		return strconv.Itoa(c.Concurrency), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set assigns a value to a configuration key. An empty value resets the
// key to its unset state.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "default_source":
		c.DefaultSource = value
	case "context_budget":
		if value == "" {
			c.ContextBudget = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("context_budget must be a positive integer, got %q", value)
		}
		c.ContextBudget = n
	case "source_extensions":
		if value == "" {
			c.SourceExtensions = nil
		} else {
			c.SourceExtensions = strings.Split(value, ",")
		}
	case "exclude_dirs":
		if value == "" {
			c.ExcludeDirs = nil
		} else {
			c.ExcludeDirs = strings.Split(value, ",")
		}
	case "default_format":
		if value != "" && value != "table" && value != "json" {
			return fmt.Errorf("default_format must be \"table\" or \"json\", got %q", value)
		}
		c.DefaultFormat = value
	case "log_level":
		switch value {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", value)
		}
		c.LogLevel = value
	case "concurrency":
		if value == "" {
			c.Concurrency = 0
			return nil
		}
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("concurrency must be a positive integer, got %q", value)
		}
		c.Concurrency = n
	}
	return nil
}
