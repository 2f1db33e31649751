// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all rubrica configuration.
type Config struct {
	Directory Directory `yaml:"directory"`
	Log       Log       `yaml:"log"`
	Display   Display   `yaml:"display"`
}

// Directory holds contact file settings.
type Directory struct {
	File          string `yaml:"file"`           // Persisted contact file
	SkipMalformed bool   `yaml:"skip_malformed"` // Skip unreadable lines on load instead of failing
}

// Log holds logger settings.
type Log struct {
	Level  string `yaml:"level"`  // "debug" | "info" | "warn" | "error"
	Format string `yaml:"format"` // "text" | "json"
	File   string `yaml:"file"`   // "" or "-" for stderr
}

// Display holds output settings.
type Display struct {
	Plain bool `yaml:"plain"` // Force plain text even on a TTY
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Directory: Directory{
			File: "rubrica.csv",
		},
		Log: Log{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Directory.File) == "" {
		return errors.New("config: directory.file cannot be empty")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
		// valid
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
		// valid
	default:
		return fmt.Errorf("config: log.format must be \"text\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: RUBRICA_FILE, RUBRICA_SKIP_MALFORMED,
// RUBRICA_LOG_LEVEL, RUBRICA_LOG_FORMAT.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("RUBRICA_FILE"); v != "" {
		c.Directory.File = v
	}
	if v := os.Getenv("RUBRICA_SKIP_MALFORMED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: invalid RUBRICA_SKIP_MALFORMED %q: %w", v, err)
		}
		c.Directory.SkipMalformed = b
	}
	if v := os.Getenv("RUBRICA_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RUBRICA_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Directory *rawDirectory `yaml:"directory"`
	Log       *rawLog       `yaml:"log"`
	Display   *rawDisplay   `yaml:"display"`
}

type rawDirectory struct {
	File          *string `yaml:"file"`
	SkipMalformed *bool   `yaml:"skip_malformed"`
}

type rawLog struct {
	Level  *string `yaml:"level"`
	Format *string `yaml:"format"`
	File   *string `yaml:"file"`
}

type rawDisplay struct {
	Plain *bool `yaml:"plain"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Directory != nil {
		if layer.Directory.File != nil {
			c.Directory.File = *layer.Directory.File
		}
		if layer.Directory.SkipMalformed != nil {
			c.Directory.SkipMalformed = *layer.Directory.SkipMalformed
		}
	}
	if layer.Log != nil {
		if layer.Log.Level != nil {
			c.Log.Level = *layer.Log.Level
		}
		if layer.Log.Format != nil {
			c.Log.Format = *layer.Log.Format
		}
		if layer.Log.File != nil {
			c.Log.File = *layer.Log.File
		}
	}
	if layer.Display != nil {
		if layer.Display.Plain != nil {
			c.Display.Plain = *layer.Display.Plain
		}
	}
}
