// Package config handles configuration loading from YAML files, environment
// variables and command-line flags.
// Configuration precedence: CLI flags > environment variables > config file > defaults.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Guliveer/powerbar/internal/kind"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all powerbar configuration. It is read-only once loaded.
type Config struct {
	Kinds         kind.Set      `yaml:"kinds"`
	LowPercentage float64       `yaml:"low_percentage"`
	LowClass      string        `yaml:"low_class"`
	Listen        bool          `yaml:"listen"`
	Refresh       Duration      `yaml:"refresh"`
	Logging       LoggingConfig `yaml:"logging"`
	Metrics       MetricsConfig `yaml:"metrics"`
}

// LoggingConfig holds logging settings. Logs always go to stderr; File adds
// a JSON log file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// MetricsConfig holds the optional Prometheus endpoint settings.
// An empty Listen address disables the endpoint.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Kinds:         kind.NewSet(kind.Headset, kind.Headphones),
		LowPercentage: 20,
		LowClass:      "low",
		Listen:        false,
		Refresh:       Duration{15 * time.Second},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Nil pointers and empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	Kinds         *kind.Set
	LowPercentage *float64
	LowClass      *string
	Listen        *bool
	Refresh       *time.Duration
	LogLevel      string
	MetricsListen string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > YAML file > defaults.
//
// An optional configPath argument controls config file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no config file)
//
// An explicitly named file must exist.
func LoadLayered(cli CLIOverrides, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	var filePath string
	explicit := len(configPath) > 0
	if explicit {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if cli.Kinds != nil {
		cfg.Kinds = *cli.Kinds
	}
	if cli.LowPercentage != nil {
		cfg.LowPercentage = *cli.LowPercentage
	}
	if cli.LowClass != nil {
		cfg.LowClass = *cli.LowClass
	}
	if cli.Listen != nil {
		cfg.Listen = *cli.Listen
	}
	if cli.Refresh != nil {
		cfg.Refresh.Duration = *cli.Refresh
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.MetricsListen != "" {
		cfg.Metrics.Listen = cli.MetricsListen
	}

	return cfg, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnvOverrides applies POWERBAR_* environment variables.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("POWERBAR_KINDS"); v != "" {
		if err := cfg.Kinds.Set(v); err != nil {
			return fmt.Errorf("POWERBAR_KINDS: %w", err)
		}
	}
	if v := os.Getenv("POWERBAR_LOW_PERCENTAGE"); v != "" {
		pct, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("POWERBAR_LOW_PERCENTAGE: %w", err)
		}
		cfg.LowPercentage = pct
	}
	if v := os.Getenv("POWERBAR_LOW_CLASS"); v != "" {
		cfg.LowClass = v
	}
	if v := os.Getenv("POWERBAR_REFRESH"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("POWERBAR_REFRESH: %w", err)
		}
		cfg.Refresh.Duration = d
	}
	if v := os.Getenv("POWERBAR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("POWERBAR_METRICS_LISTEN"); v != "" {
		cfg.Metrics.Listen = v
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Refresh.Duration <= 0 {
		return fmt.Errorf("refresh interval must be positive (got: %s)", c.Refresh.Duration)
	}
	if math.IsNaN(c.LowPercentage) {
		return fmt.Errorf("low percentage must be a number")
	}
	if c.LowClass == "" {
		return fmt.Errorf("low class is required")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
