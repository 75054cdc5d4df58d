package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Guliveer/powerbar/internal/kind"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLayered_DefaultsWhenEmpty(t *testing.T) {
	cfg, err := LoadLayered(CLIOverrides{}, "")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Refresh.Duration != 15*time.Second {
		t.Errorf("Refresh = %v, want 15s default", cfg.Refresh.Duration)
	}
	if cfg.LowPercentage != 20 || cfg.LowClass != "low" || cfg.Listen {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Kinds.Contains(kind.Headset) || !cfg.Kinds.Contains(kind.Headphones) || cfg.Kinds.Len() != 2 {
		t.Errorf("Kinds = %v, want headset, headphones", cfg.Kinds)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadLayered_FileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "kinds: [mouse, keyboard]\nlow_percentage: 10\nrefresh: 1m\nlisten: true\n")

	cfg, err := LoadLayered(CLIOverrides{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Kinds.String() != "mouse, keyboard" {
		t.Errorf("Kinds = %v", cfg.Kinds)
	}
	if cfg.LowPercentage != 10 || cfg.Refresh.Duration != time.Minute || !cfg.Listen {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.LowClass != "low" {
		t.Errorf("LowClass = %q, want default kept", cfg.LowClass)
	}
}

func TestLoadLayered_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "low_class: file\nrefresh: 1m\n")
	t.Setenv("POWERBAR_LOW_CLASS", "env")
	t.Setenv("POWERBAR_KINDS", "battery")

	cfg, err := LoadLayered(CLIOverrides{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LowClass != "env" {
		t.Errorf("LowClass = %q, want env override", cfg.LowClass)
	}
	if cfg.Kinds.String() != "battery" {
		t.Errorf("Kinds = %v, want env override", cfg.Kinds)
	}
	if cfg.Refresh.Duration != time.Minute {
		t.Errorf("Refresh = %v, want file value", cfg.Refresh.Duration)
	}
}

func TestLoadLayered_CLIOverridesEverything(t *testing.T) {
	path := writeFile(t, "low_percentage: 10\nlow_class: file\n")
	t.Setenv("POWERBAR_LOW_PERCENTAGE", "30")

	kinds := kind.NewSet(kind.Phone)
	pct := 5.0
	refresh := 2 * time.Second
	cli := CLIOverrides{Kinds: &kinds, LowPercentage: &pct, Refresh: &refresh, LogLevel: "debug"}

	cfg, err := LoadLayered(cli, path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LowPercentage != 5 {
		t.Errorf("LowPercentage = %v, want CLI override", cfg.LowPercentage)
	}
	if cfg.Kinds.String() != "phone" || cfg.Refresh.Duration != refresh || cfg.Logging.Level != "debug" {
		t.Errorf("CLI overrides not applied: %+v", cfg)
	}
	if cfg.LowClass != "file" {
		t.Errorf("LowClass = %q, want file value", cfg.LowClass)
	}
}

func TestLoadLayered_Errors(t *testing.T) {
	t.Run("unknown kind in file", func(t *testing.T) {
		path := writeFile(t, "kinds: \"headset, bogus-kind\"\n")
		_, err := LoadLayered(CLIOverrides{}, path)
		if !errors.Is(err, kind.ErrUnknownKindName) {
			t.Errorf("error = %v, want ErrUnknownKindName", err)
		}
	})
	t.Run("bad duration", func(t *testing.T) {
		path := writeFile(t, "refresh: soon\n")
		if _, err := LoadLayered(CLIOverrides{}, path); err == nil {
			t.Error("expected error")
		}
	})
	t.Run("bad env kind", func(t *testing.T) {
		t.Setenv("POWERBAR_KINDS", "nope")
		if _, err := LoadLayered(CLIOverrides{}, ""); !errors.Is(err, kind.ErrUnknownKindName) {
			t.Errorf("error = %v, want ErrUnknownKindName", err)
		}
	})
	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := LoadLayered(CLIOverrides{}, filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero refresh", func(c *Config) { c.Refresh.Duration = 0 }, true},
		{"negative threshold means never low", func(c *Config) { c.LowPercentage = -1 }, false},
		{"threshold above 100 means always low", func(c *Config) { c.LowPercentage = 150 }, false},
		{"NaN threshold", func(c *Config) { c.LowPercentage = math.NaN() }, true},
		{"empty class", func(c *Config) { c.LowClass = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"empty kinds", func(c *Config) { c.Kinds = kind.Set{} }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Kinds = kind.NewSet(kind.Mouse, kind.Headset)
	cfg.Refresh.Duration = 45 * time.Second

	if err := WriteConfig(cfg, path); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadLayered(CLIOverrides{}, path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Kinds != cfg.Kinds || loaded.Refresh != cfg.Refresh {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}
