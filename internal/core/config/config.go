package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Version       int           `toml:"version"`
	Workspaces    []string      `toml:"workspaces"`
	Scan          Scan          `toml:"scan"`
	Imports       Imports       `toml:"imports"`
	DB            Database      `toml:"db"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Scan struct {
	Extensions   []string `toml:"extensions"`
	Exclude      []string `toml:"exclude"`
	MaxDepth     int      `toml:"max_depth"`
	StrictErrors bool     `toml:"strict_errors"`
	Concurrency  int      `toml:"concurrency"`
	FSOpsPerSec  float64  `toml:"fs_ops_per_sec"` // 0 = unthrottled
}

type Imports struct {
	Resolve *bool `toml:"resolve"`
	Depth   int   `toml:"depth"`
}

type Database struct {
	Enabled     bool          `toml:"enabled"`
	Path        string        `toml:"path"`
	Project     string        `toml:"project"`
	BusyTimeout time.Duration `toml:"busy_timeout"`
}

type Watch struct {
	Enabled  bool          `toml:"enabled"`
	Debounce time.Duration `toml:"debounce"`
}

type Observability struct {
	Address      string `toml:"address"`       // metrics/health listen address, empty = disabled
	OTLPEndpoint string `toml:"otlp_endpoint"` // trace exporter target, empty = disabled
}

func (i Imports) IsEnabled() bool {
	if i.Resolve == nil {
		return true
	}
	return *i.Resolve
}

func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateScan(&cfg); err != nil {
		return nil, err
	}
	if err := validateImports(&cfg); err != nil {
		return nil, err
	}
	if err := validateDatabase(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.Workspaces) == 0 {
		cfg.Workspaces = []string{"."}
	}

	if len(cfg.Scan.Extensions) == 0 {
		cfg.Scan.Extensions = []string{".scss", ".css"}
	}
	if cfg.Scan.Exclude == nil {
		cfg.Scan.Exclude = []string{"**/.git", "**/node_modules", "**/bower_components"}
	}
	if cfg.Scan.MaxDepth <= 0 {
		cfg.Scan.MaxDepth = 30
	}
	if cfg.Scan.Concurrency <= 0 {
		cfg.Scan.Concurrency = 8
	}

	if cfg.Imports.Depth <= 0 {
		cfg.Imports.Depth = 3
	}

	if strings.TrimSpace(cfg.DB.Path) == "" {
		cfg.DB.Path = "cascade.db"
	}
	if strings.TrimSpace(cfg.DB.Project) == "" {
		cfg.DB.Project = "default"
	}
	if cfg.DB.BusyTimeout <= 0 {
		cfg.DB.BusyTimeout = 5 * time.Second
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScan(cfg *Config) error {
	for _, ext := range cfg.Scan.Extensions {
		trimmed := strings.TrimSpace(ext)
		if trimmed == "" {
			return fmt.Errorf("scan.extensions must not include empty values")
		}
		if strings.ContainsAny(trimmed, "*?/") {
			return fmt.Errorf("scan.extensions entry %q must be a plain suffix, not a pattern", ext)
		}
	}
	for _, pattern := range cfg.Scan.Exclude {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("scan.exclude must not include empty patterns")
		}
	}
	if cfg.Scan.MaxDepth > 256 {
		return fmt.Errorf("scan.max_depth must be <= 256, got %d", cfg.Scan.MaxDepth)
	}
	if cfg.Scan.FSOpsPerSec < 0 {
		return fmt.Errorf("scan.fs_ops_per_sec must not be negative")
	}
	return nil
}

func validateImports(cfg *Config) error {
	if cfg.Imports.Depth > 64 {
		return fmt.Errorf("imports.depth must be <= 64, got %d", cfg.Imports.Depth)
	}
	return nil
}

func validateDatabase(cfg *Config) error {
	if !cfg.DB.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty when db.enabled=true")
	}
	return nil
}
