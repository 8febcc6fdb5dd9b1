package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"

	envPrefix = "SALESDASH_"
)

// Config is the top-level application config.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Regions   RegionsConfig   `koanf:"regions"`
	Dashboard DashboardConfig `koanf:"dashboard"`
}

type ServerConfig struct {
	Port int    `koanf:"port"`
	Host string `koanf:"host"`
	Mode string `koanf:"mode"` // debug | release
}

type DatasetConfig struct {
	Source       string `koanf:"source"` // file | postgres
	Path         string `koanf:"path"`
	DSN          string `koanf:"dsn"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	AutoMigrate  bool   `koanf:"auto_migrate"`
}

// RegionsConfig points at an optional region table; empty uses the built-in Brazil table.
type RegionsConfig struct {
	Path string `koanf:"path"`
}

// DashboardConfig bounds the user-facing controls.
type DashboardConfig struct {
	YearMin        int    `koanf:"year_min"`
	YearMax        int    `koanf:"year_max"`
	TopMin         int    `koanf:"top_min"`
	TopMax         int    `koanf:"top_max"`
	TopDefault     int    `koanf:"top_default"`
	TopStates      int    `koanf:"top_states"`
	CurrencyPrefix string `koanf:"currency_prefix"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be 1-65535)", c.Server.Port)
	}
	if strings.TrimSpace(c.Server.Host) == "" {
		return fmt.Errorf("server.host is required")
	}
	if c.Server.Mode != "debug" && c.Server.Mode != "release" {
		return fmt.Errorf("invalid server.mode %q (must be debug or release)", c.Server.Mode)
	}

	switch c.Dataset.Source {
	case SourceFile:
		if strings.TrimSpace(c.Dataset.Path) == "" {
			return fmt.Errorf("dataset.path is required for the file source")
		}
	case SourcePostgres:
		if strings.TrimSpace(c.Dataset.DSN) == "" {
			return fmt.Errorf("dataset.dsn is required for the postgres source")
		}
		if c.Dataset.MaxOpenConns <= 0 {
			return fmt.Errorf("dataset.max_open_conns must be > 0")
		}
		if c.Dataset.MaxIdleConns <= 0 {
			return fmt.Errorf("dataset.max_idle_conns must be > 0")
		}
	default:
		return fmt.Errorf("unsupported dataset.source %q (must be file or postgres)", c.Dataset.Source)
	}

	d := c.Dashboard
	if d.YearMin > d.YearMax {
		return fmt.Errorf("dashboard.year_min %d must be <= dashboard.year_max %d", d.YearMin, d.YearMax)
	}
	if d.TopMin < 1 {
		return fmt.Errorf("dashboard.top_min must be >= 1")
	}
	if d.TopMin > d.TopMax {
		return fmt.Errorf("dashboard.top_min %d must be <= dashboard.top_max %d", d.TopMin, d.TopMax)
	}
	if d.TopDefault < d.TopMin || d.TopDefault > d.TopMax {
		return fmt.Errorf("dashboard.top_default %d must be within [%d, %d]", d.TopDefault, d.TopMin, d.TopMax)
	}
	if d.TopStates < 1 {
		return fmt.Errorf("dashboard.top_states must be >= 1")
	}

	return nil
}

// Load layers defaults, the YAML file at configPath (if any) and
// SALESDASH_ environment variables, then validates the result.
// Nested keys use a double underscore: SALESDASH_DATASET__PATH.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"server.port":               8080,
		"server.host":               "0.0.0.0",
		"server.mode":               "release",
		"dataset.source":            SourceFile,
		"dataset.path":              "./data/vendas.json",
		"dataset.dsn":               "",
		"dataset.max_open_conns":    5,
		"dataset.max_idle_conns":    5,
		"dataset.auto_migrate":      true,
		"regions.path":              "",
		"dashboard.year_min":        2020,
		"dashboard.year_max":        2023,
		"dashboard.top_min":         2,
		"dashboard.top_max":         10,
		"dashboard.top_default":     5,
		"dashboard.top_states":      5,
		"dashboard.currency_prefix": "R$",
	}
	for key, value := range defaults {
		k.Set(key, value)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Addr is the HTTP listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
