// Package config loads taskpulse configuration: defaults, then an optional
// YAML file, then TASKPULSE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TASKPULSE_"

var (
	ErrInvalidBackend  = errors.New("config: invalid storage backend")
	ErrInvalidLogLevel = errors.New("config: invalid log level")
)

type Config struct {
	DataDir   string `koanf:"data_dir"`
	Backend   string `koanf:"backend"`
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	Theme         string `koanf:"theme"`
	Autosave      bool   `koanf:"autosave"`
	ShowCompleted bool   `koanf:"show_completed"`

	EncouragementCooldown time.Duration `koanf:"encouragement_cooldown"`
	PeriodicTick          time.Duration `koanf:"periodic_tick"`
	SettledMin            time.Duration `koanf:"settled_min"`
	MotivationDuration    time.Duration `koanf:"motivation_duration"`

	MessagePoolPath string `koanf:"message_pool_path"`
}

func Default() Config {
	return Config{
		Backend:               "file",
		LogLevel:              "info",
		LogFormat:             "console",
		Theme:                 "dark",
		Autosave:              true,
		ShowCompleted:         true,
		EncouragementCooldown: 30 * time.Second,
		PeriodicTick:          5 * time.Minute,
		SettledMin:            2 * time.Minute,
		MotivationDuration:    10 * time.Second,
	}
}

// Load builds the effective configuration. configPath may be empty; a
// missing file is not an error, an unparsable one is.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := Default()
	trimmed := strings.TrimSpace(configPath)
	if trimmed != "" {
		content, err := os.ReadFile(trimmed)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file %s: %w", trimmed, err)
			}
		} else if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", trimmed, err)
		}
	}

	// TASKPULSE_DATA_DIR -> data_dir, TASKPULSE_LOG_LEVEL -> log_level.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	cfg := defaults
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	defaults := Default()
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaultDataDir()
	}
	if cfg.Backend == "" {
		cfg.Backend = defaults.Backend
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	if cfg.EncouragementCooldown <= 0 {
		cfg.EncouragementCooldown = defaults.EncouragementCooldown
	}
	if cfg.PeriodicTick <= 0 {
		cfg.PeriodicTick = defaults.PeriodicTick
	}
	if cfg.SettledMin <= 0 {
		cfg.SettledMin = defaults.SettledMin
	}
	if cfg.MotivationDuration <= 0 {
		cfg.MotivationDuration = defaults.MotivationDuration
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskpulse"
	}
	return filepath.Join(home, ".taskpulse")
}

func (c Config) Validate() error {
	switch c.Backend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Backend)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.LogFormat)
	}
	return nil
}
