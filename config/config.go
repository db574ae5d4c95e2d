package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ivancley/gestao-conhecimento-back/logger"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	Load     Load     `yaml:"load"`
}

// Database database settings
type Database struct {
	DSN string `yaml:"dsn"`
}

// Log logging settings
type Log struct {
	// Backend selects the logging library: zerolog, zap, logrus or std.
	Backend string `yaml:"backend"`
	Level   string `yaml:"level"`
}

// Load eager-load settings. Exclusions maps an entity name to
// relationships that must never be eager loaded for it, the standing
// workaround for relationship paths that would double-load rows.
type Load struct {
	Exclusions map[string][]string `yaml:"exclusions"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: Database{DSN: "file:gestao.db?_fk=1"},
		Log:      Log{Backend: "zerolog", Level: "warn"},
	}
}

// Read loads configuration from a YAML file, filling gaps with defaults.
func Read(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Logger builds the logger selected by the configuration.
func (c *Config) Logger() logger.Interface {
	level := parseLevel(c.Log.Level)
	cfg := logger.Config{LogLevel: level}

	switch c.Log.Backend {
	case "zap":
		return logger.NewZapLoggerWithConfig(cfg)
	case "logrus":
		return logger.NewLogrusLoggerWithConfig(cfg)
	case "std":
		return logger.Default.LogMode(level)
	default:
		return logger.NewZerologLoggerWithConfig(cfg)
	}
}

func parseLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	case "debug":
		return logger.Debug
	default:
		return logger.Warn
	}
}
