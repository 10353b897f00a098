// Package config loads the CLI's runtime configuration from
// environment variables, with an optional YAML file overlay.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the settings the attested-logs CLI needs to run.
type Config struct {
	DBPath   string `yaml:"db_path"`
	LogLevel string `yaml:"log_level"`
}

// Load builds a Config from environment variables, applying defaults
// for anything unset.
func Load() *Config {
	dbPath := os.Getenv("ATTESTED_LOGS_DB")
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	logLevel := os.Getenv("ATTESTED_LOGS_LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{DBPath: dbPath, LogLevel: logLevel}
}

// LoadFile overlays YAML-configured fields from path onto Load's
// environment-derived defaults. A field absent from the file keeps its
// environment/default value.
func LoadFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fromFile Config
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fromFile.DBPath != "" {
		cfg.DBPath = fromFile.DBPath
	}
	if fromFile.LogLevel != "" {
		cfg.LogLevel = fromFile.LogLevel
	}
	return cfg, nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".attested-logs/log.db"
	}
	return filepath.Join(home, ".attested-logs", "log.db")
}
