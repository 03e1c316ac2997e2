// Package config loads and validates the YAML configuration shared by the
// service binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingBackendURL = errors.New("backend.url is required")
	ErrMissingDBPath     = errors.New("server.db_path is required")
	ErrMissingAuthSecret = errors.New("server.auth_secret is required")
	ErrInvalidListenAddr = errors.New("server.listen is required")
	ErrInvalidLogLevel   = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete configuration.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Report    ReportConfig    `yaml:"report"`
}

// BackendConfig points the client binaries at the valuation/listing backend.
type BackendConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig configures the listing backend binary.
type ServerConfig struct {
	Listen     string `yaml:"listen"`
	DBPath     string `yaml:"db_path"`
	AuthSecret string `yaml:"auth_secret"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// TelemetryConfig configures the optional OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// ReportConfig configures valuation report output.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
	PDF       bool   `yaml:"pdf"`
}

var validLogLevels = map[string]bool{
	"": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Load reads and validates a config file for client use (backend URL only).
func Load(path string) (*Config, error) {
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Backend.URL) == "" {
		return nil, ErrMissingBackendURL
	}
	if err := cfg.validateCommon(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadServer reads and validates a config file for the server binary.
func LoadServer(path string) (*Config, error) {
	cfg, err := parse(path)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Server.Listen) == "" {
		return nil, ErrInvalidListenAddr
	}
	if strings.TrimSpace(cfg.Server.DBPath) == "" {
		return nil, ErrMissingDBPath
	}
	if strings.TrimSpace(cfg.Server.AuthSecret) == "" {
		return nil, ErrMissingAuthSecret
	}
	if err := cfg.validateCommon(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parse(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(blob, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validateCommon() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}
	return nil
}
