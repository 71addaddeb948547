// Package daemon manages the Pulse daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration.
type Config struct {
	API       APIConfig       `toml:"api"`
	Engine    EngineConfig    `toml:"engine"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// EngineConfig controls the evaluation runner and the timing learner.
type EngineConfig struct {
	EvaluateInterval string `toml:"evaluate_interval"` // periodic sweep, e.g. "15m"
	LearnerInterval  string `toml:"learner_interval"`  // nightly recompute, e.g. "24h"
	CoachName        string `toml:"coach_name"`        // personalizes titles
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	homeDir := pulseHome()
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8480,
		},
		Engine: EngineConfig{
			EvaluateInterval: "15m",
			LearnerInterval:  "24h",
			CoachName:        "Your coach",
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "pulse.log"),
		},
	}
}

// LoadConfig reads config from ~/.pulse/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(pulseHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // No config file yet — use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.pulse/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(pulseHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// EvaluateInterval parses the sweep interval with a 15-minute fallback.
func (c Config) EvaluateInterval() time.Duration {
	return parseDuration(c.Engine.EvaluateInterval, 15*time.Minute)
}

// LearnerInterval parses the learner interval with a nightly fallback.
func (c Config) LearnerInterval() time.Duration {
	return parseDuration(c.Engine.LearnerInterval, 24*time.Hour)
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

// pulseHome returns the Pulse data directory.
func pulseHome() string {
	if env := os.Getenv("PULSE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pulse")
}

// PulseHome is exported for use by other packages.
func PulseHome() string {
	return pulseHome()
}
