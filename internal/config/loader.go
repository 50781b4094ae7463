package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for Config.
const (
	DefaultBackendURL    = "http://localhost:8000"
	DefaultStepDelayMS   = 500
	DefaultSettleDelayMS = 500
	DefaultMaxSteps      = 0
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Backend: Backend{URL: DefaultBackendURL},
		Solver: Solver{
			StepDelayMS:   DefaultStepDelayMS,
			SettleDelayMS: DefaultSettleDelayMS,
			MaxSteps:      DefaultMaxSteps,
		},
	}
}

// DefaultPath returns the default config file location,
// ~/.config/gridpilot/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "gridpilot", "config.yaml"), nil
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Load reads and parses the config file at path. A missing file is
// not an error: defaults are returned. Missing fields get defaults;
// present fields are validated.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyDefaults fills zero-valued fields with defaults. A YAML file
// that sets only some fields inherits the rest.
func applyDefaults(cfg *Config) {
	if cfg.Backend.URL == "" {
		cfg.Backend.URL = DefaultBackendURL
	}
	if cfg.Solver.StepDelayMS == 0 {
		cfg.Solver.StepDelayMS = DefaultStepDelayMS
	}
	if cfg.Solver.SettleDelayMS == 0 {
		cfg.Solver.SettleDelayMS = DefaultSettleDelayMS
	}
}

// Validate checks a Config for usable values.
func Validate(cfg Config) error {
	u, err := url.Parse(cfg.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ValidationError{Field: "backend.url", Message: fmt.Sprintf("not a valid URL: %q", cfg.Backend.URL)}
	}
	if cfg.Solver.StepDelayMS < 0 {
		return ValidationError{Field: "solver.step_delay_ms", Message: "must not be negative"}
	}
	if cfg.Solver.SettleDelayMS < 0 {
		return ValidationError{Field: "solver.settle_delay_ms", Message: "must not be negative"}
	}
	if cfg.Solver.MaxSteps < 0 {
		return ValidationError{Field: "solver.max_steps", Message: "must not be negative"}
	}
	return nil
}
