// Package config loads gridpilot's YAML configuration and applies
// defaults and validation.
package config

// Backend holds connection settings for the inference backend.
type Backend struct {
	URL string `yaml:"url"`
}

// Solver holds stepping behavior settings.
type Solver struct {
	// Checkpoint is the default checkpoint path sent on initialize.
	Checkpoint string `yaml:"checkpoint"`
	// StepDelayMS is the pause between auto-run steps.
	StepDelayMS int `yaml:"step_delay_ms"`
	// SettleDelayMS is how long a changed cell stays highlighted.
	SettleDelayMS int `yaml:"settle_delay_ms"`
	// MaxSteps caps one auto-run; 0 means unlimited.
	MaxSteps int `yaml:"max_steps"`
}

// Config represents the gridpilot config file.
type Config struct {
	Backend Backend `yaml:"backend"`
	Solver  Solver  `yaml:"solver"`
}
