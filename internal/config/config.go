// Package config holds dealdesk configuration: workspace paths, the policy
// knobs behind each calculator, and logging settings. Configuration loads
// from .dealdesk/config.yaml with environment overrides on top.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dealdesk/internal/appraisal"
	"dealdesk/internal/mcda"
)

// Config holds all dealdesk configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Workspace layout
	Workspace WorkspaceConfig `yaml:"workspace"`

	// Settlement engine policy
	Negotiation NegotiationConfig `yaml:"negotiation"`

	// Cost approach reconciliation policy
	Reconcile appraisal.ReconcilePolicy `yaml:"reconcile"`

	// Comparable ranking weights; empty means the built-in defaults
	RankWeights map[string]float64 `yaml:"rank_weights,omitempty"`

	// Batch processing
	Batch BatchConfig `yaml:"batch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// WorkspaceConfig locates the dot-directory holding state and output.
type WorkspaceConfig struct {
	// Root is the workspace dot-directory, default ".dealdesk".
	Root string `yaml:"root"`

	// DatabasePath overrides the run history database location. Empty means
	// <root>/dealdesk.db.
	DatabasePath string `yaml:"database_path,omitempty"`
}

// NegotiationConfig carries the settlement engine defaults.
type NegotiationConfig struct {
	// DefaultConfidence applies when a scenario carries no confidence,
	// exclusive (0,1).
	DefaultConfidence float64 `yaml:"default_confidence"`

	// DefaultRounds is the total concession rounds including the opening.
	DefaultRounds int `yaml:"default_rounds"`
}

// BatchConfig controls directory batch runs.
type BatchConfig struct {
	// Concurrency bounds parallel scenario workers. Zero means NumCPU.
	Concurrency int `yaml:"concurrency"`

	// Pattern is the default glob for scenario discovery.
	Pattern string `yaml:"pattern"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "dealdesk",
		Version: "1.0.0",

		Workspace: WorkspaceConfig{
			Root: ".dealdesk",
		},

		Negotiation: NegotiationConfig{
			DefaultConfidence: 0.7,
			DefaultRounds:     5,
		},

		Reconcile: appraisal.DefaultReconcilePolicy(),

		Batch: BatchConfig{
			Concurrency: 0,
			Pattern:     "**/*.json",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields defaults;
// environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if root := os.Getenv("DEALDESK_WORKSPACE"); root != "" {
		c.Workspace.Root = root
	}
	if path := os.Getenv("DEALDESK_DB"); path != "" {
		c.Workspace.DatabasePath = path
	}
	if level := os.Getenv("DEALDESK_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// DatabasePath returns the run history database location.
func (c *Config) DatabasePath() string {
	if c.Workspace.DatabasePath != "" {
		return c.Workspace.DatabasePath
	}
	return filepath.Join(c.Workspace.Root, "dealdesk.db")
}

// LogDir returns the directory for category log files.
func (c *Config) LogDir() string {
	return filepath.Join(c.Workspace.Root, "logs")
}

// ValidLogLevels lists the accepted logging levels.
var ValidLogLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Workspace.Root == "" {
		return fmt.Errorf("workspace root not configured")
	}

	n := c.Negotiation
	if n.DefaultConfidence <= 0 || n.DefaultConfidence >= 1 {
		return fmt.Errorf("invalid default_confidence %v (must be strictly between 0 and 1)", n.DefaultConfidence)
	}
	if n.DefaultRounds < 2 || n.DefaultRounds > 12 {
		return fmt.Errorf("invalid default_rounds %d (must be between 2 and 12)", n.DefaultRounds)
	}

	r := c.Reconcile
	if r.SpreadThreshold <= 0 || r.SpreadThreshold >= 1 {
		return fmt.Errorf("invalid reconcile spread_threshold %v (must be strictly between 0 and 1)", r.SpreadThreshold)
	}
	if r.CostWeightNear <= 0 || r.CostWeightNear >= 1 || r.CostWeightFar <= 0 || r.CostWeightFar >= 1 {
		return fmt.Errorf("invalid reconcile weights %v/%v (must be strictly between 0 and 1)", r.CostWeightNear, r.CostWeightFar)
	}

	if len(c.RankWeights) > 0 {
		known := make(map[string]bool)
		for _, name := range mcda.CriterionNames() {
			known[name] = true
		}
		sum := 0.0
		for name, w := range c.RankWeights {
			if !known[name] {
				return fmt.Errorf("unknown rank weight criterion %q (valid: %v)", name, mcda.CriterionNames())
			}
			if w < 0 {
				return fmt.Errorf("negative rank weight for %q", name)
			}
			sum += w
		}
		if math.Abs(sum-1.0) > 0.01 {
			return fmt.Errorf("rank weights sum to %.4f, want 1.0", sum)
		}
	}

	if c.Batch.Concurrency < 0 {
		return fmt.Errorf("invalid batch concurrency %d", c.Batch.Concurrency)
	}

	validLevel := false
	for _, l := range ValidLogLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLogLevels)
	}

	return nil
}

// Weights resolves the comparable ranking weights.
func (c *Config) Weights() map[string]float64 {
	if len(c.RankWeights) == 0 {
		return mcda.DefaultWeights()
	}
	return c.RankWeights
}

// DefaultConfigPath returns the workspace config file location relative to
// the working directory.
func DefaultConfigPath() string {
	if path := os.Getenv("DEALDESK_CONFIG"); path != "" {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".dealdesk", "config.yaml")
	}
	return filepath.Join(cwd, ".dealdesk", "config.yaml")
}
