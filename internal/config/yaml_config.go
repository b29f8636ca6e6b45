package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"serpwatch/internal/volatility"
)

// YAMLConfig represents the structure of the optional config.yaml file.
// Scoring parameters are easier to review and version in YAML than env vars.
type YAMLConfig struct {
	Scoring ScoringConfig `yaml:"scoring"`
	Alerts  AlertsConfig  `yaml:"alerts"`
}

// ScoringConfig tunes the pair scorer.
type ScoringConfig struct {
	Weights volatility.Weights `yaml:"weights"`
}

// AlertsConfig sets the default thresholds for the alert digest job.
type AlertsConfig struct {
	SpikeThreshold         float64 `yaml:"spike_threshold"`
	ConcentrationThreshold float64 `yaml:"concentration_threshold"`
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns defaults without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	cfg := &YAMLConfig{
		Scoring: ScoringConfig{Weights: volatility.DefaultWeights()},
		Alerts:  AlertsConfig{SpikeThreshold: 75, ConcentrationThreshold: 0.8},
	}

	path := getEnv("CONFIG_FILE", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if !cfg.Scoring.Weights.Valid() {
		return nil, fmt.Errorf("scoring weights in %s must be non-negative and sum to 1", path)
	}
	return cfg, nil
}
