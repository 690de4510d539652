// Package config loads world simulation settings from YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WorldSim holds all configuration for the world simulation loop.
type WorldSim struct {
	// Logging
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Streaming
	FadeOutFactor     float32 `yaml:"fade_out_factor"`     // normalized range where fade-out starts
	FadeOverlapFactor float32 `yaml:"fade_overlap_factor"` // normalized range bounding the overlap band
	ActivationRange   float32 `yaml:"activation_range"`    // world units added to each object's radius

	// Loop timing
	FrameIntervalMs int `yaml:"frame_interval_ms"`
	StepIntervalMs  int `yaml:"step_interval_ms"`
}

// Default returns WorldSim config with sensible defaults.
func Default() WorldSim {
	return WorldSim{
		LogLevel:          "info",
		FadeOutFactor:     0.7,
		FadeOverlapFactor: 0.7,
		ActivationRange:   300,
		FrameIntervalMs:   16,
		StepIntervalMs:    100,
	}
}

// Load loads world simulation config from a YAML file.
// If the file doesn't exist, returns defaults.
func Load(path string) (WorldSim, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the fade arithmetic cannot handle.
func (c WorldSim) Validate() error {
	if c.FadeOutFactor <= 0 || c.FadeOutFactor >= 1 {
		return fmt.Errorf("fade_out_factor must be in (0,1), got %v", c.FadeOutFactor)
	}
	if c.FadeOverlapFactor <= 0 || c.FadeOverlapFactor >= 1 {
		return fmt.Errorf("fade_overlap_factor must be in (0,1), got %v", c.FadeOverlapFactor)
	}
	if c.ActivationRange <= 0 {
		return fmt.Errorf("activation_range must be positive, got %v", c.ActivationRange)
	}
	if c.FrameIntervalMs <= 0 || c.StepIntervalMs <= 0 {
		return fmt.Errorf("frame and step intervals must be positive")
	}
	return nil
}
