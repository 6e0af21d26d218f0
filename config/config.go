// Package config persists sensor settings that outlive a driver instance, such
// as the distance offset found by calibration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the sensor settings file
type Config struct {
	// OffsetMM is subtracted from every range reading
	OffsetMM int `yaml:"offset_mm"`
	// TimingBudgetUs is the measurement timing budget, zero keeps the sensor
	// default
	TimingBudgetUs uint32 `yaml:"timing_budget_us,omitempty"`
	// Address is the I2C address of the sensor, zero means the default
	Address uint8 `yaml:"address,omitempty"`
}

// Load reads the settings file at path.  A missing file returns the zero
// Config.
func Load(path string) (Config, error) {

	var cfg Config

	b, err := os.ReadFile(path)

	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}

	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes cfg to the settings file at path, replacing it
func Save(path string, cfg Config) error {

	b, err := yaml.Marshal(&cfg)

	if err != nil {
		return err
	}

	return os.WriteFile(path, b, 0o644)
}
