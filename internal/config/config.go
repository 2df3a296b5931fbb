// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional site file of the diseqc tool.
type Config struct {
	Site     *SiteConfig     `yaml:"site"`
	Frontend *FrontendConfig `yaml:"frontend"`
	Presets  []PresetConfig  `yaml:"presets"`
}

// ---- SITE ----

// SiteConfig locates the dish, decimal degrees, north and east positive.
type SiteConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// ---- FRONTEND ----

// FrontendConfig overrides the default adapter/frontend indices.
type FrontendConfig struct {
	Adapter  int `yaml:"adapter"`
	Frontend int `yaml:"frontend"`
}

// ---- PRESETS ----

// PresetConfig names a dish position. Exactly one of Angle, Satellite
// (longitude, degrees east) or Slot (stored positioner slot) is set.
type PresetConfig struct {
	Name      string   `yaml:"name"`
	Angle     *float64 `yaml:"angle"`
	Satellite *float64 `yaml:"satellite"`
	Slot      *uint8   `yaml:"slot"`
}

// Load reads and validates a site file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates site file YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Preset looks up a preset by name.
func (c *Config) Preset(name string) (PresetConfig, bool) {
	for _, p := range c.Presets {
		if p.Name == name {
			return p, true
		}
	}
	return PresetConfig{}, false
}
