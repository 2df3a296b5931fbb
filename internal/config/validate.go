// internal/config/validate.go
package config

import (
	"fmt"
	"math"

	"github.com/w1xm/diseqc_interface/positioner"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Site != nil {
		if err := validateCoordinate("site latitude", cfg.Site.Latitude, 90); err != nil {
			return err
		}
		if err := validateCoordinate("site longitude", cfg.Site.Longitude, 180); err != nil {
			return err
		}
	}

	if f := cfg.Frontend; f != nil {
		if f.Adapter < 0 || f.Frontend < 0 {
			return fmt.Errorf("frontend: adapter %d / frontend %d must not be negative", f.Adapter, f.Frontend)
		}
	}

	seen := make(map[string]bool)
	for i, p := range cfg.Presets {
		if p.Name == "" {
			return fmt.Errorf("preset %d: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("preset %q: defined more than once", p.Name)
		}
		seen[p.Name] = true

		set := 0
		for _, present := range []bool{p.Angle != nil, p.Satellite != nil, p.Slot != nil} {
			if present {
				set++
			}
		}
		if set != 1 {
			return fmt.Errorf("preset %q: exactly one of angle, satellite or slot must be set", p.Name)
		}

		switch {
		case p.Angle != nil:
			if err := positioner.CheckAngle(*p.Angle); err != nil {
				return fmt.Errorf("preset %q: %w", p.Name, err)
			}
		case p.Satellite != nil:
			if cfg.Site == nil {
				return fmt.Errorf("preset %q: satellite presets require a site", p.Name)
			}
			if err := validateCoordinate(fmt.Sprintf("preset %q satellite", p.Name), *p.Satellite, 180); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateCoordinate(what string, v, limit float64) error {
	if math.IsNaN(v) || v < -limit || v > limit {
		return fmt.Errorf("%s %v out of range [-%v, %v]", what, v, limit, limit)
	}
	return nil
}
