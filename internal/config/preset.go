// internal/config/preset.go
package config

import (
	"fmt"

	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/positioner"
)

// Command returns the positioner command for a validated preset.
func (c *Config) Command(p PresetConfig) (diseqc.Command, error) {
	switch {
	case p.Angle != nil:
		return positioner.GotoAngle(*p.Angle), nil
	case p.Satellite != nil:
		if c.Site == nil {
			return 0, fmt.Errorf("preset %q: no site configured", p.Name)
		}
		return positioner.GotoAngle(c.SatelliteAngle(*p.Satellite)), nil
	case p.Slot != nil:
		return positioner.GotoPosition(*p.Slot), nil
	}
	return 0, fmt.Errorf("preset %q: no position", p.Name)
}

// SatelliteAngle returns the positioner angle of a satellite seen from the
// configured site.
func (c *Config) SatelliteAngle(longitude float64) float64 {
	return positioner.SatelliteAngle(positioner.Site{
		Latitude:  c.Site.Latitude,
		Longitude: c.Site.Longitude,
	}, longitude)
}
