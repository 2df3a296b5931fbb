// internal/config/config_test.go
package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/w1xm/diseqc_interface/positioner"
)

const siteFile = `
site:
  latitude: 42.36
  longitude: -71.09
frontend:
  adapter: 1
  frontend: 0
presets:
  - name: park
    angle: 0
  - name: amc-11
    satellite: -131
  - name: slot3
    slot: 3
`

func floatp(v float64) *float64 { return &v }

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(siteFile), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Site == nil || cfg.Site.Latitude != 42.36 || cfg.Site.Longitude != -71.09 {
		t.Errorf("site = %+v", cfg.Site)
	}
	if cfg.Frontend == nil || cfg.Frontend.Adapter != 1 {
		t.Errorf("frontend = %+v", cfg.Frontend)
	}
	if len(cfg.Presets) != 3 {
		t.Fatalf("got %d presets", len(cfg.Presets))
	}

	park, ok := cfg.Preset("park")
	if !ok {
		t.Fatal("park preset missing")
	}
	if cmd, err := cfg.Command(park); err != nil || cmd != positioner.GotoAngle(0) {
		t.Errorf("park command = %v, %v", cmd, err)
	}

	slot, _ := cfg.Preset("slot3")
	if cmd, err := cfg.Command(slot); err != nil || cmd != positioner.GotoPosition(3) {
		t.Errorf("slot3 command = %v, %v", cmd, err)
	}

	sat, _ := cfg.Preset("amc-11")
	want := positioner.GotoAngle(positioner.SatelliteAngle(positioner.Site{Latitude: 42.36, Longitude: -71.09}, -131))
	if cmd, err := cfg.Command(sat); err != nil || cmd != want {
		t.Errorf("amc-11 command = %v, %v; want %v", cmd, err, want)
	}

	if _, ok := cfg.Preset("missing"); ok {
		t.Error("found missing preset")
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Parse([]byte("presets: [")); err == nil {
		t.Error("expected YAML error")
	}
	if _, err := Parse([]byte("presets:\n  - name: x\n    slot: 300\n")); err == nil {
		t.Error("expected error for slot out of range")
	}
}

func TestValidate(t *testing.T) {
	var slot uint8 = 1
	for _, test := range []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"empty", Config{}, ""},
		{"bad latitude", Config{Site: &SiteConfig{Latitude: 91}}, "latitude"},
		{"bad longitude", Config{Site: &SiteConfig{Longitude: -181}}, "longitude"},
		{"negative adapter", Config{Frontend: &FrontendConfig{Adapter: -1}}, "negative"},
		{"unnamed", Config{Presets: []PresetConfig{{Angle: floatp(1)}}}, "name is required"},
		{"duplicate", Config{Presets: []PresetConfig{{Name: "a", Angle: floatp(1)}, {Name: "a", Slot: &slot}}}, "more than once"},
		{"nothing set", Config{Presets: []PresetConfig{{Name: "a"}}}, "exactly one"},
		{"two set", Config{Presets: []PresetConfig{{Name: "a", Angle: floatp(1), Slot: &slot}}}, "exactly one"},
		{"satellite without site", Config{Presets: []PresetConfig{{Name: "a", Satellite: floatp(19.2)}}}, "require a site"},
		{"angle not finite", Config{Presets: []PresetConfig{{Name: "a", Angle: floatp(math.Inf(-1))}}}, "not finite"},
		{"angle too large", Config{Presets: []PresetConfig{{Name: "a", Angle: floatp(300)}}}, "out of range"},
		{"satellite out of range", Config{Site: &SiteConfig{}, Presets: []PresetConfig{{Name: "a", Satellite: floatp(200)}}}, "out of range"},
		{"ok", Config{Site: &SiteConfig{Latitude: 50, Longitude: 8}, Presets: []PresetConfig{
			{Name: "astra", Satellite: floatp(19.2)},
			{Name: "ref", Slot: &slot},
			{Name: "east", Angle: floatp(-20.5)},
		}}, ""},
	} {
		t.Run(test.name, func(t *testing.T) {
			err := Validate(&test.cfg)
			switch {
			case test.wantErr == "" && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case test.wantErr != "" && err == nil:
				t.Fatalf("expected error containing %q", test.wantErr)
			case test.wantErr != "" && !strings.Contains(err.Error(), test.wantErr):
				t.Fatalf("error %q does not contain %q", err, test.wantErr)
			}
		})
	}
}
