// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/verte-zerg/meleecalc/internal/estimate"
	"github.com/verte-zerg/meleecalc/internal/model"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Calc    CalcConfig              `toml:"calc"`
	Plan    PlanConfig              `toml:"plan"`
	Presets map[string]PresetConfig `toml:"presets"`
}

// CalcConfig maps calculation defaults.
type CalcConfig struct {
	Skill       *int     `toml:"skill"`
	PercentLeft *float64 `toml:"percent-left"`
	Target      *string  `toml:"target"`
	Loyalty     *float64 `toml:"loyalty"`
	Method      *string  `toml:"method"`
	Preset      *string  `toml:"preset"`
}

// PlanConfig maps weekly training hours per method.
type PlanConfig struct {
	Online  *float64 `toml:"online"`
	Offline *float64 `toml:"offline"`
	Dummy   *float64 `toml:"dummy"`
}

// PresetConfig maps a user-defined hit rate table.
type PresetConfig struct {
	Online   *float64 `toml:"online"`
	Offline  *float64 `toml:"offline"`
	Dummy    *float64 `toml:"dummy"`
	Fallback *float64 `toml:"fallback"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Catalog returns the built-in rate presets plus those defined in the file.
// Methods missing from a file preset take the rate of the default preset.
func (c FileConfig) Catalog() (*estimate.Catalog, error) {
	catalog := estimate.NewCatalog()
	base, err := catalog.Lookup(estimate.DefaultPreset)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.Presets[name]
		table := estimate.RateTable{
			Name: name,
			Rates: map[model.TrainingMethod]float64{
				model.MethodOnline:  valueOr(p.Online, base.RateOf(model.MethodOnline)),
				model.MethodOffline: valueOr(p.Offline, base.RateOf(model.MethodOffline)),
				model.MethodDummy:   valueOr(p.Dummy, base.RateOf(model.MethodDummy)),
			},
			Fallback: valueOr(p.Fallback, base.Fallback),
		}
		if err := catalog.Add(table); err != nil {
			return nil, fmt.Errorf("invalid preset in config: %w", err)
		}
	}
	return catalog, nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
