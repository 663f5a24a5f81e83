package estimate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/verte-zerg/meleecalc/internal/model"
)

// Built-in preset names.
const (
	PresetClassic = "classic"
	PresetRevised = "revised"

	DefaultPreset = PresetRevised
)

// RateTable maps training methods to hits per hour.
type RateTable struct {
	Name     string
	Rates    map[model.TrainingMethod]float64
	Fallback float64
}

// RateOf returns the rate for method, or the fallback rate when the table has no entry.
func (t RateTable) RateOf(method model.TrainingMethod) float64 {
	if rate, ok := t.Rates[method]; ok {
		return rate
	}
	return t.Fallback
}

// Presets returns the built-in tables. The two tables differ only in the online rate.
func Presets() []RateTable {
	return []RateTable{
		{
			Name: PresetClassic,
			Rates: map[model.TrainingMethod]float64{
				model.MethodOnline:  7200, // ~2 hits/sec
				model.MethodOffline: 3000,
				model.MethodDummy:   2400, // ~1.5s swing speed
			},
			Fallback: 2000,
		},
		{
			Name: PresetRevised,
			Rates: map[model.TrainingMethod]float64{
				model.MethodOnline:  1800,
				model.MethodOffline: 3000,
				model.MethodDummy:   2400,
			},
			Fallback: 2000,
		},
	}
}

// Catalog is a set of rate tables addressable by name.
type Catalog struct {
	tables map[string]RateTable
}

// NewCatalog returns a catalog seeded with the built-in presets.
func NewCatalog() *Catalog {
	c := &Catalog{tables: map[string]RateTable{}}
	for _, t := range Presets() {
		c.tables[t.Name] = t
	}
	return c
}

// Add registers a table, replacing any table with the same name.
func (c *Catalog) Add(t RateTable) error {
	name := strings.ToLower(strings.TrimSpace(t.Name))
	if name == "" {
		return fmt.Errorf("rate table name must not be empty")
	}
	for method, rate := range t.Rates {
		if rate < 0 {
			return fmt.Errorf("rate table %q: %s rate must be >= 0", name, method)
		}
	}
	if t.Fallback < 0 {
		return fmt.Errorf("rate table %q: fallback rate must be >= 0", name)
	}
	t.Name = name
	c.tables[name] = t
	return nil
}

// Lookup returns the table registered under name.
func (c *Catalog) Lookup(name string) (RateTable, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultPreset
	}
	t, ok := c.tables[key]
	if !ok {
		return RateTable{}, fmt.Errorf("unknown rate preset %q (available: %s)", name, strings.Join(c.Names(), ", "))
	}
	return t, nil
}

// Names returns the sorted table names.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tables returns all tables sorted by name.
func (c *Catalog) Tables() []RateTable {
	names := c.Names()
	out := make([]RateTable, 0, len(names))
	for _, name := range names {
		out = append(out, c.tables[name])
	}
	return out
}
