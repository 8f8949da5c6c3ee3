package config

import "sort"

var Presets = map[string]*Config{
	"standard": DefaultConfig(),
	"analysis": preset(func(c *Config) {
		c.Binning.MassBins = 50
		c.Binning.MinMass = 0
		c.Binning.MaxMass = 1.5
	}),
	"quick": preset(func(c *Config) {
		c.Iterations = 1000
	}),
	"parallel": preset(func(c *Config) {
		c.Workers = 0
	}),
}

func preset(modify func(*Config)) *Config {
	cfg := DefaultConfig()
	modify(cfg)
	return cfg
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
