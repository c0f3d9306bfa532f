package config

import "sort"

// Presets are overrides applied on top of DefaultConfig, grouped by
// substrate type.
var Presets = map[string]map[string]func(*Config){
	"continuous": {
		"baseline": func(c *Config) {},
		"adaptive": func(c *Config) {
			c.Adaptation.Enabled = true
		},
		"dense": func(c *Config) {
			c.Cones.Count = 30
			c.Cones.Size = 2
		},
		"ft_only": func(c *Config) {
			c.Signals.FF = false
		},
	},
	"wedges": {
		"baseline": func(c *Config) {},
	},
	"stripe_duo": {
		"baseline": func(c *Config) {},
		"long": func(c *Config) {
			c.Movement.NumSteps = 1200
		},
	},
	"gap_rr": {
		"baseline": func(c *Config) {},
		"adaptive": func(c *Config) {
			c.Adaptation.Enabled = true
			c.Adaptation.Mu = 0.02
		},
	},
	"gap_inv": {
		"baseline": func(c *Config) {},
		"adaptive": func(c *Config) {
			c.Adaptation.Enabled = true
		},
	},
}

// GetPreset returns a fresh config for substrate type kind with the named
// preset applied, or nil if either is unknown.
func GetPreset(kind, name string) *Config {
	group, ok := Presets[kind]
	if !ok {
		return nil
	}
	apply, ok := group[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Substrate.Type = kind
	apply(cfg)
	return cfg
}

func ListPresets(kind string) []string {
	group, ok := Presets[kind]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PresetKinds lists the substrate types that carry presets.
func PresetKinds() []string {
	kinds := make([]string, 0, len(Presets))
	for k := range Presets {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
