package config

import "sort"

// Presets are ready-made configurations for common scenarios.
var Presets = map[string]func() *Config{
	// Small circular tokamak, guiding-center field, SC-E on a radial grid.
	"gc_radial": func() *Config {
		return DefaultConfig()
	},
	// Full-orbit analytical field with a driven toroidal E field.
	"full_orbit_driven": func() *Config {
		cfg := DefaultConfig()
		cfg.Model = "full_orbit"
		cfg.Equilibrium.E0 = 0.05
		return cfg
	},
	// Flux-coordinate SC-E grid with Gaussian deposition. Dx is flux
	// spacing here: edge poloidal flux of the default equilibrium over
	// the cell count.
	"flux_gaussian": func() *Config {
		cfg := DefaultConfig()
		cfg.SCE.Flux = true
		cfg.SCE.Policy = "gaussian"
		cfg.SCE.Dx = 2.45e-3
		cfg.SCE.GaussianWidth = 2 * cfg.SCE.Dx
		return cfg
	},
	// Dynamic E pulse on top of the guiding-center equilibrium.
	"pulsed": func() *Config {
		cfg := DefaultConfig()
		cfg.Pulse.Enabled = true
		cfg.Pulse.Amplitude = 0.1
		cfg.Pulse.Center = 1e-3
		cfg.Pulse.Width = 2e-4
		return cfg
	},
}

func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
