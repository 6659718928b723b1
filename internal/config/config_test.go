package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Model != "gc" {
		t.Errorf("expected model gc, got %s", cfg.Model)
	}
	if cfg.Equilibrium.B0 <= 0 {
		t.Error("on-axis field should be positive")
	}
	if cfg.SCE.DtOrbit <= 0 {
		t.Error("orbit timestep should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config must validate: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	body := []byte("model: full_orbit\nequilibrium:\n  b0: 3.1\n")
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Model != "full_orbit" {
		t.Errorf("model not overridden: %s", cfg.Model)
	}
	if cfg.Equilibrium.B0 != 3.1 {
		t.Errorf("b0 not overridden: %v", cfg.Equilibrium.B0)
	}
	// Untouched keys keep their defaults.
	if cfg.Equilibrium.R0 != DefaultR0 {
		t.Errorf("r0 default lost: %v", cfg.Equilibrium.R0)
	}
	if cfg.SCE.Cells != DefaultCells {
		t.Errorf("sce cells default lost: %d", cfg.SCE.Cells)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.yaml")

	cfg := DefaultConfig()
	cfg.SCE.TotalCurrent = 7.5e4
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if back.SCE.TotalCurrent != 7.5e4 {
		t.Errorf("round trip lost total current: %v", back.SCE.TotalCurrent)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero b0", func(c *Config) { c.Equilibrium.B0 = 0 }},
		{"negative r0", func(c *Config) { c.Equilibrium.R0 = -1 }},
		{"tiny mesh", func(c *Config) { c.Mesh.NR = 2 }},
		{"bad policy", func(c *Config) { c.SCE.Policy = "spline" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("flux_gaussian")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if !cfg.SCE.Flux || cfg.SCE.Policy != "gaussian" {
		t.Errorf("preset not applied: %+v", cfg.SCE)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}

	if len(ListPresets()) == 0 {
		t.Error("expected non-empty preset list")
	}
}
