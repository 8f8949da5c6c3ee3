package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pairmass/internal/particle"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Iterations != 100000 {
		t.Errorf("expected 100000 iterations, got %d", cfg.Iterations)
	}
	if cfg.Primaries != 100 {
		t.Errorf("expected 100 primaries, got %d", cfg.Primaries)
	}
	if len(cfg.Particles) != 7 {
		t.Fatalf("expected 7 particles, got %d", len(cfg.Particles))
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	sum := 0.0
	for _, s := range cfg.Species() {
		sum += s.Probability
	}
	if sum < 1-1e-9 || sum > 1+1e-9 {
		t.Errorf("expected probabilities to sum to 1, got %f", sum)
	}
}

func TestRegistry(t *testing.T) {
	reg, err := DefaultConfig().Registry()
	if err != nil {
		t.Fatal(err)
	}
	i, err := reg.Lookup(particle.KaonStar)
	if err != nil {
		t.Fatal(err)
	}
	typ, _ := reg.Get(i)
	if !typ.IsResonance() || typ.Width != 0.05 {
		t.Errorf("expected K* resonance with width 0.05, got %v", typ)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero tolerance", func(c *Config) { c.Tolerance = 0 }},
		{"negative workers", func(c *Config) { c.Workers = -1 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"no species", func(c *Config) {
			for i := range c.Particles {
				c.Particles[i].Probability = 0
			}
		}},
		{"duplicate particle", func(c *Config) { c.Particles = append(c.Particles, c.Particles[0]) }},
		{"resonances below primaries", func(c *Config) { c.MaxResonances = 20 }},
		{"decay of unknown parent", func(c *Config) { c.Particles = c.Particles[:6] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Seed = 99
	cfg.Workers = 4
	cfg.Binning.MassBins = 80
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Seed != 99 || loaded.Workers != 4 || loaded.Binning.MassBins != 80 {
		t.Errorf("round trip lost values: %+v", loaded)
	}
	if len(loaded.Particles) != 7 || len(loaded.Decays) != 2 {
		t.Errorf("expected 7 particles and 2 decays, got %d and %d", len(loaded.Particles), len(loaded.Decays))
	}
	if loaded.Decays[1].Daughters != [2]string{particle.PionMinus, particle.KaonPlus} {
		t.Errorf("unexpected daughters %v", loaded.Decays[1].Daughters)
	}
}

func TestLoadOwnParticlesDropsDefaultDecays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pions.yaml")
	data := `iterations: 10
particles:
  - {name: "π+", mass: 0.13957, charge: 1, probability: 0.5}
  - {name: "π-", mass: 0.13957, charge: -1, probability: 0.5}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Particles) != 2 {
		t.Fatalf("expected 2 particles, got %d", len(cfg.Particles))
	}
	if len(cfg.Decays) != 0 {
		t.Errorf("expected no decays, got %v", cfg.Decays)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config invalid: %v", err)
	}
}

func TestLoadDecaysWithoutParticles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decays.yaml")
	data := `decays:
  - {parent: "K*", daughters: ["π+", "K-"], branching: 1}
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Particles) != 7 || len(cfg.Decays) != 1 {
		t.Errorf("expected default particles and 1 decay, got %d and %d", len(cfg.Particles), len(cfg.Decays))
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PAIRMASS_SEED", "7")
	t.Setenv("PAIRMASS_WORKERS", "3")
	t.Setenv("PAIRMASS_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 7 || cfg.Workers != 3 || cfg.Log.Format != "json" {
		t.Errorf("env not applied: seed %d workers %d format %s", cfg.Seed, cfg.Workers, cfg.Log.Format)
	}
	if cfg.Iterations != DefaultIterations {
		t.Errorf("unset variable changed iterations to %d", cfg.Iterations)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("PAIRMASS_ITERATIONS", "many")
	if err := ApplyEnv(DefaultConfig()); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestSimConfig(t *testing.T) {
	cfg := GetPreset("parallel")
	sc := cfg.SimConfig()
	if sc.Workers < 1 {
		t.Errorf("expected at least one worker, got %d", sc.Workers)
	}
	if sc.Iterations != cfg.Iterations || sc.Seed != cfg.Seed {
		t.Errorf("sim config does not match: %+v", sc)
	}
	if sc.MaxResonances != cfg.Primaries {
		t.Errorf("expected one decay slot per primary, got %d", sc.MaxResonances)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("analysis")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Binning.MassBins != 50 || cfg.Binning.MinMass != 0 {
		t.Errorf("expected 50 mass bins from 0, got %d from %f", cfg.Binning.MassBins, cfg.Binning.MinMass)
	}

	cfg.Particles[0].Probability = 0
	if GetPreset("analysis").Particles[0].Probability != 0.4 {
		t.Error("preset modified through returned copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != 4 {
		t.Fatalf("expected 4 presets, got %d", len(presets))
	}
	if presets[0] != "analysis" {
		t.Errorf("expected sorted names, got %v", presets)
	}
}
