package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	if cfg.Screen.Width != 1280 || cfg.Screen.Height != 800 {
		t.Errorf("screen = %dx%d, want 1280x800", cfg.Screen.Width, cfg.Screen.Height)
	}
	if cfg.Simulation.Rate != 60 {
		t.Errorf("simulation rate = %v, want 60", cfg.Simulation.Rate)
	}
	if cfg.Simulation.MaxParticles != 100000 {
		t.Errorf("max particles = %d, want 100000", cfg.Simulation.MaxParticles)
	}

	idx, ok := cfg.Derived.SpeciesIndex["fire"]
	if !ok {
		t.Fatal("fire species missing from index")
	}
	fire := cfg.Species[idx]
	if fire.MaxInertia != [2]float32{1, 2.5} {
		t.Errorf("fire max_inertia = %v, want [1 2.5]", fire.MaxInertia)
	}
	if fire.LifeDecay != 1.5 {
		t.Errorf("fire life_decay = %v, want 1.5", fire.LifeDecay)
	}
	if len(cfg.Brushes) != 2 {
		t.Errorf("brushes = %d, want 2", len(cfg.Brushes))
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := []byte(`
simulation:
  max_particles: 500
species:
  - name: smoke
    min_inertia: [-1, 0]
    max_inertia: [1, 1]
    color: [128, 128, 128, 255]
    size: 6
    life_decay: 0.8
brushes:
  - name: smoke
    species: smoke
    amount: 4
    spread: 8
    key: m
`)
	if err := os.WriteFile(path, overlay, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Simulation.MaxParticles != 500 {
		t.Errorf("max particles = %d, want 500", cfg.Simulation.MaxParticles)
	}
	// Untouched fields keep their defaults
	if cfg.Simulation.OutOfBoundsOffset != 1000 {
		t.Errorf("out of bounds offset = %v, want 1000", cfg.Simulation.OutOfBoundsOffset)
	}
	if len(cfg.Species) != 1 || cfg.Species[0].Name != "smoke" {
		t.Fatalf("species = %+v, want only smoke", cfg.Species)
	}

	smoke := cfg.Species[0]
	if smoke.StartLife != 100 || smoke.LifeAlphaMultiplier != 2 || smoke.ColorAlphaAdd != 50 {
		t.Errorf("advanced defaults not applied: %+v", smoke)
	}
	if cfg.Brushes[0].Emission != "rate_limited" {
		t.Errorf("emission = %q, want rate_limited default", cfg.Brushes[0].Emission)
	}
}

func TestLoadRejectsUnknownSpecies(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
brushes:
  - name: ghost
    species: ectoplasm
    amount: 1
    spread: 1
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for brush with unknown species")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	again, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if len(again.Species) != len(cfg.Species) {
		t.Errorf("species count = %d, want %d", len(again.Species), len(cfg.Species))
	}
	if again.Brushes[1].Amount != cfg.Brushes[1].Amount {
		t.Errorf("brush amount = %d, want %d", again.Brushes[1].Amount, cfg.Brushes[1].Amount)
	}
}

func TestCloneIsDeep(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	clone, err := cfg.Clone()
	if err != nil {
		t.Fatalf("Clone: %v", err)
	}

	clone.Species[0].LifeDecay = 42
	clone.Brushes = clone.Brushes[:1]
	if cfg.Species[0].LifeDecay == 42 {
		t.Error("species edit leaked into the original")
	}
	if len(cfg.Brushes) != 2 {
		t.Errorf("original brushes = %d, want 2", len(cfg.Brushes))
	}
	if clone.Derived.SpeciesIndex["water"] != cfg.Derived.SpeciesIndex["water"] {
		t.Error("derived species index not rebuilt")
	}
}

func TestBrushKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []string
		wantErr string
	}{
		{"defaults", []string{"w", "f"}, ""},
		{"upper case", []string{"W", "F"}, ""},
		{"no key", []string{"", "f"}, ""},
		{"snapshot key", []string{"w", "s"}, "reserved"},
		{"clear key", []string{"Z", "f"}, "reserved"},
		{"burst key", []string{"w", "x"}, "reserved"},
		{"perf key", []string{"p", "f"}, "reserved"},
		{"duplicate", []string{"w", "W"}, "already bound"},
		{"not a letter", []string{"1", "f"}, "single letter"},
		{"two letters", []string{"wf", "f"}, "single letter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			if err != nil {
				t.Fatal(err)
			}
			for i, k := range tt.keys {
				cfg.Brushes[i].Key = k
			}

			err = cfg.computeDerived()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("error = %v, want one containing %q", err, tt.wantErr)
			}
		})
	}
}
