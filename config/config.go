// Package config provides configuration loading and access for the painter.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all configuration parameters.
type Config struct {
	Screen     ScreenConfig    `yaml:"screen"`
	Simulation SimConfig       `yaml:"simulation"`
	Species    []SpeciesConfig `yaml:"species"`
	Brushes    []BrushConfig   `yaml:"brushes"`
	BrushFile  string          `yaml:"brush_file"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// SimConfig holds particle engine parameters.
type SimConfig struct {
	Rate              float64 `yaml:"rate"`                 // Reference frame rate that decay and motion are normalised to
	MaxParticles      int     `yaml:"max_particles"`        // Emission stops once the population exceeds this
	OutOfBoundsOffset float64 `yaml:"out_of_bounds_offset"` // Distance past the screen edge before culling
	HeadlessDT        float64 `yaml:"headless_dt"`          // Fixed frame time for headless runs
}

// SpeciesConfig describes a particle species. Vectors are [x, y].
type SpeciesConfig struct {
	Name                string     `yaml:"name"`
	MinInertia          [2]float32 `yaml:"min_inertia"`
	MaxInertia          [2]float32 `yaml:"max_inertia"`
	MinInertiaAdd       [2]float32 `yaml:"min_inertia_add"`
	MaxInertiaAdd       [2]float32 `yaml:"max_inertia_add"`
	MinRandMove         [2]float32 `yaml:"min_rand_move"`
	MaxRandMove         [2]float32 `yaml:"max_rand_move"`
	Color               [4]uint8   `yaml:"color"` // r, g, b, a
	Size                float64    `yaml:"size"`
	LifeDecay           float64    `yaml:"life_decay"`
	LifeAlphaMultiplier float64    `yaml:"life_alpha_multiplier"`
	StartLife           float64    `yaml:"start_life"`
	ColorAlphaAdd       float64    `yaml:"color_alpha_add"`
}

// BrushConfig binds a species to emission settings and a selection key.
type BrushConfig struct {
	Name     string `yaml:"name"`
	Species  string `yaml:"species"`
	Amount   int32  `yaml:"amount"`   // Per frame at the reference rate, or per second for windowed_quota
	Spread   int32  `yaml:"spread"`   // Emission disk radius
	Key      string `yaml:"key"`      // Single letter that selects the brush
	Emission string `yaml:"emission"` // fixed_per_frame, rate_limited or windowed_quota
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"`          // Seconds of simulated time per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"` // Frames averaged by the perf collector
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	SpeciesIndex map[string]int // name -> index into Species
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file. Lists are replaced whole.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived fills species defaults and validates brush references.
func (c *Config) computeDerived() error {
	if c.Simulation.Rate <= 0 {
		c.Simulation.Rate = 60
	}
	if c.Simulation.HeadlessDT <= 0 {
		c.Simulation.HeadlessDT = 1.0 / c.Simulation.Rate
	}

	c.Derived.SpeciesIndex = make(map[string]int, len(c.Species))
	for i := range c.Species {
		sp := &c.Species[i]
		if sp.LifeAlphaMultiplier == 0 {
			sp.LifeAlphaMultiplier = 2
		}
		if sp.StartLife == 0 {
			sp.StartLife = 100
		}
		if sp.ColorAlphaAdd == 0 {
			sp.ColorAlphaAdd = 50
		}
		if _, dup := c.Derived.SpeciesIndex[sp.Name]; dup {
			return fmt.Errorf("duplicate species %q", sp.Name)
		}
		c.Derived.SpeciesIndex[sp.Name] = i
	}

	if len(c.Brushes) == 0 {
		return fmt.Errorf("no brushes configured")
	}
	for i := range c.Brushes {
		b := &c.Brushes[i]
		if _, ok := c.Derived.SpeciesIndex[b.Species]; !ok {
			return fmt.Errorf("brush %q: unknown species %q", b.Name, b.Species)
		}
		if b.Emission == "" {
			b.Emission = "rate_limited"
		}
	}
	return c.checkBrushKeys()
}

// ReservedKeys are the letters bound to fixed painter controls: colour,
// restore, perf panel, snapshot, burst and clear.
const ReservedKeys = "CLPSXZ"

// checkBrushKeys requires each brush key to be a single letter that is
// neither reserved nor bound to another brush. An empty key is allowed.
func (c *Config) checkBrushKeys() error {
	bound := make(map[string]string, len(c.Brushes))
	for _, b := range c.Brushes {
		if b.Key == "" {
			continue
		}
		k := strings.ToUpper(b.Key)
		if len(k) != 1 || k[0] < 'A' || k[0] > 'Z' {
			return fmt.Errorf("brush %q: key %q must be a single letter", b.Name, b.Key)
		}
		if strings.Contains(ReservedKeys, k) {
			return fmt.Errorf("brush %q: key %q is reserved for a control", b.Name, b.Key)
		}
		if other, dup := bound[k]; dup {
			return fmt.Errorf("brush %q: key %q already bound to brush %q", b.Name, b.Key, other)
		}
		bound[k] = b.Name
	}
	return nil
}

// Clone returns a deep copy of c with derived values recomputed.
func (c *Config) Clone() (*Config, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	out := &Config{}
	if err := yaml.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("parsing config copy: %w", err)
	}
	if err := out.computeDerived(); err != nil {
		return nil, err
	}
	return out, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
