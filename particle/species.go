package particle

import (
	"fmt"
	"image/color"
	"math"

	"github.com/pthm-cable/hiasobi/components"
	"github.com/pthm-cable/hiasobi/config"
)

// SpeciesID indexes a species in a Registry.
type SpeciesID = components.SpeciesID

// Vec2 is a 2D vector in screen units.
type Vec2 struct {
	X, Y float32
}

// Species is the shared template for a class of particles: motion bounds,
// colour, size and the life-to-alpha mapping.
type Species struct {
	Name string

	// Movement
	MinInertia    Vec2
	MaxInertia    Vec2
	MinInertiaAdd Vec2
	MaxInertiaAdd Vec2
	MinRandMove   Vec2
	MaxRandMove   Vec2

	// Visuals
	Color     color.RGBA
	Size      float64
	LifeDecay float64 // life lost per reference frame

	// Alpha = ColorAlphaAdd + life*LifeAlphaMultiplier
	LifeAlphaMultiplier float64
	StartLife           float64
	ColorAlphaAdd       float64
}

// Default life mapping parameters.
const (
	DefaultLifeAlphaMultiplier = 2
	DefaultStartLife           = 100
	DefaultColorAlphaAdd       = 50
)

// NewSpecies returns a species with the default life mapping.
func NewSpecies(name string) Species {
	return Species{
		Name:                name,
		LifeAlphaMultiplier: DefaultLifeAlphaMultiplier,
		StartLife:           DefaultStartLife,
		ColorAlphaAdd:       DefaultColorAlphaAdd,
	}
}

// SpeciesFromConfig converts a configured species.
func SpeciesFromConfig(c config.SpeciesConfig) Species {
	vec := func(v [2]float32) Vec2 { return Vec2{X: v[0], Y: v[1]} }
	return Species{
		Name:                c.Name,
		MinInertia:          vec(c.MinInertia),
		MaxInertia:          vec(c.MaxInertia),
		MinInertiaAdd:       vec(c.MinInertiaAdd),
		MaxInertiaAdd:       vec(c.MaxInertiaAdd),
		MinRandMove:         vec(c.MinRandMove),
		MaxRandMove:         vec(c.MaxRandMove),
		Color:               color.RGBA{R: c.Color[0], G: c.Color[1], B: c.Color[2], A: c.Color[3]},
		Size:                c.Size,
		LifeDecay:           c.LifeDecay,
		LifeAlphaMultiplier: c.LifeAlphaMultiplier,
		StartLife:           c.StartLife,
		ColorAlphaAdd:       c.ColorAlphaAdd,
	}
}

// Config converts s back to its configuration form.
func (s Species) Config() config.SpeciesConfig {
	pair := func(v Vec2) [2]float32 { return [2]float32{v.X, v.Y} }
	return config.SpeciesConfig{
		Name:                s.Name,
		MinInertia:          pair(s.MinInertia),
		MaxInertia:          pair(s.MaxInertia),
		MinInertiaAdd:       pair(s.MinInertiaAdd),
		MaxInertiaAdd:       pair(s.MaxInertiaAdd),
		MinRandMove:         pair(s.MinRandMove),
		MaxRandMove:         pair(s.MaxRandMove),
		Color:               [4]uint8{s.Color.R, s.Color.G, s.Color.B, s.Color.A},
		Size:                s.Size,
		LifeDecay:           s.LifeDecay,
		LifeAlphaMultiplier: s.LifeAlphaMultiplier,
		StartLife:           s.StartLife,
		ColorAlphaAdd:       s.ColorAlphaAdd,
	}
}

// Validate reports the first parameter that would break the update rule:
// a non-finite value, a negative life decay or size, or a min/max pair
// given in the wrong order.
func (s Species) Validate() error {
	floats := []struct {
		name string
		v    float64
	}{
		{"size", s.Size},
		{"life_decay", s.LifeDecay},
		{"life_alpha_multiplier", s.LifeAlphaMultiplier},
		{"start_life", s.StartLife},
		{"color_alpha_add", s.ColorAlphaAdd},
	}
	for _, f := range floats {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%s is not finite", f.name)
		}
	}
	if s.LifeDecay < 0 {
		return fmt.Errorf("life_decay %v is negative", s.LifeDecay)
	}
	if s.Size < 0 {
		return fmt.Errorf("size %v is negative", s.Size)
	}

	ranges := []struct {
		name     string
		min, max Vec2
	}{
		{"inertia", s.MinInertia, s.MaxInertia},
		{"inertia_add", s.MinInertiaAdd, s.MaxInertiaAdd},
		{"rand_move", s.MinRandMove, s.MaxRandMove},
	}
	for _, r := range ranges {
		for _, v := range []float32{r.min.X, r.min.Y, r.max.X, r.max.Y} {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return fmt.Errorf("%s is not finite", r.name)
			}
		}
		if r.min.X > r.max.X || r.min.Y > r.max.Y {
			return fmt.Errorf("min_%s %v exceeds max_%s %v", r.name, r.min, r.name, r.max)
		}
	}
	return nil
}

// Registry owns every species for the session. Particles hold a SpeciesID,
// never a pointer, and entries are never removed.
type Registry struct {
	species []Species
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a species and returns its ID.
func (r *Registry) Register(s Species) SpeciesID {
	r.species = append(r.species, s)
	return SpeciesID(len(r.species) - 1)
}

// Get returns the species for id, or nil if id was never registered.
// The pointer is valid until the next Register call. Callers must not modify
// a species that live particles refer to; register an edited copy instead.
func (r *Registry) Get(id SpeciesID) *Species {
	if int(id) >= len(r.species) {
		return nil
	}
	return &r.species[id]
}
