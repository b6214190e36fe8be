// Package particle implements the particle simulation: a species registry,
// an ECS-backed population, the per-frame step rule, culling and emission.
package particle

import (
	"image/color"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/hiasobi/components"
	"github.com/pthm-cable/hiasobi/randutil"
)

// DefaultSimulationRate is the reference frame rate decay and motion are
// normalised to. A particle loses LifeDecay per 1/60 s regardless of the
// real frame rate.
const DefaultSimulationRate = 60.0

// Options configures a System.
type Options struct {
	MaxParticles   int     // Emission stops once the population exceeds this (0 = unlimited)
	SimulationRate float64 // Reference frame rate (0 = DefaultSimulationRate)
}

// Bounds is the viewport plus the out-of-bounds tolerance.
type Bounds struct {
	Width, Height float64
	Offset        float64
}

// Contains reports whether (x, y) lies in [-Offset, dim+Offset] on both axes.
func (b Bounds) Contains(x, y float32) bool {
	fx, fy := float64(x), float64(y)
	return fx >= -b.Offset && fx <= b.Width+b.Offset &&
		fy >= -b.Offset && fy <= b.Height+b.Offset
}

// Particle is a value copy of one live particle.
type Particle struct {
	Species SpeciesID
	Pos     Vec2
	Inertia Vec2
	Color   color.RGBA
	Life    float64
	Size    float32
}

// Counters are cumulative population events since the System was created.
type Counters struct {
	Emitted     uint64
	Dropped     uint64 // requested while the population was over the cap
	Expired     uint64
	OutOfBounds uint64
}

// CullResult counts particles removed by CullExpired.
type CullResult struct {
	Expired     int // life dropped below zero
	OutOfBounds int // left the tolerance rectangle while still alive
}

// System is one simulation session. It owns the population, the species
// registry and the random source. Not safe for concurrent use.
type System struct {
	world   *ecs.World
	species *Registry
	rng     *randutil.Source
	opts    Options

	mapper *ecs.Map6[
		components.Position,
		components.Inertia,
		components.Tint,
		components.Life,
		components.Size,
		components.Species,
	]
	filter *ecs.Filter6[
		components.Position,
		components.Inertia,
		components.Tint,
		components.Life,
		components.Size,
		components.Species,
	]
	cullFilter *ecs.Filter2[components.Position, components.Life]

	count    int
	counters Counters
	doomed   []ecs.Entity // scratch for removals, reused across frames
}

// NewSystem creates a simulation session.
func NewSystem(species *Registry, rng *randutil.Source, opts Options) *System {
	if opts.SimulationRate <= 0 {
		opts.SimulationRate = DefaultSimulationRate
	}
	world := ecs.NewWorld()
	return &System{
		world:   world,
		species: species,
		rng:     rng,
		opts:    opts,
		mapper: ecs.NewMap6[
			components.Position,
			components.Inertia,
			components.Tint,
			components.Life,
			components.Size,
			components.Species,
		](world),
		filter: ecs.NewFilter6[
			components.Position,
			components.Inertia,
			components.Tint,
			components.Life,
			components.Size,
			components.Species,
		](world),
		cullFilter: ecs.NewFilter2[components.Position, components.Life](world),
	}
}

// Counters returns the cumulative event counters.
func (s *System) Counters() Counters {
	return s.counters
}

// Len returns the number of live particles.
func (s *System) Len() int {
	return s.count
}

// Update is the per-frame entry point: cull, then step every survivor by dt
// seconds. A non-positive dt only culls.
func (s *System) Update(dt float64, b Bounds) CullResult {
	res := s.CullExpired(b)
	if dt > 0 {
		s.step(dt)
	}
	return res
}

// CullExpired removes every particle with negative life or a position
// outside b. Survivor order is unspecified afterwards.
func (s *System) CullExpired(b Bounds) CullResult {
	var res CullResult
	s.doomed = s.doomed[:0]

	query := s.cullFilter.Query()
	for query.Next() {
		pos, life := query.Get()
		switch {
		case life.Value < 0:
			res.Expired++
		case !b.Contains(pos.X, pos.Y):
			res.OutOfBounds++
		default:
			continue
		}
		s.doomed = append(s.doomed, query.Entity())
	}

	// Query iteration must finish before the world can be modified
	for _, e := range s.doomed {
		s.world.RemoveEntity(e)
	}
	s.count -= len(s.doomed)
	s.counters.Expired += uint64(res.Expired)
	s.counters.OutOfBounds += uint64(res.OutOfBounds)
	return res
}

// step advances every particle by dt seconds.
func (s *System) step(dt float64) {
	scale := dt * s.opts.SimulationRate

	query := s.filter.Query()
	for query.Next() {
		pos, inertia, tint, life, _, sp := query.Get()
		def := s.species.Get(sp.ID)
		if def == nil {
			continue
		}
		advance(def, s.rng, scale, pos, inertia, tint, life)
	}
}

// Emit appends count particles of species id around origin. Offsets come
// from randutil.Source.PointInDisk with radius spread. Nothing is emitted
// once the population already exceeds MaxParticles; the check runs once per
// call, so a single call may overshoot the cap by up to count.
func (s *System) Emit(id SpeciesID, origin Vec2, count int, spread float64) int {
	if count <= 0 {
		return 0
	}
	if s.opts.MaxParticles > 0 && s.count > s.opts.MaxParticles {
		s.counters.Dropped += uint64(count)
		return 0
	}
	def := s.species.Get(id)
	if def == nil {
		return 0
	}

	for i := 0; i < count; i++ {
		dx, dy := s.rng.PointInDisk(spread)
		s.spawn(Particle{
			Species: id,
			Pos:     Vec2{X: origin.X + float32(dx), Y: origin.Y + float32(dy)},
			Color:   def.Color,
			Life:    def.StartLife,
			Size:    float32(def.Size),
		})
	}
	s.counters.Emitted += uint64(count)
	return count
}

func (s *System) spawn(p Particle) {
	pos := components.Position{X: p.Pos.X, Y: p.Pos.Y}
	inertia := components.Inertia{X: p.Inertia.X, Y: p.Inertia.Y}
	tint := components.Tint{Color: p.Color}
	life := components.Life{Value: p.Life}
	size := components.Size{Value: p.Size}
	sp := components.Species{ID: p.Species}
	s.mapper.NewEntity(&pos, &inertia, &tint, &life, &size, &sp)
	s.count++
}

// Each calls fn with a copy of every live particle. fn must not emit or cull.
func (s *System) Each(fn func(p Particle)) {
	query := s.filter.Query()
	for query.Next() {
		pos, inertia, tint, life, size, sp := query.Get()
		fn(Particle{
			Species: sp.ID,
			Pos:     Vec2{X: pos.X, Y: pos.Y},
			Inertia: Vec2{X: inertia.X, Y: inertia.Y},
			Color:   tint.Color,
			Life:    life.Value,
			Size:    size.Value,
		})
	}
}

// Snapshot copies the population.
func (s *System) Snapshot() []Particle {
	out := make([]Particle, 0, s.count)
	s.Each(func(p Particle) {
		out = append(out, p)
	})
	return out
}

// Restore replaces the population with a snapshot. The cap is not applied.
func (s *System) Restore(ps []Particle) {
	s.Clear()
	for _, p := range ps {
		s.spawn(p)
	}
}

// Clear removes every particle.
func (s *System) Clear() {
	s.doomed = s.doomed[:0]
	query := s.cullFilter.Query()
	for query.Next() {
		s.doomed = append(s.doomed, query.Entity())
	}
	for _, e := range s.doomed {
		s.world.RemoveEntity(e)
	}
	s.count = 0
}
