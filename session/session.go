// Package session holds the painter's state between the raylib host and the
// particle engine: the brush slots and their emitters, the particle snapshot,
// brush file handling and telemetry. Nothing here touches the window, so the
// same Session drives both the interactive and the headless runs.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
	"unicode"

	"github.com/pthm-cable/hiasobi/brush"
	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/particle"
	"github.com/pthm-cable/hiasobi/randutil"
	"github.com/pthm-cable/hiasobi/telemetry"
)

// MinBrushSize is the smallest particle size the size keys can reach.
const MinBrushSize = 1

// Options configures a Session.
type Options struct {
	Seed      int64  // RNG seed (0 = random)
	LogStats  bool   // Log each telemetry window via slog
	OutputDir string // Directory for telemetry.csv, perf.csv and config.yaml (empty = disabled)
}

// Slot is a selectable brush: its own copy of a species plus emission
// settings and the emitter that carries their state between frames.
type Slot struct {
	Name    string
	Key     rune
	Species particle.SpeciesID
	Amount  int32
	Spread  int32
	Emitter particle.Emitter
}

// Session is one painting session.
type Session struct {
	cfg      *config.Config
	rng      *randutil.Source
	registry *particle.Registry
	sys      *particle.System
	bounds   particle.Bounds

	slots   []*Slot
	current int

	snapshot    []particle.Particle
	hasSnapshot bool
	paused      bool

	frame   int32
	simTime float64

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager
	logStats  bool

	// Called after each telemetry window is flushed
	statsCallback func(telemetry.WindowStats)
}

// New creates a session from cfg. Each configured brush registers its own
// copy of its species so colour and size edits stay local to that brush.
func New(cfg *config.Config, opts Options) (*Session, error) {
	rng := randutil.New()
	if opts.Seed != 0 {
		rng = randutil.NewSeeded(opts.Seed)
	}

	registry := particle.NewRegistry()
	slots := make([]*Slot, 0, len(cfg.Brushes))
	for _, bc := range cfg.Brushes {
		idx, ok := cfg.Derived.SpeciesIndex[bc.Species]
		if !ok {
			return nil, fmt.Errorf("brush %q: unknown species %q", bc.Name, bc.Species)
		}
		emitter, err := particle.NewEmitter(particle.EmitterKind(bc.Emission), cfg.Simulation.Rate)
		if err != nil {
			return nil, fmt.Errorf("brush %q: %w", bc.Name, err)
		}
		sp := particle.SpeciesFromConfig(cfg.Species[idx])
		if err := sp.Validate(); err != nil {
			return nil, fmt.Errorf("species %q: %w", sp.Name, err)
		}
		slots = append(slots, &Slot{
			Name:    bc.Name,
			Key:     brushKey(bc.Key),
			Species: registry.Register(sp),
			Amount:  bc.Amount,
			Spread:  bc.Spread,
			Emitter: emitter,
		})
	}
	if len(slots) == 0 {
		return nil, errors.New("no brushes configured")
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, err
	}

	s := &Session{
		cfg:      cfg,
		rng:      rng,
		registry: registry,
		sys: particle.NewSystem(registry, rng, particle.Options{
			MaxParticles:   cfg.Simulation.MaxParticles,
			SimulationRate: cfg.Simulation.Rate,
		}),
		bounds: particle.Bounds{
			Width:  float64(cfg.Screen.Width),
			Height: float64(cfg.Screen.Height),
			Offset: cfg.Simulation.OutOfBoundsOffset,
		},
		slots:     slots,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output:    output,
		logStats:  opts.LogStats,
	}

	slog.Info("session started",
		"brushes", len(slots),
		"max_particles", cfg.Simulation.MaxParticles,
		"rate", cfg.Simulation.Rate,
		"stats_window_sec", s.collector.WindowDuration(),
		"output_dir", output.Dir(),
	)
	return s, nil
}

func brushKey(k string) rune {
	for _, r := range k {
		return unicode.ToUpper(r)
	}
	return 0
}

// Close flushes and closes telemetry output.
func (s *Session) Close() error {
	return s.output.Close()
}

// SetStatsCallback registers fn to receive every flushed telemetry window.
func (s *Session) SetStatsCallback(fn func(telemetry.WindowStats)) {
	s.statsCallback = fn
}

// System returns the particle engine.
func (s *Session) System() *particle.System { return s.sys }

// Perf returns the frame timing collector.
func (s *Session) Perf() *telemetry.PerfCollector { return s.perf }

// Frame returns the number of completed frames.
func (s *Session) Frame() int32 { return s.frame }

// SimTime returns the simulated seconds elapsed.
func (s *Session) SimTime() float64 { return s.simTime }

// Bounds returns the current culling bounds.
func (s *Session) Bounds() particle.Bounds { return s.bounds }

// Resize updates the canvas size used for culling.
func (s *Session) Resize(width, height float64) {
	s.bounds.Width = width
	s.bounds.Height = height
}

// Paused reports whether stepping is suspended.
func (s *Session) Paused() bool { return s.paused }

// TogglePause suspends or resumes stepping. Painting still works while paused.
func (s *Session) TogglePause() bool {
	s.paused = !s.paused
	return s.paused
}

// Slots returns the brush slots in configuration order.
func (s *Session) Slots() []*Slot { return s.slots }

// Current returns the selected slot.
func (s *Session) Current() *Slot { return s.slots[s.current] }

// Select makes slot i current. Out-of-range indices are ignored.
func (s *Session) Select(i int) bool {
	if i < 0 || i >= len(s.slots) || i == s.current {
		return false
	}
	s.current = i
	s.slots[i].Emitter.Reset()
	return true
}

// SelectKey selects the first slot bound to key, case-insensitively.
func (s *Session) SelectKey(key rune) bool {
	key = unicode.ToUpper(key)
	for i, sl := range s.slots {
		if sl.Key != 0 && sl.Key == key {
			s.Select(i)
			return true
		}
	}
	return false
}

// Step advances the simulation by dt seconds: cull, then step survivors.
// While paused only culling runs.
func (s *Session) Step(dt float64) particle.CullResult {
	if s.paused {
		dt = 0
	}
	return s.sys.Update(dt, s.bounds)
}

// Paint emits from the current brush at (x, y) through its emitter.
func (s *Session) Paint(x, y float32, dt float64) int {
	sl := s.Current()
	return sl.Emitter.Emit(s.sys, particle.EmitRequest{
		Species: sl.Species,
		Origin:  particle.Vec2{X: x, Y: y},
		Amount:  int(sl.Amount),
		Spread:  float64(sl.Spread),
	}, dt)
}

// Clear removes every particle.
func (s *Session) Clear() {
	s.sys.Clear()
}

// SaveSnapshot stores a copy of the current population, replacing any
// previous snapshot.
func (s *Session) SaveSnapshot() int {
	s.snapshot = s.sys.Snapshot()
	s.hasSnapshot = true
	return len(s.snapshot)
}

// RestoreSnapshot replaces the population with the stored snapshot. It
// reports false when nothing has been saved yet.
func (s *Session) RestoreSnapshot() bool {
	if !s.hasSnapshot {
		return false
	}
	s.sys.Restore(s.snapshot)
	return true
}

// HasSnapshot reports whether a snapshot is stored.
func (s *Session) HasSnapshot() bool { return s.hasSnapshot }

// species returns the current slot's species.
func (s *Session) species() *particle.Species {
	return s.registry.Get(s.Current().Species)
}

// editSpecies registers an edited copy of the current slot's species and
// points the slot at it. Particles already painted keep the species they
// were emitted with.
func (s *Session) editSpecies(fn func(sp *particle.Species)) particle.Species {
	sp := *s.species()
	fn(&sp)
	sl := s.Current()
	sl.Species = s.registry.Register(sp)
	return sp
}

// RandomizeColor gives the current brush a random opaque colour. Particles
// already on the canvas keep theirs.
func (s *Session) RandomizeColor() {
	c := s.rng.RGB(0, 0, 0, 255, 255, 255)
	s.editSpecies(func(sp *particle.Species) { sp.Color = c })
}

// AdjustSize changes the current brush's particle size by delta, never going
// below MinBrushSize. It returns the new size.
func (s *Session) AdjustSize(delta float64) float64 {
	sp := s.editSpecies(func(sp *particle.Species) {
		sp.Size = math.Max(MinBrushSize, sp.Size+delta)
	})
	return sp.Size
}

// CurrentBrush returns the current slot as a brush value.
func (s *Session) CurrentBrush() brush.Brush {
	sl := s.Current()
	return brush.Brush{
		Species: *s.species(),
		Amount:  sl.Amount,
		Spread:  sl.Spread,
	}
}

// ApplyBrush makes b the current slot's brush. The slot keeps its name.
// Particles already painted keep their old species; b.Species must pass
// Validate.
func (s *Session) ApplyBrush(b brush.Brush) error {
	if err := b.Species.Validate(); err != nil {
		return fmt.Errorf("brush %q: %w", s.Current().Name, err)
	}
	b.Species.Name = s.species().Name
	s.editSpecies(func(sp *particle.Species) { *sp = b.Species })
	sl := s.Current()
	sl.Amount = b.Amount
	sl.Spread = b.Spread
	return nil
}

// SaveBrush writes the current brush to path.
func (s *Session) SaveBrush(path string) error {
	if err := brush.SaveFile(path, s.CurrentBrush()); err != nil {
		return err
	}
	slog.Info("brush saved", "path", path, "brush", s.Current().Name)
	return nil
}

// LoadBrush reads path into the current slot. On error the slot is unchanged.
func (s *Session) LoadBrush(path string) error {
	b, err := brush.LoadFile(path)
	if err != nil {
		return err
	}
	if err := s.ApplyBrush(b); err != nil {
		return err
	}
	slog.Info("brush loaded", "path", path, "brush", s.Current().Name,
		"amount", b.Amount, "spread", b.Spread)
	return nil
}

// EndFrame advances the frame clock by dt and flushes telemetry when a
// window completes.
func (s *Session) EndFrame(dt float64) {
	s.frame++
	if dt > 0 {
		s.simTime += dt
	}
	if s.collector.ShouldFlush(s.simTime) {
		s.flushTelemetry()
	}
}

func (s *Session) flushTelemetry() {
	lives := make([]float64, 0, s.sys.Len())
	s.sys.Each(func(p particle.Particle) {
		lives = append(lives, p.Life)
	})

	stats := s.collector.Flush(s.frame, s.simTime, s.Current().Name, s.sys.Counters(), lives)
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := s.output.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := s.output.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// Headless script: the brush orbits the canvas centre and cycles through the
// slots.
const (
	orbitAngularSpeed = 1.0 // radians per simulated second
	orbitRadiusFrac   = 0.25
	brushCycleSec     = 5.0
)

// OrbitPoint returns where the scripted brush is at simulated time t on a
// canvas of the given size.
func OrbitPoint(t, width, height float64) (x, y float32) {
	r := math.Min(width, height) * orbitRadiusFrac
	a := t * orbitAngularSpeed
	return float32(width/2 + r*math.Cos(a)), float32(height/2 + r*math.Sin(a))
}

// HeadlessFrame runs one scripted frame with the configured fixed dt.
func (s *Session) HeadlessFrame() {
	dt := s.cfg.Simulation.HeadlessDT

	s.perf.StartFrame()

	s.perf.StartPhase(telemetry.PhaseUpdate)
	s.Step(dt)

	s.perf.StartPhase(telemetry.PhaseEmit)
	s.Select(int(s.simTime/brushCycleSec) % len(s.slots))
	x, y := OrbitPoint(s.simTime, s.bounds.Width, s.bounds.Height)
	s.Paint(x, y, dt)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.EndFrame(dt)

	s.perf.EndFrame()
}

// RunHeadless runs frames scripted frames (0 = until stop is closed) and
// logs a summary.
func (s *Session) RunHeadless(frames int, stop <-chan struct{}) {
	start := time.Now()
loop:
	for frames <= 0 || int(s.frame) < frames {
		select {
		case <-stop:
			break loop
		default:
		}
		s.HeadlessFrame()
	}
	c := s.sys.Counters()
	slog.Info("headless run finished",
		"frames", s.frame,
		"sim_time", s.simTime,
		"wall_time", time.Since(start).String(),
		"particles", s.sys.Len(),
		"emitted", c.Emitted,
		"dropped", c.Dropped,
	)
}
