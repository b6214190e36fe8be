package particle

import (
	"fmt"
	"math"
)

// EmitterKind names an emission policy in configuration.
type EmitterKind string

const (
	FixedPerFrame EmitterKind = "fixed_per_frame"
	RateLimited   EmitterKind = "rate_limited"
	WindowedQuota EmitterKind = "windowed_quota"
)

// QuotaWindow is the length of one windowed-quota window in seconds.
const QuotaWindow = 0.2

// quotaEpsilon absorbs the rounding left in timeLeft after a window's worth
// of frame times has been subtracted.
const quotaEpsilon = 1e-9

// EmitRequest describes what a brush wants to emit this frame.
type EmitRequest struct {
	Species SpeciesID
	Origin  Vec2
	Amount  int     // per frame at the reference rate, or per second for WindowedQuota
	Spread  float64 // emission disk radius
}

// Emitter turns an EmitRequest and the frame time into a particle count and
// emits it. Stateful emitters must not be shared between brushes.
type Emitter interface {
	Emit(s *System, req EmitRequest, dt float64) int
	Reset()
	Kind() EmitterKind
}

// NewEmitter creates an emitter for kind. referenceRate is the frame rate
// that RateLimited amounts are expressed against.
func NewEmitter(kind EmitterKind, referenceRate float64) (Emitter, error) {
	if referenceRate <= 0 {
		referenceRate = DefaultSimulationRate
	}
	switch kind {
	case FixedPerFrame:
		return &fixedEmitter{}, nil
	case RateLimited:
		return &rateEmitter{referenceRate: referenceRate}, nil
	case WindowedQuota:
		return &quotaEmitter{}, nil
	default:
		return nil, fmt.Errorf("unknown emission policy %q", kind)
	}
}

// fixedEmitter emits Amount particles every call.
type fixedEmitter struct{}

func (e *fixedEmitter) Emit(s *System, req EmitRequest, dt float64) int {
	return s.Emit(req.Species, req.Origin, req.Amount, req.Spread)
}

func (e *fixedEmitter) Reset()            {}
func (e *fixedEmitter) Kind() EmitterKind { return FixedPerFrame }

// rateEmitter scales Amount by the frame time so density does not depend on
// the real frame rate.
type rateEmitter struct {
	referenceRate float64
}

func (e *rateEmitter) Emit(s *System, req EmitRequest, dt float64) int {
	if !(dt > 0) {
		return 0
	}
	n := int(math.Round(float64(req.Amount) * e.referenceRate * dt))
	return s.Emit(req.Species, req.Origin, n, req.Spread)
}

func (e *rateEmitter) Reset()            {}
func (e *rateEmitter) Kind() EmitterKind { return RateLimited }

// quotaEmitter splits each second into QuotaWindow windows, each with a
// fifth of Amount, and spends the remaining quota in proportion to how much
// of the window the frame covers.
type quotaEmitter struct {
	quota    float64
	timeLeft float64
}

func (e *quotaEmitter) Emit(s *System, req EmitRequest, dt float64) int {
	if !(dt > 0) {
		e.open(req.Amount)
		return 0
	}
	if e.timeLeft <= quotaEpsilon {
		e.next(req.Amount)
	}

	frac := dt / e.timeLeft
	if frac > 1 {
		frac = 1
	}
	n := math.Round(e.quota * frac)
	if n > e.quota {
		n = math.Floor(e.quota)
	}
	e.quota -= n
	e.timeLeft -= dt

	if n <= 0 {
		return 0
	}
	return s.Emit(req.Species, req.Origin, int(n), req.Spread)
}

func (e *quotaEmitter) open(amountPerSecond int) {
	e.quota = float64(amountPerSecond) * QuotaWindow
	e.timeLeft = QuotaWindow
}

// next starts the following window. The overshoot of the frame that closed
// the previous window is carried so windows stay aligned to elapsed time; a
// frame longer than a whole window starts a fresh one.
func (e *quotaEmitter) next(amountPerSecond int) {
	if e.timeLeft < -QuotaWindow {
		e.timeLeft = 0
	}
	e.quota = float64(amountPerSecond) * QuotaWindow
	e.timeLeft += QuotaWindow
}

func (e *quotaEmitter) Reset() {
	e.quota = 0
	e.timeLeft = 0
}

func (e *quotaEmitter) Kind() EmitterKind { return WindowedQuota }
