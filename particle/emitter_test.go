package particle

import (
	"math"
	"testing"
)

func mustEmitter(t *testing.T, kind EmitterKind) Emitter {
	t.Helper()
	e, err := NewEmitter(kind, 60)
	if err != nil {
		t.Fatalf("NewEmitter(%q): %v", kind, err)
	}
	if e.Kind() != kind {
		t.Fatalf("Kind() = %q, want %q", e.Kind(), kind)
	}
	return e
}

func TestNewEmitterUnknownKind(t *testing.T) {
	if _, err := NewEmitter("sprinkler", 60); err == nil {
		t.Error("expected error for unknown emission policy")
	}
}

func TestFixedPerFrameIgnoresDT(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	e := mustEmitter(t, FixedPerFrame)
	req := EmitRequest{Species: ids[0], Origin: Vec2{100, 100}, Amount: 7, Spread: 4}

	for _, dt := range []float64{frame, 0.5, 0} {
		if n := e.Emit(sys, req, dt); n != 7 {
			t.Errorf("dt=%v: emitted %d, want 7", dt, n)
		}
	}
}

func TestRateLimitedOneSecondTotal(t *testing.T) {
	tests := []struct {
		name   string
		fps    int
		amount int
	}{
		{"reference rate", 60, 16},
		{"half rate", 30, 16},
		{"double rate", 120, 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, ids := newTestSystem(0, fireSpecies())
			e := mustEmitter(t, RateLimited)
			req := EmitRequest{Species: ids[0], Origin: Vec2{100, 100}, Amount: tt.amount, Spread: 4}

			dt := 1.0 / float64(tt.fps)
			total := 0
			for i := 0; i < tt.fps; i++ {
				total += e.Emit(sys, req, dt)
			}

			want := tt.amount * 60
			if total != want {
				t.Errorf("emitted %d in one second, want %d", total, want)
			}
			if sys.Len() != total {
				t.Errorf("population = %d, want %d", sys.Len(), total)
			}
		})
	}
}

func TestRateLimitedNonPositiveDT(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	e := mustEmitter(t, RateLimited)
	req := EmitRequest{Species: ids[0], Amount: 16}

	if n := e.Emit(sys, req, 0); n != 0 {
		t.Errorf("dt=0 emitted %d", n)
	}
	if n := e.Emit(sys, req, -frame); n != 0 {
		t.Errorf("negative dt emitted %d", n)
	}
}

func TestWindowedQuotaPerSecond(t *testing.T) {
	tests := []struct {
		name    string
		fps     int
		seconds int
		amount  int
	}{
		{"reference rate", 60, 10, 100},
		{"144 fps", 144, 10, 100},
		{"30 fps", 30, 4, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys, ids := newTestSystem(0, fireSpecies())
			e := mustEmitter(t, WindowedQuota)
			req := EmitRequest{Species: ids[0], Origin: Vec2{100, 100}, Amount: tt.amount, Spread: 4}
			quota := int(float64(tt.amount) * QuotaWindow)

			dt := 1.0 / float64(tt.fps)
			total := 0
			for i := 0; i < tt.fps*tt.seconds; i++ {
				n := e.Emit(sys, req, dt)
				if n < 0 || n > quota {
					t.Fatalf("frame %d emitted %d, want within one window quota %d", i, n, quota)
				}
				total += n
			}

			if want := tt.amount * tt.seconds; total != want {
				t.Errorf("emitted %d over %d s, want %d", total, tt.seconds, want)
			}
		})
	}
}

func TestWindowedQuotaSpendsWholeWindowOnLongFrame(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	e := mustEmitter(t, WindowedQuota)
	req := EmitRequest{Species: ids[0], Amount: 50}

	if n := e.Emit(sys, req, 1.0); n != 10 {
		t.Errorf("long frame emitted %d, want the full window quota 10", n)
	}
	// The window is exhausted, so the next call opens a fresh one
	if n := e.Emit(sys, req, 1.0); n != 10 {
		t.Errorf("second long frame emitted %d, want 10", n)
	}
}

func TestWindowedQuotaDegenerateDT(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	e := mustEmitter(t, WindowedQuota)
	req := EmitRequest{Species: ids[0], Origin: Vec2{100, 100}, Amount: 100, Spread: 4}

	e.Emit(sys, req, frame)
	for _, dt := range []float64{0, -1} {
		if n := e.Emit(sys, req, dt); n != 0 {
			t.Errorf("dt=%v emitted %d, want 0", dt, n)
		}
	}

	// The window was reset, so a full-window frame emits a fresh quota
	if n := e.Emit(sys, req, QuotaWindow); n != 20 {
		t.Errorf("after reset emitted %d, want 20", n)
	}
	for _, p := range sys.Snapshot() {
		if math.IsNaN(float64(p.Pos.X)) || math.IsNaN(float64(p.Pos.Y)) {
			t.Fatalf("NaN position %+v", p.Pos)
		}
	}
}

func TestWindowedQuotaStateIsPerEmitter(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	a := mustEmitter(t, WindowedQuota)
	b := mustEmitter(t, WindowedQuota)
	req := EmitRequest{Species: ids[0], Amount: 100}

	// Drain a's window completely
	if n := a.Emit(sys, req, QuotaWindow); n != 20 {
		t.Fatalf("a emitted %d, want 20", n)
	}
	if n := b.Emit(sys, req, QuotaWindow); n != 20 {
		t.Errorf("b emitted %d, want its own full quota 20", n)
	}
}

func TestEmitterReset(t *testing.T) {
	sys, ids := newTestSystem(0, fireSpecies())
	e := mustEmitter(t, WindowedQuota)
	req := EmitRequest{Species: ids[0], Amount: 100}

	e.Emit(sys, req, frame)
	e.Reset()
	if n := e.Emit(sys, req, QuotaWindow); n != 20 {
		t.Errorf("after Reset emitted %d, want 20", n)
	}
}

func TestEmitterRespectsCap(t *testing.T) {
	sys, ids := newTestSystem(10, fireSpecies())
	e := mustEmitter(t, FixedPerFrame)
	req := EmitRequest{Species: ids[0], Amount: 6}

	e.Emit(sys, req, frame) // 6
	e.Emit(sys, req, frame) // 12, allowed because 6 <= 10
	if n := e.Emit(sys, req, frame); n != 0 {
		t.Errorf("emitted %d above cap, want 0", n)
	}
	if sys.Len() != 12 {
		t.Errorf("population = %d, want 12", sys.Len())
	}
}
