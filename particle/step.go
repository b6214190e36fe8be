package particle

import (
	"github.com/pthm-cable/hiasobi/components"
	"github.com/pthm-cable/hiasobi/randutil"
)

// advance applies one step to a particle. scale is dt times the reference
// rate, so scale == 1 is exactly one reference frame.
func advance(
	def *Species,
	rng *randutil.Source,
	scale float64,
	pos *components.Position,
	inertia *components.Inertia,
	tint *components.Tint,
	life *components.Life,
) {
	life.Value -= def.LifeDecay * scale
	tint.Color.A = randutil.ClampChannel(def.ColorAlphaAdd + life.Value*def.LifeAlphaMultiplier)

	// A delta that would reach or cross a bound is dropped, not clamped
	s32 := float32(scale)
	dx := rng.Float32(def.MinInertiaAdd.X, def.MaxInertiaAdd.X) * s32
	if nx := inertia.X + dx; nx > def.MinInertia.X && nx < def.MaxInertia.X {
		inertia.X = nx
	}
	dy := rng.Float32(def.MinInertiaAdd.Y, def.MaxInertiaAdd.Y) * s32
	if ny := inertia.Y + dy; ny > def.MinInertia.Y && ny < def.MaxInertia.Y {
		inertia.Y = ny
	}

	jx := rng.Float32(def.MinRandMove.X, def.MaxRandMove.X)
	jy := rng.Float32(def.MinRandMove.Y, def.MaxRandMove.Y)

	// Inertia Y points up, screen Y points down
	pos.X += (inertia.X + jx) * s32
	pos.Y -= (inertia.Y + jy) * s32
}
