// Package renderer draws the particle population with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/particle"
)

// ParticleRenderer draws each particle as a filled square anchored at its
// top-left corner.
type ParticleRenderer struct {
	Background rl.Color
	drawn      int
}

// NewParticleRenderer creates a renderer that clears to black.
func NewParticleRenderer() *ParticleRenderer {
	return &ParticleRenderer{Background: rl.Black}
}

// Draw clears the frame and renders every live particle. Must be called
// between rl.BeginDrawing and rl.EndDrawing.
func (r *ParticleRenderer) Draw(sys *particle.System) {
	rl.ClearBackground(r.Background)

	r.drawn = 0
	sys.Each(func(p particle.Particle) {
		size := int32(p.Size)
		if size < 1 {
			return
		}
		rl.DrawRectangle(int32(p.Pos.X), int32(p.Pos.Y), size, size, rl.Color(p.Color))
		r.drawn++
	})
}

// Drawn returns how many particles the last Draw rendered.
func (r *ParticleRenderer) Drawn() int {
	return r.drawn
}
