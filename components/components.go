// Package components defines ECS components for live particles.
package components

import "image/color"

// SpeciesID indexes a species in the particle registry.
type SpeciesID uint16

// Position is a particle's screen position. Y grows downward.
type Position struct {
	X, Y float32
}

// Inertia is a particle's persistent drift. Y grows upward.
type Inertia struct {
	X, Y float32
}

// Tint is a particle's colour. Alpha is rewritten every step from life.
type Tint struct {
	Color color.RGBA
}

// Life is the remaining lifetime. The particle expires once it drops below zero.
type Life struct {
	Value float64
}

// Size is the edge length of the rendered square.
type Size struct {
	Value float32
}

// Species links a particle to its registry entry.
type Species struct {
	ID SpeciesID
}
