package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/brush"
)

// PanelAction is a button pressed on the brush panel.
type PanelAction int

const (
	ActionNone PanelAction = iota
	ActionRandomColor
	ActionSave
	ActionLoad
)

// Slider ranges for the brush panel.
const (
	maxAmount    = 500
	maxSpread    = 256
	maxSize      = 32
	maxLifeDecay = 10
)

// BrushPanel is a raygui editor for the current brush.
type BrushPanel struct {
	renderer *Renderer
	x, y     float32
	width    float32
	visible  bool
}

// NewBrushPanel creates a hidden panel at (x, y).
func NewBrushPanel(x, y, width float32) *BrushPanel {
	return &BrushPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// Toggle switches panel visibility.
func (p *BrushPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// Contains reports whether a screen point is over the visible panel, so
// clicks on sliders are not also painted onto the canvas.
func (p *BrushPanel) Contains(pt rl.Vector2) bool {
	return p.visible && rl.CheckCollisionPointRec(pt, p.bounds())
}

func (p *BrushPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: p.x, Y: p.y, Width: p.width, Height: 250}
}

// Draw renders the panel and applies slider edits to b in place.
// It reports whether b changed and which button, if any, was pressed.
func (p *BrushPanel) Draw(name string, b *brush.Brush) (changed bool, action PanelAction) {
	if !p.visible {
		return false, ActionNone
	}

	bounds := p.bounds()
	p.renderer.DrawPanel(int32(bounds.X), int32(bounds.Y), int32(bounds.Width), int32(bounds.Height))

	pad := float32(p.renderer.Theme.Padding)
	x := p.x + pad
	y := p.y + pad
	sliderW := p.width - pad*2 - 50

	y = float32(p.renderer.DrawSectionHeader(int32(x), int32(y), "Brush: "+name)) + 10

	slider := func(label string, value, min, max float32, format string) float32 {
		rl.DrawText(label, int32(x), int32(y), p.renderer.Theme.FontSize, p.renderer.Theme.LabelColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 16}, "", "", value, min, max)
		rl.DrawText(fmt.Sprintf(format, v), int32(x+sliderW+8), int32(y+2), p.renderer.Theme.FontSize, p.renderer.Theme.ValueColor)
		y += 24
		return v
	}

	t := b.Tuning()
	t.Amount = int32(slider("Amount", float32(t.Amount), 0, maxAmount, "%.0f"))
	t.Spread = int32(slider("Spread", float32(t.Spread), 0, maxSpread, "%.0f"))
	t.Size = float64(slider("Size", float32(t.Size), 1, maxSize, "%.0f"))
	t.LifeDecay = float64(slider("Life decay", float32(t.LifeDecay), 0, maxLifeDecay, "%.2f"))
	changed = b.Apply(t)

	y += 4
	btnW := (p.width - pad*4) / 3
	colour := gui.Button(rl.Rectangle{X: x, Y: y, Width: btnW, Height: 24}, "Colour")
	save := gui.Button(rl.Rectangle{X: x + btnW + pad, Y: y, Width: btnW, Height: 24}, "Save")
	load := gui.Button(rl.Rectangle{X: x + 2*(btnW+pad), Y: y, Width: btnW, Height: 24}, "Load")
	switch {
	case colour:
		action = ActionRandomColor
	case save:
		action = ActionSave
	case load:
		action = ActionLoad
	}
	return changed, action
}
