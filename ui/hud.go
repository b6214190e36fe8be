package ui

import (
	"fmt"
	"sort"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/telemetry"
)

// HUDData holds everything the HUD shows for one frame.
type HUDData struct {
	ParticleCount int
	DrawnCount    int // particles large enough to render
	Paused        bool
	HasSnapshot   bool
	ScreenWidth   int32
	ScreenHeight  int32

	BrushName  string
	BrushKey   string
	Emission   string
	Amount     int32
	Spread     int32
	Size       float64
	BrushColor rl.Color
}

// HUD renders the heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// DrawDebug draws the FPS counter and particle count in the top-right corner.
// The drawn count only shows when some particles are too small to render.
func (h *HUD) DrawDebug(data HUDData) {
	x := data.ScreenWidth - 80
	rl.DrawFPS(x, 20)
	rl.DrawText(fmt.Sprintf("%d", data.ParticleCount), x, 40, 24, rl.Gray)
	if data.DrawnCount != data.ParticleCount {
		rl.DrawText(fmt.Sprintf("%d drawn", data.DrawnCount), x, 66, 12, rl.Gray)
	}
}

// DrawBrush draws the current brush summary in the top-left corner.
func (h *HUD) DrawBrush(data HUDData) {
	r := h.renderer
	x, y := int32(10), int32(10)

	rl.DrawText(fmt.Sprintf("%s [%s]", data.BrushName, data.BrushKey), x, y, 20, rl.White)
	y += 24
	y = r.DrawLabelValue(x, y, "emission", data.Emission)
	y = r.DrawLabelValue(x, y, "amount", fmt.Sprintf("%d", data.Amount))
	y = r.DrawLabelValue(x, y, "spread", fmt.Sprintf("%d", data.Spread))
	y = r.DrawLabelValue(x, y, "size", fmt.Sprintf("%.0f", data.Size))
	y = r.DrawColorSwatch(x, y, "colour", data.BrushColor)

	status := ""
	switch {
	case data.Paused && data.HasSnapshot:
		status = "PAUSED | snapshot held"
	case data.Paused:
		status = "PAUSED"
	case data.HasSnapshot:
		status = "snapshot held"
	}
	if status != "" {
		rl.DrawText(status, x, y+4, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders per-phase frame timings.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return stats.PhaseAvg[names[i]] > stats.PhaseAvg[names[j]]
	})

	p.renderer.DrawPanel(x-6, y-6, 220, int32(len(names))*14+44)

	y = p.renderer.DrawSectionHeader(x, y, "Frame Performance") + 4
	rl.DrawText(fmt.Sprintf("Avg: %s", stats.AvgFrameDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for _, name := range names {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
