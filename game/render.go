package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/ui"
)

// drawUI draws the overlays and applies brush panel edits.
func (g *Game) drawUI() {
	slot := g.sess.Current()
	b := g.sess.CurrentBrush()

	data := ui.HUDData{
		ParticleCount: g.sess.System().Len(),
		DrawnCount:    g.particles.Drawn(),
		Paused:        g.sess.Paused(),
		HasSnapshot:   g.sess.HasSnapshot(),
		ScreenWidth:   g.screenWidth,
		ScreenHeight:  g.screenHeight,
		BrushName:     slot.Name,
		BrushKey:      string(slot.Key),
		Emission:      string(slot.Emitter.Kind()),
		Amount:        b.Amount,
		Spread:        b.Spread,
		Size:          b.Species.Size,
		BrushColor:    rl.Color(b.Species.Color),
	}

	g.hud.DrawDebug(data)
	g.hud.DrawBrush(data)
	g.hud.DrawControls(g.screenHeight, controlsText)

	if g.showPerf {
		g.perfPanel.Draw(g.sess.Perf().Stats())
	}

	changed, action := g.panel.Draw(slot.Name, &b)
	if changed {
		if err := g.sess.ApplyBrush(b); err != nil {
			slog.Error("failed to apply brush edit", "error", err)
		}
	}
	switch action {
	case ui.ActionRandomColor:
		g.sess.RandomizeColor()
	case ui.ActionSave:
		g.saveBrush()
	case ui.ActionLoad:
		g.loadBrush()
	}
}
