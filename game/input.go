package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// handleInput processes keyboard input.
func (g *Game) handleInput() {
	g.handleResize()

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		switch key {
		case rl.KeyF11:
			rl.ToggleFullscreen()
		case rl.KeySpace:
			paused := g.sess.TogglePause()
			slog.Info("pause toggled", "paused", paused)
		case rl.KeyTab:
			g.panel.Toggle()
		case rl.KeyP:
			g.showPerf = !g.showPerf
		case rl.KeyZ:
			g.sess.Clear()
		case rl.KeyC:
			g.sess.RandomizeColor()
		case rl.KeyS:
			n := g.sess.SaveSnapshot()
			slog.Info("snapshot saved", "particles", n)
		case rl.KeyL:
			if g.sess.RestoreSnapshot() {
				slog.Info("snapshot restored", "particles", g.sess.System().Len())
			}
		case rl.KeyMinus:
			g.sess.AdjustSize(-1)
		case rl.KeyEqual:
			g.sess.AdjustSize(1)
		case rl.KeyF5:
			g.saveBrush()
		case rl.KeyF9:
			g.loadBrush()
		default:
			// Letter keys map to their ASCII upper case codes
			if key >= rl.KeyA && key <= rl.KeyZ {
				g.sess.SelectKey(rune(key))
			}
		}
	}
}

// handleResize propagates window size changes to culling and overlay layout.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth, g.screenHeight = w, h
	g.sess.Resize(float64(w), float64(h))
	g.placePerfPanel()
}

// handlePainting emits at the cursor while the left button is held, or once
// per press of X. Clicks on the brush panel do not paint.
func (g *Game) handlePainting() {
	mouse := rl.GetMousePosition()
	held := rl.IsMouseButtonDown(rl.MouseButtonLeft) && !g.panel.Contains(mouse)
	if held || rl.IsKeyPressed(rl.KeyX) {
		g.sess.Paint(mouse.X, mouse.Y, g.dt)
	}
}

func (g *Game) saveBrush() {
	if err := g.sess.SaveBrush(g.cfg.BrushFile); err != nil {
		slog.Error("failed to save brush", "path", g.cfg.BrushFile, "error", err)
	}
}

func (g *Game) loadBrush() {
	if err := g.sess.LoadBrush(g.cfg.BrushFile); err != nil {
		slog.Error("failed to load brush", "path", g.cfg.BrushFile, "error", err)
	}
}
