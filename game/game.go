// Package game is the raylib host: it polls input, drives a session.Session
// once per frame and draws the canvas and overlays.
package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/renderer"
	"github.com/pthm-cable/hiasobi/session"
	"github.com/pthm-cable/hiasobi/telemetry"
	"github.com/pthm-cable/hiasobi/ui"
)

// Options configures a Game.
type Options struct {
	Seed      int64
	LogStats  bool
	OutputDir string
}

const controlsText = "[mouse] paint  [X] burst  [W/F] brush  [-/=] size  [C] colour  " +
	"[S/L] snapshot  [Z] clear  [F5/F9] save/load brush  [Tab] panel  [P] perf  [Space] pause"

// Game holds the window-side state around a session.
type Game struct {
	cfg  *config.Config
	sess *session.Session

	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	panel     *ui.BrushPanel
	perfPanel *ui.PerfPanel
	showPerf  bool

	screenWidth, screenHeight int32
	dt                        float64
}

// New creates a game. The raylib window must already be open.
func New(cfg *config.Config, opts Options) (*Game, error) {
	sess, err := session.New(cfg, session.Options{
		Seed:      opts.Seed,
		LogStats:  opts.LogStats,
		OutputDir: opts.OutputDir,
	})
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:          cfg,
		sess:         sess,
		particles:    renderer.NewParticleRenderer(),
		hud:          ui.NewHUD(),
		panel:        ui.NewBrushPanel(10, 150, 260),
		perfPanel:    ui.NewPerfPanel(0, 0),
		screenWidth:  int32(cfg.Screen.Width),
		screenHeight: int32(cfg.Screen.Height),
	}
	g.placePerfPanel()
	return g, nil
}

// Update runs the simulation half of a frame: step, input and emission.
// Draw completes the frame.
func (g *Game) Update() {
	perf := g.sess.Perf()
	perf.StartFrame()

	g.dt = float64(rl.GetFrameTime())

	perf.StartPhase(telemetry.PhaseUpdate)
	g.sess.Step(g.dt)

	perf.StartPhase(telemetry.PhaseInput)
	g.handleInput()

	perf.StartPhase(telemetry.PhaseEmit)
	g.handlePainting()
}

// Draw renders the frame, then closes it out for telemetry.
func (g *Game) Draw() {
	perf := g.sess.Perf()
	perf.StartPhase(telemetry.PhaseDraw)

	rl.BeginDrawing()
	g.particles.Draw(g.sess.System())
	g.drawUI()
	rl.EndDrawing()

	perf.StartPhase(telemetry.PhaseTelemetry)
	g.sess.EndFrame(g.dt)
	perf.EndFrame()
}

// Unload closes the session's telemetry output.
func (g *Game) Unload() {
	if err := g.sess.Close(); err != nil {
		slog.Error("failed to close telemetry output", "error", err)
	}
}

// Frame returns the number of completed frames.
func (g *Game) Frame() int32 {
	return g.sess.Frame()
}

func (g *Game) placePerfPanel() {
	g.perfPanel.SetPosition(g.screenWidth-240, 80)
}
