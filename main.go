package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/game"
	"github.com/pthm-cable/hiasobi/randutil"
	"github.com/pthm-cable/hiasobi/session"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run the scripted brush without a window")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = random)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N frames (0 = unlimited)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = randutil.Seed()
	}

	if *headless {
		runHeadless(cfg, session.Options{
			Seed:      rngSeed,
			LogStats:  *logStats,
			OutputDir: *outputDir,
		}, *maxTicks)
		return
	}

	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), cfg.Screen.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.New(cfg, game.Options{
		Seed:      rngSeed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	slog.Info("window opened", "seed", rngSeed, "width", cfg.Screen.Width, "height", cfg.Screen.Height)

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Frame()) >= *maxTicks {
			break
		}
	}
}

// runHeadless drives the scripted brush until maxTicks frames or an interrupt.
func runHeadless(cfg *config.Config, opts session.Options, maxTicks int) {
	s, err := session.New(cfg, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Error("failed to close telemetry output", "error", err)
		}
	}()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"dt", cfg.Simulation.HeadlessDT,
		"max_ticks", maxTicks,
	)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	stop := make(chan struct{})
	go func() {
		<-interrupt
		close(stop)
	}()

	s.RunHeadless(maxTicks, stop)
}
