package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/hiasobi/config"
	"github.com/pthm-cable/hiasobi/session"
	"github.com/pthm-cable/hiasobi/telemetry"
)

// Headless runs are scored on windows after the population has had time to
// reach steady state: with the slowest allowed decay a particle lives about
// 17 seconds.
const (
	statsWindowSec = 2.0
	warmupWindows  = 10
	failedFitness  = 1e3
)

// FitnessEvaluator runs headless sessions and scores a brush (lower = better).
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	seeds      []int64
	baseConfig *config.Config
	target     float64

	mu   sync.Mutex
	last Score
}

// Score breaks a fitness value into its terms.
type Score struct {
	MeanParticles float64
	CV            float64
	OutOfBounds   float64 // fraction of removals that left the screen
	Dropped       float64 // fraction of requested particles refused by the cap
}

// Fitness combines the terms. A population at target that only fades out,
// never leaves the screen and never hits the cap scores zero.
func (s Score) Fitness(target float64) float64 {
	if s.MeanParticles <= 0 || target <= 0 {
		return failedFitness
	}
	logErr := math.Log(s.MeanParticles / target)
	return logErr*logErr + s.CV*s.CV + s.OutOfBounds + s.Dropped
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		frames:     frames,
		seeds:      seeds,
		baseConfig: baseCfg,
		target:     target,
	}
}

// LastScore returns the seed-averaged score of the most recent evaluation.
func (fe *FitnessEvaluator) LastScore() Score {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.last
}

// Evaluate computes fitness for raw parameter values, averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.configFor(x)
	if err != nil {
		return failedFitness
	}

	scores := make([]Score, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			scores[idx] = scoreWindows(fe.runSimulation(cfg, s))
		}(i, seed)
	}
	wg.Wait()

	var avg Score
	var total float64
	for _, s := range scores {
		total += s.Fitness(fe.target)
		avg.MeanParticles += s.MeanParticles
		avg.CV += s.CV
		avg.OutOfBounds += s.OutOfBounds
		avg.Dropped += s.Dropped
	}
	n := float64(len(scores))
	avg.MeanParticles /= n
	avg.CV /= n
	avg.OutOfBounds /= n
	avg.Dropped /= n

	fe.mu.Lock()
	fe.last = avg
	fe.mu.Unlock()

	return total / n
}

// configFor copies the base config, applies x and keeps only the tuned
// brush so the scripted run never switches away from it.
func (fe *FitnessEvaluator) configFor(x []float64) (*config.Config, error) {
	cfg, err := fe.baseConfig.Clone()
	if err != nil {
		return nil, err
	}
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return nil, err
	}
	bc, _, err := findBrush(cfg, fe.params.Brush)
	if err != nil {
		return nil, err
	}
	cfg.Brushes = []config.BrushConfig{*bc}
	cfg.Telemetry.StatsWindow = statsWindowSec
	return cfg, nil
}

// runSimulation executes one headless session and returns its windows.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) []telemetry.WindowStats {
	s, err := session.New(cfg, session.Options{Seed: seed})
	if err != nil {
		return nil
	}
	defer s.Close()

	var windows []telemetry.WindowStats
	s.SetStatsCallback(func(w telemetry.WindowStats) {
		windows = append(windows, w)
	})
	s.RunHeadless(fe.frames, nil)
	return windows
}

// scoreWindows scores the post-warmup windows of one run.
func scoreWindows(windows []telemetry.WindowStats) Score {
	if len(windows) <= warmupWindows {
		return Score{}
	}
	valid := windows[warmupWindows:]

	pops := make([]float64, len(valid))
	var expired, oob, emitted, dropped int
	for i, w := range valid {
		pops[i] = float64(w.Particles)
		expired += w.Expired
		oob += w.OutOfBounds
		emitted += w.Emitted
		dropped += w.Dropped
	}

	var s Score
	mean, std := stat.PopMeanStdDev(pops, nil)
	s.MeanParticles = mean
	if mean > 0 {
		s.CV = std / mean
	}
	if removed := expired + oob; removed > 0 {
		s.OutOfBounds = float64(oob) / float64(removed)
	}
	if requested := emitted + dropped; requested > 0 {
		s.Dropped = float64(dropped) / float64(requested)
	}
	return s
}
