package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`

	// Population at window end
	Particles int    `csv:"particles"`
	Brush     string `csv:"brush"`

	// Events during window
	Emitted     int `csv:"emitted"`
	Dropped     int `csv:"dropped"`
	Expired     int `csv:"expired"`
	OutOfBounds int `csv:"out_of_bounds"`

	// Remaining life, sampled at window end
	LifeMean float64 `csv:"life_mean"`
	LifeStd  float64 `csv:"life_std"`
	LifeP10  float64 `csv:"life_p10"`
	LifeP50  float64 `csv:"life_p50"`
	LifeP90  float64 `csv:"life_p90"`
}

// ComputeLifeStats returns the population mean, standard deviation and
// deciles of values. An empty slice yields zeros.
func ComputeLifeStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std = stat.PopMeanStdDev(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.String("brush", s.Brush),
		slog.Int("emitted", s.Emitted),
		slog.Int("dropped", s.Dropped),
		slog.Int("expired", s.Expired),
		slog.Int("out_of_bounds", s.OutOfBounds),
		slog.Float64("life_mean", s.LifeMean),
		slog.Float64("life_std", s.LifeStd),
		slog.Float64("life_p10", s.LifeP10),
		slog.Float64("life_p50", s.LifeP50),
		slog.Float64("life_p90", s.LifeP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
