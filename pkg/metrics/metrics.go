package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics aggregates the generator's Prometheus collectors. A nil *Metrics is
// safe to record against.
type Metrics struct {
	Registry *prometheus.Registry

	GenerationRuns *prometheus.CounterVec
	SolveSeconds   prometheus.Histogram
	ModelBuildSecs prometheus.Histogram
	LessonsPlaced  prometheus.Gauge
	QualityScore   prometheus.Gauge
}

// New builds and registers the collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{Registry: registry}

	m.GenerationRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "urania",
		Subsystem: "scheduler",
		Name:      "generation_runs_total",
		Help:      "Timetable generation runs by solver status.",
	}, []string{"status"})

	m.SolveSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "urania",
		Subsystem: "scheduler",
		Name:      "solve_seconds",
		Help:      "Wall-clock seconds spent inside the solver.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	})

	m.ModelBuildSecs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "urania",
		Subsystem: "scheduler",
		Name:      "model_build_seconds",
		Help:      "Seconds spent building the constraint model.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	m.LessonsPlaced = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "urania",
		Subsystem: "scheduler",
		Name:      "lessons_placed",
		Help:      "Lessons placed by the most recent generation run.",
	})

	m.QualityScore = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "urania",
		Subsystem: "scheduler",
		Name:      "quality_score",
		Help:      "Quality score of the most recent generation run.",
	})

	registry.MustRegister(m.GenerationRuns, m.SolveSeconds, m.ModelBuildSecs, m.LessonsPlaced, m.QualityScore)
	return m
}

// RecordRun tracks one generation run outcome.
func (m *Metrics) RecordRun(status string, solveSeconds float64, placed, score int) {
	if m == nil {
		return
	}
	m.GenerationRuns.WithLabelValues(status).Inc()
	m.SolveSeconds.Observe(solveSeconds)
	m.LessonsPlaced.Set(float64(placed))
	m.QualityScore.Set(float64(score))
}

// RecordModelBuild tracks model construction time.
func (m *Metrics) RecordModelBuild(seconds float64) {
	if m == nil {
		return
	}
	m.ModelBuildSecs.Observe(seconds)
}
