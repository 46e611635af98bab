package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes sweep health counters.
type Metrics struct {
	SweepsTotal        prometheus.Counter
	TicksSkipped       prometheus.Counter
	PositionsEvaluated prometheus.Counter
	PositionsClosed    *prometheus.CounterVec
	PositionErrors     prometheus.Counter
	SweepDuration      prometheus.Histogram
}

// NewMetrics registers the sweep metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_sweeps_total",
			Help: "Total number of completed sweep passes",
		}),
		TicksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_sweep_ticks_skipped_total",
			Help: "Ticks skipped because the previous sweep was still running",
		}),
		PositionsEvaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_positions_evaluated_total",
			Help: "Open positions evaluated against exit conditions",
		}),
		PositionsClosed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tradesim_positions_closed_total",
			Help: "Positions closed by the sweep, labelled by trigger",
		}, []string{"reason"}),
		PositionErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "tradesim_position_errors_total",
			Help: "Per-position fetch or settlement failures, skipped until the next sweep",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tradesim_sweep_duration_seconds",
			Help:    "Duration of a full sweep pass",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}
