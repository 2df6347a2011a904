package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SimulationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_simulation_runs_total",
			Help: "Total number of simulation runs by terminal status.",
		},
		[]string{"batch_id", "status"},
	)

	SimulationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reformer_simulation_duration_seconds",
			Help:    "Wall time of one solve, including result collection.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"engine", "status"},
	)

	H2YieldKg = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "reformer_h2_yield_kg",
			Help:    "Hydrogen yield per 100 kg of bio-oil for converged runs.",
			Buckets: []float64{2, 4, 6, 8, 10, 12, 14, 16, 20},
		},
		[]string{"status"},
	)

	BatchesActive = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "reformer_batches_active",
			Help: "Number of batch passes currently running.",
		},
		[]string{"engine"},
	)

	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_cache_lookups_total",
			Help: "Result cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	EngineRestartsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_engine_restarts_total",
			Help: "Engine session restarts by reason.",
		},
		[]string{"engine", "reason"},
	)

	RowsSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_rows_skipped_total",
			Help: "Matrix rows bypassed on resume, by source of the skip.",
		},
		[]string{"batch_id", "source"},
	)

	SweepRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_sweep_runs_total",
			Help: "Scheduled sweep executions by outcome.",
		},
		[]string{"outcome"},
	)

	ExportRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_export_records_total",
			Help: "Result records emitted to export transports.",
		},
		[]string{"transport"},
	)

	ModelAppliesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reformer_model_applies_total",
			Help: "Flowsheet model definitions applied, by source.",
		},
		[]string{"source"},
	)
)

// Register registers all custom reformer metrics with the default
// Prometheus registry.
func Register() {
	prometheus.MustRegister(
		SimulationRunsTotal,
		SimulationDurationSeconds,
		H2YieldKg,
		BatchesActive,
		CacheLookupsTotal,
		EngineRestartsTotal,
		RowsSkippedTotal,
		SweepRunsTotal,
		ExportRecordsTotal,
		ModelAppliesTotal,
	)
}
