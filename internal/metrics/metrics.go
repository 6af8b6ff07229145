package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsgen_runs_total",
			Help: "Total number of scenario runs",
		},
		[]string{"status"},
	)

	FactorsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsgen_factors_generated_total",
			Help: "Total number of factor generations",
		},
		[]string{"factor_type", "status"},
	)

	RowsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsgen_rows_generated_total",
			Help: "Total number of factor rows generated",
		},
		[]string{"factor_type"},
	)

	FactorGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsgen_factor_generation_duration_seconds",
			Help:    "Duration of single factor generations",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"factor_type"},
	)
)

// WriteTextfile dumps the default registry in the text exposition format,
// for node_exporter's textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
