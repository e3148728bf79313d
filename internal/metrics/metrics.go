// Package metrics exposes Prometheus instrumentation for the compute orchestrator,
// adapted from fxnlabs-function-node's internal/metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal counts opcode-stream operations recorded across all contexts.
	OperationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orecl_operations_total",
		Help: "Total number of opcode-stream operations recorded.",
	})

	// KernelBuildsTotal counts kernel cache lookups in FinalizeCalculation, labelled
	// "miss" (kernel built) or "hit" (cached kernel reused).
	KernelBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orecl_kernel_builds_total",
		Help: "Total kernel build attempts, labelled by cache hit/miss.",
	}, []string{"outcome"})

	// CalculationNanos observes wall time spent in FinalizeCalculation's run phase.
	CalculationNanos = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "orecl_calculation_nanoseconds",
		Help:    "Nanoseconds spent executing a calculation's kernel.",
		Buckets: prometheus.ExponentialBuckets(1000, 4, 10),
	})

	// VariatePoolSize reports the current size of the shared variate pool.
	VariatePoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "orecl_variate_pool_size",
		Help: "Current capacity of the shared standard-normal variate pool.",
	})
)
