// Package metrics provides Prometheus instrumentation for the background
// fit pipeline. Counters are registered on a package-owned registry so a
// run can optionally expose them over HTTP without inheriting the default
// Go collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bgfit"

var registry = prometheus.NewRegistry()

var (
	filesProcessed = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_processed_total",
		Help:      "Trigger files read and accumulated successfully.",
	})

	filesSkipped = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_skipped_total",
		Help:      "Per-file detector groups skipped, by pipeline state.",
	}, []string{"state"})

	triggersRead = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triggers_read_total",
		Help:      "Trigger rows read from input files before cuts.",
	})

	triggersAccumulated = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "triggers_accumulated_total",
		Help:      "Trigger rows surviving cuts and accumulated, per detector.",
	}, []string{"detector"})

	liveTime = promauto.With(registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "live_time_seconds",
		Help:      "Accumulated analyzed live time, per detector.",
	}, []string{"detector"})

	fitDuration = promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fit_duration_seconds",
		Help:      "Wall time of one per-detector, per-bin tail fit.",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 6),
	})

	binsFitted = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bins_fitted_total",
		Help:      "Duration bins that produced a real fit.",
	})

	binsEmpty = promauto.With(registry).NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bins_empty_total",
		Help:      "Duration bins emitted with the empty sentinel.",
	})
)

// RecordFileProcessed counts a file whose rows were accumulated.
func RecordFileProcessed() {
	filesProcessed.Inc()
}

// RecordFileSkipped counts a skipped file or detector group by state
// name (unreadable, no_relevant_group, empty, filtered_empty).
func RecordFileSkipped(state string) {
	filesSkipped.WithLabelValues(state).Inc()
}

// RecordTriggersRead counts rows read from a file before cuts.
func RecordTriggersRead(n int) {
	triggersRead.Add(float64(n))
}

// RecordTriggersAccumulated counts rows surviving cuts for a detector.
func RecordTriggersAccumulated(detector string, n int) {
	triggersAccumulated.WithLabelValues(detector).Add(float64(n))
}

// AddLiveTime adds analyzed seconds for a detector.
func AddLiveTime(detector string, seconds int64) {
	liveTime.WithLabelValues(detector).Add(float64(seconds))
}

// ObserveFitDuration records the wall time of one bin fit.
func ObserveFitDuration(seconds float64) {
	fitDuration.Observe(seconds)
}

// RecordBinFitted counts a bin that produced a real fit.
func RecordBinFitted() {
	binsFitted.Inc()
}

// RecordBinEmpty counts a bin emitted with the empty sentinel.
func RecordBinEmpty() {
	binsEmpty.Inc()
}

// Registry returns the package registry for serving over promhttp.
func Registry() *prometheus.Registry {
	return registry
}
