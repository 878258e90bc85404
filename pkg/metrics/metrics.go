// Package metrics defines the Prometheus metrics of the insight pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datanexa"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Pipeline paths that produced a result.
const (
	PathCache    = "cache"
	PathModel    = "model"
	PathFallback = "fallback"
)

// ============================================================================
// Metric definitions
// ============================================================================

var (
	// cacheLookups counts insight cache reads.
	// Labels: result (hit, miss, error)
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Insight cache lookups by result",
	}, []string{"result"})

	// pipelineRuns counts completed insight requests.
	// Labels: path (cache, model, fallback)
	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Insight requests by the path that produced the result",
	}, []string{"path"})

	// fallbacks counts switches to the rule-based path.
	// Labels: reason (generate_failed, validate_failed, parse_empty)
	fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "fallbacks_total",
		Help:      "Switches to rule-based insights by reason",
	}, []string{"reason"})

	// pipelineDuration measures end-to-end request latency.
	pipelineDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Insight request duration in seconds",
		Buckets:   []float64{0.005, 0.05, 0.25, 1, 2.5, 5, 10, 20, 40, 60},
	}, []string{"path"})

	// modelLatency measures model calls including retries.
	// Labels: provider, status (ok, error)
	modelLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "model",
		Name:      "latency_seconds",
		Help:      "Model generation latency in seconds, retries included",
		Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
	}, []string{"provider", "status"})

	// insightsProduced counts insights returned to callers.
	// Labels: severity
	insightsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "insights_total",
		Help:      "Insights returned by severity",
	}, []string{"severity"})
)

// ============================================================================
// Recorders
// ============================================================================

// RecordCacheLookup counts one cache read.
func RecordCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

// RecordPipeline counts one completed request and its duration.
func RecordPipeline(path string, elapsed time.Duration) {
	pipelineRuns.WithLabelValues(path).Inc()
	pipelineDuration.WithLabelValues(path).Observe(elapsed.Seconds())
}

// RecordFallback counts one switch to the rule-based path.
func RecordFallback(reason string) {
	fallbacks.WithLabelValues(reason).Inc()
}

// RecordModelCall observes one model generation.
func RecordModelCall(provider string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	modelLatency.WithLabelValues(provider, status).Observe(elapsed.Seconds())
}

// RecordInsight counts one returned insight.
func RecordInsight(severity string) {
	insightsProduced.WithLabelValues(severity).Inc()
}
