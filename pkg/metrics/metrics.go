package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SyncItemsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_items_created_total",
			Help: "Work items created by provider sync",
		},
		[]string{"provider"},
	)

	// outcome: success, no_credentials, provider_unavailable, failed
	SyncRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_runs_total",
			Help: "Provider sync cycles by outcome",
		},
		[]string{"provider", "outcome"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_duration_seconds",
			Help:    "Duration of one provider sync cycle",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"provider"},
	)

	// reason: generation_error, unparsable
	ClassifierFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_fallbacks_total",
			Help: "Classifications replaced by the fallback judgment",
		},
		[]string{"reason"},
	)
)

func RecordSyncRun(provider, outcome string, created int, duration time.Duration) {
	SyncRuns.WithLabelValues(provider, outcome).Inc()
	SyncDuration.WithLabelValues(provider).Observe(duration.Seconds())
	if created > 0 {
		SyncItemsCreated.WithLabelValues(provider).Add(float64(created))
	}
}

func IncrementClassifierFallback(reason string) {
	ClassifierFallbacks.WithLabelValues(reason).Inc()
}
