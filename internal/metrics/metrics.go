package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the social core
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Profile cache
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheErrorsTotal *prometheus.CounterVec

	// Feed assembly
	FeedBatchesTotal       *prometheus.CounterVec
	FeedBatchFailuresTotal *prometheus.CounterVec
	FeedAssemblyDuration   *prometheus.HistogramVec
	FeedItemsReturned      *prometheus.HistogramVec
	FeedEnrichmentPatches  *prometheus.CounterVec
	FeedEnrichmentFailures *prometheus.CounterVec

	// Side effects
	CounterAdjustmentsTotal *prometheus.CounterVec
	NotificationsCreated    *prometheus.CounterVec
	NotificationsSuppressed *prometheus.CounterVec
	ActivitiesAppended      *prometheus.CounterVec
	ActionsTotal            *prometheus.CounterVec
	SideEffectFailuresTotal *prometheus.CounterVec

	// Errors surfaced to clients, by code
	ErrorsTotal *prometheus.CounterVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response body size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),

			CacheHitsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_hits_total",
					Help: "Cache hits by cache name",
				},
				[]string{"cache"},
			),
			CacheMissesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_misses_total",
					Help: "Cache misses by cache name",
				},
				[]string{"cache"},
			),
			CacheErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "cache_errors_total",
					Help: "Cache backend errors that fell through to the store",
				},
				[]string{"cache", "operation"},
			),

			FeedBatchesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_batches_total",
					Help: "Membership queries issued while assembling feeds",
				},
				[]string{"feed"},
			),
			FeedBatchFailuresTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_batch_failures_total",
					Help: "Membership queries that failed during feed assembly",
				},
				[]string{"feed"},
			),
			FeedAssemblyDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_assembly_duration_seconds",
					Help:    "Time to assemble a feed page",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"feed"},
			),
			FeedItemsReturned: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "feed_items_returned",
					Help:    "Number of activities returned per feed page",
					Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
				},
				[]string{"feed"},
			),
			FeedEnrichmentPatches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_enrichment_patches_total",
					Help: "Records whose actor identity was patched at read time",
				},
				[]string{"source"},
			),
			FeedEnrichmentFailures: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "feed_enrichment_failures_total",
					Help: "Identity lookups that failed during read-time enrichment",
				},
				[]string{"source"},
			),

			CounterAdjustmentsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "counter_adjustments_total",
					Help: "Atomic counter adjustments by owner kind, field and direction",
				},
				[]string{"owner", "field", "direction"},
			),
			NotificationsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_created_total",
					Help: "Notifications persisted by kind",
				},
				[]string{"kind"},
			),
			NotificationsSuppressed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "notifications_suppressed_total",
					Help: "Notifications skipped because actor and recipient are the same user",
				},
				[]string{"kind"},
			),
			ActivitiesAppended: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "activities_appended_total",
					Help: "Activities appended by kind",
				},
				[]string{"kind"},
			),
			ActionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "actions_total",
					Help: "Social actions by name and outcome",
				},
				[]string{"action", "outcome"},
			),
			SideEffectFailuresTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "side_effect_failures_total",
					Help: "Side effects that failed after the primary relation was written",
				},
				[]string{"action", "step"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Errors returned to clients by code",
				},
				[]string{"code"},
			),
		}
	})
	return instance
}

// Get returns the metrics instance, initializing it on first use
func Get() *Metrics {
	return Initialize()
}
