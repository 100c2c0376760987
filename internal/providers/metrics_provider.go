package providers

import (
	"receiptd/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncPersistenceFailures(kind string)
	SetCollectionSize(kind string, count int)
	IncReceiptsIssued(taxMode string)
	IncPostalLookups(result string)
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	persistenceFailures *prometheus.CounterVec
	collectionSize      *prometheus.GaugeVec
	receiptsIssued      *prometheus.CounterVec
	postalLookups       *prometheus.CounterVec
}

func (m *MetricsProvider) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncPersistenceFailures(kind string) {
	m.persistenceFailures.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) SetCollectionSize(kind string, count int) {
	m.collectionSize.WithLabelValues(kind).Set(float64(count))
}

func (m *MetricsProvider) IncReceiptsIssued(taxMode string) {
	m.receiptsIssued.WithLabelValues(taxMode).Inc()
}

func (m *MetricsProvider) IncPostalLookups(result string) {
	m.postalLookups.WithLabelValues(result).Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptd_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "receiptd_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "receiptd_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "receiptd_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "receiptd_persistence_duration_seconds",
			Help:    "Duration of snapshot writes in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		persistenceFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptd_persistence_failures_total",
			Help: "Snapshot writes that failed and left memory ahead of storage",
		}, []string{"kind"}),

		collectionSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "receiptd_collection_size",
			Help: "Number of records held per collection",
		}, []string{"kind"}),

		receiptsIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptd_receipts_issued_total",
			Help: "Total number of issued receipts",
		}, []string{"tax_mode"}),

		postalLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "receiptd_postal_lookups_total",
			Help: "Postal code lookups by result",
		}, []string{"result"}),
	}
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncPersistenceFailures(_ string)                  {}
func (n *noopMetrics) SetCollectionSize(_ string, _ int)                {}
func (n *noopMetrics) IncReceiptsIssued(_ string)                       {}
func (n *noopMetrics) IncPostalLookups(_ string)                        {}
