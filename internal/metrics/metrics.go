package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SearchesProcessed *prometheus.CounterVec
	ProviderErrors    prometheus.Counter
	RequestSeconds    *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		SearchesProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_searches_processed_total",
			Help: "Total number of processed place searches.",
		}, []string{"operation", "status"}),
		ProviderErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "beacon_provider_api_errors_total",
			Help: "Total number of errors received from the places provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "beacon_provider_request_duration_seconds",
			Help:    "Duration of requests to the places provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		CacheLookups: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_response_cache_lookups_total",
			Help: "Total number of response cache lookups by result.",
		}, []string{"result"}),
	}
}
