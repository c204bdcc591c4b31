package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ImageStoreOperations counts image store calls by operation and result.
	ImageStoreOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodfeed_image_store_operations_total",
		Help: "Total image store operations by operation and result",
	}, []string{"operation", "result"})

	// ImageStoreLatency records image store call latency.
	ImageStoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "foodfeed_image_store_latency_seconds",
		Help:    "Image store call latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	// Outcomes counts handler outcomes by action and kind.
	Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodfeed_outcomes_total",
		Help: "Total request outcomes by action and kind",
	}, []string{"action", "kind"})

	// FlashMessages counts queued one-time messages by severity.
	FlashMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodfeed_flash_messages_total",
		Help: "Total one-time status messages queued by severity",
	}, []string{"severity"})

	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foodfeed_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})
)
