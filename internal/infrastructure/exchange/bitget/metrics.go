package bitget

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bitget",
			Name:      "requests_total",
			Help:      "Total requests sent to the Bitget REST API.",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok, rejected, upstream_error, network_error
	)

	requestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bitget",
			Name:      "request_duration_seconds",
			Help:      "Duration of requests to the Bitget REST API.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)
