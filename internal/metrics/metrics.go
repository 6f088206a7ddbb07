// Package metrics registers the Prometheus collectors the service updates
// during operation:
//
//   - fxrisk_http_requests_total{method,path,status} - HTTP traffic
//   - fxrisk_decisions_total{status}                 - engine dispositions
//   - fxrisk_signal_cache_total{outcome}             - signal cache hits/misses
//
// Collectors are registered in init() and served at /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxrisk_http_requests_total",
			Help: "HTTP requests by method, path and status",
		},
		[]string{"method", "path", "status"},
	)

	decisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxrisk_decisions_total",
			Help: "Risk engine decisions by terminal status",
		},
		[]string{"status"},
	)

	signalCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fxrisk_signal_cache_total",
			Help: "Signal cache lookups by outcome (hit|miss|shared)",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequests, decisions, signalCache)
}

// ObserveRequest records one served HTTP request
func ObserveRequest(method, path string, status int) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
}

// ObserveDecision records one engine disposition
func ObserveDecision(status string) {
	decisions.WithLabelValues(status).Inc()
}

// ObserveSignalCache records one cache lookup outcome
func ObserveSignalCache(outcome string) {
	signalCache.WithLabelValues(outcome).Inc()
}
