// Package metrics exports client telemetry as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sockhttp"

// Collector implements the client's MetricsCollector on Prometheus
// vectors. Each Collector owns its registry so several can coexist.
type Collector struct {
	Registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewCollector creates and registers all metrics on a fresh registry
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		Registry: reg,
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Request attempts by method and host",
			},
			[]string{"method", "host"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Attempts repeated after a retryable failure",
			},
			[]string{"method", "host"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Failed attempts by error kind",
			},
			[]string{"method", "host", "kind"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Latency of completed requests",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
			},
			[]string{"method", "host", "status"},
		),
	}
}

// IncRequests counts one attempt
func (c *Collector) IncRequests(method, host string) {
	c.RequestsTotal.WithLabelValues(method, host).Inc()
}

// IncRetries counts one retry. The attempt number is not a label to keep
// cardinality bounded.
func (c *Collector) IncRetries(method, host string, _ int) {
	c.RetriesTotal.WithLabelValues(method, host).Inc()
}

// IncFailures counts one failed attempt
func (c *Collector) IncFailures(method, host, kind string) {
	c.FailuresTotal.WithLabelValues(method, host, kind).Inc()
}

// ObserveLatency records the duration of a completed request
func (c *Collector) ObserveLatency(method, host string, status int, d time.Duration) {
	c.RequestDuration.WithLabelValues(method, host, strconv.Itoa(status)).Observe(d.Seconds())
}
