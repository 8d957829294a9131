package http

import "time"

// MetricsCollector receives request telemetry from a client
type MetricsCollector interface {
	IncRequests(method, host string)
	IncRetries(method, host string, attempt int)
	IncFailures(method, host, kind string)
	ObserveLatency(method, host string, status int, d time.Duration)
}

type nopMetrics struct{}

func (nopMetrics) IncRequests(string, string) {}
func (nopMetrics) IncRetries(string, string, int) {}
func (nopMetrics) IncFailures(string, string, string) {}
func (nopMetrics) ObserveLatency(string, string, int, time.Duration) {}
