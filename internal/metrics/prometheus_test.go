package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.IncRequests("GET", "example.com")
	c.IncRequests("GET", "example.com")
	c.IncRequests("POST", "example.com")
	c.IncRetries("GET", "example.com", 1)
	c.IncFailures("GET", "example.com", "ConnectError")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("GET", "example.com")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RequestsTotal.WithLabelValues("POST", "example.com")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.RetriesTotal.WithLabelValues("GET", "example.com")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.FailuresTotal.WithLabelValues("GET", "example.com", "ConnectError")))
}

func TestCollector_Latency(t *testing.T) {
	c := NewCollector()
	c.ObserveLatency("GET", "example.com", 200, 25*time.Millisecond)
	c.ObserveLatency("GET", "example.com", 404, 5*time.Millisecond)

	assert.Equal(t, 2, testutil.CollectAndCount(c.RequestDuration))

	expected := `
# HELP sockhttp_requests_total Request attempts by method and host
# TYPE sockhttp_requests_total counter
sockhttp_requests_total{host="h",method="GET"} 3
`
	for i := 0; i < 3; i++ {
		c.IncRequests("GET", "h")
	}
	require.NoError(t, testutil.GatherAndCompare(c.Registry, strings.NewReader(expected), "sockhttp_requests_total"))
}

func TestCollector_SeparateRegistries(t *testing.T) {
	a := NewCollector()
	b := NewCollector()
	a.IncRequests("GET", "h")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.RequestsTotal.WithLabelValues("GET", "h")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RequestsTotal.WithLabelValues("GET", "h")))
}
