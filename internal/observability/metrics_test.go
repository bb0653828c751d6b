package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test")

	m.RecordRequest("/users", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/users", "GET", 200, 20*time.Millisecond)
	m.RecordError("/users", "GET", "UNAUTHORIZED")
	m.RecordAuth("login", "rejected")

	require.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("/users", "GET", "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.errorCount.WithLabelValues("/users", "GET", "UNAUTHORIZED")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", "rejected")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	require.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, time.Millisecond)
		m.RecordError("/", "GET", "X")
		m.RecordAuth("login", "ok")
	})
}
