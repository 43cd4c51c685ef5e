package observability

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_RecordFetch(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordFetch("http", 12, 0.2, nil)
	m.RecordFetch("http", 0, 0.1, errors.New("down"))

	assert.Equal(t, 12.0, testutil.ToFloat64(m.RecordsFetched.WithLabelValues("http")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures.WithLabelValues("http")))
}

func TestMetrics_RecordRecompute(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordRecompute("http", StatusSuccess, 0.01)
	m.RecordRecompute("http", StatusSuccess, 0.02)
	m.RecordRecompute("ws", StatusFailure, 0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RecomputeRunsTotal.WithLabelValues("http", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecomputeRunsTotal.WithLabelValues("ws", StatusFailure)))
}

func TestMetrics_RecordSkippedAndSuccess(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.RecordSkipped(0)
	m.RecordSkipped(3)
	m.RecordSuccess(42, 1700000000)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.RecordsSkipped))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.OrdersAggregated))
	assert.Equal(t, 1700000000.0, testutil.ToFloat64(m.LastSuccessfulRecompute))
}

func TestNewMetrics_SeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetrics("a", prometheus.NewRegistry())
		NewMetrics("a", prometheus.NewRegistry())
	})
}
