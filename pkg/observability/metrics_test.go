package observability_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/varnorm/pkg/observability"
)

func setupTestMeter(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() { require.NoError(t, mp.Shutdown(context.Background())) })

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return red, reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}

	return nil
}

func sumOf(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	require.NotNil(t, m)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}

	return total
}

func TestREDMetrics_RecordRequest(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	red.RecordRequest(context.Background(), "convert", observability.StatusOK, 3*time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "varnorm.requests.total")))
	assert.NotNil(t, findMetric(rm, "varnorm.request.duration.seconds"))
	assert.Nil(t, findMetric(rm, "varnorm.errors.total"))
}

func TestREDMetrics_RecordRequestError(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	red.RecordRequest(context.Background(), "convert", observability.StatusError, time.Millisecond)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "varnorm.errors.total")))
}

func TestREDMetrics_TrackInflight(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)

	done := red.TrackInflight(context.Background(), "plan")
	assert.Equal(t, int64(1), sumOf(t, findMetric(collectMetrics(t, reader), "varnorm.inflight.requests")))

	done()
	assert.Equal(t, int64(0), sumOf(t, findMetric(collectMetrics(t, reader), "varnorm.inflight.requests")))
}

func TestREDMetrics_Observe(t *testing.T) {
	t.Parallel()

	red, reader := setupTestMeter(t)
	errBoom := errors.New("boom")

	require.NoError(t, red.Observe(context.Background(), "convert", func() error { return nil }))
	require.ErrorIs(t, red.Observe(context.Background(), "convert", func() error { return errBoom }), errBoom)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumOf(t, findMetric(rm, "varnorm.requests.total")))
	assert.Equal(t, int64(1), sumOf(t, findMetric(rm, "varnorm.errors.total")))
	assert.Equal(t, int64(0), sumOf(t, findMetric(rm, "varnorm.inflight.requests")))
}
