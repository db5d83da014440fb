package excellent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a recorder backed by a manual reader.
func setupMetricsTest(t *testing.T) (MetricsRecorder, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})

	recorder, err := NewMetricsRecorder(provider)
	require.NoError(t, err)
	return recorder, reader
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumBySuccess totals an int64 sum per value of the success attribute.
func sumBySuccess(t *testing.T, m *metricdata.Metrics) map[bool]int64 {
	t.Helper()
	require.NotNil(t, m)
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	totals := make(map[bool]int64)
	for _, dp := range sum.DataPoints {
		success := false
		if v, ok := dp.Attributes.Value(MetricAttrSuccess); ok {
			success = v.AsBool()
		}
		totals[success] += dp.Value
	}
	return totals
}

func TestMetricsRecorder_Evaluator(t *testing.T) {
	recorder, reader := setupMetricsTest(t)
	evaluator, err := New(WithMetrics(recorder))
	require.NoError(t, err)
	ctx := contactContext(t)

	evaluator.EvaluateTemplate("Hi @contact.name, @contact.surname and @(1/0)", ctx)
	evaluator.EvaluateTemplate("no expressions", ctx)
	_, _ = evaluator.EvaluateExpression("contact.age", ctx)

	rm := collectMetrics(t, reader)

	templates := sumBySuccess(t, findMetric(rm, MetricTemplateEvaluations))
	assert.Equal(t, int64(1), templates[true])
	assert.Equal(t, int64(1), templates[false])

	errs := findMetric(rm, MetricTemplateErrors)
	require.NotNil(t, errs)
	errSum, ok := errs.Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, errSum.DataPoints, 1)
	assert.Equal(t, int64(2), errSum.DataPoints[0].Value)

	expressions := sumBySuccess(t, findMetric(rm, MetricExpressionEvals))
	assert.Equal(t, int64(2), expressions[true])
	assert.Equal(t, int64(2), expressions[false])

	latency := findMetric(rm, MetricTemplateLatency)
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(2), count)
}

func TestMetricsRecorder_Direct(t *testing.T) {
	recorder, reader := setupMetricsTest(t)

	recorder.RecordTemplate(context.Background(), 5*time.Millisecond, 0)
	recorder.RecordExpression(context.Background(), true)

	rm := collectMetrics(t, reader)
	assert.Nil(t, findMetric(rm, MetricTemplateErrors))
	assert.Equal(t, int64(1), sumBySuccess(t, findMetric(rm, MetricExpressionEvals))[true])
}

func TestNoopMetrics(t *testing.T) {
	var recorder MetricsRecorder = NoopMetrics{}

	assert.NotPanics(t, func() {
		recorder.RecordTemplate(context.Background(), time.Second, 3)
		recorder.RecordExpression(context.Background(), false)
	})
}
