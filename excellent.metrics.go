package excellent

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records evaluation metrics.
// Use NewMetricsRecorder for OpenTelemetry metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordTemplate records one template evaluation with its duration and
	// the number of expressions that failed.
	RecordTemplate(ctx context.Context, duration time.Duration, errorCount int)

	// RecordExpression records one expression evaluation.
	RecordExpression(ctx context.Context, success bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	templateEvaluations metric.Int64Counter
	templateLatency     metric.Float64Histogram
	templateErrors      metric.Int64Counter
	expressionEvals     metric.Int64Counter
}

// NewMetricsRecorder creates a MetricsRecorder whose instruments come from
// the given provider, for example otel.GetMeterProvider().
func NewMetricsRecorder(provider metric.MeterProvider) (MetricsRecorder, error) {
	meter := provider.Meter(MeterName)

	templateEvaluations, err := meter.Int64Counter(MetricTemplateEvaluations,
		metric.WithDescription(MetricDescTemplateEvaluations),
	)
	if err != nil {
		return nil, err
	}

	templateLatency, err := meter.Float64Histogram(MetricTemplateLatency,
		metric.WithDescription(MetricDescTemplateLatency),
		metric.WithUnit(MetricUnitMilliseconds),
	)
	if err != nil {
		return nil, err
	}

	templateErrors, err := meter.Int64Counter(MetricTemplateErrors,
		metric.WithDescription(MetricDescTemplateErrors),
	)
	if err != nil {
		return nil, err
	}

	expressionEvals, err := meter.Int64Counter(MetricExpressionEvals,
		metric.WithDescription(MetricDescExpressionEvals),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		templateEvaluations: templateEvaluations,
		templateLatency:     templateLatency,
		templateErrors:      templateErrors,
		expressionEvals:     expressionEvals,
	}, nil
}

// RecordTemplate records a template evaluation.
func (m *otelMetrics) RecordTemplate(ctx context.Context, duration time.Duration, errorCount int) {
	attrs := metric.WithAttributes(attribute.Bool(MetricAttrSuccess, errorCount == 0))

	m.templateEvaluations.Add(ctx, 1, attrs)
	m.templateLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if errorCount > 0 {
		m.templateErrors.Add(ctx, int64(errorCount))
	}
}

// RecordExpression records an expression evaluation.
func (m *otelMetrics) RecordExpression(ctx context.Context, success bool) {
	m.expressionEvals.Add(ctx, 1, metric.WithAttributes(attribute.Bool(MetricAttrSuccess, success)))
}

// NoopMetrics is a MetricsRecorder that does nothing.
type NoopMetrics struct{}

// RecordTemplate does nothing.
func (NoopMetrics) RecordTemplate(context.Context, time.Duration, int) {}

// RecordExpression does nothing.
func (NoopMetrics) RecordExpression(context.Context, bool) {}
