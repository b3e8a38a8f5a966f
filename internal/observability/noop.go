package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer: tracenoop.NewTracerProvider().Tracer(""),
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	m.requestDuration, _ = meter.Float64Histogram(metricRequestDuration)     //nolint:errcheck
	m.operationDuration, _ = meter.Float64Histogram(metricOperationDuration) //nolint:errcheck
	m.operationCount, _ = meter.Int64Counter(metricOperationCount)           //nolint:errcheck
	m.resolveDuration, _ = meter.Float64Histogram(metricResolveDuration)     //nolint:errcheck
	m.dbQueryDuration, _ = meter.Float64Histogram(metricDBQueryDuration)     //nolint:errcheck
	m.errorCount, _ = meter.Int64Counter(metricErrorCount)                   //nolint:errcheck

	return m
}
