package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric instrument names.
const (
	metricRequestDuration   = "storefront.request.duration"
	metricOperationDuration = "storefront.graphql.operation.duration"
	metricOperationCount    = "storefront.graphql.operation.count"
	metricResolveDuration   = "storefront.graphql.resolve.duration"
	metricDBQueryDuration   = "storefront.db.query.duration"
	metricErrorCount        = "storefront.error.count"
)

// Metrics holds the storefront metric instruments.
type Metrics struct {
	requestDuration   metric.Float64Histogram
	operationDuration metric.Float64Histogram
	operationCount    metric.Int64Counter
	resolveDuration   metric.Float64Histogram
	dbQueryDuration   metric.Float64Histogram
	errorCount        metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Instrument creation only fails on invalid parameters; fall back to a bare
	// instrument so the remaining metrics keep working.
	var err error

	m.requestDuration, err = meter.Float64Histogram(
		metricRequestDuration,
		metric.WithDescription("Duration of HTTP requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.requestDuration, _ = meter.Float64Histogram(metricRequestDuration)
	}

	m.operationDuration, err = meter.Float64Histogram(
		metricOperationDuration,
		metric.WithDescription("Duration of GraphQL executions in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.operationDuration, _ = meter.Float64Histogram(metricOperationDuration)
	}

	m.operationCount, err = meter.Int64Counter(
		metricOperationCount,
		metric.WithDescription("Total number of GraphQL executions"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		m.operationCount, _ = meter.Int64Counter(metricOperationCount)
	}

	m.resolveDuration, err = meter.Float64Histogram(
		metricResolveDuration,
		metric.WithDescription("Duration of single field resolutions in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.resolveDuration, _ = meter.Float64Histogram(metricResolveDuration)
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		metricDBQueryDuration,
		metric.WithDescription("Duration of database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram(metricDBQueryDuration)
	}

	m.errorCount, err = meter.Int64Counter(
		metricErrorCount,
		metric.WithDescription("Total number of errors reported to clients"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.errorCount, _ = meter.Int64Counter(metricErrorCount)
	}

	return m
}

// RecordRequest records metrics for a completed HTTP request.
func (m *Metrics) RecordRequest(ctx context.Context, method string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.Int("http.status_code", statusCode),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordOperation records metrics for a completed GraphQL execution.
func (m *Metrics) RecordOperation(ctx context.Context, opType, opName string, errorCount int, duration time.Duration) {
	attrs := metric.WithAttributes(
		OperationTypeAttr(opType),
		OperationNameAttr(opName),
		attribute.Bool("graphql.errors", errorCount > 0),
	)
	m.operationDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	m.operationCount.Add(ctx, 1, attrs)
}

// RecordResolve records the duration of a single field resolution.
func (m *Metrics) RecordResolve(ctx context.Context, parentType, field string, duration time.Duration) {
	attrs := metric.WithAttributes(ParentTypeAttr(parentType), FieldNameAttr(field))
	m.resolveDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation, table string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	)
	m.dbQueryDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError(ctx context.Context, opType, code string) {
	attrs := metric.WithAttributes(
		OperationTypeAttr(opType),
		ErrorCodeAttr(code),
	)
	m.errorCount.Add(ctx, 1, attrs)
}
