package observability

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with GraphQL-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartOperation starts the root span of one GraphQL execution.
func (t *Tracer) StartOperation(ctx context.Context, opType, opName, documentHash string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		OperationTypeAttr(opType),
		DocumentHashAttr(documentHash),
	}
	if opName != "" {
		attrs = append(attrs, OperationNameAttr(opName))
	}
	return t.tracer.Start(ctx, "graphql."+opType, trace.WithAttributes(attrs...))
}

// StartResolve starts a span for resolving one field of one parent value.
func (t *Tracer) StartResolve(ctx context.Context, parentType, field string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "graphql.resolve "+parentType+"."+field, trace.WithAttributes(
		ParentTypeAttr(parentType),
		FieldNameAttr(field),
	))
}

// StartMutation starts a span for a transactional write on an entity.
func (t *Tracer) StartMutation(ctx context.Context, mutation, entity, key string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		OperationTypeAttr(OpMutation),
		FieldNameAttr(mutation),
		EntityAttr(entity),
	}
	if key != "" {
		attrs = append(attrs, EntityKeyAttr(key))
	}
	return t.tracer.Start(ctx, "storefront."+mutation, trace.WithAttributes(attrs...))
}

// StartRequest starts a span for an HTTP request.
func (t *Tracer) StartRequest(ctx context.Context, r *http.Request) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "storefront.request", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.route", r.URL.Path),
	), trace.WithSpanKind(trace.SpanKindServer))
}

// SetHTTPStatus sets the HTTP status code on the current span.
func (t *Tracer) SetHTTPStatus(ctx context.Context, statusCode int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if statusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
