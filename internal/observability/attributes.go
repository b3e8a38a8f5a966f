// Package observability provides OpenTelemetry-based instrumentation for the storefront service.
//
// It covers GraphQL operation and field-resolution tracing, request and database
// metrics, Server-Timing response headers and trace-aware structured logging.
//
// All observability features are opt-in. When not configured, no-op implementations
// are used with zero performance overhead.
package observability

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"go.opentelemetry.io/otel/attribute"
)

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-storefront"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-storefront"
)

// GraphQL semantic attribute keys following OpenTelemetry conventions.
const (
	// Operation attributes
	AttrOperationType = "graphql.operation.type"
	AttrOperationName = "graphql.operation.name"
	AttrDocumentHash  = "graphql.document.hash"

	// Field resolution attributes
	AttrParentType = "graphql.field.parent_type"
	AttrFieldName  = "graphql.field.name"

	// Storefront attributes
	AttrEntity      = "storefront.entity"
	AttrEntityKey   = "storefront.entity_key"
	AttrResultCount = "storefront.result.count"

	// Error attributes
	AttrErrorCode = "storefront.error.code"
)

// Operation types for the graphql.operation.type attribute.
const (
	OpQuery    = "query"
	OpMutation = "mutation"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldOperation = "graphql.operation"
	LogFieldDocument  = "graphql.document.hash"
	LogFieldTraceID   = "trace_id"
	LogFieldSpanID    = "span_id"
	LogFieldDuration  = "duration_ms"
	LogFieldError     = "error"
)

// DocumentHash returns a short stable fingerprint of a GraphQL document, used
// to correlate logs and spans without recording the full query text.
func DocumentHash(document string) string {
	return strconv.FormatUint(xxhash.Sum64String(document), 16)
}

// OperationTypeAttr creates an attribute for the GraphQL operation type.
func OperationTypeAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperationType, op)
}

// OperationNameAttr creates an attribute for the GraphQL operation name.
func OperationNameAttr(name string) attribute.KeyValue {
	return attribute.String(AttrOperationName, name)
}

// DocumentHashAttr creates an attribute for the document fingerprint.
func DocumentHashAttr(hash string) attribute.KeyValue {
	return attribute.String(AttrDocumentHash, hash)
}

// ParentTypeAttr creates an attribute for the type owning a resolved field.
func ParentTypeAttr(name string) attribute.KeyValue {
	return attribute.String(AttrParentType, name)
}

// FieldNameAttr creates an attribute for a resolved field.
func FieldNameAttr(name string) attribute.KeyValue {
	return attribute.String(AttrFieldName, name)
}

// EntityAttr creates an attribute for the storefront entity touched by a mutation.
func EntityAttr(name string) attribute.KeyValue {
	return attribute.String(AttrEntity, name)
}

// EntityKeyAttr creates an attribute for the entity key.
func EntityKeyAttr(key string) attribute.KeyValue {
	return attribute.String(AttrEntityKey, key)
}

// ResultCountAttr creates an attribute for the result count.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}

// ErrorCodeAttr creates an attribute for the error code.
func ErrorCodeAttr(code string) attribute.KeyValue {
	return attribute.String(AttrErrorCode, code)
}
