package observability

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	noopmetric "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewTracer(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	if tracer == nil {
		t.Fatal("NewTracer() should return non-nil tracer")
		return
	}
	if tracer.serviceName != "test-service" {
		t.Errorf("serviceName = %q, want %q", tracer.serviceName, "test-service")
	}
}

func TestTracer_StartOperation(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartOperation(context.Background(), OpQuery, "Products", DocumentHash("{ products { id } }"))
	defer span.End()

	if ctx == nil {
		t.Error("StartOperation() should return non-nil context")
	}
}

func TestTracer_StartOperation_Anonymous(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartOperation(context.Background(), OpMutation, "", "")
	defer span.End()

	if ctx == nil {
		t.Error("StartOperation() should return non-nil context")
	}
}

func TestTracer_StartResolve(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartResolve(context.Background(), "Product", "price")
	defer span.End()

	if ctx == nil {
		t.Error("StartResolve() should return non-nil context")
	}
}

func TestTracer_StartMutation(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	ctx, span := tracer.StartMutation(context.Background(), "deleteProduct", "Product", "p-1")
	defer span.End()
	if ctx == nil {
		t.Error("StartMutation() should return non-nil context")
	}

	_, span = tracer.StartMutation(context.Background(), "createOrder", "Order", "")
	span.End()
}

func TestTracer_SetHTTPStatus(t *testing.T) {
	tracer := NewTracer(tracenoop.NewTracerProvider(), "test-service")

	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		ctx, span := tracer.StartRequest(context.Background(), req)
		tracer.SetHTTPStatus(ctx, status)
		span.End()
	}
}

func TestTracer_RecordError(t *testing.T) {
	tracer := NewNoopTracer()
	_, span := tracer.StartSpan(context.Background(), "test")

	tracer.RecordError(span, nil)
	tracer.RecordError(span, errors.New("boom"))
	span.End()
}

func TestLoggerWithTrace(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	result := LoggerWithTrace(context.Background(), logger)
	if result != logger {
		t.Error("LoggerWithTrace() without a valid span should return the original logger")
	}
}

func TestNewMetrics(t *testing.T) {
	metrics := NewMetrics(noopmetric.NewMeterProvider())
	if metrics == nil {
		t.Fatal("NewMetrics() should return non-nil metrics")
	}
}

func TestMetrics_Record(t *testing.T) {
	ctx := context.Background()
	for name, m := range map[string]*Metrics{
		"provider": NewMetrics(noopmetric.NewMeterProvider()),
		"noop":     NewNoopMetrics(),
	} {
		t.Run(name, func(t *testing.T) {
			m.RecordRequest(ctx, http.MethodPost, http.StatusOK, time.Second)
			m.RecordOperation(ctx, OpQuery, "Products", 0, 20*time.Millisecond)
			m.RecordOperation(ctx, OpMutation, "", 1, time.Millisecond)
			m.RecordResolve(ctx, "Product", "gallery", 300*time.Microsecond)
			m.RecordDBQuery(ctx, "SELECT", "products", time.Millisecond)
			m.RecordError(ctx, OpQuery, "NOT_FOUND")
		})
	}
}

func TestConfig_Tracer_Nil(t *testing.T) {
	var cfg *Config
	if cfg.Tracer() == nil {
		t.Error("nil config should return noop tracer")
	}
	if cfg.Metrics() == nil {
		t.Error("nil config should return noop metrics")
	}
}

func TestConfig_NotInitialized(t *testing.T) {
	cfg := &Config{}
	if cfg.Tracer() == nil {
		t.Error("uninitialized config should return noop tracer")
	}
	if cfg.Metrics() == nil {
		t.Error("uninitialized config should return noop metrics")
	}
}

func TestHTTPMiddlewarePassthrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	handler := HTTPMiddleware(nil)(next)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !called {
		t.Error("expected passthrough middleware to call next handler")
	}
}

func TestHTTPMiddlewareRecordsStatus(t *testing.T) {
	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noopmetric.NewMeterProvider()),
	)
	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	handler := HTTPMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", nil))

	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
