package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithServiceName("test-service"),
		WithDetailedDBTracing(),
		WithFieldTracing(),
	)

	if cfg.ServiceName != "test-service" {
		t.Errorf("expected service name 'test-service', got '%s'", cfg.ServiceName)
	}
	if !cfg.EnableDetailedDBTracing {
		t.Error("expected detailed DB tracing to be enabled")
	}
	if !cfg.EnableFieldTracing {
		t.Error("expected field tracing to be enabled")
	}
}

func TestNewConfigDefaultServiceName(t *testing.T) {
	cfg := NewConfig(WithServiceName(""))
	if cfg.ServiceName != DefaultServiceName {
		t.Errorf("expected default service name, got %q", cfg.ServiceName)
	}
}

func TestConfigInitialize(t *testing.T) {
	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithServiceName("test-service"),
	)

	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tracer() == nil {
		t.Error("expected tracer to be initialized")
	}
	if cfg.Metrics() == nil {
		t.Error("expected metrics to be initialized")
	}
}

func TestConfigInitializeNoProviders(t *testing.T) {
	cfg := NewConfig()

	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tracer() == nil {
		t.Error("expected noop tracer to be returned")
	}
	if cfg.Metrics() == nil {
		t.Error("expected noop metrics to be returned")
	}
}

func TestIsEnabled(t *testing.T) {
	cfg := NewConfig()
	if cfg.IsEnabled() {
		t.Error("expected empty config to not be enabled")
	}

	cfg = NewConfig(WithTracerProvider(tracenoop.NewTracerProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with tracer to be enabled")
	}

	cfg = NewConfig(WithMeterProvider(noop.NewMeterProvider()))
	if !cfg.IsEnabled() {
		t.Error("expected config with meter to be enabled")
	}
}

func TestFieldTracingRequiresTracerProvider(t *testing.T) {
	if NewConfig(WithFieldTracing()).FieldTracingEnabled() {
		t.Error("field tracing without a tracer provider should be off")
	}
	cfg := NewConfig(WithFieldTracing(), WithTracerProvider(tracenoop.NewTracerProvider()))
	if !cfg.FieldTracingEnabled() {
		t.Error("expected field tracing to be enabled")
	}
	var nilCfg *Config
	if nilCfg.FieldTracingEnabled() {
		t.Error("nil config should not enable field tracing")
	}
}

func TestServerTimingOption(t *testing.T) {
	cfg := NewConfig(WithServerTiming())
	if !cfg.ServerTimingEnabled() {
		t.Error("expected ServerTimingEnabled() to return true")
	}
	if NewConfig().ServerTimingEnabled() {
		t.Error("expected server timing to be disabled by default")
	}
	var nilCfg *Config
	if nilCfg.ServerTimingEnabled() {
		t.Error("expected ServerTimingEnabled() to return false for nil config")
	}
}

func TestDocumentHash(t *testing.T) {
	a := DocumentHash("{ products { id } }")
	b := DocumentHash("{ products { id } }")
	c := DocumentHash("{ categories { id } }")

	if a != b {
		t.Errorf("hash not stable: %s != %s", a, b)
	}
	if a == c {
		t.Error("different documents should hash differently")
	}
	if a == "" {
		t.Error("hash should not be empty")
	}
}

func TestStartServerTimingNoContext(t *testing.T) {
	StartServerTiming(context.Background(), "test").Stop()
	StartServerTimingWithDesc(context.Background(), "test", "Test description").Stop()

	var metric *ServerTimingMetric
	metric.Stop()
}

func TestDBTimeAccumulator(t *testing.T) {
	acc := &DBTimeAccumulator{}
	acc.Add(10 * time.Millisecond)
	acc.Add(20 * time.Millisecond)
	acc.Add(30 * time.Millisecond)

	if got := acc.Duration(); got != 60*time.Millisecond {
		t.Errorf("expected 60ms, got %v", got)
	}
}

func TestDBTimeAccumulatorConcurrent(t *testing.T) {
	acc := &DBTimeAccumulator{}

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				acc.Add(time.Millisecond)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	if got := acc.Duration(); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
}

func TestAddDBTime(t *testing.T) {
	if DBTimeAccumulatorFromContext(context.Background()) != nil {
		t.Error("expected nil accumulator from background context")
	}
	AddDBTime(context.Background(), time.Millisecond)

	ctx := WithDBTimeAccumulator(context.Background())
	AddDBTime(ctx, 50*time.Millisecond)
	AddDBTime(ctx, 100*time.Millisecond)

	acc := DBTimeAccumulatorFromContext(ctx)
	if acc == nil {
		t.Fatal("accumulator should not be nil")
	}
	if got := acc.Duration(); got != 150*time.Millisecond {
		t.Errorf("expected 150ms, got %v", got)
	}
}

func TestServerTimingMiddlewareReportsDBTime(t *testing.T) {
	cfg := NewConfig(WithServerTiming())
	handler := ServerTimingMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		AddDBTime(r.Context(), 5*time.Millisecond)
		RecordDBTiming(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	header := rec.Header().Get("Server-Timing")
	if !strings.Contains(header, "db") {
		t.Errorf("expected db metric in Server-Timing header, got %q", header)
	}
}

func TestServerTimingMiddlewareDisabled(t *testing.T) {
	var sawAccumulator bool
	handler := ServerTimingMiddleware(NewConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAccumulator = DBTimeAccumulatorFromContext(r.Context()) != nil
		RecordDBTiming(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graphql", nil))

	if !sawAccumulator {
		t.Error("expected accumulator to be attached even without Server-Timing")
	}
	if rec.Header().Get("Server-Timing") != "" {
		t.Error("expected no Server-Timing header when disabled")
	}
}

func TestServerTimingCallbacksIntegration(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	type TestCategory struct {
		ID   int `gorm:"primarykey"`
		Name string
	}
	if err := db.AutoMigrate(&TestCategory{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := RegisterServerTimingCallbacks(db); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}

	ctx := WithDBTimeAccumulator(context.Background())
	if err := db.WithContext(ctx).Create(&TestCategory{ID: 1, Name: "clothes"}).Error; err != nil {
		t.Fatalf("failed to create: %v", err)
	}

	acc := DBTimeAccumulatorFromContext(ctx)
	duration := acc.Duration()
	if duration == 0 {
		t.Error("expected non-zero database time after Create operation")
	}

	var categories []TestCategory
	if err := db.WithContext(ctx).Find(&categories).Error; err != nil {
		t.Fatalf("failed to find: %v", err)
	}
	if acc.Duration() <= duration {
		t.Errorf("expected duration to increase after Find, got before=%v after=%v", duration, acc.Duration())
	}
}

func TestRegisterGORMCallbacks(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	// disabled configs register nothing
	if err := RegisterGORMCallbacks(db, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterGORMCallbacks(db, NewConfig(WithTracerProvider(tracenoop.NewTracerProvider()))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg := NewConfig(
		WithTracerProvider(tracenoop.NewTracerProvider()),
		WithMeterProvider(noop.NewMeterProvider()),
		WithDetailedDBTracing(),
	)
	if err := cfg.Initialize(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := RegisterGORMCallbacks(db, cfg); err != nil {
		t.Fatalf("failed to register callbacks: %v", err)
	}

	type TestProduct struct {
		ID   string `gorm:"primarykey"`
		Name string
	}
	if err := db.AutoMigrate(&TestProduct{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Create(&TestProduct{ID: "p1", Name: "Tee"}).Error; err != nil {
		t.Fatalf("create with tracing callbacks failed: %v", err)
	}
	if err := db.Model(&TestProduct{}).Where("id = ?", "p1").Update("name", "Tee v2").Error; err != nil {
		t.Fatalf("update with tracing callbacks failed: %v", err)
	}
	var got TestProduct
	if err := db.First(&got, "id = ?", "p1").Error; err != nil {
		t.Fatalf("query with tracing callbacks failed: %v", err)
	}
	if got.Name != "Tee v2" {
		t.Errorf("expected updated name, got %q", got.Name)
	}
	if err := db.Delete(&TestProduct{}, "id = ?", "p1").Error; err != nil {
		t.Fatalf("delete with tracing callbacks failed: %v", err)
	}
}
