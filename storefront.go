// Package storefront serves a product catalog and its orders over GraphQL.
//
// A Service owns the executable schema and the repositories behind it. It can
// be used in-process through Execute or mounted as an http.Handler.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/graphql-go/graphql"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/nlstn/go-storefront/internal/observability"
	"github.com/nlstn/go-storefront/internal/repository"
	"github.com/nlstn/go-storefront/internal/schema"
)

// Service represents the storefront GraphQL service.
type Service struct {
	// db holds the GORM database connection
	db *gorm.DB
	// catalog reads and writes categories, products and their children
	catalog *repository.CatalogRepository
	// orders reads and writes orders, their lines and selected attributes
	orders *repository.OrderRepository
	// logger is used for structured logging throughout the service
	logger *slog.Logger
	// observability holds tracing and metrics, nil until SetObservability
	observability *observability.Config

	// mu guards schema, which is rebuilt when the logger or observability change
	mu     sync.RWMutex
	schema graphql.Schema
}

// ObservabilityConfig configures OpenTelemetry instrumentation of the service.
type ObservabilityConfig struct {
	// TracerProvider is the OpenTelemetry tracer provider. Nil disables tracing.
	TracerProvider trace.TracerProvider
	// MeterProvider is the OpenTelemetry meter provider. Nil disables metrics.
	MeterProvider metric.MeterProvider
	// ServiceName identifies the service in traces and metrics.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// EnableDetailedDBTracing opens a span per database statement.
	EnableDetailedDBTracing bool
	// EnableFieldTracing opens a span per resolved field.
	EnableFieldTracing bool
	// EnableServerTiming adds a Server-Timing header to HTTP responses served
	// through observability.ServerTimingMiddleware.
	EnableServerTiming bool
}

// NewService creates a storefront service on an open database handle. The
// schema tables must already exist; see repository.Migrate.
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("storefront: database handle is required")
	}

	catalog := repository.NewCatalogRepository(db)
	s := &Service{
		db:      db,
		catalog: catalog,
		orders:  repository.NewOrderRepository(db, catalog),
		logger:  slog.Default(),
	}

	if err := observability.RegisterServerTimingCallbacks(db); err != nil {
		return nil, fmt.Errorf("failed to register server timing callbacks: %w", err)
	}
	if err := s.rebuildSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// SetLogger sets a custom logger for the service.
// If not called, slog.Default() is used.
func (s *Service) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.mu.Lock()
	s.logger = logger
	s.mu.Unlock()
	if err := s.rebuildSchema(); err != nil {
		logger.Error("failed to rebuild schema after logger change", "error", err)
	}
}

// SetObservability enables tracing and metrics for the service.
func (s *Service) SetObservability(cfg ObservabilityConfig) error {
	opts := []observability.Option{
		observability.WithServiceName(cfg.ServiceName),
		observability.WithServiceVersion(cfg.ServiceVersion),
	}
	if cfg.TracerProvider != nil {
		opts = append(opts, observability.WithTracerProvider(cfg.TracerProvider))
	}
	if cfg.MeterProvider != nil {
		opts = append(opts, observability.WithMeterProvider(cfg.MeterProvider))
	}
	if cfg.EnableDetailedDBTracing {
		opts = append(opts, observability.WithDetailedDBTracing())
	}
	if cfg.EnableFieldTracing {
		opts = append(opts, observability.WithFieldTracing())
	}
	if cfg.EnableServerTiming {
		opts = append(opts, observability.WithServerTiming())
	}

	obs := observability.NewConfig(opts...)
	if err := obs.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	if err := observability.RegisterGORMCallbacks(s.db, obs); err != nil {
		return fmt.Errorf("failed to register database tracing: %w", err)
	}

	s.mu.Lock()
	s.observability = obs
	s.mu.Unlock()
	return s.rebuildSchema()
}

// Observability returns the observability configuration, or nil when
// SetObservability has not been called.
func (s *Service) Observability() *observability.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.observability
}

// Ping checks that the database is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.catalog.Ping(ctx)
}

func (s *Service) rebuildSchema() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.catalog == nil || s.orders == nil {
		return errors.New("failed to build schema: service has no database")
	}
	built, err := schema.New(schema.Config{
		Catalog:       s.catalog,
		Orders:        s.orders,
		Observability: s.observability,
		Logger:        s.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}
	s.schema = built
	return nil
}

func (s *Service) snapshot() (graphql.Schema, *slog.Logger, *observability.Config) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.schema, s.logger, s.observability
}
