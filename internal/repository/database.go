// Package repository owns every SQL statement and transaction of the storefront.
//
// Two repositories are provided, one per aggregate: CatalogRepository for
// categories, products, prices, gallery images and attributes, and
// OrderRepository for orders, order items and their selected attributes.
// Multi-statement writes always run inside a single transaction and roll back
// completely on the first failure.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nlstn/go-storefront/internal/models"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options describes how to open the database.
type Options struct {
	// Driver is one of DriverSQLite, DriverMySQL or DriverPostgres. Empty means SQLite.
	Driver string
	// DSN is the driver specific connection string. Empty SQLite DSN means in-memory.
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// AutoMigrate creates or updates all tables after connecting.
	AutoMigrate bool

	// LogLevel controls GORM's own statement logger.
	LogLevel logger.LogLevel
}

var (
	defaultDB   *gorm.DB
	defaultErr  error
	defaultOnce sync.Once
	defaultMu   sync.Mutex
)

// Default returns the process-wide database handle, opening it on first use.
// Concurrent first callers block until the single initialization finishes; the
// options of later calls are ignored.
func Default(opts Options) (*gorm.DB, error) {
	defaultOnce.Do(func() {
		db, err := Open(opts)
		defaultMu.Lock()
		defaultDB, defaultErr = db, err
		defaultMu.Unlock()
	})
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultDB, defaultErr
}

// Close releases the process-wide handle opened by Default.
func Close() error {
	defaultMu.Lock()
	db := defaultDB
	defaultDB, defaultErr = nil, ErrClosed
	defaultMu.Unlock()
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open connects to the database described by opts and configures the pool.
func Open(opts Options) (*gorm.DB, error) {
	dialector, err := newDialector(opts.Driver, opts.DSN)
	if err != nil {
		return nil, err
	}

	level := opts.LogLevel
	if level == 0 {
		level = logger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", driverName(opts.Driver), err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	switch {
	case isMemorySQLite(opts.Driver, opts.DSN):
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if opts.AutoMigrate {
		if err := Migrate(context.Background(), db); err != nil {
			return nil, err
		}
	}

	slog.Default().Debug("database connected", "driver", driverName(opts.Driver))
	return db, nil
}

// Migrate creates or updates every storefront table.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping reports whether the store is reachable.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func newDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driverName(driver) {
	case DriverSQLite:
		if dsn == "" {
			dsn = ":memory:"
		}
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		if dsn == "" {
			return nil, fmt.Errorf("mysql DSN is required")
		}
		return gormmysql.Open(dsn), nil
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("postgres DSN is required")
		}
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func driverName(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch d {
	case "", "sqlite3":
		return DriverSQLite
	case "postgresql", "pg":
		return DriverPostgres
	}
	return d
}

func isMemorySQLite(driver, dsn string) bool {
	return driverName(driver) == DriverSQLite && (dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory"))
}
