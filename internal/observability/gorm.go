package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	gormSpanKey        = "storefront:gorm:span"
	gormStartTimeKey   = "storefront:gorm:start"
	gormTimingStartKey = "storefront:gorm:timing_start"
	gormTracingPrefix  = "storefront_tracing"
	gormTimingPrefix   = "storefront_server_timing"
)

// gormStage describes one GORM callback chain we hook into.
type gormStage struct {
	name      string // suffix of our callback names
	span      string
	operation string
	before    func(db *gorm.DB, name string, fn func(*gorm.DB)) error
	after     func(db *gorm.DB, name string, fn func(*gorm.DB)) error
}

var gormStages = []gormStage{
	{
		name: "query", span: "db.query", operation: "SELECT",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Query().Before("gorm:query").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Query().After("gorm:query").Register(n, fn)
		},
	},
	{
		name: "create", span: "db.create", operation: "INSERT",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Create().Before("gorm:create").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Create().After("gorm:create").Register(n, fn)
		},
	},
	{
		name: "update", span: "db.update", operation: "UPDATE",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Update().Before("gorm:update").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Update().After("gorm:update").Register(n, fn)
		},
	},
	{
		name: "delete", span: "db.delete", operation: "DELETE",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Delete().Before("gorm:delete").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Delete().After("gorm:delete").Register(n, fn)
		},
	},
	{
		name: "row", span: "db.row", operation: "ROW",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Row().Before("gorm:row").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Row().After("gorm:row").Register(n, fn)
		},
	},
	{
		name: "raw", span: "db.raw", operation: "RAW",
		before: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Raw().Before("gorm:raw").Register(n, fn)
		},
		after: func(db *gorm.DB, n string, fn func(*gorm.DB)) error {
			return db.Callback().Raw().After("gorm:raw").Register(n, fn)
		},
	},
}

// RegisterGORMCallbacks registers GORM callbacks that open a span per statement.
// It does nothing unless a tracer provider is configured and detailed DB tracing is on.
func RegisterGORMCallbacks(db *gorm.DB, cfg *Config) error {
	if cfg == nil || cfg.TracerProvider == nil || !cfg.EnableDetailedDBTracing {
		return nil
	}

	tracer := cfg.Tracer()
	metrics := cfg.Metrics()
	for _, stage := range gormStages {
		if err := stage.before(db, gormTracingPrefix+":before_"+stage.name, func(tx *gorm.DB) {
			startSpan(tx, tracer, stage.span)
		}); err != nil {
			return err
		}
		if err := stage.after(db, gormTracingPrefix+":after_"+stage.name, func(tx *gorm.DB) {
			endSpan(tx, tracer, metrics, stage.operation)
		}); err != nil {
			return err
		}
	}
	return nil
}

// RegisterServerTimingCallbacks registers GORM callbacks that add the duration of
// every statement to the request's DBTimeAccumulator. It works without OpenTelemetry.
func RegisterServerTimingCallbacks(db *gorm.DB) error {
	for _, stage := range gormStages {
		if err := stage.before(db, gormTimingPrefix+":before_"+stage.name, beforeTiming); err != nil {
			return err
		}
		if err := stage.after(db, gormTimingPrefix+":after_"+stage.name, afterTiming); err != nil {
			return err
		}
	}
	return nil
}

func beforeTiming(db *gorm.DB) {
	db.InstanceSet(gormTimingStartKey, time.Now())
}

func afterTiming(db *gorm.DB) {
	v, ok := db.InstanceGet(gormTimingStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	if db.Statement != nil && db.Statement.Context != nil {
		AddDBTime(db.Statement.Context, time.Since(start))
	}
}

func startSpan(db *gorm.DB, tracer *Tracer, spanName string) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := tracer.StartSpan(ctx, spanName,
		attribute.String("db.system", db.Dialector.Name()),
	)

	db.Statement.Context = ctx
	db.InstanceSet(gormSpanKey, span)
	db.InstanceSet(gormStartTimeKey, time.Now())
}

func endSpan(db *gorm.DB, tracer *Tracer, metrics *Metrics, operation string) {
	v, ok := db.InstanceGet(gormSpanKey)
	if !ok {
		return
	}
	span, ok := v.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	table := db.Statement.Table
	if table != "" {
		span.SetAttributes(attribute.String("db.sql.table", table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))

	if db.Error != nil {
		tracer.RecordError(span, db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	if v, ok := db.InstanceGet(gormStartTimeKey); ok {
		if start, ok := v.(time.Time); ok {
			metrics.RecordDBQuery(db.Statement.Context, operation, table, time.Since(start))
		}
	}
}
