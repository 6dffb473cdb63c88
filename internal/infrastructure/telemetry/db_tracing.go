package telemetry

import (
	"context"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled bool
	// DBSystem names the database in span attributes, e.g. "postgresql"
	DBSystem        string
	SlowQueryThresh time.Duration
	// WithVariables includes bound query values in spans. Never in production.
	WithVariables bool
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db, so every statement
// runs in a child span of the request, and flags statements slower than the
// threshold with db.slow_query=true.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled")
		return nil
	}
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = 200 * time.Millisecond
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.WithVariables {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) {
		ctx := tx.Statement.Context
		if ctx == nil {
			return
		}
		start, ok := ctx.Value(queryStartKey{}).(time.Time)
		if !ok {
			return
		}
		if elapsed := time.Since(start); elapsed >= cfg.SlowQueryThresh {
			span := trace.SpanFromContext(ctx)
			span.SetAttributes(
				attribute.Bool("db.slow_query", true),
				attribute.Int64("db.duration_ms", elapsed.Milliseconds()),
				attribute.String("db.table", tx.Statement.Table),
			)
		}
	}

	// after hooks must run before otelgorm ends the span
	cb := db.Callback()
	for _, err := range []error{
		cb.Create().Before("gorm:create").Register("printchain:trace_before_create", before),
		cb.Query().Before("gorm:query").Register("printchain:trace_before_query", before),
		cb.Update().Before("gorm:update").Register("printchain:trace_before_update", before),
		cb.Delete().Before("gorm:delete").Register("printchain:trace_before_delete", before),
		cb.Row().Before("gorm:row").Register("printchain:trace_before_row", before),
		cb.Raw().Before("gorm:raw").Register("printchain:trace_before_raw", before),
		cb.Create().After("gorm:create").Before("otel:after:create").Register("printchain:trace_after_create", after),
		cb.Query().After("gorm:query").Before("otel:after:select").Register("printchain:trace_after_query", after),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("printchain:trace_after_update", after),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("printchain:trace_after_delete", after),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("printchain:trace_after_row", after),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("printchain:trace_after_raw", after),
	} {
		if err != nil {
			return err
		}
	}

	logger.Info("Database tracing enabled",
		zap.String("db_system", cfg.DBSystem),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}
