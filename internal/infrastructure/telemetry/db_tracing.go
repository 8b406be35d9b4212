package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const queryStartKey = "telemetry:query_start"

// DBTracingConfig controls database spans
type DBTracingConfig struct {
	Enabled         bool
	DBName          string
	LogFullSQL      bool          // include bound variables in db.statement
	SlowQueryThresh time.Duration // zero disables slow query marking
}

// RegisterDBTracing installs the otelgorm plugin on db and marks statements
// slower than cfg.SlowQueryThresh on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}
	if cfg.SlowQueryThresh > 0 {
		if err := registerSlowQueryCallbacks(db, cfg.SlowQueryThresh); err != nil {
			return err
		}
	}

	logger.Info("database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

func registerSlowQueryCallbacks(db *gorm.DB, threshold time.Duration) error {
	before := func(tx *gorm.DB) { tx.InstanceSet(queryStartKey, time.Now()) }
	after := func(tx *gorm.DB) { markSlowQuery(tx, threshold) }

	cb := db.Callback()
	steps := []struct {
		name string
		err  error
	}{
		{"create", cb.Create().Before("gorm:create").Register("telemetry:before_create", before)},
		{"create", cb.Create().After("gorm:create").Register("telemetry:after_create", after)},
		{"query", cb.Query().Before("gorm:query").Register("telemetry:before_query", before)},
		{"query", cb.Query().After("gorm:query").Register("telemetry:after_query", after)},
		{"update", cb.Update().Before("gorm:update").Register("telemetry:before_update", before)},
		{"update", cb.Update().After("gorm:update").Register("telemetry:after_update", after)},
		{"delete", cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", before)},
		{"delete", cb.Delete().After("gorm:delete").Register("telemetry:after_delete", after)},
		{"raw", cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", before)},
		{"raw", cb.Raw().After("gorm:raw").Register("telemetry:after_raw", after)},
	}
	var errs []error
	for _, s := range steps {
		if s.err != nil {
			errs = append(errs, s.err)
		}
	}
	return errors.Join(errs...)
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	v, ok := tx.InstanceGet(queryStartKey)
	if !ok {
		return
	}
	start, ok := v.(time.Time)
	if !ok {
		return
	}
	elapsed := time.Since(start)
	if elapsed <= threshold || tx.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(tx.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.String("db.sql.table", tx.Statement.Table),
		attribute.Int64("duration_ms", elapsed.Milliseconds()),
		attribute.Int64("threshold_ms", threshold.Milliseconds()),
	))
}
