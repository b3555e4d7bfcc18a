package telemetry

import (
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const (
	spanKey      = "otel:span"
	spanStartKey = "otel:startTime"

	maxStatementLen = 500
)

// GORMTracingPlugin returns a GORM plugin that opens one span per statement
func GORMTracingPlugin() gorm.Plugin {
	return &tracingPlugin{tracer: otel.Tracer("gorm")}
}

type tracingPlugin struct {
	tracer trace.Tracer
}

func (p *tracingPlugin) Name() string {
	return "telemetry:tracing"
}

func (p *tracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	register := func(name string, err error) error {
		if err != nil {
			return fmt.Errorf("failed to register %s callback: %w", name, err)
		}
		return nil
	}

	if err := register("before_query", cb.Query().Before("gorm:query").Register("telemetry:before_query", p.before("SELECT"))); err != nil {
		return err
	}
	if err := register("before_create", cb.Create().Before("gorm:create").Register("telemetry:before_create", p.before("INSERT"))); err != nil {
		return err
	}
	if err := register("before_update", cb.Update().Before("gorm:update").Register("telemetry:before_update", p.before("UPDATE"))); err != nil {
		return err
	}
	if err := register("before_delete", cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", p.before("DELETE"))); err != nil {
		return err
	}
	if err := register("before_raw", cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", p.before("RAW"))); err != nil {
		return err
	}

	if err := register("after_query", cb.Query().After("gorm:query").Register("telemetry:after_query", p.after)); err != nil {
		return err
	}
	if err := register("after_create", cb.Create().After("gorm:create").Register("telemetry:after_create", p.after)); err != nil {
		return err
	}
	if err := register("after_update", cb.Update().After("gorm:update").Register("telemetry:after_update", p.after)); err != nil {
		return err
	}
	if err := register("after_delete", cb.Delete().After("gorm:delete").Register("telemetry:after_delete", p.after)); err != nil {
		return err
	}
	return register("after_raw", cb.Raw().After("gorm:raw").Register("telemetry:after_raw", p.after))
}

func (p *tracingPlugin) before(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			return
		}

		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		_, span := p.tracer.Start(ctx, "db."+strings.ToLower(operation),
			trace.WithAttributes(
				attribute.String("db.system", db.Dialector.Name()),
				attribute.String("db.table", table),
				attribute.String("db.operation", operation),
			),
		)

		db.InstanceSet(spanKey, span)
		db.InstanceSet(spanStartKey, time.Now())
	}
}

func (p *tracingPlugin) after(db *gorm.DB) {
	raw, ok := db.InstanceGet(spanKey)
	if !ok {
		return
	}
	span, ok := raw.(trace.Span)
	if !ok {
		return
	}
	defer span.End()

	if start, ok := db.InstanceGet(spanStartKey); ok {
		if t, ok := start.(time.Time); ok {
			span.SetAttributes(attribute.Int64("db.duration_ms", time.Since(t).Milliseconds()))
		}
	}

	if sql := db.Statement.SQL.String(); sql != "" {
		if len(sql) > maxStatementLen {
			sql = sql[:maxStatementLen] + "... (truncated)"
		}
		span.SetAttributes(attribute.String("db.statement", sql))
	}

	if db.RowsAffected > 0 {
		span.SetAttributes(attribute.Int64("db.rows_affected", db.RowsAffected))
	}

	if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}
}
