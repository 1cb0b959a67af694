package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskboard/config"
	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/errors"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// sqlLogger is a gorm logger.Interface backed by slog. Statements run inside
// an HTTP request are logged through that request's logger.
type sqlLogger struct {
	base *slog.Logger
	mode gormlogger.LogLevel
	slow time.Duration
}

// newGormSlogLogger logs failed and slow statements, and every statement in debug mode.
func newGormSlogLogger(base *slog.Logger, cfg *config.Config) gormlogger.Interface {
	mode := gormlogger.Warn
	if cfg != nil && cfg.Env.Debug {
		mode = gormlogger.Info
	}

	return &sqlLogger{base: base, mode: mode, slow: slowQueryThreshold}
}

func (l *sqlLogger) logger(ctx context.Context) *slog.Logger {
	if reqLogger := deliverycontext.GetLogger(ctx); reqLogger != nil {
		return reqLogger
	}
	if id := deliverycontext.RequestIDFromContext(ctx); id != "" {
		return l.base.With(slog.String("request_id", id))
	}

	return l.base
}

func (l *sqlLogger) LogMode(mode gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.mode = mode

	return &clone
}

func (l *sqlLogger) Info(ctx context.Context, format string, args ...any) {
	l.message(ctx, gormlogger.Info, slog.LevelInfo, format, args)
}

func (l *sqlLogger) Warn(ctx context.Context, format string, args ...any) {
	l.message(ctx, gormlogger.Warn, slog.LevelWarn, format, args)
}

func (l *sqlLogger) Error(ctx context.Context, format string, args ...any) {
	l.message(ctx, gormlogger.Error, slog.LevelError, format, args)
}

func (l *sqlLogger) message(ctx context.Context, at gormlogger.LogLevel, level slog.Level, format string, args []any) {
	if l.base == nil || l.mode < at {
		return
	}

	l.logger(ctx).Log(ctx, level, "gorm: "+fmt.Sprintf(format, args...))
}

// Trace is called by gorm after every statement.
func (l *sqlLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.base == nil || l.mode <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.mode >= gormlogger.Error
	slow := l.slow > 0 && elapsed > l.slow && l.mode >= gormlogger.Warn

	var (
		level slog.Level
		msg   string
	)
	switch {
	case failed:
		level, msg = slog.LevelError, "sql statement failed"
	case slow:
		level, msg = slog.LevelWarn, "slow sql statement"
	case l.mode >= gormlogger.Info:
		level, msg = slog.LevelDebug, "sql statement"
	default:
		return
	}

	sql, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if failed {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	l.logger(ctx).LogAttrs(ctx, level, msg, attrs...)
}
