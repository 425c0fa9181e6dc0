package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultMaxSQLLength bounds the logged statement. Batch reads bind long
// IN lists, so full statements would flood the log.
const DefaultMaxSQLLength = 2048

// GormLogger routes GORM statements to zap with request, session and trace ids
type GormLogger struct {
	logger        *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	maxSQLLength  int
}

// GormLoggerOption configures a GormLogger
type GormLoggerOption func(*GormLogger)

// WithSlowThreshold sets the duration above which a statement is logged as slow.
// Zero disables slow statement logging.
func WithSlowThreshold(threshold time.Duration) GormLoggerOption {
	return func(l *GormLogger) {
		l.slowThreshold = threshold
	}
}

// WithMaxSQLLength truncates logged statements. n <= 0 logs them in full.
func WithMaxSQLLength(n int) GormLoggerOption {
	return func(l *GormLogger) {
		l.maxSQLLength = n
	}
}

// NewGormLogger creates a GORM logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, level gormlogger.LogLevel, opts ...GormLoggerOption) *GormLogger {
	gl := &GormLogger{
		logger:        zapLogger.Named("gorm"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
		maxSQLLength:  DefaultMaxSQLLength,
	}
	for _, opt := range opts {
		opt(gl)
	}
	return gl
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.contextLogger(ctx).Info(fmt.Sprintf(msg, data...))
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.contextLogger(ctx).Warn(fmt.Sprintf(msg, data...))
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.contextLogger(ctx).Error(fmt.Sprintf(msg, data...))
	}
}

// Trace implements gormlogger.Interface. Missing rows are expected on
// storefront lookups and never logged as errors.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slowThreshold > 0 && elapsed > l.slowThreshold

	switch {
	case failed && l.level >= gormlogger.Error:
		l.contextLogger(ctx).Error("SQL Error", append(l.statementFields(fc, elapsed), zap.Error(err))...)
	case slow && l.level >= gormlogger.Warn:
		l.contextLogger(ctx).Warn("Slow SQL", append(l.statementFields(fc, elapsed), zap.Duration("threshold", l.slowThreshold))...)
	case l.level >= gormlogger.Info:
		l.contextLogger(ctx).Debug("SQL Query", l.statementFields(fc, elapsed)...)
	}
}

func (l *GormLogger) statementFields(fc func() (string, int64), elapsed time.Duration) []zap.Field {
	sql, rows := fc()
	if l.maxSQLLength > 0 && len(sql) > l.maxSQLLength {
		sql = sql[:l.maxSQLLength] + "...(truncated)"
	}
	return []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
}

func (l *GormLogger) contextLogger(ctx context.Context) *zap.Logger {
	log := WithTraceContext(ctx, l.logger)
	if requestID := GetRequestID(ctx); requestID != "" {
		log = log.With(zap.String("request_id", requestID))
	}
	if sessionID := GetSessionID(ctx); sessionID != "" {
		log = log.With(zap.String("session_id", sessionID))
	}
	return log
}

// MapGormLogLevel maps the application log level to a GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
