package logger

import (
	"context"
	"errors"
	log "log/slog"
	"strings"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

const gormSlowThreshold = 200 * time.Millisecond

// SlogGormLogger 将 gorm 的 SQL 日志转发到 slog
type SlogGormLogger struct {
	LogLevel gormlogger.LogLevel
}

func NewGormLogger() *SlogGormLogger {
	return &SlogGormLogger{LogLevel: gormlogger.Warn}
}

func (l *SlogGormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	return &SlogGormLogger{LogLevel: level}
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		log.InfoContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		log.WarnContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		log.ErrorContext(ctx, msg, "data", data)
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	operation, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	if operation == "" {
		operation = "Query"
	}
	msg := "SQL " + strings.ToUpper(operation)

	fields := []any{
		log.String("sql", sql),
		log.Duration("latency", elapsed),
		log.Int64("rows", rows),
	}

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.LogLevel >= gormlogger.Error:
		log.ErrorContext(ctx, msg+" Error", append(fields, log.Any("err", err))...)
	case elapsed > gormSlowThreshold && l.LogLevel >= gormlogger.Warn:
		log.WarnContext(ctx, msg+" Slow", fields...)
	case l.LogLevel >= gormlogger.Info:
		log.InfoContext(ctx, msg, fields...)
	}
}
