// Package monitoring provides the observability backends of the gateway:
// the zap-based logger, Prometheus metrics and distributed tracing.
package monitoring

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/delang-zeta/ai-gateway/internal/config"
	"github.com/delang-zeta/ai-gateway/pkg/logger"
)

// zapLogger implements logger.Logger on zap. When the context carries an
// active span the trace and span ids are attached to every line so logs
// can be joined against traces.
type zapLogger struct {
	zl *zap.Logger
}

// NewLogger creates the production logger from configuration.
func NewLogger(cfg config.LogConfig) (logger.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	zl, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return &zapLogger{zl: zl}, nil
}

func (l *zapLogger) Debug(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Debug(message, l.convert(ctx, fields)...)
}

func (l *zapLogger) Info(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Info(message, l.convert(ctx, fields)...)
}

func (l *zapLogger) Warn(ctx context.Context, message string, fields ...logger.Field) {
	l.zl.Warn(message, l.convert(ctx, fields)...)
}

func (l *zapLogger) Error(ctx context.Context, message string, err error, fields ...logger.Field) {
	zapFields := l.convert(ctx, fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.zl.Error(message, zapFields...)
}

func (l *zapLogger) Fatal(ctx context.Context, message string, err error, fields ...logger.Field) {
	zapFields := l.convert(ctx, fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.zl.Fatal(message, zapFields...)
}

func (l *zapLogger) WithFields(fields ...logger.Field) logger.Logger {
	zapFields := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}
	return &zapLogger{zl: l.zl.With(zapFields...)}
}

func (l *zapLogger) WithComponent(component string) logger.Logger {
	return &zapLogger{zl: l.zl.With(zap.String("component", component))}
}

// convert maps interface fields to zap fields and appends trace context.
func (l *zapLogger) convert(ctx context.Context, fields []logger.Field) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+2)
	for _, f := range fields {
		zapFields = append(zapFields, zap.Any(f.Key, f.Value))
	}

	if ctx != nil {
		if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
			zapFields = append(zapFields,
				zap.String("trace_id", span.SpanContext().TraceID().String()),
				zap.String("span_id", span.SpanContext().SpanID().String()))
		}
	}
	return zapFields
}

// Sync flushes any buffered log entries. Safe to call on shutdown.
func Sync(l logger.Logger) {
	if zl, ok := l.(*zapLogger); ok {
		_ = zl.zl.Sync()
	}
}
