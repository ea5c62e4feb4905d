// Package logger provides a zap-based application logger.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents a logging level.
type Level int8

// Levels understood by the logger.
const (
	LevelDebug = Level(zapcore.DebugLevel)
	LevelInfo  = Level(zapcore.InfoLevel)
	LevelWarn  = Level(zapcore.WarnLevel)
	LevelError = Level(zapcore.ErrorLevel)
)

// ParseLevel converts a textual level such as "debug" or "warn".
func ParseLevel(s string) (Level, error) {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return LevelInfo, err
	}
	return Level(lvl), nil
}

// TraceIDFn extracts a trace id from the context.
type TraceIDFn func(ctx context.Context) string

// Logger writes JSON log lines tagged with the service name and,
// when available, the trace id of the calling context.
type Logger struct {
	log       *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a Logger writing to w at or above minLevel.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zapcore.Level(minLevel))
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).With(zap.String("service", serviceName))

	return &Logger{log: zl.Sugar(), traceIDFn: traceIDFn}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{log: zap.NewNop().Sugar()}
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.log.Debugw(msg, l.fields(ctx, args)...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.log.Infow(msg, l.fields(ctx, args)...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.log.Warnw(msg, l.fields(ctx, args)...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.log.Errorw(msg, l.fields(ctx, args)...)
}

// With returns a child logger that always carries the given key/value pairs.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{log: l.log.With(args...), traceIDFn: l.traceIDFn}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.log.Sync()
}

func (l *Logger) fields(ctx context.Context, args []any) []any {
	if l.traceIDFn == nil || ctx == nil {
		return args
	}
	if id := l.traceIDFn(ctx); id != "" {
		return append(args, "trace_id", id)
	}
	return args
}
