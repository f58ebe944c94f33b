package logx

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu sync.RWMutex
	lg *zap.SugaredLogger
)

// Init builds the process-wide JSON logger for the given level name.
func Init(level string) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		z = zap.NewNop()
	}

	mu.Lock()
	lg = z.Sugar()
	mu.Unlock()
	return lg
}

// L returns the process-wide logger, initialising it at info level on first use.
func L() *zap.SugaredLogger {
	mu.RLock()
	current := lg
	mu.RUnlock()
	if current != nil {
		return current
	}
	return Init("info")
}

// Set replaces the process-wide logger. Tests use it to capture output.
func Set(logger *zap.SugaredLogger) {
	mu.Lock()
	lg = logger
	mu.Unlock()
}

func Sync() { _ = L().Sync() }

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
