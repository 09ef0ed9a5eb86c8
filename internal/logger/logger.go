package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger used across the scanner.
type Logger struct {
	*zap.Logger
}

// NewLogger creates a logger with the production configuration at info level.
func NewLogger() (*Logger, error) {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a production logger writing to stdout at the given level
// ("debug", "info", "warn", "error"). An unknown level falls back to info.
func NewLoggerWithLevel(level string) (*Logger, error) {
	return NewLoggerWithOutput(level, "stdout")
}

// NewLoggerWithOutput creates a production logger at the given level writing to the
// given zap output paths.
func NewLoggerWithOutput(level string, outputPaths ...string) (*Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = outputPaths
	config.ErrorOutputPaths = []string{"stderr"}

	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		parsed = zapcore.InfoLevel
	}

	config.Level = zap.NewAtomicLevelAt(parsed)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNopLogger returns a logger that discards everything. Used by tests.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Named returns a child logger for a component.
func (l *Logger) Named(name string) *Logger {
	if l == nil || l.Logger == nil {
		return NewNopLogger()
	}

	return &Logger{Logger: l.Logger.Named(name)}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
