package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDefault returns the production logger, or a no-op logger if it cannot be built.
func NewDefault() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// OrDefault returns logger, or NewDefault() when logger is nil.
func OrDefault(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return NewDefault()
	}
	return logger
}

// NewConsole writes human readable debug output to stdout.
func NewConsole() *zap.Logger {
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stdout),
		zap.DebugLevel,
	)
	return zap.New(consoleCore)
}
