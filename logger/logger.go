package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the application wide logger. It defaults to a no-op logger so that
// packages (and their tests) can log without calling Init first.
var Log = zap.NewNop()

// Init builds the production logger at the configured level. An unknown
// level string falls back to info.
func Init(logLevel string) {
	config := zap.NewProductionConfig()
	level, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	config.Level.SetLevel(level)
	Log, _ = config.Build()
}
