package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance. Safe to use before Initialize();
	// it starts as a no-op logger.
	Logger *zap.SugaredLogger

	// JSONOutput tracks whether structured JSON output is enabled.
	JSONOutput bool
)

func init() {
	// No-op logger at package load time so early callers never hit a nil
	// pointer before Initialize() runs.
	Logger = zap.NewNop().Sugar()
}

// Initialize sets up the global logger. With jsonOutput the production JSON
// encoder is used; otherwise a compact human-readable console encoder.
// verbosity raises the level: 0 = info, 1+ = debug.
func Initialize(jsonOutput bool, verbosity int) error {
	JSONOutput = jsonOutput

	level := zap.InfoLevel
	if verbosity > 0 {
		level = zap.DebugLevel
	}

	var zapLogger *zap.Logger
	if jsonOutput {
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.OutputPaths = []string{"stderr"}
		built, err := config.Build()
		if err != nil {
			return err
		}
		zapLogger = built
	} else {
		zapLogger = zap.New(
			zapcore.NewCore(
				newCompactEncoder(),
				zapcore.AddSync(os.Stderr),
				level,
			),
		)
	}

	Logger = zapLogger.Sugar()
	return nil
}

// Cleanup flushes any buffered log entries.
func Cleanup() {
	if Logger != nil {
		Logger.Sync()
	}
}

// Infow logs an info message with structured fields
func Infow(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Infow(msg, keysAndValues...)
	}
}

// Infof logs a formatted info message
func Infof(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Infof(format, args...)
	}
}

// Warnw logs a warning message with structured fields
func Warnw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Warnw(msg, keysAndValues...)
	}
}

// Errorw logs an error message with structured fields
func Errorw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Errorw(msg, keysAndValues...)
	}
}

// Debugw logs a debug message with structured fields
func Debugw(msg string, keysAndValues ...interface{}) {
	if Logger != nil {
		Logger.Debugw(msg, keysAndValues...)
	}
}
