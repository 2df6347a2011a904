package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func init() {
	zap.ReplaceGlobals(zap.New(zapcore.NewCore(
		zapcore.NewJSONEncoder(config()),
		zapcore.Lock(os.Stdout),
		logLevel,
	)))
}

func config() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// Debug logs a debug message with alternating key-value context.
func Debug(msg string, args ...interface{}) {
	zap.S().Debugw(msg, args...)
}

// Info logs an info message with alternating key-value context.
func Info(msg string, args ...interface{}) {
	zap.S().Infow(msg, args...)
}

// Warn logs a warning message with alternating key-value context.
func Warn(msg string, args ...interface{}) {
	zap.S().Warnw(msg, args...)
}

// Error logs an error message with alternating key-value context.
func Error(msg string, args ...interface{}) {
	zap.S().Errorw(msg, args...)
}

// Panic logs the message and panics.
func Panic(msg string, args ...interface{}) {
	zap.S().Panicw(msg, args...)
}

// Fatal logs the message and exits.
func Fatal(msg string, args ...interface{}) {
	zap.S().Fatalw(msg, args...)
}

// SetLevel sets the global log level. Accepted values are the
// zap level names: debug, info, warn, error, panic, fatal.
func SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	logLevel.SetLevel(parsed)
	return nil
}

// GetLevel returns the current global log level.
func GetLevel() zapcore.Level {
	return logLevel.Level()
}

// Clean normalizes free-form text for use as a log message.
func Clean(msg string) string {
	return strings.ToLower(strings.TrimSpace(msg))
}
