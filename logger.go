package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log is the process-wide logger. All diagnostics go to stderr so that
// an anonymised dump piped to stdout stays clean.
var log = newLogger(zapcore.InfoLevel)

// newLogger makes a console-encoded zap logger writing to stderr
func newLogger(level zapcore.Level) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)
	return zap.New(core).Sugar()
}
