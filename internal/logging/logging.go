// Package logging builds the process-wide zap logger.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stdout. "dev" selects a colored console
// encoder at debug level; anything else selects JSON at info level.
func New(format string) *zap.Logger {
	return NewWithWriter(format, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(format string, w io.Writer) *zap.Logger {
	var core zapcore.Core

	if format == "dev" {
		zc := zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

		core = zapcore.NewCore(zapcore.NewConsoleEncoder(zc.EncoderConfig),
			zapcore.AddSync(w),
			zap.DebugLevel,
		)
	} else {
		core = zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(w),
			zap.InfoLevel,
		)
	}

	return zap.New(core, zap.AddCaller())
}
