package main

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a console logger writing to w. Warnings are shown by
// default, debug output with verbose, and only errors with quiet.
func newLogger(w io.Writer, common commonFlags) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case common.verbose:
		level = zapcore.DebugLevel
	case common.quiet:
		level = zapcore.ErrorLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
