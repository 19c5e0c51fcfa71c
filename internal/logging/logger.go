// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ LoggerInterface = (*Logger)(nil)

// Logger is the application logger, a sugared zap logger with a dedicated
// channel for security events.
type Logger struct {
	*zap.SugaredLogger

	security *SecurityLogger
}

func (l *Logger) Security() SecurityLoggerInterface {
	return l.security
}

// NewLogger creates a new default logger
// it will need to be closed with
// ```
// defer logger.Desugar().Sync()
// ```
// to make sure all has been piped out before terminating
func NewLogger(l string) *Logger {
	var lvl zapcore.Level

	switch strings.ToLower(l) {
	case "debug":
		lvl = zap.DebugLevel
	case "info":
		lvl = zap.InfoLevel
	case "warning", "warn":
		lvl = zap.WarnLevel
	case "error":
		lvl = zap.ErrorLevel
	default:
		lvl = zap.ErrorLevel
	}

	c := zap.NewProductionConfig()
	c.Level = zap.NewAtomicLevelAt(lvl)
	c.EncoderConfig.TimeKey = "@timestamp"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}

	// security events are always logged, regardless of the configured level
	sc := zap.NewProductionConfig()
	sc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	sc.EncoderConfig.TimeKey = "@timestamp"
	sc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	security, err := sc.Build()
	if err != nil {
		panic(err)
	}

	return NewLoggerFromZap(logger, security)
}

// NewLoggerFromZap builds a Logger on top of existing zap loggers, one for
// application output and one for security events.
func NewLoggerFromZap(logger, security *zap.Logger) *Logger {
	return &Logger{
		SugaredLogger: logger.Sugar(),
		security:      &SecurityLogger{l: security.With(zap.String("type", "security"))},
	}
}
