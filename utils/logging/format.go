// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
)

var (
	// Discard is a writer that drops everything written to it.
	Discard io.WriteCloser = discard{}

	// Stdout writes to os.Stdout and is never closed by the logger.
	Stdout io.WriteCloser = nopCloser{Writer: os.Stdout}
)

type discard struct{}

func (discard) Write(p []byte) (int, error) {
	return len(p), nil
}

func (discard) Close() error {
	return nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(Level(l).String())
}

func newEncoderConfig() zapcore.EncoderConfig {
	config := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("[01-02|15:04:05.000]"),
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return config
}

// ConsoleEncoder renders entries for a terminal.
func ConsoleEncoder() zapcore.Encoder {
	config := newEncoderConfig()
	config.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(config)
}

// JSONEncoder renders entries as one JSON object per line.
func JSONEncoder() zapcore.Encoder {
	config := newEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(config)
}
