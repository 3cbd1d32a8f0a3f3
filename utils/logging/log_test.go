// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type bufferCloser struct {
	bytes.Buffer
}

func (*bufferCloser) Close() error {
	return nil
}

func TestLog(t *testing.T) {
	log := NewLogger(false, "", NewWrappedCore(Info, Discard, ConsoleEncoder()))

	recovered := new(bool)
	panicFunc := func() {
		panic("DON'T PANIC!")
	}
	exitFunc := func() {
		*recovered = true
	}
	log.RecoverAndExit(panicFunc, exitFunc)

	require.True(t, *recovered)
}

func TestLogLevelFiltering(t *testing.T) {
	require := require.New(t)

	buf := &bufferCloser{}
	log := NewLogger(false, "test", NewWrappedCore(Trace, buf, JSONEncoder()))

	log.Debug("hidden")
	require.Zero(buf.Len())

	log.Trace("shown", zap.Int("tick", 3))
	require.Contains(buf.String(), `"level":"TRACE"`)
	require.Contains(buf.String(), `"tick":3`)
	require.True(log.Enabled(Info))
	require.False(log.Enabled(Debug))

	log.SetLevel(Error)
	buf.Reset()
	log.Info("hidden")
	require.Zero(buf.Len())

	log.Fatal("shown")
	require.Contains(buf.String(), `"level":"FATAL"`)
}

func TestAssertions(t *testing.T) {
	require := require.New(t)

	errTest := errors.New("non-nil error")

	lenient := NewLogger(false, "", NewWrappedCore(Info, Discard, ConsoleEncoder()))
	require.NotPanics(func() { lenient.AssertNoError(errTest) })
	require.NotPanics(func() { lenient.AssertTrue(false, "broken") })

	strict := NewLogger(true, "", NewWrappedCore(Info, Discard, ConsoleEncoder()))
	require.NotPanics(func() { strict.AssertNoError(nil) })
	require.NotPanics(func() { strict.AssertTrue(true, "fine") })
	require.PanicsWithError(errTest.Error(), func() { strict.AssertNoError(errTest) })
	require.PanicsWithValue("broken", func() { strict.AssertTrue(false, "broken") })
}

func TestFactory(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	config := DefaultConfig()
	config.Directory = dir
	config.DisableWriterDisplaying = true
	config.LogLevel = Debug

	factory := NewFactory(config)
	defer factory.Close()

	red, err := factory.Make("red")
	require.NoError(err)
	_, err = factory.Make("red")
	require.Error(err)

	_, err = factory.Make("blue")
	require.NoError(err)
	require.Equal([]string{"blue", "red"}, factory.GetLoggerNames())

	red.Debug("written")
	require.NoError(factory.SetLogLevel("red", Error))
	red.Debug("dropped")
	require.Error(factory.SetLogLevel("green", Error))
	require.NoError(factory.SetDisplayLevel("red", Off))

	contents, err := os.ReadFile(filepath.Join(dir, "red.log"))
	require.NoError(err)
	require.Contains(string(contents), "written")
	require.NotContains(string(contents), "dropped")
}

func TestLevelEncoder(t *testing.T) {
	require := require.New(t)

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(enc.AddArray("levels", zapcore.ArrayMarshalerFunc(func(arr zapcore.ArrayEncoder) error {
		levelEncoder(zapcore.Level(Verbo), arr)
		levelEncoder(zapcore.Level(Fatal), arr)
		return nil
	})))
	require.Equal([]interface{}{"VERBO", "FATAL"}, enc.Fields["levels"])
}
