// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

import (
	"fmt"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var _ Factory = (*factory)(nil)

// Factory creates new instances of different types of Logger
type Factory interface {
	// Make creates a new logger with name [name]
	Make(name string) (Logger, error)

	// SetLogLevel sets log levels for all loggers in factory with given logger name, level pairs.
	SetLogLevel(name string, level Level) error

	// SetDisplayLevel sets log display levels for all loggers in factory with given logger name, level pairs.
	SetDisplayLevel(name string, level Level) error

	// GetLoggerNames returns the names of all logs created by this factory
	GetLoggerNames() []string

	// Close stops and clears all of a Factory's instantiated loggers
	Close()
}

type logWrapper struct {
	logger       Logger
	displayLevel *zap.AtomicLevel
	logLevel     *zap.AtomicLevel
}

type factory struct {
	config Config
	lock   sync.RWMutex

	// For each logger created by this factory:
	// Logger name --> the logger.
	loggers map[string]logWrapper
}

// NewFactory returns a new instance of a Factory producing loggers configured with
// the values set in the [config] parameter
func NewFactory(config Config) Factory {
	return &factory{
		config:  config,
		loggers: make(map[string]logWrapper),
	}
}

// Assumes [f.lock] is held
func (f *factory) makeLogger(config Config, name string) (Logger, error) {
	if _, ok := f.loggers[name]; ok {
		return nil, fmt.Errorf("logger with name %q already exists", name)
	}

	var (
		cores        []WrappedCore
		displayIndex = -1
		fileIndex    = -1
	)
	if !config.DisableWriterDisplaying {
		displayIndex = len(cores)
		cores = append(cores, NewWrappedCore(config.DisplayLevel, Stdout, ConsoleEncoder()))
	}
	if config.Directory != "" {
		writer := &lumberjack.Logger{
			Filename:   filepath.Join(config.Directory, name+".log"),
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxFiles,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		}
		fileIndex = len(cores)
		cores = append(cores, NewWrappedCore(config.LogLevel, writer, JSONEncoder()))
	}
	if len(cores) == 0 {
		cores = append(cores, NewWrappedCore(Off, Discard, ConsoleEncoder()))
	}

	wrapper := logWrapper{
		logger: NewLogger(config.Assertions, name, cores...),
	}
	if displayIndex >= 0 {
		wrapper.displayLevel = &cores[displayIndex].AtomicLevel
	}
	if fileIndex >= 0 {
		wrapper.logLevel = &cores[fileIndex].AtomicLevel
	}
	f.loggers[name] = wrapper
	return wrapper.logger, nil
}

// Make implements the Factory interface
func (f *factory) Make(name string) (Logger, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.makeLogger(f.config, name)
}

// SetLogLevel implements the Factory interface
func (f *factory) SetLogLevel(name string, level Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	logger, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	if logger.logLevel != nil {
		logger.logLevel.SetLevel(zapcore.Level(level))
	}
	return nil
}

// SetDisplayLevel implements the Factory interface
func (f *factory) SetDisplayLevel(name string, level Level) error {
	f.lock.RLock()
	defer f.lock.RUnlock()

	logger, ok := f.loggers[name]
	if !ok {
		return fmt.Errorf("logger with name %q not found", name)
	}
	if logger.displayLevel != nil {
		logger.displayLevel.SetLevel(zapcore.Level(level))
	}
	return nil
}

// GetLoggerNames implements the Factory interface
func (f *factory) GetLoggerNames() []string {
	f.lock.RLock()
	defer f.lock.RUnlock()

	names := make([]string, 0, len(f.loggers))
	for name := range f.loggers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Close implements the Factory interface
func (f *factory) Close() {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, lw := range f.loggers {
		lw.logger.Stop()
	}
	f.loggers = make(map[string]logWrapper)
}
