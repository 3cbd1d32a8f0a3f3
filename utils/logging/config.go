// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logging

// RotatingWriterConfig configures the rotating file writer of every logger
// built by a Factory.
type RotatingWriterConfig struct {
	// Directory to write log files into. If empty, nothing is written to disk.
	Directory string `json:"directory"`
	// Maximum size in megabytes of a log file before it gets rotated.
	MaxSize int `json:"maxSize"`
	// Maximum number of old log files to retain.
	MaxFiles int `json:"maxFiles"`
	// Maximum number of days to retain old log files.
	MaxAge int `json:"maxAge"`
	// Compress rotated log files with gzip.
	Compress bool `json:"compress"`
}

// Config defines the configuration of a logger
type Config struct {
	RotatingWriterConfig
	DisableWriterDisplaying bool  `json:"disableWriterDisplaying"`
	LogLevel                Level `json:"logLevel"`
	DisplayLevel            Level `json:"displayLevel"`
	Assertions              bool  `json:"assertions"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		RotatingWriterConfig: RotatingWriterConfig{
			MaxSize:  8, // MB
			MaxFiles: 7,
			MaxAge:   0,
		},
		LogLevel:     Info,
		DisplayLevel: Info,
		Assertions:   true,
	}
}
