// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	ConfigFileKey = "config-file"

	// Simulation
	NumTransactionsKey  = "num-transactions"
	DoubleSpendRatioKey = "double-spend-ratio"
	NumNodesKey         = "num-nodes"
	SeedKey             = "seed"
	DumpDAGsKey         = "dump-dags"
	DumpDirKey          = "dump-dir"
	SnapshotDBKey       = "snapshot-db"
	ConcurrentRoundsKey = "concurrent-rounds"

	// Consensus
	SampleSizeKey       = "sample-size"
	AlphaKey            = "alpha"
	BetaVirtuousKey     = "beta1"
	BetaRogueKey        = "beta2"
	MaxAncestryDepthKey = "max-ancestry-depth"
	QueryTimeoutKey     = "query-timeout"

	// HTTP
	HTTPHostKey              = "http-host"
	HTTPPortKey              = "http-port"
	HTTPAllowedOriginsKey    = "http-allowed-origins"
	HTTPSnapshotCacheSizeKey = "http-snapshot-cache-size"

	// Logging
	LogsDirKey                   = "log-dir"
	LogLevelKey                  = "log-level"
	LogDisplayLevelKey           = "log-display-level"
	LogRotaterMaxSizeKey         = "log-rotater-max-size"
	LogRotaterMaxFilesKey        = "log-rotater-max-files"
	LogRotaterMaxAgeKey          = "log-rotater-max-age"
	LogRotaterCompressEnabledKey = "log-rotater-compress-enabled"
	AssertionsEnabledKey         = "assertions-enabled"
	VerboseKey                   = "verbose"
)
