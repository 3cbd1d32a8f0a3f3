// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
)

const (
	appName = "dagsim"

	// EnvPrefix is prepended to the upper-cased key of every flag read from
	// the environment, e.g. DAGSIM_NUM_NODES.
	EnvPrefix = "dagsim"
)

var envReplacer = strings.NewReplacer("-", "_")

// BuildFlagSet returns the complete set of flags for dagsim
func BuildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)

	fs.String(ConfigFileKey, "", fmt.Sprintf("Specifies a config file. Can also be set with %s", envName(ConfigFileKey)))

	// Simulation
	fs.Int(NumTransactionsKey, 20, "Number of client requests, one per tick")
	fs.Float64(DoubleSpendRatioKey, 0.03, "Probability that a client request is followed by a conflicting one")
	fs.Int(NumNodesKey, 50, "Number of simulated nodes")
	fs.Uint64(SeedKey, 23, "Seed of the random source shared by the whole run")
	fs.Bool(DumpDAGsKey, false, "Write the DAG of the first node in the DOT format after every tick")
	fs.String(DumpDirKey, ".", "Directory the DOT files are written to")
	fs.String(SnapshotDBKey, "", "Path of the leveldb database the DAG of the first node is archived into after every tick. If empty, nothing is archived")
	fs.Bool(ConcurrentRoundsKey, false, "Run the voting rounds of a tick in parallel. Runs are no longer reproducible")

	// Consensus
	fs.Int(SampleSizeKey, 0, fmt.Sprintf("Number of peers queried per voting round. If 0, defaults to 1+%s/10", NumNodesKey))
	fs.Float64(AlphaKey, avalanche.DefaultParameters.Alpha, "Fraction of the sampled peers that must vote for a transaction")
	fs.Int(BetaVirtuousKey, avalanche.DefaultParameters.BetaVirtuous, "Confidence a virtuous transaction must exceed to be accepted")
	fs.Int(BetaRogueKey, avalanche.DefaultParameters.BetaRogue, "Consecutive increments a preferred transaction must exceed to be accepted")
	fs.Int(MaxAncestryDepthKey, avalanche.DefaultParameters.MaxAncestryDepth, "Maximum number of generations of missing ancestors fetched from a peer")
	fs.Duration(QueryTimeoutKey, avalanche.DefaultParameters.QueryTimeout, "Timeout of every query and ancestor fetch")

	// HTTP
	fs.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint16(HTTPPortKey, 0, "Port of the HTTP server. If 0, the server is disabled")
	fs.StringSlice(HTTPAllowedOriginsKey, []string{"*"}, "Origins to allow on the HTTP port")
	fs.Int(HTTPSnapshotCacheSizeKey, 1024, "Number of encoded archived graphs kept in memory")

	// Logging
	fs.String(LogsDirKey, "", "Logging directory. If empty, logs are only displayed")
	fs.String(LogLevelKey, logging.Info.String(), "The log level. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log display level. If left blank, will inherit the value of log-level. Otherwise, should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.Int(LogRotaterMaxSizeKey, 8, "The maximum file size in megabytes of the log file before it gets rotated")
	fs.Int(LogRotaterMaxFilesKey, 7, "The maximum number of old log files to retain. 0 means retain all old log files")
	fs.Int(LogRotaterMaxAgeKey, 0, "The maximum number of days to retain old log files based on the timestamp encoded in their filename. 0 means retain all old log files")
	fs.Bool(LogRotaterCompressEnabledKey, false, "Enables the compression of rotated log files through gzip")
	fs.Bool(AssertionsEnabledKey, true, "Turn on assertion execution")
	fs.Bool(VerboseKey, false, "Display debug logs unless log-display-level is set")

	return fs
}

func envName(key string) string {
	return strings.ToUpper(EnvPrefix + "_" + envReplacer.Replace(key))
}

// BuildViper parses [args] into [fs] and returns the viper environment built
// from the parsed flags, the environment and the config file, if any.
//
// Flags take precedence over the environment, which takes precedence over the
// config file.
func BuildViper(fs *pflag.FlagSet, args []string) (*viper.Viper, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(envReplacer)
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(ConfigFileKey); configFile != "" {
		v.SetConfigFile(os.ExpandEnv(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	return v, nil
}
