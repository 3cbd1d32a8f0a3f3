// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/ava-labs/dagsim/api/server"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
)

// Config is everything needed to run the simulator.
type Config struct {
	Sim     sim.Config     `json:"sim"`
	Logging logging.Config `json:"logging"`

	// SnapshotDB is the path of the snapshot archive. Empty disables it.
	SnapshotDB string `json:"snapshotDB"`

	HTTPEnabled bool          `json:"httpEnabled"`
	HTTP        server.Config `json:"http"`
}

// GetConfig reads the configuration out of [v] and verifies it.
func GetConfig(v *viper.Viper) (Config, error) {
	simConfig := getSimConfig(v)
	if err := simConfig.Verify(); err != nil {
		return Config{}, err
	}

	loggingConfig, err := getLoggingConfig(v)
	if err != nil {
		return Config{}, err
	}

	port := v.GetUint16(HTTPPortKey)
	return Config{
		Sim:         simConfig,
		Logging:     loggingConfig,
		SnapshotDB:  os.ExpandEnv(v.GetString(SnapshotDBKey)),
		HTTPEnabled: port != 0,
		HTTP: server.Config{
			Host:              v.GetString(HTTPHostKey),
			Port:              port,
			AllowedOrigins:    v.GetStringSlice(HTTPAllowedOriginsKey),
			SnapshotCacheSize: v.GetInt(HTTPSnapshotCacheSizeKey),
		},
	}, nil
}

func getSimConfig(v *viper.Viper) sim.Config {
	numNodes := v.GetInt(NumNodesKey)
	k := v.GetInt(SampleSizeKey)
	if k == 0 {
		k = sim.DefaultSampleSize(numNodes)
	}

	return sim.Config{
		NumTransactions:  v.GetInt(NumTransactionsKey),
		DoubleSpendRatio: v.GetFloat64(DoubleSpendRatioKey),
		NumNodes:         numNodes,
		Seed:             v.GetUint64(SeedKey),
		Params: avalanche.Parameters{
			K:                k,
			Alpha:            v.GetFloat64(AlphaKey),
			BetaVirtuous:     v.GetInt(BetaVirtuousKey),
			BetaRogue:        v.GetInt(BetaRogueKey),
			MaxAncestryDepth: v.GetInt(MaxAncestryDepthKey),
			QueryTimeout:     v.GetDuration(QueryTimeoutKey),
		},
		DumpDAGs:         v.GetBool(DumpDAGsKey),
		DumpDir:          os.ExpandEnv(v.GetString(DumpDirKey)),
		ConcurrentRounds: v.GetBool(ConcurrentRoundsKey),
	}
}

func getLoggingConfig(v *viper.Viper) (logging.Config, error) {
	loggingConfig := logging.DefaultConfig()
	loggingConfig.Directory = os.ExpandEnv(v.GetString(LogsDirKey))
	loggingConfig.MaxSize = v.GetInt(LogRotaterMaxSizeKey)
	loggingConfig.MaxFiles = v.GetInt(LogRotaterMaxFilesKey)
	loggingConfig.MaxAge = v.GetInt(LogRotaterMaxAgeKey)
	loggingConfig.Compress = v.GetBool(LogRotaterCompressEnabledKey)
	loggingConfig.Assertions = v.GetBool(AssertionsEnabledKey)

	var err error
	loggingConfig.LogLevel, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return loggingConfig, fmt.Errorf("invalid %s: %w", LogLevelKey, err)
	}

	displayLevel := v.GetString(LogDisplayLevelKey)
	switch {
	case displayLevel != "":
		loggingConfig.DisplayLevel, err = logging.ToLevel(displayLevel)
		if err != nil {
			return loggingConfig, fmt.Errorf("invalid %s: %w", LogDisplayLevelKey, err)
		}
	case v.GetBool(VerboseKey):
		loggingConfig.DisplayLevel = logging.Debug
	default:
		loggingConfig.DisplayLevel = loggingConfig.LogLevel
	}
	return loggingConfig, nil
}
