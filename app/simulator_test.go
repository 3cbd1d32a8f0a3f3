// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package app

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ava-labs/dagsim/config"
	"github.com/ava-labs/dagsim/database/leveldb"
	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/sim"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// lumberjack compacts rotated files in a goroutine that is never
		// stopped.
		goleak.IgnoreAnyFunction("gopkg.in/natefinch/lumberjack%2ev2.(*Logger).millRun"),
	)
}

func testConfig(t *testing.T) config.Config {
	loggingConfig := logging.DefaultConfig()
	loggingConfig.DisableWriterDisplaying = true
	return config.Config{
		Sim: sim.Config{
			NumTransactions: 10,
			NumNodes:        4,
			Seed:            23,
			Params: avalanche.Parameters{
				K:                2,
				Alpha:            0.8,
				BetaVirtuous:     1,
				BetaRogue:        1,
				MaxAncestryDepth: 64,
				QueryTimeout:     time.Second,
			},
			DumpDir: t.TempDir(),
		},
		Logging: loggingConfig,
	}
}

func TestSimulatorRun(t *testing.T) {
	require := require.New(t)

	config := testConfig(t)
	config.Sim.DumpDAGs = true
	config.SnapshotDB = filepath.Join(t.TempDir(), "snapshots")
	config.Logging.Directory = t.TempDir()

	a := New(config)
	require.NoError(a.Start())
	exitCode, err := a.ExitCode()
	require.NoError(err)
	require.Zero(exitCode)

	for tick := 0; tick < config.Sim.NumTransactions; tick++ {
		require.FileExists(filepath.Join(config.Sim.DumpDir, fmt.Sprintf("node-0-%03d.dot", tick)))
	}
	require.FileExists(filepath.Join(config.Logging.Directory, "sim.log"))

	// The archive outlives the run.
	db, err := leveldb.New(config.SnapshotDB, logging.NoLog{})
	require.NoError(err)
	archive := sim.NewArchive(db)
	lastTick, err := archive.LastTick()
	require.NoError(err)
	require.Equal(uint64(config.Sim.NumTransactions-1), lastTick)
	_, err = archive.Get(lastTick, ids.BuildNodeID(0))
	require.NoError(err)
	require.NoError(db.Close())
}

func TestSimulatorStop(t *testing.T) {
	require := require.New(t)

	config := testConfig(t)
	config.Sim.NumTransactions = 1_000_000

	a := New(config)
	require.NoError(a.Start())
	require.NoError(a.Stop())

	exitCode, err := a.ExitCode()
	require.NoError(err)
	require.Zero(exitCode)
}

func TestSimulatorInvalidConfig(t *testing.T) {
	config := testConfig(t)
	config.Sim.NumNodes = 1

	a := New(config)
	err := a.Start()
	require.ErrorIs(t, err, sim.ErrTooFewNodes)
}

func TestSimulatorUnwritableDumpDir(t *testing.T) {
	require := require.New(t)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(os.WriteFile(file, nil, 0o600))

	config := testConfig(t)
	config.Sim.DumpDAGs = true
	config.Sim.DumpDir = filepath.Join(file, "dags")

	a := New(config)
	require.ErrorIs(a.Start(), syscall.ENOTDIR)
}
