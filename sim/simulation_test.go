// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/database/memdb"
	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
)

var testParams = avalanche.Parameters{
	K:                3,
	Alpha:            0.8,
	BetaVirtuous:     1,
	BetaRogue:        2,
	MaxAncestryDepth: 64,
	QueryTimeout:     time.Second,
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() Config {
	return Config{
		NumTransactions: 20,
		NumNodes:        5,
		Seed:            23,
		Params:          testParams,
	}
}

func newTestSimulation(t *testing.T, config Config, withArchive bool) *Simulation {
	t.Helper()

	logFactory := logging.NewFactory(logging.Config{
		DisableWriterDisplaying: true,
	})
	t.Cleanup(logFactory.Close)

	var db database.Database
	if withArchive {
		db = memdb.New()
	}
	s, err := New(config, logging.NoLog{}, logFactory, prometheus.NewRegistry(), db)
	require.NoError(t, err)
	return s
}

func TestConfigVerify(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectedErr error
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name: "single node",
			mutate: func(c *Config) {
				c.NumNodes = 1
			},
			expectedErr: ErrTooFewNodes,
		},
		{
			name: "negative transactions",
			mutate: func(c *Config) {
				c.NumTransactions = -1
			},
			expectedErr: ErrNegativeTxs,
		},
		{
			name: "ratio too large",
			mutate: func(c *Config) {
				c.DoubleSpendRatio = 1.5
			},
			expectedErr: ErrInvalidDoubleSpend,
		},
		{
			name: "sample larger than the peers",
			mutate: func(c *Config) {
				c.Params.K = 5
			},
			expectedErr: ErrSampleTooLarge,
		},
		{
			name: "invalid parameters",
			mutate: func(c *Config) {
				c.Params.Alpha = 0
			},
			expectedErr: avalanche.ErrParametersInvalid,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := testConfig()
			test.mutate(&config)
			require.ErrorIs(t, config.Verify(), test.expectedErr)
		})
	}
}

func TestDefaultSampleSize(t *testing.T) {
	require := require.New(t)

	require.Equal(1, DefaultSampleSize(5))
	require.Equal(2, DefaultSampleSize(10))
	require.Equal(11, DefaultSampleSize(100))
}

func TestNewRegistersEveryNode(t *testing.T) {
	require := require.New(t)

	s := newTestSimulation(t, testConfig(), false)
	nodeIDs := s.Network().NodeIDs()
	require.Len(nodeIDs, 5)
	for i, nodeID := range nodeIDs {
		require.Equal(ids.BuildNodeID(uint64(i)), nodeID)
	}
}

func TestRun(t *testing.T) {
	require := require.New(t)

	config := testConfig()
	s := newTestSimulation(t, config, true)
	require.NoError(s.Run(context.Background()))

	statuses, err := s.Nodes()
	require.NoError(err)
	require.Len(statuses, config.NumNodes)
	for _, status := range statuses {
		// Genesis is always accepted.
		require.Positive(status.Accepted)
		require.LessOrEqual(status.Accepted, status.Known)
		require.InDelta(float64(status.Accepted)/float64(status.Known), status.FractionAccepted, 1e-9)
	}

	report, err := s.Audit()
	require.NoError(err)
	require.True(report.Safe())
	require.Empty(report.ContestedKeys)
	require.Equal(statuses, report.Nodes)

	lastTick, err := s.archive.LastTick()
	require.NoError(err)
	require.Equal(uint64(config.NumTransactions-1), lastTick)

	numSnapshots, err := s.archive.NumSnapshots(lastTick)
	require.NoError(err)
	require.Equal(1, numSnapshots)

	nodeID := s.Network().NodeIDs()[0]
	archived, err := s.Snapshot(lastTick, nodeID)
	require.NoError(err)
	current, err := s.Graph(nodeID)
	require.NoError(err)
	require.Equal(current.NodeID, archived.NodeID)
	require.Len(archived.Vertices, len(current.Vertices))
	for i, vertex := range current.Vertices {
		require.Equal(vertex.ID, archived.Vertices[i].ID)
		require.Equal(vertex.Confidence, archived.Vertices[i].Confidence)
		require.Equal(vertex.Accepted, archived.Vertices[i].Accepted)
	}

	_, err = s.Snapshot(lastTick, s.Network().NodeIDs()[1])
	require.ErrorIs(err, ErrNoSnapshot)
}

func TestRunDeterministic(t *testing.T) {
	require := require.New(t)

	config := testConfig()
	config.DoubleSpendRatio = 0.3

	first := newTestSimulation(t, config, false)
	require.NoError(first.Run(context.Background()))
	second := newTestSimulation(t, config, false)
	require.NoError(second.Run(context.Background()))

	for _, nodeID := range first.Network().NodeIDs() {
		expected, err := first.Graph(nodeID)
		require.NoError(err)
		actual, err := second.Graph(nodeID)
		require.NoError(err)
		require.Equal(expected, actual)
	}
	require.Equal(first.skipped.Load(), second.skipped.Load())
}

func TestRunDoubleSpends(t *testing.T) {
	require := require.New(t)

	// Every node queries every other node, so both spends reach everyone.
	config := testConfig()
	config.NumNodes = 4
	config.NumTransactions = 30
	config.DoubleSpendRatio = 1
	s := newTestSimulation(t, config, false)
	require.NoError(s.Run(context.Background()))

	report, err := s.Audit()
	require.NoError(err)
	require.Len(report.Nodes, 4)
	require.NotEmpty(report.ContestedKeys)
	require.Equal(int(s.skipped.Load()), report.SkippedTxs)
}

func TestRunConcurrentRounds(t *testing.T) {
	require := require.New(t)

	config := testConfig()
	config.ConcurrentRounds = true
	s := newTestSimulation(t, config, false)
	require.NoError(s.Run(context.Background()))

	statuses, err := s.Nodes()
	require.NoError(err)
	require.Len(statuses, config.NumNodes)
}

func TestRunDumpsDAGs(t *testing.T) {
	require := require.New(t)

	config := testConfig()
	config.NumTransactions = 3
	config.DumpDAGs = true
	config.DumpDir = t.TempDir()
	s := newTestSimulation(t, config, false)
	require.NoError(s.Run(context.Background()))

	for tick := 0; tick < config.NumTransactions; tick++ {
		bytes, err := os.ReadFile(filepath.Join(config.DumpDir, fmt.Sprintf("node-0-%03d.dot", tick)))
		require.NoError(err)
		require.Contains(string(bytes), "digraph")
	}
}

func TestRunCanceled(t *testing.T) {
	require := require.New(t)

	s := newTestSimulation(t, testConfig(), false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(s.Run(ctx), context.Canceled)
}

func TestLookupErrors(t *testing.T) {
	require := require.New(t)

	s := newTestSimulation(t, testConfig(), false)
	_, err := s.Snapshot(0, ids.BuildNodeID(0))
	require.ErrorIs(err, ErrNoArchive)

	_, err = s.Graph(ids.BuildNodeID(100))
	require.ErrorIs(err, ErrUnknownNode)
}
