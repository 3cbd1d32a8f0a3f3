// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"errors"
	"fmt"

	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
)

var (
	ErrTooFewNodes        = errors.New("too few nodes")
	ErrNegativeTxs        = errors.New("negative number of transactions")
	ErrInvalidDoubleSpend = errors.New("invalid double spend ratio")
	ErrSampleTooLarge     = errors.New("sample size exceeds the number of peers")
)

// Config describes a simulation run.
type Config struct {
	// NumTransactions is the number of client requests, one per tick.
	NumTransactions int `json:"numTransactions"`
	// DoubleSpendRatio is the probability that a client request is followed
	// by a conflicting request on a random node.
	DoubleSpendRatio float64 `json:"doubleSpendRatio"`
	NumNodes         int     `json:"numNodes"`
	Seed             uint64  `json:"seed"`

	Params avalanche.Parameters `json:"params"`

	// DumpDAGs writes the DAG of the first node in the DOT format to DumpDir
	// after every tick.
	DumpDAGs bool   `json:"dumpDAGs"`
	DumpDir  string `json:"dumpDir"`

	// ConcurrentRounds runs the voting rounds of a tick in parallel. Runs are
	// no longer reproducible when set.
	ConcurrentRounds bool `json:"concurrentRounds"`
}

// DefaultSampleSize is the number of peers queried per voting round when it
// isn't configured: one tenth of the network plus one.
func DefaultSampleSize(numNodes int) int {
	return 1 + numNodes/10
}

func (c Config) Verify() error {
	switch {
	case c.NumNodes < 2:
		return fmt.Errorf("%w: %d", ErrTooFewNodes, c.NumNodes)
	case c.NumTransactions < 0:
		return fmt.Errorf("%w: %d", ErrNegativeTxs, c.NumTransactions)
	case c.DoubleSpendRatio < 0 || c.DoubleSpendRatio > 1:
		return fmt.Errorf("%w: %f", ErrInvalidDoubleSpend, c.DoubleSpendRatio)
	case c.Params.K > c.NumNodes-1:
		return fmt.Errorf("%w: k = %d with %d nodes", ErrSampleTooLarge, c.Params.K, c.NumNodes)
	default:
		return c.Params.Verify()
	}
}
