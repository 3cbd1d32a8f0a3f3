// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/sampler"
)

var (
	errNotEnoughPeers = errors.New("not enough peers")
	errUnknownPeer    = errors.New("unknown peer")
	errQueryFailed    = errors.New("query failed")

	testParams = avalanche.Parameters{
		K:                3,
		Alpha:            0.8,
		BetaVirtuous:     1,
		BetaRogue:        1,
		MaxAncestryDepth: 16,
		QueryTimeout:     time.Second,
	}
)

// testNetwork connects engines in memory. Sample always returns the first k
// engines other than the excluded one.
type testNetwork struct {
	engines []*Engine
}

func (n *testNetwork) Sample(exclude ids.NodeID, k int) ([]Peer, error) {
	peers := make([]Peer, 0, k)
	for _, e := range n.engines {
		if len(peers) == k {
			break
		}
		if e.NodeID() != exclude {
			peers = append(peers, e)
		}
	}
	if len(peers) < k {
		return nil, errNotEnoughPeers
	}
	return peers, nil
}

func (n *testNetwork) Fetch(_ context.Context, peer ids.NodeID, txID ids.ID) (*avalanche.Tx, error) {
	for _, e := range n.engines {
		if e.NodeID() != peer {
			continue
		}
		tx, ok := e.GetTx(txID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTx, txID)
		}
		return tx, nil
	}
	return nil, errUnknownPeer
}

func newTestNetwork(t *testing.T, numNodes int, params avalanche.Parameters) *testNetwork {
	require := require.New(t)

	var (
		network = &testNetwork{}
		rng     = sampler.NewRNG(23)
	)
	for i := 0; i < numNodes; i++ {
		e, err := New(Config{
			NodeID:  ids.BuildNodeID(uint64(i)),
			Params:  params,
			Sampler: network,
			Fetcher: network,
			RNG:     rng,
		})
		require.NoError(err)
		network.engines = append(network.engines, e)
	}
	return network
}

func newTestEngine(t *testing.T) *Engine {
	return newTestNetwork(t, 1, testParams).engines[0]
}

// issue admits a transaction built from [parents] without going through the
// parent selection.
func issue(t *testing.T, e *Engine, conflictKey int, parents ...ids.ID) *avalanche.Tx {
	tx := avalanche.NewTx(ids.GenerateTestID(), conflictKey, parents)
	require.NoError(t, e.Ingest(context.Background(), e.NodeID(), tx))
	return tx
}

func txState(t *testing.T, e *Engine, txID ids.ID) *avalanche.TxState {
	e.lock.RLock()
	defer e.lock.RUnlock()

	state, ok := e.store.Get(txID)
	require.True(t, ok)
	return state
}

func conflictSet(t *testing.T, e *Engine, conflictKey int) *avalanche.ConflictSet {
	e.lock.RLock()
	defer e.lock.RUnlock()

	cs, ok := e.conflicts.Get(conflictKey)
	require.True(t, ok)
	return cs
}

func markQueried(e *Engine, txIDs ...ids.ID) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.queried.Add(txIDs...)
}

type samplerFunc func(exclude ids.NodeID, k int) ([]Peer, error)

func (f samplerFunc) Sample(exclude ids.NodeID, k int) ([]Peer, error) {
	return f(exclude, k)
}

type fetcherFunc func(ctx context.Context, peer ids.NodeID, txID ids.ID) (*avalanche.Tx, error)

func (f fetcherFunc) Fetch(ctx context.Context, peer ids.NodeID, txID ids.ID) (*avalanche.Tx, error) {
	return f(ctx, peer, txID)
}

// testPeer answers queries with a fixed vote, or blocks until the query
// times out.
type testPeer struct {
	nodeID ids.NodeID
	vote   bool
	err    error
	block  bool
}

func (p *testPeer) NodeID() ids.NodeID {
	return p.nodeID
}

func (p *testPeer) RespondToQuery(ctx context.Context, _ ids.NodeID, _ *avalanche.Tx) (bool, error) {
	if p.block {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return p.vote, p.err
}
