// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
	"github.com/ava-labs/dagsim/utils/sampler"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

var (
	_ Network = (*network)(nil)

	ErrUnknownPeer = errors.New("unknown peer")
	ErrTxNotFound  = errors.New("transaction not found")

	errDuplicatePeer  = errors.New("duplicate peer")
	errNotEnoughPeers = errors.New("not enough peers")
)

// Network connects the engines of a simulation in memory. Every transaction
// crossing the network is copied, so engines never share annotations.
type Network interface {
	engine.PeerSampler
	engine.AncestorFetcher

	// Track adds [e] to the network. Engines can't be removed.
	Track(e *engine.Engine) error

	// NodeIDs returns the tracked nodes in the order they were tracked.
	NodeIDs() []ids.NodeID
	// Engine returns the engine of [nodeID].
	Engine(nodeID ids.NodeID) (*engine.Engine, bool)
	// Engines returns the tracked engines in the order they were tracked.
	Engines() []*engine.Engine
}

type network struct {
	log     logging.Logger
	metrics *metrics

	lock    sync.RWMutex
	peers   []*peer
	byID    map[ids.NodeID]*peer
	uniform sampler.Uniform
}

// NewNetwork returns an empty network. [rng] drives the peer sampling.
func NewNetwork(
	log logging.Logger,
	rng *sampler.RNG,
	registerer prometheus.Registerer,
) (Network, error) {
	metrics, err := newMetrics("network", registerer)
	if err != nil {
		return nil, err
	}
	return &network{
		log:     log,
		metrics: metrics,
		byID:    make(map[ids.NodeID]*peer),
		uniform: sampler.NewUniform(rng),
	}, nil
}

func (n *network) Track(e *engine.Engine) error {
	n.lock.Lock()
	defer n.lock.Unlock()

	nodeID := e.NodeID()
	if _, ok := n.byID[nodeID]; ok {
		return fmt.Errorf("%w: %s", errDuplicatePeer, nodeID)
	}
	p := &peer{
		engine:  e,
		metrics: n.metrics,
	}
	n.peers = append(n.peers, p)
	n.byID[nodeID] = p

	n.log.Verbo("tracking peer",
		zap.Stringer("nodeID", nodeID),
	)
	return nil
}

func (n *network) Sample(exclude ids.NodeID, k int) ([]engine.Peer, error) {
	// The sampler isn't thread safe.
	n.lock.Lock()
	defer n.lock.Unlock()

	candidates := make([]*peer, 0, len(n.peers))
	for _, p := range n.peers {
		if p.NodeID() != exclude {
			candidates = append(candidates, p)
		}
	}

	n.uniform.Initialize(uint64(len(candidates)))
	indices, err := n.uniform.Sample(k)
	if err != nil {
		return nil, fmt.Errorf("%w: sampling %d out of %d: %w", errNotEnoughPeers, k, len(candidates), err)
	}

	peers := make([]engine.Peer, len(indices))
	for i, index := range indices {
		peers[i] = candidates[index]
	}
	return peers, nil
}

func (n *network) Fetch(ctx context.Context, nodeID ids.NodeID, txID ids.ID) (*avalanche.Tx, error) {
	n.metrics.fetch.numSent.Inc()
	tx, err := n.fetch(ctx, nodeID, txID)
	if err != nil {
		n.metrics.fetch.numFailed.Inc()
		return nil, err
	}
	return tx, nil
}

func (n *network) fetch(ctx context.Context, nodeID ids.NodeID, txID ids.ID) (*avalanche.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n.lock.RLock()
	p, ok := n.byID[nodeID]
	n.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPeer, nodeID)
	}

	// GetTx already returns a copy.
	tx, ok := p.engine.GetTx(txID)
	if !ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrTxNotFound, txID, nodeID)
	}
	return tx, nil
}

func (n *network) NodeIDs() []ids.NodeID {
	n.lock.RLock()
	defer n.lock.RUnlock()

	nodeIDs := make([]ids.NodeID, len(n.peers))
	for i, p := range n.peers {
		nodeIDs[i] = p.NodeID()
	}
	return nodeIDs
}

func (n *network) Engine(nodeID ids.NodeID) (*engine.Engine, bool) {
	n.lock.RLock()
	defer n.lock.RUnlock()

	p, ok := n.byID[nodeID]
	if !ok {
		return nil, false
	}
	return p.engine, true
}

func (n *network) Engines() []*engine.Engine {
	n.lock.RLock()
	defer n.lock.RUnlock()

	engines := make([]*engine.Engine, len(n.peers))
	for i, p := range n.peers {
		engines[i] = p.engine
	}
	return engines
}
