// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/logging"
	"github.com/ava-labs/dagsim/utils/sampler"
)

// Peer is a remote engine that can be asked for its preference on a
// transaction.
type Peer interface {
	NodeID() ids.NodeID

	// RespondToQuery ingests [tx] on behalf of [sender] and returns true if
	// the peer considers it strongly preferred.
	RespondToQuery(ctx context.Context, sender ids.NodeID, tx *avalanche.Tx) (bool, error)
}

// PeerSampler draws the peers of a voting round.
type PeerSampler interface {
	// Sample returns [k] distinct peers, none of which is [exclude], chosen
	// uniformly at random without replacement.
	Sample(exclude ids.NodeID, k int) ([]Peer, error)
}

// AncestorFetcher pulls a transaction a peer claimed to know.
type AncestorFetcher interface {
	Fetch(ctx context.Context, peer ids.NodeID, txID ids.ID) (*avalanche.Tx, error)
}

// Config wires an engine to its environment.
type Config struct {
	NodeID  ids.NodeID
	Log     logging.Logger
	Params  avalanche.Parameters
	Sampler PeerSampler
	Fetcher AncestorFetcher

	// RNG is shared by every engine of a simulation. It drives the shuffle of
	// the parent selection fallback.
	RNG *sampler.RNG

	Registerer prometheus.Registerer
	Namespace  string
}
