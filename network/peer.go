// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"context"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

var _ engine.Peer = (*peer)(nil)

type queryResult struct {
	vote bool
	err  error
}

// peer delivers queries to a tracked engine.
type peer struct {
	engine  *engine.Engine
	metrics *metrics
}

func (p *peer) NodeID() ids.NodeID {
	return p.engine.NodeID()
}

// RespondToQuery hands a copy of [tx] to the engine. If [ctx] expires before
// the engine answers, the query fails and the answer is discarded.
func (p *peer) RespondToQuery(ctx context.Context, sender ids.NodeID, tx *avalanche.Tx) (bool, error) {
	p.metrics.query.numSent.Inc()

	tx = tx.Clone()
	results := make(chan queryResult, 1)
	go func() {
		vote, err := p.engine.RespondToQuery(ctx, sender, tx)
		results <- queryResult{
			vote: vote,
			err:  err,
		}
	}()

	select {
	case result := <-results:
		if result.err != nil {
			p.metrics.query.numFailed.Inc()
		}
		return result.vote, result.err
	case <-ctx.Done():
		p.metrics.query.numFailed.Inc()
		return false, ctx.Err()
	}
}
