// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"cmp"
	"context"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
)

// RunVotingRound queries the network once about every transaction that hasn't
// been queried yet, in arrival order. Transactions that arrive while the
// round is running wait for the next one. Once the round is over, the
// acceptance predicate is evaluated on every known transaction.
//
// If [ctx] is canceled, the transactions that weren't polled yet stay
// unqueried and ctx.Err() is returned. A poll that already started isn't
// interrupted.
func (e *Engine) RunVotingRound(ctx context.Context) error {
	e.pollLock.Lock()
	defer e.pollLock.Unlock()

	e.lock.RLock()
	var unqueried []*avalanche.Tx
	e.store.Iterate(func(state *avalanche.TxState) bool {
		if !e.queried.Contains(state.Tx.ID()) {
			unqueried = append(unqueried, state.Tx)
		}
		return true
	})
	e.lock.RUnlock()

	var canceled error
	for _, tx := range unqueried {
		if canceled = ctx.Err(); canceled != nil {
			break
		}
		if err := e.poll(ctx, tx); err != nil {
			return err
		}
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.updateAccepted(); err != nil {
		return err
	}
	return canceled
}

// poll runs the voting round of [tx].
func (e *Engine) poll(ctx context.Context, tx *avalanche.Tx) error {
	start := time.Now()
	peers, err := e.Sampler.Sample(e.Config.NodeID, e.Params.K)
	if err != nil {
		return err
	}

	var (
		votes    = make([]bool, len(peers))
		eg       errgroup.Group
		queryCtx = context.WithoutCancel(ctx)
	)
	for i, peer := range peers {
		eg.Go(func() error {
			ctx, cancel := context.WithTimeout(queryCtx, e.Params.QueryTimeout)
			defer cancel()

			vote, err := peer.RespondToQuery(ctx, e.Config.NodeID, tx.Clone())
			if err != nil {
				e.Log.Debug("query failed",
					zap.Stringer("txID", tx.ID()),
					zap.Stringer("peer", peer.NodeID()),
					zap.Error(err),
				)
				return nil
			}
			votes[i] = vote
			return nil
		})
	}
	_ = eg.Wait()

	var p int
	for _, vote := range votes {
		if vote {
			p++
		}
	}
	successful := e.Params.QuorumReached(p)

	e.lock.Lock()
	defer e.lock.Unlock()

	state, ok := e.store.Get(tx.ID())
	if !ok {
		return e.inconsistent("polled transaction %s isn't stored", tx.ID())
	}
	if successful {
		state.Chit = 1
		if err := e.recordSuccess(state); err != nil {
			return err
		}
		e.pollsSuccessful.Inc()
	} else {
		state.Chit = 0
		e.pollsFailed.Inc()
	}
	e.queried.Add(tx.ID())
	e.pollDuration.Observe(time.Since(start).Seconds())

	e.Log.Debug("finished voting round",
		zap.Stringer("tx", state),
		zap.Int("votes", p),
		zap.Int("k", e.Params.K),
		zap.Bool("successful", successful),
	)
	return nil
}

// recordSuccess increments the confidence of every ancestor of [state], in
// arrival order, and updates their conflict sets.
//
// Assumes the lock is held.
func (e *Engine) recordSuccess(state *avalanche.TxState) error {
	ancestors := make([]*avalanche.TxState, 0)
	for ancestorID := range e.ancestry.Ancestry(e.store, state.Tx) {
		ancestor, ok := e.store.Get(ancestorID)
		if !ok {
			return e.inconsistent("ancestor %s of %s isn't stored", ancestorID, state.Tx.ID())
		}
		ancestors = append(ancestors, ancestor)
	}
	slices.SortFunc(ancestors, func(a, b *avalanche.TxState) int {
		return cmp.Compare(a.Index(), b.Index())
	})

	for _, ancestor := range ancestors {
		ancestor.Confidence++

		cs, err := e.conflictSet(ancestor.Tx)
		if err != nil {
			return err
		}
		preferred, ok := e.store.Get(cs.Preferred)
		if !ok {
			return e.inconsistent("preferred %s of conflict set %d isn't stored", cs.Preferred, ancestor.Tx.ConflictKey())
		}
		cs.RecordConfidence(ancestor.Tx.ID(), ancestor.Confidence, preferred.Confidence)
	}
	return nil
}
