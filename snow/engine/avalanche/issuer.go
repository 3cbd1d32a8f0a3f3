// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
)

const (
	unvisited = iota
	visiting
	visited
)

// Ingest admits [tx], and every ancestor of [tx] this node is missing, into
// the local DAG. Missing ancestors are pulled from [sender]. Either the whole
// ancestry is admitted or nothing is. Ingesting a known transaction is a no-op.
func (e *Engine) Ingest(ctx context.Context, sender ids.NodeID, tx *avalanche.Tx) error {
	if e.has(tx.ID()) {
		return nil
	}

	batch, err := e.resolve(ctx, sender, tx)
	if err != nil {
		// Only failures of the sender count against it, not our own depth
		// bound or cancellation.
		if errors.Is(err, avalanche.ErrAncestorUnavailable) && ctx.Err() == nil {
			e.unreliablePeers.Inc()
		}
		e.Log.Debug("dropping transaction",
			zap.Stringer("txID", tx.ID()),
			zap.Stringer("sender", sender),
			zap.Error(err),
		)
		return err
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	return e.admit(batch)
}

func (e *Engine) has(txID ids.ID) bool {
	e.lock.RLock()
	defer e.lock.RUnlock()

	return e.store.Has(txID)
}

// resolve fetches the ancestors of [tx] this node doesn't know and returns
// them, along with [tx], ordered parents first.
func (e *Engine) resolve(ctx context.Context, sender ids.NodeID, tx *avalanche.Tx) ([]*avalanche.Tx, error) {
	var (
		pending = map[ids.ID]*avalanche.Tx{tx.ID(): tx}
		depth   = map[ids.ID]int{tx.ID(): 0}
		queue   = []*avalanche.Tx{tx}
	)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		for i := 0; i < next.NumParents(); i++ {
			parentID := next.Parent(i)
			if _, ok := pending[parentID]; ok || e.has(parentID) {
				continue
			}

			parentDepth := depth[next.ID()] + 1
			if parentDepth > e.Params.MaxAncestryDepth {
				return nil, fmt.Errorf("%w: %s is more than %d generations above %s",
					avalanche.ErrAncestryTooDeep, parentID, e.Params.MaxAncestryDepth, tx.ID())
			}

			parent, err := e.fetch(ctx, sender, parentID)
			if err != nil {
				return nil, err
			}
			pending[parentID] = parent
			depth[parentID] = parentDepth
			queue = append(queue, parent)
		}
	}
	return topologicalOrder(pending, tx)
}

func (e *Engine) fetch(ctx context.Context, sender ids.NodeID, txID ids.ID) (*avalanche.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.Params.QueryTimeout)
	defer cancel()

	tx, err := e.Fetcher.Fetch(ctx, sender, txID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s from %s: %w", avalanche.ErrAncestorUnavailable, txID, sender, err)
	}
	if tx.ID() != txID {
		return nil, fmt.Errorf("%w: %s answered %s with %s", avalanche.ErrAncestorUnavailable, sender, txID, tx.ID())
	}
	e.ancestorsFetched.Inc()
	return tx, nil
}

// topologicalOrder sorts [pending] so that every transaction comes after the
// parents it shares with [pending]. [root] must reach every transaction of
// [pending].
func topologicalOrder(pending map[ids.ID]*avalanche.Tx, root *avalanche.Tx) ([]*avalanche.Tx, error) {
	type frame struct {
		tx   *avalanche.Tx
		next int
	}

	var (
		order = make([]*avalanche.Tx, 0, len(pending))
		marks = map[ids.ID]int{root.ID(): visiting}
		stack = []frame{{tx: root}}
	)
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == top.tx.NumParents() {
			marks[top.tx.ID()] = visited
			order = append(order, top.tx)
			stack = stack[:len(stack)-1]
			continue
		}

		parentID := top.tx.Parent(top.next)
		top.next++
		parent, ok := pending[parentID]
		if !ok {
			continue
		}
		switch marks[parentID] {
		case visiting:
			return nil, fmt.Errorf("%w: cycle through %s", avalanche.ErrAncestorUnavailable, parentID)
		case visited:
			continue
		}
		marks[parentID] = visiting
		stack = append(stack, frame{tx: parent})
	}
	return order, nil
}

// admit inserts [txs], ordered parents first, into the local state. Already
// known transactions are skipped.
//
// Assumes the lock is held.
func (e *Engine) admit(txs []*avalanche.Tx) error {
	for _, tx := range txs {
		if e.store.Has(tx.ID()) {
			continue
		}
		for i := 0; i < tx.NumParents(); i++ {
			if parentID := tx.Parent(i); !e.store.Has(parentID) {
				return e.inconsistent("admitting %s before its parent %s", tx.ID(), parentID)
			}
		}

		e.conflicts.Register(tx)
		e.store.Add(tx)

		e.Log.Verbo("admitted transaction",
			zap.Stringer("tx", tx),
		)
	}
	e.txsKnown.Set(float64(e.store.Len()))
	return nil
}
