// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"cmp"
	"slices"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
	"github.com/ava-labs/dagsim/utils/sampler"
	"github.com/ava-labs/dagsim/utils/set"
)

const (
	// fallbackWindow is the number of most recent transactions considered by
	// the parent selection fallback.
	fallbackWindow = 10
	// maxFallbackParents bounds the number of parents picked by the fallback.
	maxFallbackParents = 3
)

// parentSelection returns the parents of the next generated transaction.
//
// The safe tips are the strongly preferred transactions that are either
// uncontested or already won a voting round. The candidates are the
// ancestors of the safe tips that aren't safe tips themselves, in arrival
// order. If there are none, up to 3 unaccepted uncontested transactions are
// picked at random among the 10 most recent ones.
//
// Both sets are empty when every recent transaction is accepted or contested.
// That is a normal outcome, not a broken invariant: ErrEmptyParentSelection is
// returned without tripping an assertion and the caller drops the request.
//
// Assumes the lock is held.
func (e *Engine) parentSelection() ([]ids.ID, error) {
	var (
		safeTips   []*avalanche.TxState
		safeTipIDs = set.Set[ids.ID]{}
		iterErr    error
	)
	e.store.Iterate(func(state *avalanche.TxState) bool {
		stronglyPreferred, err := e.isStronglyPreferred(state.Tx)
		if err != nil {
			iterErr = err
			return false
		}
		if !stronglyPreferred {
			return true
		}
		cs, err := e.conflictSet(state.Tx)
		if err != nil {
			iterErr = err
			return false
		}
		if cs.Virtuous() || state.Confidence > 0 {
			safeTips = append(safeTips, state)
			safeTipIDs.Add(state.Tx.ID())
		}
		return true
	})
	if iterErr != nil {
		return nil, iterErr
	}

	candidates := set.Set[ids.ID]{}
	for _, tip := range safeTips {
		for ancestorID := range e.ancestry.Ancestry(e.store, tip.Tx) {
			if !safeTipIDs.Contains(ancestorID) {
				candidates.Add(ancestorID)
			}
		}
	}
	if candidates.Len() > 0 {
		return e.inArrivalOrder(candidates), nil
	}

	fallback, err := e.fallbackParents()
	if err != nil {
		return nil, err
	}
	if len(fallback) == 0 {
		return nil, avalanche.ErrEmptyParentSelection
	}
	return fallback, nil
}

func (e *Engine) fallbackParents() ([]ids.ID, error) {
	if e.store.Len() == 1 {
		return []ids.ID{avalanche.GenesisID}, nil
	}

	var (
		recent   = e.store.Newest(fallbackWindow)
		rejected = make(map[ids.ID]bool)
		eligible = make([]ids.ID, 0, len(recent))
	)
	for _, state := range recent {
		txID := state.Tx.ID()
		accepted, err := e.isAccepted(txID, rejected)
		if err != nil {
			return nil, err
		}
		cs, err := e.conflictSet(state.Tx)
		if err != nil {
			return nil, err
		}
		if !accepted && cs.Virtuous() {
			eligible = append(eligible, txID)
		}
	}

	sampler.Shuffle(e.RNG, len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	if len(eligible) > maxFallbackParents {
		eligible = eligible[:maxFallbackParents]
	}
	return eligible, nil
}

// Assumes the lock is held.
func (e *Engine) inArrivalOrder(txIDs set.Set[ids.ID]) []ids.ID {
	states := make([]*avalanche.TxState, 0, txIDs.Len())
	for txID := range txIDs {
		if state, ok := e.store.Get(txID); ok {
			states = append(states, state)
		}
	}
	slices.SortFunc(states, func(a, b *avalanche.TxState) int {
		return cmp.Compare(a.Index(), b.Index())
	})

	ordered := make([]ids.ID, len(states))
	for i, state := range states {
		ordered[i] = state.Tx.ID()
	}
	return ordered
}
