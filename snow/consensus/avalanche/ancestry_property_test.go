// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/utils/set"
)

const maxPropertyParents = 3

// buildRandomDAG adds one transaction per seed to a store holding the genesis.
// Each seed picks up to three parents among the transactions added before it.
func buildRandomDAG(seeds []uint32) (*TxStore, []*Tx) {
	var (
		store = NewTxStore()
		txs   = []*Tx{NewGenesis()}
	)
	store.Add(txs[0])
	for i, seed := range seeds {
		numParents := 1 + int(seed%maxPropertyParents)
		parents := make([]ids.ID, 0, numParents)
		for j := 0; j < numParents; j++ {
			seed = seed*1103515245 + 12345
			parents = append(parents, txs[int(seed>>8)%len(txs)].ID())
		}
		tx := NewTx(ids.GenerateTestID(), i, parents)
		store.Add(tx)
		txs = append(txs, tx)
	}
	return store, txs
}

// referenceAncestry walks every path of the DAG without memoization.
func referenceAncestry(store *TxStore, tx *Tx) set.Set[ids.ID] {
	ancestors := set.Set[ids.ID]{}
	for _, parentID := range tx.Parents() {
		parent, ok := store.Get(parentID)
		if !ok {
			continue
		}
		ancestors.Add(parentID)
		ancestors.Union(referenceAncestry(store, parent.Tx))
	}
	return ancestors
}

func TestAncestryProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cached ancestry matches an exhaustive walk in any order", prop.ForAll(
		func(seeds []uint32, reversed bool) string {
			store, txs := buildRandomDAG(seeds)
			cache := NewAncestryCache()

			order := make([]*Tx, len(txs))
			copy(order, txs)
			if reversed {
				for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
					order[i], order[j] = order[j], order[i]
				}
			}

			for _, tx := range order {
				got := cache.Ancestry(store, tx)
				expected := referenceAncestry(store, tx)
				if !got.Equals(expected) {
					return fmt.Sprintf("ancestry of %s: got %d txs, expected %d", tx.ID(), got.Len(), expected.Len())
				}
			}
			if cache.Len() != len(txs) {
				return fmt.Sprintf("expected %d cached entries, got %d", len(txs), cache.Len())
			}
			return ""
		},
		gen.SliceOfN(40, gen.UInt32()),
		gen.Bool(),
	))

	properties.Property("ancestry holds the parents and the genesis but never the tx", prop.ForAll(
		func(seeds []uint32) string {
			store, txs := buildRandomDAG(seeds)
			cache := NewAncestryCache()

			for _, tx := range txs[1:] {
				ancestors := cache.Ancestry(store, tx)
				if ancestors.Contains(tx.ID()) {
					return fmt.Sprintf("%s is its own ancestor", tx.ID())
				}
				if !ancestors.Contains(GenesisID) {
					return fmt.Sprintf("%s doesn't descend from the genesis", tx.ID())
				}
				for _, parentID := range tx.Parents() {
					if !ancestors.Contains(parentID) {
						return fmt.Sprintf("parent %s missing from the ancestry of %s", parentID, tx.ID())
					}
				}
			}
			return ""
		},
		gen.SliceOf(gen.UInt32()),
	))

	properties.TestingRun(t)
}
