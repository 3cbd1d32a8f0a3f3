// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/utils/set"
)

// AncestryCache memoizes the transitive ancestor set of transactions. Entries
// are written once and never invalidated: the edges of a transaction can't
// change after it exists.
//
// The returned sets are shared with the cache and must not be modified.
type AncestryCache struct {
	ancestors map[ids.ID]set.Set[ids.ID]
}

func NewAncestryCache() *AncestryCache {
	return &AncestryCache{
		ancestors: make(map[ids.ID]set.Set[ids.ID]),
	}
}

// Get returns the cached ancestors of [txID]. A missing entry means the set
// hasn't been computed yet, not that it is empty.
func (c *AncestryCache) Get(txID ids.ID) (set.Set[ids.ID], bool) {
	ancestors, ok := c.ancestors[txID]
	return ancestors, ok
}

func (c *AncestryCache) Len() int {
	return len(c.ancestors)
}

// Ancestry returns the transitive closure of the parents of [tx] restricted to
// the transactions [store] knows. The result is cached unless an ancestor was
// missing, in which case it would be incomplete.
func (c *AncestryCache) Ancestry(store *TxStore, tx *Tx) set.Set[ids.ID] {
	if ancestors, ok := c.ancestors[tx.ID()]; ok {
		return ancestors
	}

	var (
		ancestors = set.Set[ids.ID]{}
		complete  = true
		stack     = tx.Parents()
	)
	for len(stack) > 0 {
		txID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if ancestors.Contains(txID) {
			continue
		}

		state, ok := store.Get(txID)
		if !ok {
			complete = false
			continue
		}
		ancestors.Add(txID)

		if cached, ok := c.ancestors[txID]; ok {
			ancestors.Union(cached)
			continue
		}
		for i := 0; i < state.Tx.NumParents(); i++ {
			stack = append(stack, state.Tx.Parent(i))
		}
	}

	if complete {
		c.ancestors[tx.ID()] = ancestors
	}
	return ancestors
}
