// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"
	"slices"

	"github.com/ava-labs/dagsim/ids"
)

// ConflictSet tracks the transactions of one conflict key as seen by a node.
type ConflictSet struct {
	// Preferred is the member with the highest confidence observed so far.
	Preferred ids.ID
	// Last is the member most recently given a confidence increment.
	Last ids.ID
	// Count is the number of consecutive increments [Last] has received.
	Count int
	// Size is the number of distinct members ever registered. It never
	// decreases.
	Size int
}

// Virtuous returns true if no conflicting transaction has been observed.
func (cs *ConflictSet) Virtuous() bool {
	return cs.Size == 1
}

// RecordConfidence updates the set after [txID] had its confidence raised to
// [confidence]. [preferredConfidence] is the current confidence of
// [cs.Preferred].
func (cs *ConflictSet) RecordConfidence(txID ids.ID, confidence, preferredConfidence int) {
	if confidence > preferredConfidence {
		cs.Preferred = txID
	}
	if txID != cs.Last {
		cs.Last = txID
		cs.Count = 0
		return
	}
	cs.Count++
}

func (cs *ConflictSet) String() string {
	return fmt.Sprintf("CS(pref=%s, last=%s, count=%d, size=%d)",
		cs.Preferred.Short(), cs.Last.Short(), cs.Count, cs.Size)
}

// ConflictRegistry maps conflict keys to their conflict sets.
type ConflictRegistry struct {
	sets map[int]*ConflictSet
}

func NewConflictRegistry() *ConflictRegistry {
	return &ConflictRegistry{
		sets: make(map[int]*ConflictSet),
	}
}

// Register adds [tx] to the conflict set of its key, creating the set on first
// sight. It must be called exactly once per transaction.
func (r *ConflictRegistry) Register(tx *Tx) *ConflictSet {
	key := tx.ConflictKey()
	cs, ok := r.sets[key]
	if !ok {
		cs = &ConflictSet{
			Preferred: tx.ID(),
			Last:      tx.ID(),
			Size:      1,
		}
		r.sets[key] = cs
		return cs
	}
	cs.Size++
	return cs
}

func (r *ConflictRegistry) Get(conflictKey int) (*ConflictSet, bool) {
	cs, ok := r.sets[conflictKey]
	return cs, ok
}

func (r *ConflictRegistry) Len() int {
	return len(r.sets)
}

// Keys returns the registered conflict keys in increasing order.
func (r *ConflictRegistry) Keys() []int {
	keys := make([]int, 0, len(r.sets))
	for key := range r.sets {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
