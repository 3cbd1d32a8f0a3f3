// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/utils/linked"
)

// TxState is a node's view of a transaction: the shared immutable Tx plus the
// annotations only this node maintains.
type TxState struct {
	Tx *Tx

	// Chit is the outcome of the most recent voting round on this
	// transaction: 1 if the round reached quorum, 0 otherwise.
	Chit int
	// Confidence counts the successful voting rounds that referenced this
	// transaction, either directly or through a descendant.
	Confidence int

	// index is the arrival position of the transaction in its store.
	index int
}

// Index returns the arrival position of the transaction, starting at 0.
func (s *TxState) Index() int {
	return s.index
}

func (s *TxState) String() string {
	str := s.Tx.String()
	return fmt.Sprintf("%s, chit=%d, confidence=%d)", str[:len(str)-1], s.Chit, s.Confidence)
}

// TxStore maps transaction identifiers to their per-node state, preserving
// arrival order. Transactions are never removed.
type TxStore struct {
	txs *linked.Hashmap[ids.ID, *TxState]
}

func NewTxStore() *TxStore {
	return &TxStore{
		txs: linked.NewHashmap[ids.ID, *TxState](),
	}
}

// Add inserts [tx] with fresh annotations. Returns false, and leaves the store
// untouched, if the transaction was already known.
func (s *TxStore) Add(tx *Tx) (*TxState, bool) {
	if state, ok := s.txs.Get(tx.ID()); ok {
		return state, false
	}
	state := &TxState{
		Tx:    tx,
		index: s.txs.Len(),
	}
	s.txs.Put(tx.ID(), state)
	return state, true
}

func (s *TxStore) Get(txID ids.ID) (*TxState, bool) {
	return s.txs.Get(txID)
}

func (s *TxStore) Has(txID ids.ID) bool {
	_, ok := s.txs.Get(txID)
	return ok
}

func (s *TxStore) Len() int {
	return s.txs.Len()
}

// Iterate calls [f] on every transaction from oldest to newest until [f]
// returns false.
func (s *TxStore) Iterate(f func(*TxState) bool) {
	it := s.txs.NewIterator()
	for it.Next() {
		if !f(it.Value()) {
			return
		}
	}
}

// Newest returns up to [n] of the most recently added transactions, newest
// first.
func (s *TxStore) Newest(n int) []*TxState {
	if n > s.txs.Len() {
		n = s.txs.Len()
	}
	states := make([]*TxState, 0, n)
	it := s.txs.NewReverseIterator()
	for len(states) < n && it.Next() {
		states = append(states, it.Value())
	}
	return states
}
