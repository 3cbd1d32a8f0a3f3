// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/dagsim/ids"
)

func TestTxStoreAdd(t *testing.T) {
	require := require.New(t)

	store := NewTxStore()
	genesis := NewGenesis()

	state, added := store.Add(genesis)
	require.True(added)
	require.Zero(state.Index())
	require.Zero(state.Chit)
	require.Zero(state.Confidence)

	state.Confidence = 3
	again, added := store.Add(genesis.Clone())
	require.False(added)
	require.Same(state, again)
	require.Equal(3, again.Confidence)
	require.Equal(1, store.Len())
	require.True(store.Has(GenesisID))
	require.False(store.Has(ids.GenerateTestID()))
}

func TestTxStoreOrder(t *testing.T) {
	require := require.New(t)

	store := NewTxStore()
	var txIDs []ids.ID
	for i := 0; i < 12; i++ {
		tx := NewTx(ids.GenerateTestID(), i, nil)
		state, added := store.Add(tx)
		require.True(added)
		require.Equal(i, state.Index())
		txIDs = append(txIDs, tx.ID())
	}

	var iterated []ids.ID
	store.Iterate(func(state *TxState) bool {
		iterated = append(iterated, state.Tx.ID())
		return true
	})
	require.Equal(txIDs, iterated)

	var stopped int
	store.Iterate(func(*TxState) bool {
		stopped++
		return stopped < 3
	})
	require.Equal(3, stopped)

	newest := store.Newest(10)
	require.Len(newest, 10)
	for i, state := range newest {
		require.Equal(txIDs[len(txIDs)-1-i], state.Tx.ID())
	}
	require.Len(store.Newest(100), 12)
}
