// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/dagsim/ids"
)

func TestConflictRegistryRegister(t *testing.T) {
	require := require.New(t)

	r := NewConflictRegistry()
	_, ok := r.Get(5)
	require.False(ok)

	first := NewTx(ids.GenerateTestID(), 5, nil)
	cs := r.Register(first)
	require.Equal(first.ID(), cs.Preferred)
	require.Equal(first.ID(), cs.Last)
	require.Zero(cs.Count)
	require.Equal(1, cs.Size)
	require.True(cs.Virtuous())

	second := NewTx(ids.GenerateTestID(), 5, nil)
	require.Same(cs, r.Register(second))
	require.Equal(first.ID(), cs.Preferred)
	require.Equal(2, cs.Size)
	require.False(cs.Virtuous())

	r.Register(NewTx(ids.GenerateTestID(), 2, nil))
	require.Equal(2, r.Len())
	require.Equal([]int{2, 5}, r.Keys())
}

func TestConflictSetRecordConfidence(t *testing.T) {
	require := require.New(t)

	a, b := ids.GenerateTestID(), ids.GenerateTestID()
	cs := &ConflictSet{
		Preferred: a,
		Last:      a,
		Size:      2,
	}

	// The preferred member gaining confidence extends its streak.
	cs.RecordConfidence(a, 1, 1)
	require.Equal(a, cs.Preferred)
	require.Equal(1, cs.Count)

	// A member that doesn't overtake the preference resets the streak.
	cs.RecordConfidence(b, 1, 1)
	require.Equal(a, cs.Preferred)
	require.Equal(b, cs.Last)
	require.Zero(cs.Count)

	// Overtaking the preference.
	cs.RecordConfidence(b, 2, 1)
	require.Equal(b, cs.Preferred)
	require.Equal(b, cs.Last)
	require.Equal(1, cs.Count)

	cs.RecordConfidence(a, 2, 2)
	require.Equal(b, cs.Preferred)
	require.Equal(a, cs.Last)
	require.Zero(cs.Count)
}
