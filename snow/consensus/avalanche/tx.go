// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/utils/hashing"
	"github.com/ava-labs/dagsim/utils/set"
)

// GenesisConflictKey is the conflict key of the genesis transaction. No
// generated transaction may use it.
const GenesisConflictKey = -1

// GenesisID identifies the genesis transaction on every node.
var GenesisID ids.ID = hashing.ComputeHash256Array([]byte("genesis"))

// Tx is the immutable part of a transaction: its identity, the conflict key it
// spends and the transactions it references. It is safe to share a Tx between
// nodes; everything that differs per node lives in TxState.
type Tx struct {
	id          ids.ID
	conflictKey int
	parents     []ids.ID
}

// NewTx returns a transaction with the provided identity and edges. Duplicate
// parents are dropped while preserving the order of first occurrence.
func NewTx(id ids.ID, conflictKey int, parents []ids.ID) *Tx {
	seen := set.NewSet[ids.ID](len(parents))
	deduped := make([]ids.ID, 0, len(parents))
	for _, parent := range parents {
		if seen.Contains(parent) {
			continue
		}
		seen.Add(parent)
		deduped = append(deduped, parent)
	}
	return &Tx{
		id:          id,
		conflictKey: conflictKey,
		parents:     deduped,
	}
}

// NewGenesis returns the parentless transaction every node is seeded with.
func NewGenesis() *Tx {
	return NewTx(GenesisID, GenesisConflictKey, nil)
}

// NewTxID derives a fresh transaction identifier. [creator] and [nonce] make
// the identifier unique even when two transactions spend the same key with the
// same parents.
func NewTxID(creator ids.NodeID, nonce uint64, conflictKey int, parents []ids.ID) ids.ID {
	packed := make([]byte, 0, ids.NodeIDLen+16+len(parents)*ids.IDLen)
	packed = append(packed, creator[:]...)
	packed = binary.BigEndian.AppendUint64(packed, nonce)
	packed = binary.BigEndian.AppendUint64(packed, uint64(int64(conflictKey)))
	for _, parent := range parents {
		packed = append(packed, parent[:]...)
	}
	return hashing.ComputeHash256Array(packed)
}

func (t *Tx) ID() ids.ID {
	return t.id
}

// ConflictKey identifies the spend group of this transaction. Transactions
// sharing a key are mutually exclusive.
func (t *Tx) ConflictKey() int {
	return t.conflictKey
}

// Parents returns a copy of the parent identifiers.
func (t *Tx) Parents() []ids.ID {
	return slices.Clone(t.parents)
}

// NumParents returns the number of parents without copying them.
func (t *Tx) NumParents() int {
	return len(t.parents)
}

// Parent returns the i-th parent.
func (t *Tx) Parent(i int) ids.ID {
	return t.parents[i]
}

// Clone returns a structurally independent copy of this transaction.
func (t *Tx) Clone() *Tx {
	return &Tx{
		id:          t.id,
		conflictKey: t.conflictKey,
		parents:     slices.Clone(t.parents),
	}
}

// Equal returns true if both transactions carry the same identity and edges.
func (t *Tx) Equal(other *Tx) bool {
	return t.id == other.id &&
		t.conflictKey == other.conflictKey &&
		slices.Equal(t.parents, other.parents)
}

func (t *Tx) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "T(id=%s, data=%d, parents=[", t.id.Short(), t.conflictKey)
	for i, parent := range t.parents {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(parent.Short())
	}
	sb.WriteString("])")
	return sb.String()
}

type txJSON struct {
	ID          ids.ID   `json:"id"`
	ConflictKey int      `json:"conflictKey"`
	Parents     []ids.ID `json:"parents"`
}

func (t *Tx) MarshalJSON() ([]byte, error) {
	parents := t.parents
	if parents == nil {
		parents = []ids.ID{}
	}
	return json.Marshal(txJSON{
		ID:          t.id,
		ConflictKey: t.conflictKey,
		Parents:     parents,
	})
}

func (t *Tx) UnmarshalJSON(b []byte) error {
	var parsed txJSON
	if err := json.Unmarshal(b, &parsed); err != nil {
		return err
	}
	*t = *NewTx(parsed.ID, parsed.ConflictKey, parsed.Parents)
	return nil
}
