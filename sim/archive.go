// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ava-labs/dagsim/database"
	"github.com/ava-labs/dagsim/ids"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

var (
	lastTickKey = []byte("meta/lastTick")

	ErrNoSnapshot = errors.New("no snapshot")
)

// Archive stores the graph snapshots taken after every tick.
type Archive struct {
	db database.Database
}

func NewArchive(db database.Database) *Archive {
	return &Archive{db: db}
}

func snapshotKey(tick uint64, nodeID ids.NodeID) []byte {
	return []byte(fmt.Sprintf("tick/%08d/%s", tick, nodeID))
}

func tickPrefix(tick uint64) []byte {
	return []byte(fmt.Sprintf("tick/%08d/", tick))
}

// Put stores [snapshot] as the state of its node after [tick].
func (a *Archive) Put(tick uint64, snapshot *engine.GraphSnapshot) error {
	bytes, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	if err := a.db.Put(snapshotKey(tick, snapshot.NodeID), bytes); err != nil {
		return err
	}
	return database.PutUInt64(a.db, lastTickKey, tick)
}

// Get returns the snapshot of [nodeID] taken after [tick].
func (a *Archive) Get(tick uint64, nodeID ids.NodeID) (*engine.GraphSnapshot, error) {
	bytes, err := a.db.Get(snapshotKey(tick, nodeID))
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: tick %d of %s", ErrNoSnapshot, tick, nodeID)
	}
	if err != nil {
		return nil, err
	}

	snapshot := &engine.GraphSnapshot{}
	return snapshot, json.Unmarshal(bytes, snapshot)
}

// LastTick returns the most recent archived tick.
func (a *Archive) LastTick() (uint64, error) {
	tick, err := database.GetUInt64(a.db, lastTickKey)
	if errors.Is(err, database.ErrNotFound) {
		return 0, ErrNoSnapshot
	}
	return tick, err
}

// NumSnapshots returns the number of snapshots archived for [tick].
func (a *Archive) NumSnapshots(tick uint64) (int, error) {
	return database.Count(a.db, tickPrefix(tick))
}
