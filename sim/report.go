// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package sim

import (
	"fmt"
	"slices"

	"github.com/ava-labs/dagsim/ids"

	engine "github.com/ava-labs/dagsim/snow/engine/avalanche"
)

// NodeStatus summarizes the view of one node.
type NodeStatus struct {
	NodeID           ids.NodeID `json:"nodeID"`
	Known            int        `json:"known"`
	Accepted         int        `json:"accepted"`
	FractionAccepted float64    `json:"fractionAccepted"`
}

// Violation is a conflict set with more than one accepted member on a node.
type Violation struct {
	NodeID      ids.NodeID `json:"nodeID"`
	ConflictKey int        `json:"conflictKey"`
	Accepted    []ids.ID   `json:"accepted"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s accepted %d transactions spending %d", v.NodeID, len(v.Accepted), v.ConflictKey)
}

func statusOf(snapshot *engine.GraphSnapshot) NodeStatus {
	status := NodeStatus{
		NodeID: snapshot.NodeID,
		Known:  len(snapshot.Vertices),
	}
	for _, vertex := range snapshot.Vertices {
		if vertex.Accepted {
			status.Accepted++
		}
	}
	if status.Known > 0 {
		status.FractionAccepted = float64(status.Accepted) / float64(status.Known)
	}
	return status
}

// Report is the outcome of a safety audit.
type Report struct {
	Nodes []NodeStatus `json:"nodes"`
	// ContestedKeys are the conflict keys with more than one member on at
	// least one node.
	ContestedKeys []int       `json:"contestedKeys"`
	Violations    []Violation `json:"violations"`
	// SkippedTxs is the number of client requests no parents could be
	// selected for.
	SkippedTxs int `json:"skippedTxs"`
}

// Safe returns true if no node accepted two conflicting transactions.
func (r *Report) Safe() bool {
	return len(r.Violations) == 0
}

// Audit checks that no node accepted two members of the same conflict set.
func (s *Simulation) Audit() (*Report, error) {
	report := &Report{
		SkippedTxs: int(s.skipped.Load()),
	}
	contested := make(map[int]struct{})
	for _, e := range s.network.Engines() {
		snapshot, err := e.ExportGraph()
		if err != nil {
			return nil, err
		}

		var (
			accepted = make(map[int][]ids.ID)
			keys     []int
		)
		for _, vertex := range snapshot.Vertices {
			if vertex.ConflictSize > 1 {
				contested[vertex.ConflictKey] = struct{}{}
			}
			if !vertex.Accepted {
				continue
			}
			if _, ok := accepted[vertex.ConflictKey]; !ok {
				keys = append(keys, vertex.ConflictKey)
			}
			accepted[vertex.ConflictKey] = append(accepted[vertex.ConflictKey], vertex.ID)
		}
		for _, key := range keys {
			if len(accepted[key]) > 1 {
				report.Violations = append(report.Violations, Violation{
					NodeID:      snapshot.NodeID,
					ConflictKey: key,
					Accepted:    accepted[key],
				})
			}
		}

		report.Nodes = append(report.Nodes, statusOf(snapshot))
	}

	for key := range contested {
		report.ContestedKeys = append(report.ContestedKeys, key)
	}
	slices.Sort(report.ContestedKeys)
	return report, nil
}
