// Copyright (C) 2019-2023, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package avalanche

import (
	"fmt"

	"github.com/emicklei/dot"

	"github.com/ava-labs/dagsim/ids"
	"github.com/ava-labs/dagsim/snow/consensus/avalanche"
)

// Vertex is a transaction as seen by one node at the time of an export.
type Vertex struct {
	ID                ids.ID   `json:"id"`
	ConflictKey       int      `json:"conflictKey"`
	Parents           []ids.ID `json:"parents"`
	Chit              int      `json:"chit"`
	Confidence        int      `json:"confidence"`
	Accepted          bool     `json:"accepted"`
	Preferred         bool     `json:"preferred"`
	StronglyPreferred bool     `json:"stronglyPreferred"`
	ConflictSize      int      `json:"conflictSize"`
}

// GraphSnapshot is the annotated DAG of one node, in arrival order.
type GraphSnapshot struct {
	NodeID   ids.NodeID `json:"nodeID"`
	Vertices []Vertex   `json:"vertices"`
}

// ExportGraph returns a snapshot of the local DAG. The acceptance predicate is
// evaluated on every transaction first.
func (e *Engine) ExportGraph() (*GraphSnapshot, error) {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.updateAccepted(); err != nil {
		return nil, err
	}

	snapshot := &GraphSnapshot{
		NodeID:   e.Config.NodeID,
		Vertices: make([]Vertex, 0, e.store.Len()),
	}
	var err error
	e.store.Iterate(func(state *avalanche.TxState) bool {
		var vertex Vertex
		vertex, err = e.vertex(state)
		snapshot.Vertices = append(snapshot.Vertices, vertex)
		return err == nil
	})
	return snapshot, err
}

// Assumes the lock is held.
func (e *Engine) vertex(state *avalanche.TxState) (Vertex, error) {
	cs, err := e.conflictSet(state.Tx)
	if err != nil {
		return Vertex{}, err
	}
	stronglyPreferred, err := e.isStronglyPreferred(state.Tx)
	if err != nil {
		return Vertex{}, err
	}
	parents := state.Tx.Parents()
	if parents == nil {
		parents = []ids.ID{}
	}
	return Vertex{
		ID:                state.Tx.ID(),
		ConflictKey:       state.Tx.ConflictKey(),
		Parents:           parents,
		Chit:              state.Chit,
		Confidence:        state.Confidence,
		Accepted:          e.accepted.Contains(state.Tx.ID()),
		Preferred:         cs.Preferred == state.Tx.ID(),
		StronglyPreferred: stronglyPreferred,
		ConflictSize:      cs.Size,
	}, nil
}

// Color returns the fill color of the vertex in a DOT rendering.
func (v *Vertex) Color() string {
	switch {
	case v.Accepted:
		return "green"
	case v.Preferred:
		return "blue"
	default:
		return "red"
	}
}

// DOT renders the snapshot in the graphviz format. Edges point from a
// transaction to its parents.
func (g *GraphSnapshot) DOT() string {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "BT")

	nodes := make(map[ids.ID]dot.Node, len(g.Vertices))
	for i := range g.Vertices {
		v := &g.Vertices[i]
		node := graph.Node(v.ID.String()).
			Label(fmt.Sprintf("%s data=%d conf=%d", v.ID.Short(), v.ConflictKey, v.Confidence)).
			Attr("color", v.Color())
		if v.Chit == 1 {
			node.Attr("style", "bold")
		}
		nodes[v.ID] = node
	}
	for i := range g.Vertices {
		v := &g.Vertices[i]
		for _, parentID := range v.Parents {
			parent, ok := nodes[parentID]
			if !ok {
				continue
			}
			graph.Edge(nodes[v.ID], parent)
		}
	}
	return graph.String()
}
