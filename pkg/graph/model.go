// Package graph builds the immutable in-memory model of a validated
// funnel. Construction is where referential integrity is enforced: the
// structural validator in pkg/funnel deliberately leaves edge targets
// unchecked so the two concerns stay separate.
package graph

import (
	"fmt"

	"github.com/quizkit/quizkit/pkg/funnel"
)

// DanglingReferenceError reports an edge pointing at a node that does not
// exist in the same graph.
type DanglingReferenceError struct {
	EdgeID string
	NodeID string
	End    string // "source" or "target"
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("edge %q: %s references missing node %q", e.EdgeID, e.End, e.NodeID)
}

// DuplicateIDError reports a node or edge id occurring more than once.
type DuplicateIDError struct {
	Kind string // "node" or "edge"
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate %s id %q", e.Kind, e.ID)
}

// Model is the immutable, lookup-indexed form of a funnel graph.
// It is safe to share read-only across any number of concurrent sessions;
// edits always produce a new Model via a full graph replace, never a patch.
type Model struct {
	name     string
	nodes    map[string]funnel.Node
	order    []string               // node ids in stored order (entry fallback)
	outgoing map[string][]funnel.Edge // edge selection order = stored edge order
}

// Build constructs a Model from a structurally valid funnel.
// It fails with DuplicateIDError or DanglingReferenceError; both block
// save and publish upstream.
func Build(f *funnel.Funnel) (*Model, error) {
	m := &Model{
		name:     f.Name,
		nodes:    make(map[string]funnel.Node, len(f.Nodes)),
		order:    make([]string, 0, len(f.Nodes)),
		outgoing: make(map[string][]funnel.Edge, len(f.Nodes)),
	}

	for _, n := range f.Nodes {
		if _, exists := m.nodes[n.ID]; exists {
			return nil, &DuplicateIDError{Kind: "node", ID: n.ID}
		}
		m.nodes[n.ID] = n
		m.order = append(m.order, n.ID)
	}

	seenEdges := make(map[string]bool, len(f.Edges))
	for _, e := range f.Edges {
		if seenEdges[e.ID] {
			return nil, &DuplicateIDError{Kind: "edge", ID: e.ID}
		}
		seenEdges[e.ID] = true

		if _, ok := m.nodes[e.Source]; !ok {
			return nil, &DanglingReferenceError{EdgeID: e.ID, NodeID: e.Source, End: "source"}
		}
		if _, ok := m.nodes[e.Target]; !ok {
			return nil, &DanglingReferenceError{EdgeID: e.ID, NodeID: e.Target, End: "target"}
		}
		m.outgoing[e.Source] = append(m.outgoing[e.Source], e)
	}

	return m, nil
}

// Name returns the funnel name the model was built from.
func (m *Model) Name() string { return m.name }

// Len returns the number of nodes.
func (m *Model) Len() int { return len(m.order) }

// Node returns the node with the given id.
func (m *Model) Node(id string) (funnel.Node, bool) {
	n, ok := m.nodes[id]
	return n, ok
}

// Outgoing returns the outgoing edges of a node in stored order.
// The stored order is the tie-break for runtime edge selection.
func (m *Model) Outgoing(id string) []funnel.Edge {
	return m.outgoing[id]
}

// Entry resolves the node execution begins at: the node typed "start",
// or the first node in stored order when no explicit start exists.
// Hand-authored graphs often omit the start node and rely on the fallback.
func (m *Model) Entry() (funnel.Node, bool) {
	for _, id := range m.order {
		if m.nodes[id].Type == funnel.NodeTypeStart {
			return m.nodes[id], true
		}
	}
	if len(m.order) == 0 {
		return funnel.Node{}, false
	}
	return m.nodes[m.order[0]], true
}

// Nodes returns every node in stored order.
func (m *Model) Nodes() []funnel.Node {
	out := make([]funnel.Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.nodes[id])
	}
	return out
}

// Terminal reports whether a node halts execution: an explicit result
// step, or any node without outgoing edges.
func (m *Model) Terminal(id string) bool {
	n, ok := m.nodes[id]
	if !ok {
		return true
	}
	return n.Type == funnel.NodeTypeResult || len(m.outgoing[id]) == 0
}
