package graph

import (
	"errors"
	"testing"

	"github.com/quizkit/quizkit/pkg/funnel"
)

func testFunnel() *funnel.Funnel {
	return &funnel.Funnel{
		Version: 1,
		Name:    "Branching",
		Nodes: []funnel.Node{
			{ID: "start", Type: funnel.NodeTypeStart, Label: "Welcome"},
			{ID: "q1", Type: funnel.NodeTypeQuestion, Label: "Pick"},
			{ID: "r1", Type: funnel.NodeTypeResult, Label: "Done"},
			{ID: "r2", Type: funnel.NodeTypeResult, Label: "Also done"},
		},
		Edges: []funnel.Edge{
			{ID: "e1", Source: "start", Target: "q1"},
			{ID: "e2", Source: "q1", Target: "r1", Data: &funnel.EdgeData{Condition: funnel.ConditionOption, Value: "a"}},
			{ID: "e3", Source: "q1", Target: "r2", Data: &funnel.EdgeData{Condition: funnel.ConditionOption, Value: "b"}},
		},
	}
}

func TestBuild_Success(t *testing.T) {
	m, err := Build(testFunnel())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if m.Len() != 4 {
		t.Errorf("Len() = %d, want 4", m.Len())
	}
	if m.Name() != "Branching" {
		t.Errorf("Name() = %q, want Branching", m.Name())
	}

	node, ok := m.Node("q1")
	if !ok {
		t.Fatal("Node(q1) not found")
	}
	if node.Type != funnel.NodeTypeQuestion {
		t.Errorf("Node(q1).Type = %q, want question", node.Type)
	}
}

func TestBuild_DanglingTarget(t *testing.T) {
	f := testFunnel()
	f.Edges = append(f.Edges, funnel.Edge{ID: "e4", Source: "q1", Target: "ghost"})

	_, err := Build(f)
	if err == nil {
		t.Fatal("Build() should reject dangling target")
	}

	var dangling *DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("error should be *DanglingReferenceError, got %T", err)
	}
	if dangling.EdgeID != "e4" || dangling.NodeID != "ghost" || dangling.End != "target" {
		t.Errorf("got %+v, want edge e4 / node ghost / end target", dangling)
	}
}

func TestBuild_DanglingSource(t *testing.T) {
	f := testFunnel()
	f.Edges = append(f.Edges, funnel.Edge{ID: "e4", Source: "ghost", Target: "r1"})

	_, err := Build(f)
	var dangling *DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("error should be *DanglingReferenceError, got %T", err)
	}
	if dangling.End != "source" {
		t.Errorf("End = %q, want source", dangling.End)
	}
}

func TestBuild_DuplicateNodeID(t *testing.T) {
	f := testFunnel()
	f.Nodes = append(f.Nodes, funnel.Node{ID: "q1", Type: funnel.NodeTypeContent, Label: "Dup"})

	_, err := Build(f)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("error should be *DuplicateIDError, got %T", err)
	}
	if dup.Kind != "node" || dup.ID != "q1" {
		t.Errorf("got %+v, want node q1", dup)
	}
}

func TestBuild_DuplicateEdgeID(t *testing.T) {
	f := testFunnel()
	f.Edges = append(f.Edges, funnel.Edge{ID: "e1", Source: "q1", Target: "r1"})

	_, err := Build(f)
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("error should be *DuplicateIDError, got %T", err)
	}
	if dup.Kind != "edge" || dup.ID != "e1" {
		t.Errorf("got %+v, want edge e1", dup)
	}
}

func TestOutgoing_PreservesStoredOrder(t *testing.T) {
	m, err := Build(testFunnel())
	if err != nil {
		t.Fatal(err)
	}

	out := m.Outgoing("q1")
	if len(out) != 2 {
		t.Fatalf("Outgoing(q1) = %d edges, want 2", len(out))
	}
	if out[0].ID != "e2" || out[1].ID != "e3" {
		t.Errorf("Outgoing(q1) order = [%s %s], want [e2 e3]", out[0].ID, out[1].ID)
	}
}

func TestEntry_ExplicitStart(t *testing.T) {
	f := testFunnel()
	// Start node deliberately not first in the list.
	f.Nodes[0], f.Nodes[1] = f.Nodes[1], f.Nodes[0]

	m, err := Build(f)
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := m.Entry()
	if !ok {
		t.Fatal("Entry() not found")
	}
	if entry.ID != "start" {
		t.Errorf("Entry() = %q, want start", entry.ID)
	}
}

func TestEntry_FallsBackToFirstNode(t *testing.T) {
	f := testFunnel()
	f.Nodes = f.Nodes[1:] // drop the start node
	f.Edges = f.Edges[1:]

	m, err := Build(f)
	if err != nil {
		t.Fatal(err)
	}

	entry, ok := m.Entry()
	if !ok {
		t.Fatal("Entry() not found")
	}
	if entry.ID != "q1" {
		t.Errorf("Entry() = %q, want q1 (first node in stored order)", entry.ID)
	}
}

func TestEntry_EmptyGraph(t *testing.T) {
	m, err := Build(&funnel.Funnel{Version: 1, Name: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := m.Entry(); ok {
		t.Error("Entry() on an empty graph should report not found")
	}
}

func TestTerminal(t *testing.T) {
	m, err := Build(testFunnel())
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"r1", true},    // result type
		{"r2", true},    // result type
		{"q1", false},   // has outgoing edges
		{"start", false},
		{"ghost", true}, // unknown ids halt
	}
	for _, tt := range tests {
		if got := m.Terminal(tt.id); got != tt.want {
			t.Errorf("Terminal(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestTerminal_NoOutgoing(t *testing.T) {
	f := &funnel.Funnel{
		Version: 1,
		Name:    "Dead end",
		Nodes: []funnel.Node{
			{ID: "c1", Type: funnel.NodeTypeContent, Label: "Leaf"},
		},
	}
	m, err := Build(f)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Terminal("c1") {
		t.Error("a node without outgoing edges should be terminal")
	}
}

func TestNodes_StoredOrder(t *testing.T) {
	m, err := Build(testFunnel())
	if err != nil {
		t.Fatal(err)
	}

	nodes := m.Nodes()
	want := []string{"start", "q1", "r1", "r2"}
	if len(nodes) != len(want) {
		t.Fatalf("Nodes() = %d nodes, want %d", len(nodes), len(want))
	}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Errorf("Nodes()[%d] = %q, want %q", i, nodes[i].ID, id)
		}
	}
}
