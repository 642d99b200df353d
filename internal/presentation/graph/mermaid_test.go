package graph_test

import (
	"strings"
	"testing"

	"github.com/quizkit/quizkit/internal/presentation/graph"
	"github.com/quizkit/quizkit/pkg/funnel"
)

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		funnel   *funnel.Funnel
		contains []string
	}{
		{
			name: "Node Shapes",
			funnel: &funnel.Funnel{
				Nodes: []funnel.Node{
					{ID: "s1", Type: funnel.NodeTypeStart, Label: "Welcome"},
					{ID: "q1", Type: funnel.NodeTypeQuestion, Label: "Pick"},
					{ID: "f1", Type: funnel.NodeTypeForm, Label: "Contact"},
					{ID: "r1", Type: funnel.NodeTypeResult, Label: "Done"},
					{ID: "c1", Type: funnel.NodeTypeContent, Label: "Info"},
				},
			},
			contains: []string{
				"graph TD",
				"s1((\"Welcome\"))",
				"q1[/\"Pick\"/]",
				"f1[[\"Contact\"]]",
				"r1([\"Done\"])",
				"c1[\"Info\"]",
			},
		},
		{
			name: "ID Sanitization",
			funnel: &funnel.Funnel{
				Nodes: []funnel.Node{
					{ID: "step-one.final", Type: funnel.NodeTypeContent, Label: "X"},
				},
			},
			contains: []string{
				"step_one_final[\"X\"]",
			},
		},
		{
			name: "Conditioned Edge Label",
			funnel: &funnel.Funnel{
				Nodes: []funnel.Node{
					{ID: "q1", Type: funnel.NodeTypeQuestion, Label: "Pick"},
					{ID: "r1", Type: funnel.NodeTypeResult, Label: "Done"},
				},
				Edges: []funnel.Edge{
					{ID: "e1", Source: "q1", Target: "r1", Data: &funnel.EdgeData{
						Condition: funnel.ConditionOption, Value: "a",
					}},
				},
			},
			contains: []string{
				"q1 -- \"a\" --> r1",
			},
		},
		{
			name: "Plain Edge",
			funnel: &funnel.Funnel{
				Nodes: []funnel.Node{
					{ID: "a", Type: funnel.NodeTypeContent, Label: "A"},
					{ID: "b", Type: funnel.NodeTypeContent, Label: "B"},
				},
				Edges: []funnel.Edge{
					{ID: "e1", Source: "a", Target: "b"},
				},
			},
			contains: []string{
				"a --> b",
			},
		},
		{
			name: "Label Escaping",
			funnel: &funnel.Funnel{
				Nodes: []funnel.Node{
					{ID: "n1", Type: funnel.NodeTypeContent, Label: `Say "hello"`},
				},
			},
			contains: []string{
				"n1[\"Say 'hello'\"]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.funnel)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}
