// Package graph renders funnel definitions as Mermaid flowcharts for
// quick inspection of hand-authored files.
package graph

import (
	"fmt"
	"strings"

	"github.com/quizkit/quizkit/pkg/funnel"
)

// GenerateMermaid produces Mermaid flowchart syntax from a funnel.
// Node shapes follow step semantics:
//   - start: ((circle))
//   - question: [/parallelogram/]
//   - form: [[subroutine]]
//   - result: ([stadium])
//   - everything else: [rectangle]
//
// Conditioned edges carry their option id as the arrow label.
func GenerateMermaid(f *funnel.Funnel) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range f.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch node.Type {
		case funnel.NodeTypeStart:
			opener, closer = "((", "))"
		case funnel.NodeTypeQuestion:
			opener, closer = "[/", "/]"
		case funnel.NodeTypeForm:
			opener, closer = "[[", "]]"
		case funnel.NodeTypeResult:
			opener, closer = "([", "])"
		}

		label := strings.ReplaceAll(node.Label, "\"", "'")
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))
	}

	for _, edge := range f.Edges {
		safeFrom := sanitizeMermaidID(edge.Source)
		safeTo := sanitizeMermaidID(edge.Target)

		arrow := "-->"
		if edge.Conditioned() {
			value := strings.ReplaceAll(edge.Data.OptionValue(), "\"", "'")
			arrow = fmt.Sprintf("-- \"%s\" -->", value)
		}
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeFrom, arrow, safeTo))
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
