package runtime

import (
	"errors"
	"fmt"

	"github.com/quizkit/quizkit/pkg/funnel"
)

// ErrEmptyGraph is returned when a session is started on a graph with no
// nodes.
var ErrEmptyGraph = errors.New("funnel graph has no nodes")

// ErrNotFormStep is returned when a lead is submitted while the visitor
// is not on a form step.
var ErrNotFormStep = errors.New("current step is not a form")

// NodeNotFoundError reports a state pointing at a node the graph does not
// contain. This indicates a stale or corrupted session state.
type NodeNotFoundError struct {
	NodeID string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("node %q not found in graph", e.NodeID)
}

// UnsupportedStepError reports a step the engine cannot render or
// advance. Execution halts at the node; this is a data-authoring problem,
// not a system fault.
type UnsupportedStepError struct {
	NodeID string
	Type   funnel.NodeType
}

func (e *UnsupportedStepError) Error() string {
	return fmt.Sprintf("node %q: unsupported step type %q", e.NodeID, e.Type)
}
