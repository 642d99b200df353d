package domain

// State is the snapshot of one visitor's walk through a funnel.
// Each visitor owns their own State; the engine never shares or mutates
// one across sessions, so no locking is needed around it.
type State struct {
	// CurrentNodeID is the identifier of the active step.
	CurrentNodeID string `json:"current_node_id"`

	// Answers maps a question node id to the option id the visitor chose.
	Answers map[string]any `json:"answers"`

	// History tracks the path taken, in visit order.
	History []string `json:"history"`
}

// NewState creates a clean state positioned at the given node.
func NewState(startNodeID string) *State {
	return &State{
		CurrentNodeID: startNodeID,
		Answers:       make(map[string]any),
		History:       []string{startNodeID},
	}
}

// Clone returns a deep copy so a transition never aliases the old state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	next := &State{
		CurrentNodeID: s.CurrentNodeID,
		Answers:       make(map[string]any, len(s.Answers)),
		History:       make([]string, len(s.History)),
	}
	for k, v := range s.Answers {
		next.Answers[k] = v
	}
	copy(next.History, s.History)
	return next
}
