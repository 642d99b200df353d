// Package runtime walks a visitor through a funnel graph. The engine is
// a pure state reducer: each transition depends only on the immutable
// graph model, the visitor's own state and the submitted input, so the
// same call sequence always replays to the same final state.
package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/quizkit/quizkit/internal/logging"
	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
	"github.com/quizkit/quizkit/pkg/ports"
)

// Engine executes one funnel graph. It holds no per-visitor state and is
// safe to share across concurrent sessions.
type Engine struct {
	model     *graph.Model
	projectID string
	leads     ports.LeadSink
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
}

// Option configures the Engine.
type Option func(*Engine)

// WithLeadSink wires the collaborator that receives captured leads.
func WithLeadSink(sink ports.LeadSink) Option {
	return func(e *Engine) { e.leads = sink }
}

// WithProject tags captured leads with the owning project id.
func WithProject(projectID string) Option {
	return func(e *Engine) { e.projectID = projectID }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// New creates an engine over an immutable graph model.
func New(model *graph.Model, opts ...Option) *Engine {
	e := &Engine{
		model:  model,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start creates the initial state at the graph's entry node.
func (e *Engine) Start(ctx context.Context) (*domain.State, error) {
	entry, ok := e.model.Entry()
	if !ok {
		return nil, ErrEmptyGraph
	}
	state := domain.NewState(entry.ID)
	e.emitNodeEnter(ctx, entry)
	return state, nil
}

// Step returns the node the visitor is currently on and whether it is
// terminal. An unrecognized node type yields UnsupportedStepError so
// callers report an authoring problem instead of crashing.
func (e *Engine) Step(state *domain.State) (funnel.Node, bool, error) {
	node, ok := e.model.Node(state.CurrentNodeID)
	if !ok {
		return funnel.Node{}, false, &NodeNotFoundError{NodeID: state.CurrentNodeID}
	}
	if !node.Type.Valid() {
		return funnel.Node{}, false, &UnsupportedStepError{NodeID: node.ID, Type: node.Type}
	}
	return node, e.model.Terminal(node.ID), nil
}

// Terminal reports whether the state sits on a terminal step.
func (e *Engine) Terminal(state *domain.State) bool {
	return e.model.Terminal(state.CurrentNodeID)
}

// Advance resolves the next step for the given input and returns the new
// state. The input rules, in order:
//
//   - optionID supplied: the first outgoing edge (stored order) whose
//     condition is {option, optionID}; if none matches, the first
//     unconditioned edge, or failing that the first edge.
//   - optionID empty: the first outgoing edge.
//   - no outgoing edges, or a result step: Advance is a no-op and
//     returns the state unchanged.
//
// If the current step is a question and an option was chosen, the answer
// is recorded before the transition.
func (e *Engine) Advance(ctx context.Context, state *domain.State, optionID string) (*domain.State, error) {
	node, ok := e.model.Node(state.CurrentNodeID)
	if !ok {
		return state, &NodeNotFoundError{NodeID: state.CurrentNodeID}
	}
	if !node.Type.Valid() {
		return state, &UnsupportedStepError{NodeID: node.ID, Type: node.Type}
	}
	if e.model.Terminal(node.ID) {
		return state, nil
	}

	edge := e.selectEdge(ctx, node, optionID)

	next := state.Clone()
	if node.Type == funnel.NodeTypeQuestion && optionID != "" {
		next.Answers[node.ID] = optionID
	}
	next.CurrentNodeID = edge.Target
	next.History = append(next.History, edge.Target)

	e.logger.Debug("advance", "from", node.ID, "to", edge.Target, "edge", edge.ID, "option", optionID)

	if target, ok := e.model.Node(edge.Target); ok {
		e.emitNodeEnter(ctx, target)
	}
	return next, nil
}

// SubmitLead captures a lead at a form step and then advances using the
// no-branch rule. Email is required; name is optional. The lead carries a
// snapshot of the answers accumulated so far, and is tagged with the
// result step the visitor lands on when that is already decided.
func (e *Engine) SubmitLead(ctx context.Context, state *domain.State, email, name string) (*domain.State, *domain.Lead, error) {
	node, ok := e.model.Node(state.CurrentNodeID)
	if !ok {
		return state, nil, &NodeNotFoundError{NodeID: state.CurrentNodeID}
	}
	if node.Type != funnel.NodeTypeForm {
		return state, nil, ErrNotFormStep
	}
	if email == "" {
		return state, nil, domain.ErrEmailRequired
	}

	answers := make(map[string]any, len(state.Answers))
	for k, v := range state.Answers {
		answers[k] = v
	}

	lead := domain.Lead{
		ProjectID: e.projectID,
		Email:     email,
		Name:      name,
		Answers:   answers,
	}
	if outgoing := e.model.Outgoing(node.ID); len(outgoing) > 0 {
		if target, ok := e.model.Node(outgoing[0].Target); ok && target.Type == funnel.NodeTypeResult {
			lead.Outcome = target.ID
		}
	}

	if e.leads != nil {
		id, err := e.leads.CreateLead(ctx, lead)
		if err != nil {
			// Side effect failed: stay on the form so the visitor can retry.
			return state, nil, err
		}
		lead.ID = id
	}
	e.emitLeadCaptured(ctx, node.ID, &lead)

	next, err := e.Advance(ctx, state, "")
	if err != nil {
		return state, &lead, err
	}
	return next, &lead, nil
}

// selectEdge applies the ordered edge-selection policy. When an option
// was chosen but no condition matches, it degrades to a fallback edge
// and reports the fallback so authoring mistakes stay observable.
func (e *Engine) selectEdge(ctx context.Context, node funnel.Node, optionID string) funnel.Edge {
	outgoing := e.model.Outgoing(node.ID)

	if optionID != "" {
		for i := range outgoing {
			if outgoing[i].Matches(optionID) {
				return outgoing[i]
			}
		}
		edge := outgoing[0]
		for i := range outgoing {
			if !outgoing[i].Conditioned() {
				edge = outgoing[i]
				break
			}
		}
		e.logger.Warn("no edge condition matched, taking fallback edge",
			"node", node.ID, "option", optionID, "edge", edge.ID)
		e.emitFallback(ctx, node.ID, optionID, edge.ID)
		return edge
	}

	return outgoing[0]
}

func (e *Engine) emitNodeEnter(ctx context.Context, node funnel.Node) {
	if e.hooks.OnNodeEnter == nil {
		return
	}
	e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventNodeEnter},
		NodeID:    node.ID,
		NodeType:  string(node.Type),
	})
}

func (e *Engine) emitFallback(ctx context.Context, nodeID, optionID, edgeID string) {
	if e.hooks.OnFallback == nil {
		return
	}
	e.hooks.OnFallback(ctx, &domain.FallbackEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFallback},
		NodeID:    nodeID,
		OptionID:  optionID,
		EdgeID:    edgeID,
	})
}

func (e *Engine) emitLeadCaptured(ctx context.Context, nodeID string, lead *domain.Lead) {
	if e.hooks.OnLeadCaptured == nil {
		return
	}
	e.hooks.OnLeadCaptured(ctx, &domain.LeadEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventLeadCaptured},
		ProjectID: lead.ProjectID,
		LeadID:    lead.ID,
		NodeID:    nodeID,
	})
}
