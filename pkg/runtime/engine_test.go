package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
)

// memorySink collects leads for assertions and can simulate a failing
// backend.
type memorySink struct {
	leads []domain.Lead
	err   error
}

func (s *memorySink) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.leads = append(s.leads, lead)
	return "lead-1", nil
}

func buildModel(t *testing.T, f *funnel.Funnel) *graph.Model {
	t.Helper()
	m, err := graph.Build(f)
	require.NoError(t, err)
	return m
}

// quizFunnel is a start -> question -> {form | result} shape: option "a"
// routes to a lead form that lands on one result, option "b" goes
// straight to another.
func quizFunnel() *funnel.Funnel {
	return &funnel.Funnel{
		Version: 1,
		Name:    "Plan picker",
		Nodes: []funnel.Node{
			{ID: "start", Type: funnel.NodeTypeStart, Label: "Welcome"},
			{ID: "q1", Type: funnel.NodeTypeQuestion, Label: "Pick a plan", Data: funnel.NodeData{
				Options: []funnel.Option{
					{ID: "a", Label: "Starter"},
					{ID: "b", Label: "Pro"},
				},
			}},
			{ID: "form", Type: funnel.NodeTypeForm, Label: "Your details", Data: funnel.NodeData{
				FormFields: []funnel.FormField{
					{ID: "email", Label: "Email", Type: funnel.FieldEmail, Required: true},
				},
			}},
			{ID: "r-starter", Type: funnel.NodeTypeResult, Label: "Starter it is", Data: funnel.NodeData{
				Result: &funnel.Result{Title: "Starter"},
			}},
			{ID: "r-pro", Type: funnel.NodeTypeResult, Label: "Pro it is", Data: funnel.NodeData{
				Result: &funnel.Result{Title: "Pro"},
			}},
		},
		Edges: []funnel.Edge{
			{ID: "e1", Source: "start", Target: "q1"},
			{ID: "e2", Source: "q1", Target: "form", Data: &funnel.EdgeData{Condition: funnel.ConditionOption, Value: "a"}},
			{ID: "e3", Source: "q1", Target: "r-pro", Data: &funnel.EdgeData{Condition: funnel.ConditionOption, Value: "b"}},
			{ID: "e4", Source: "form", Target: "r-starter"},
		},
	}
}

func TestEngine_Start(t *testing.T) {
	engine := New(buildModel(t, quizFunnel()))

	state, err := engine.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "start", state.CurrentNodeID)
	assert.Equal(t, []string{"start"}, state.History)
	assert.Empty(t, state.Answers)
}

func TestEngine_Start_EmptyGraph(t *testing.T) {
	engine := New(buildModel(t, &funnel.Funnel{Version: 1, Name: "Empty"}))

	_, err := engine.Start(context.Background())
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestEngine_Advance_ConditionalBranch(t *testing.T) {
	ctx := context.Background()
	engine := New(buildModel(t, quizFunnel()))

	state, err := engine.Start(ctx)
	require.NoError(t, err)

	// start -> q1 (single unconditioned edge)
	state, err = engine.Advance(ctx, state, "")
	require.NoError(t, err)
	assert.Equal(t, "q1", state.CurrentNodeID)

	// q1 -> r-pro via the option "b" condition
	state, err = engine.Advance(ctx, state, "b")
	require.NoError(t, err)
	assert.Equal(t, "r-pro", state.CurrentNodeID)
	assert.Equal(t, "b", state.Answers["q1"])
	assert.Equal(t, []string{"start", "q1", "r-pro"}, state.History)
}

func TestEngine_Advance_FallbackEdge(t *testing.T) {
	f := &funnel.Funnel{
		Version: 1,
		Name:    "Fallback",
		Nodes: []funnel.Node{
			{ID: "q1", Type: funnel.NodeTypeQuestion, Label: "Pick"},
			{ID: "n2", Type: funnel.NodeTypeContent, Label: "Conditioned target"},
			{ID: "n3", Type: funnel.NodeTypeContent, Label: "Open target"},
		},
		Edges: []funnel.Edge{
			{ID: "e1", Source: "q1", Target: "n2", Data: &funnel.EdgeData{Condition: funnel.ConditionOption, Value: "a"}},
			{ID: "e2", Source: "q1", Target: "n3"},
		},
	}

	var fallback *domain.FallbackEvent
	engine := New(buildModel(t, f), WithLifecycleHooks(domain.LifecycleHooks{
		OnFallback: func(ctx context.Context, ev *domain.FallbackEvent) {
			fallback = ev
		},
	}))

	ctx := context.Background()
	state, err := engine.Start(ctx)
	require.NoError(t, err)

	// "b" matches no condition: the unconditioned edge wins over the
	// conditioned first edge, and the degradation is reported.
	state, err = engine.Advance(ctx, state, "b")
	require.NoError(t, err)
	assert.Equal(t, "n3", state.CurrentNodeID)

	require.NotNil(t, fallback, "fallback hook should fire")
	assert.Equal(t, "q1", fallback.NodeID)
	assert.Equal(t, "b", fallback.OptionID)
	assert.Equal(t, "e2", fallback.EdgeID)
}

func TestEngine_Advance_MatchDoesNotReportFallback(t *testing.T) {
	fired := false
	engine := New(buildModel(t, quizFunnel()), WithLifecycleHooks(domain.LifecycleHooks{
		OnFallback: func(ctx context.Context, ev *domain.FallbackEvent) { fired = true },
	}))

	ctx := context.Background()
	state, err := engine.Start(ctx)
	require.NoError(t, err)
	state, err = engine.Advance(ctx, state, "")
	require.NoError(t, err)
	_, err = engine.Advance(ctx, state, "a")
	require.NoError(t, err)

	assert.False(t, fired, "a matched condition is not a fallback")
}

func TestEngine_Advance_TerminalIsNoOp(t *testing.T) {
	ctx := context.Background()
	engine := New(buildModel(t, quizFunnel()))

	state := domain.NewState("r-pro")
	next, err := engine.Advance(ctx, state, "a")
	require.NoError(t, err)
	assert.Same(t, state, next, "advancing a terminal step returns the state unchanged")
}

func TestEngine_Advance_UnknownNode(t *testing.T) {
	engine := New(buildModel(t, quizFunnel()))

	_, err := engine.Advance(context.Background(), domain.NewState("ghost"), "")
	var notFound *NodeNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.NodeID)
}

func TestEngine_Advance_DoesNotMutateInput(t *testing.T) {
	ctx := context.Background()
	engine := New(buildModel(t, quizFunnel()))

	state := domain.NewState("q1")
	next, err := engine.Advance(ctx, state, "b")
	require.NoError(t, err)

	assert.Equal(t, "q1", state.CurrentNodeID)
	assert.Empty(t, state.Answers)
	assert.NotSame(t, state, next)
}

func TestEngine_Step(t *testing.T) {
	engine := New(buildModel(t, quizFunnel()))

	node, terminal, err := engine.Step(domain.NewState("q1"))
	require.NoError(t, err)
	assert.Equal(t, "q1", node.ID)
	assert.False(t, terminal)

	node, terminal, err = engine.Step(domain.NewState("r-pro"))
	require.NoError(t, err)
	assert.Equal(t, "r-pro", node.ID)
	assert.True(t, terminal)
}

func TestEngine_Step_UnsupportedType(t *testing.T) {
	f := quizFunnel()
	f.Nodes = append(f.Nodes, funnel.Node{ID: "weird", Type: funnel.NodeType("hologram"), Label: "??"})

	engine := New(buildModel(t, f))

	_, _, err := engine.Step(domain.NewState("weird"))
	var unsupported *UnsupportedStepError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "weird", unsupported.NodeID)
}

func TestEngine_SubmitLead(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}

	var captured *domain.LeadEvent
	engine := New(buildModel(t, quizFunnel()),
		WithProject("proj-1"),
		WithLeadSink(sink),
		WithLifecycleHooks(domain.LifecycleHooks{
			OnLeadCaptured: func(ctx context.Context, ev *domain.LeadEvent) { captured = ev },
		}),
	)

	state := domain.NewState("form")
	state.Answers["q1"] = "a"

	next, lead, err := engine.SubmitLead(ctx, state, "jo@example.com", "Jo")
	require.NoError(t, err)

	require.Len(t, sink.leads, 1)
	stored := sink.leads[0]
	assert.Equal(t, "proj-1", stored.ProjectID)
	assert.Equal(t, "jo@example.com", stored.Email)
	assert.Equal(t, "Jo", stored.Name)
	assert.Equal(t, "a", stored.Answers["q1"])
	assert.Equal(t, "r-starter", stored.Outcome, "outcome is the result the form routes to")

	assert.Equal(t, "r-starter", next.CurrentNodeID)
	assert.Equal(t, "lead-1", lead.ID)

	require.NotNil(t, captured)
	assert.Equal(t, "form", captured.NodeID)
	assert.Equal(t, "lead-1", captured.LeadID)
}

func TestEngine_SubmitLead_EmailRequired(t *testing.T) {
	engine := New(buildModel(t, quizFunnel()), WithLeadSink(&memorySink{}))

	state := domain.NewState("form")
	_, _, err := engine.SubmitLead(context.Background(), state, "", "Jo")
	assert.ErrorIs(t, err, domain.ErrEmailRequired)
}

func TestEngine_SubmitLead_NotOnForm(t *testing.T) {
	engine := New(buildModel(t, quizFunnel()), WithLeadSink(&memorySink{}))

	_, _, err := engine.SubmitLead(context.Background(), domain.NewState("q1"), "jo@example.com", "")
	assert.ErrorIs(t, err, ErrNotFormStep)
}

func TestEngine_SubmitLead_SinkFailureKeepsState(t *testing.T) {
	sinkErr := errors.New("backend down")
	engine := New(buildModel(t, quizFunnel()), WithLeadSink(&memorySink{err: sinkErr}))

	state := domain.NewState("form")
	next, _, err := engine.SubmitLead(context.Background(), state, "jo@example.com", "")
	assert.ErrorIs(t, err, sinkErr)
	assert.Same(t, state, next, "visitor stays on the form to retry")
}

func TestEngine_AnswersSnapshotIsolated(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	engine := New(buildModel(t, quizFunnel()), WithLeadSink(sink))

	state := domain.NewState("form")
	state.Answers["q1"] = "a"

	_, _, err := engine.SubmitLead(ctx, state, "jo@example.com", "")
	require.NoError(t, err)

	state.Answers["q1"] = "mutated-later"
	assert.Equal(t, "a", sink.leads[0].Answers["q1"], "lead holds a snapshot, not a live reference")
}

// Replaying the same inputs over the same graph must always land in the
// same final state.
func TestEngine_Deterministic(t *testing.T) {
	ctx := context.Background()

	run := func() *domain.State {
		engine := New(buildModel(t, quizFunnel()))
		state, err := engine.Start(ctx)
		require.NoError(t, err)
		for _, opt := range []string{"", "b"} {
			state, err = engine.Advance(ctx, state, opt)
			require.NoError(t, err)
		}
		return state
	}

	first := run()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, run())
	}
}

func TestEngine_NodeEnterEvents(t *testing.T) {
	ctx := context.Background()

	var visited []string
	engine := New(buildModel(t, quizFunnel()), WithLifecycleHooks(domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, ev *domain.NodeEvent) {
			visited = append(visited, ev.NodeID)
		},
	}))

	state, err := engine.Start(ctx)
	require.NoError(t, err)
	state, err = engine.Advance(ctx, state, "")
	require.NoError(t, err)
	_, err = engine.Advance(ctx, state, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "q1", "form"}, visited)
}
