package cli_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizkit/quizkit/internal/cli"
	"github.com/quizkit/quizkit/pkg/dsl"
	"github.com/quizkit/quizkit/pkg/graph"
)

func walkerModel(t *testing.T) *graph.Model {
	t.Helper()
	f, err := dsl.New("Terminal quiz").
		Start("welcome", "Welcome").
		Question("q1", "Pick a door",
			dsl.Choice("left", "Left door"),
			dsl.Choice("right", "Right door"),
		).
		Result("r-left", "You went left", "A dragon!").
		Result("r-right", "You went right", "Treasure!").
		Go("welcome", "q1").
		When("q1", "left", "r-left").
		When("q1", "right", "r-right").
		Build()
	require.NoError(t, err)

	model, err := graph.Build(f)
	require.NoError(t, err)
	return model
}

func TestWalker_NumberedChoice(t *testing.T) {
	// enter past the start step, then pick option 2.
	in := strings.NewReader("\n2\n")
	var out bytes.Buffer

	walker := cli.NewWalker(walkerModel(t), in, &out)
	state, err := walker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "r-right", state.CurrentNodeID)
	assert.Contains(t, out.String(), "Pick a door")
	assert.Contains(t, out.String(), "Treasure!")
}

func TestWalker_ChoiceByOptionID(t *testing.T) {
	in := strings.NewReader("\nleft\n")
	var out bytes.Buffer

	walker := cli.NewWalker(walkerModel(t), in, &out)
	state, err := walker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "r-left", state.CurrentNodeID)
}

func TestWalker_RejectsBadChoice(t *testing.T) {
	in := strings.NewReader("\n9\n1\n")
	var out bytes.Buffer

	walker := cli.NewWalker(walkerModel(t), in, &out)
	state, err := walker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "r-left", state.CurrentNodeID)
	assert.Contains(t, out.String(), "Pick one of the listed options")
}

func TestWalker_StopsWhenInputEnds(t *testing.T) {
	in := strings.NewReader("") // nothing to read
	var out bytes.Buffer

	walker := cli.NewWalker(walkerModel(t), in, &out)
	state, err := walker.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "welcome", state.CurrentNodeID)
}
