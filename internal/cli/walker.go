// Package cli drives an interactive funnel session in the terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/quizkit/quizkit/internal/presentation/tui"
	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
	"github.com/quizkit/quizkit/pkg/runtime"
)

// Walker runs a funnel session over plain reader/writer streams so tests
// can script it.
type Walker struct {
	engine   *runtime.Engine
	renderer *tui.Renderer
	in       *bufio.Scanner
	out      io.Writer
}

// NewWalker builds a walker over the given graph model.
func NewWalker(model *graph.Model, in io.Reader, out io.Writer) *Walker {
	return &Walker{
		engine:   runtime.New(model),
		renderer: tui.NewRenderer(),
		in:       bufio.NewScanner(in),
		out:      out,
	}
}

// Run walks the funnel from its entry node until a terminal step or the
// input stream ends. It returns the final state.
func (w *Walker) Run(ctx context.Context) (*domain.State, error) {
	state, err := w.engine.Start(ctx)
	if err != nil {
		return nil, err
	}

	for {
		node, terminal, err := w.engine.Step(state)
		if err != nil {
			return state, err
		}

		fmt.Fprint(w.out, w.renderer.Step(node))
		if terminal {
			return state, nil
		}

		switch node.Type {
		case funnel.NodeTypeQuestion:
			optionID, ok := w.askOption(node)
			if !ok {
				return state, nil
			}
			state, err = w.engine.Advance(ctx, state, optionID)
		case funnel.NodeTypeForm:
			email, name, ok := w.askContact(node)
			if !ok {
				return state, nil
			}
			state, _, err = w.engine.SubmitLead(ctx, state, email, name)
			if errors.Is(err, domain.ErrEmailRequired) {
				fmt.Fprintln(w.out, w.renderer.Notice("An email address is required."))
				err = nil
				continue
			}
		default:
			// Soft steps continue on enter.
			fmt.Fprint(w.out, w.renderer.Prompt("Press enter to continue."))
			if !w.in.Scan() {
				return state, nil
			}
			state, err = w.engine.Advance(ctx, state, "")
		}
		if err != nil {
			return state, err
		}
	}
}

// askOption reads a numbered choice or an option id. Returns ok=false
// when input ends.
func (w *Walker) askOption(node funnel.Node) (string, bool) {
	for {
		fmt.Fprint(w.out, w.renderer.Prompt("Your choice:"))
		if !w.in.Scan() {
			return "", false
		}
		answer := strings.TrimSpace(w.in.Text())

		if num, err := strconv.Atoi(answer); err == nil {
			if num >= 1 && num <= len(node.Data.Options) {
				return node.Data.Options[num-1].ID, true
			}
		}
		for _, opt := range node.Data.Options {
			if opt.ID == answer {
				return opt.ID, true
			}
		}
		fmt.Fprintln(w.out, w.renderer.Notice("Pick one of the listed options."))
	}
}

func (w *Walker) askContact(node funnel.Node) (email, name string, ok bool) {
	fmt.Fprint(w.out, w.renderer.Prompt("Email:"))
	if !w.in.Scan() {
		return "", "", false
	}
	email = strings.TrimSpace(w.in.Text())

	fmt.Fprint(w.out, w.renderer.Prompt("Name (optional):"))
	if !w.in.Scan() {
		return email, "", true
	}
	name = strings.TrimSpace(w.in.Text())
	return email, name, true
}
