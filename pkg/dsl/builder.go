package dsl

import (
	"fmt"

	"github.com/quizkit/quizkit/pkg/funnel"
)

// Builder accumulates nodes and edges for one funnel definition.
// Nodes and edges keep insertion order; the stored order drives both
// entry fallback and edge selection at runtime.
type Builder struct {
	name        string
	description string
	nodes       []funnel.Node
	edges       []funnel.Edge
	edgeSeq     int
}

// New creates a builder for a funnel with the given name.
func New(name string) *Builder {
	return &Builder{name: name}
}

// Description sets the funnel description.
func (b *Builder) Description(text string) *Builder {
	b.description = text
	return b
}

// Start adds the entry node.
func (b *Builder) Start(id, label string) *Builder {
	b.nodes = append(b.nodes, funnel.Node{
		ID:    id,
		Type:  funnel.NodeTypeStart,
		Label: label,
	})
	return b
}

// Question adds a question node with the given options (hard step).
func (b *Builder) Question(id, label string, options ...funnel.Option) *Builder {
	b.nodes = append(b.nodes, funnel.Node{
		ID:    id,
		Type:  funnel.NodeTypeQuestion,
		Label: label,
		Data:  funnel.NodeData{Question: label, Options: options},
	})
	return b
}

// Form adds a lead-capture node with the given fields.
func (b *Builder) Form(id, label string, fields ...funnel.FormField) *Builder {
	b.nodes = append(b.nodes, funnel.Node{
		ID:    id,
		Type:  funnel.NodeTypeForm,
		Label: label,
		Data:  funnel.NodeData{FormFields: fields},
	})
	return b
}

// Content adds a markup node that displays and continues (soft step).
func (b *Builder) Content(id, label, html string) *Builder {
	b.nodes = append(b.nodes, funnel.Node{
		ID:    id,
		Type:  funnel.NodeTypeContent,
		Label: label,
		Data:  funnel.NodeData{HTML: html},
	})
	return b
}

// Result adds a terminal outcome node.
func (b *Builder) Result(id, title, body string) *Builder {
	b.nodes = append(b.nodes, funnel.Node{
		ID:    id,
		Type:  funnel.NodeTypeResult,
		Label: title,
		Data:  funnel.NodeData{Result: &funnel.Result{Title: title, Body: body}},
	})
	return b
}

// Go adds an unconditional edge from source to target.
func (b *Builder) Go(source, target string) *Builder {
	b.edges = append(b.edges, funnel.Edge{
		ID:     b.nextEdgeID(),
		Source: source,
		Target: target,
	})
	return b
}

// When adds an edge taken when the visitor picks the given option.
func (b *Builder) When(source, optionID, target string) *Builder {
	b.edges = append(b.edges, funnel.Edge{
		ID:     b.nextEdgeID(),
		Source: source,
		Target: target,
		Data: &funnel.EdgeData{
			Condition: funnel.ConditionOption,
			Value:     optionID,
		},
	})
	return b
}

// Build assembles and validates the funnel.
func (b *Builder) Build() (*funnel.Funnel, error) {
	f := &funnel.Funnel{
		Version:     funnel.Version,
		Name:        b.name,
		Description: b.description,
		Nodes:       b.nodes,
		Edges:       b.edges,
	}
	if err := funnel.Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

func (b *Builder) nextEdgeID() string {
	b.edgeSeq++
	return fmt.Sprintf("e%d", b.edgeSeq)
}

// Choice is a shorthand constructor for a question option.
func Choice(id, label string) funnel.Option {
	return funnel.Option{ID: id, Label: label}
}

// Field is a shorthand constructor for a form field.
func Field(id, label string, kind funnel.FieldType) funnel.FormField {
	return funnel.FormField{ID: id, Label: label, Type: kind}
}
