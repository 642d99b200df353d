package ports

import (
	"context"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
)

// LeadSink receives captured visitor records. Lead creation is a
// fire-and-forget append; no ordering is required between leads.
type LeadSink interface {
	// CreateLead appends a lead and returns its assigned id.
	// The store fills ID and CreatedAt.
	CreateLead(ctx context.Context, lead domain.Lead) (string, error)
}

// ProjectStore persists projects, their graphs, publications and leads.
//
// ReplaceGraph must behave as one atomic unit of work: update the
// project's scalar fields, drop every existing node and edge, and insert
// the new set. A concurrent reader sees either the fully-old or the
// fully-new graph, never a mix. Callers validate the funnel before
// handing it over; the store is free to trust its shape.
type ProjectStore interface {
	LeadSink

	// CreateProject creates a project from a validated funnel and stores
	// its initial graph.
	CreateProject(ctx context.Context, f *funnel.Funnel) (*domain.Project, error)

	// GetProject returns project identity and timestamps.
	// Returns domain.ErrProjectNotFound if the id is unknown.
	GetProject(ctx context.Context, projectID string) (*domain.Project, error)

	// ListProjects returns all projects, most recently created first.
	ListProjects(ctx context.Context) ([]domain.Project, error)

	// LoadGraph materializes the project's current graph into the wire
	// funnel shape, preserving stored node and edge order.
	LoadGraph(ctx context.Context, projectID string) (*funnel.Funnel, error)

	// ReplaceGraph atomically swaps the project's entire node/edge set.
	// On failure the old graph stays fully intact and the error wraps
	// domain.ErrReplaceFailed.
	ReplaceGraph(ctx context.Context, projectID string, f *funnel.Funnel) error

	// DeleteProject removes the project, its graph, publication and leads.
	DeleteProject(ctx context.Context, projectID string) error

	// GetOrCreateSlug returns the project's publish slug, minting a new
	// one on first publish. Re-publishing reuses the existing slug.
	GetOrCreateSlug(ctx context.Context, projectID string) (string, error)

	// GetSlug returns the existing slug or domain.ErrNotPublished.
	GetSlug(ctx context.Context, projectID string) (string, error)

	// ResolveSlug dereferences a slug to its project id.
	// Returns domain.ErrSlugNotFound if the slug is unknown.
	ResolveSlug(ctx context.Context, slug string) (string, error)

	// ListLeads returns the project's captured leads in insertion order.
	ListLeads(ctx context.Context, projectID string) ([]domain.Lead, error)
}
