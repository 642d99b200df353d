package quizkit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/quizkit/quizkit/internal/logging"
	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
	"github.com/quizkit/quizkit/pkg/ports"
	"github.com/quizkit/quizkit/pkg/runtime"
)

// Version is the library version reported by the CLI and the HTTP info
// endpoint.
var Version = "0.3.0"

// Service is the high-level entry point for the quizkit library. It ties
// the structural validator, the graph model, the replace protocol and the
// execution engine to a ProjectStore.
type Service struct {
	store   ports.ProjectStore
	locker  ports.DistributedLocker
	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	baseURL string
	lockTTL time.Duration
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLocker enables distributed per-project locking around graph
// replaces. Single-process deployments can skip it; the store's own
// transaction already keeps each replace atomic.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Service) { s.locker = locker }
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithLifecycleHooks registers observability hooks passed to every
// session engine.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Service) { s.hooks = hooks }
}

// WithBaseURL sets the public base used to build published funnel URLs.
func WithBaseURL(base string) Option {
	return func(s *Service) { s.baseURL = base }
}

// New initializes the Service around a project store.
func New(store ports.ProjectStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("a project store is required")
	}
	s := &Service{
		store:   store,
		logger:  logging.NewNop(),
		lockTTL: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateProject validates a funnel, checks its referential integrity and
// creates a new project holding it.
func (s *Service) CreateProject(ctx context.Context, f *funnel.Funnel) (*domain.Project, error) {
	if err := funnel.Validate(f); err != nil {
		return nil, err
	}
	if _, err := graph.Build(f); err != nil {
		return nil, err
	}

	project, err := s.store.CreateProject(ctx, f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project", project.ID, "name", project.Name)
	return project, nil
}

// SaveProject replaces a project's entire graph with a new funnel. The
// incoming payload is validated first; nothing is written on a validation
// or dangling-reference failure. The store applies the swap as one atomic
// unit, and an optional distributed lock serializes concurrent saves for
// the same project.
func (s *Service) SaveProject(ctx context.Context, projectID string, f *funnel.Funnel) error {
	if err := funnel.Validate(f); err != nil {
		return err
	}
	if _, err := graph.Build(f); err != nil {
		return err
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, projectID, s.lockTTL)
		if err != nil {
			return fmt.Errorf("lock project %s: %w", projectID, err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				s.logger.Warn("failed to release project lock", "project", projectID, "error", err)
			}
		}()
	}

	if err := s.store.ReplaceGraph(ctx, projectID, f); err != nil {
		return err
	}
	s.logger.Info("graph replaced", "project", projectID, "nodes", len(f.Nodes), "edges", len(f.Edges))
	return nil
}

// Project returns project identity and timestamps.
func (s *Service) Project(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.store.GetProject(ctx, projectID)
}

// ListProjects returns all projects, most recently created first.
func (s *Service) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.store.ListProjects(ctx)
}

// ExportFunnel materializes a project's current graph in the wire shape.
// The result round-trips through import unchanged.
func (s *Service) ExportFunnel(ctx context.Context, projectID string) (*funnel.Funnel, error) {
	return s.store.LoadGraph(ctx, projectID)
}

// DeleteProject removes a project and everything attached to it.
func (s *Service) DeleteProject(ctx context.Context, projectID string) error {
	return s.store.DeleteProject(ctx, projectID)
}

// Publish makes a project's graph publicly addressable under a stable
// slug. The first publish mints the slug; later publishes reuse it. The
// slug always resolves to the latest saved graph (live by reference, not
// a frozen snapshot). A graph that fails to build blocks publishing.
func (s *Service) Publish(ctx context.Context, projectID string) (*domain.Publication, error) {
	f, err := s.store.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if _, err := graph.Build(f); err != nil {
		return nil, err
	}

	slug, err := s.store.GetOrCreateSlug(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project published", "project", projectID, "slug", slug)
	return &domain.Publication{Slug: slug, URL: s.publicURL(slug)}, nil
}

// Publication returns the project's existing publication or
// domain.ErrNotPublished.
func (s *Service) Publication(ctx context.Context, projectID string) (*domain.Publication, error) {
	slug, err := s.store.GetSlug(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &domain.Publication{Slug: slug, URL: s.publicURL(slug)}, nil
}

// ResolvePublished dereferences a slug to the owning project id and its
// current graph in the wire shape.
func (s *Service) ResolvePublished(ctx context.Context, slug string) (string, *funnel.Funnel, error) {
	projectID, err := s.store.ResolveSlug(ctx, slug)
	if err != nil {
		return "", nil, err
	}
	f, err := s.store.LoadGraph(ctx, projectID)
	if err != nil {
		return "", nil, err
	}
	return projectID, f, nil
}

// Session builds an execution engine over a project's current graph.
// The engine is bound to the project so form submissions append leads to
// the right place.
func (s *Service) Session(ctx context.Context, projectID string) (*runtime.Engine, error) {
	f, err := s.store.LoadGraph(ctx, projectID)
	if err != nil {
		return nil, err
	}
	model, err := graph.Build(f)
	if err != nil {
		return nil, err
	}
	return runtime.New(model,
		runtime.WithProject(projectID),
		runtime.WithLeadSink(s.store),
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
	), nil
}

// CaptureLead records a lead directly, for clients that run the engine
// locally and only call home on form submission.
func (s *Service) CaptureLead(ctx context.Context, lead domain.Lead) (string, error) {
	if lead.Email == "" {
		return "", domain.ErrEmailRequired
	}
	id, err := s.store.CreateLead(ctx, lead)
	if err != nil {
		return "", err
	}
	s.logger.Info("lead captured", "project", lead.ProjectID, "lead", id)
	return id, nil
}

// Leads returns a project's captured leads in insertion order.
func (s *Service) Leads(ctx context.Context, projectID string) ([]domain.Lead, error) {
	return s.store.ListLeads(ctx, projectID)
}

func (s *Service) publicURL(slug string) string {
	return s.baseURL + "/p/" + slug
}
