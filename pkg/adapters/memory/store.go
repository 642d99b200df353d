// Package memory implements ports.ProjectStore in process memory.
// It backs tests and single-binary development mode.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
)

// record is one project's full stored state. ReplaceGraph stages a new
// record and swaps it in under the lock, so readers always observe
// either the fully-old or fully-new graph.
type record struct {
	project domain.Project
	funnel  funnel.Funnel
}

// Store implements ports.ProjectStore in memory.
// Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	projects map[string]*record
	order    []string          // project ids in creation order
	slugs    map[string]string // slug -> project id
	bySlug   map[string]string // project id -> slug
	leads    map[string][]domain.Lead

	// replaceHook runs inside a replace after the old rows are dropped
	// from the staged copy and before the new ones land. Tests use it to
	// force a mid-transaction failure.
	replaceHook func(projectID string) error
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		projects: make(map[string]*record),
		slugs:    make(map[string]string),
		bySlug:   make(map[string]string),
		leads:    make(map[string][]domain.Lead),
	}
}

// SetReplaceHook installs a failure-injection hook for tests.
func (s *Store) SetReplaceHook(fn func(projectID string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceHook = fn
}

// CreateProject creates a project from a validated funnel.
func (s *Store) CreateProject(ctx context.Context, f *funnel.Funnel) (*domain.Project, error) {
	copied, err := copyFunnel(f)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[project.ID] = &record{project: project, funnel: *copied}
	s.order = append(s.order, project.ID)

	ret := project
	return &ret, nil
}

// GetProject returns project identity and timestamps.
func (s *Store) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	ret := rec.project
	return &ret, nil
}

// ListProjects returns all projects, most recently created first.
func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Project, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.projects[s.order[i]].project)
	}
	return out, nil
}

// LoadGraph materializes the project's current graph in the wire shape.
func (s *Store) LoadGraph(ctx context.Context, projectID string) (*funnel.Funnel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}

	f, err := copyFunnel(&rec.funnel)
	if err != nil {
		return nil, err
	}
	f.Name = rec.project.Name
	f.Description = rec.project.Description
	return f, nil
}

// ReplaceGraph atomically swaps the project's entire node/edge set.
// The new graph is staged outside the live record; any failure leaves
// the old graph fully intact.
func (s *Store) ReplaceGraph(ctx context.Context, projectID string, f *funnel.Funnel) error {
	staged, err := copyFunnel(f)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReplaceFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.projects[projectID]
	if !ok {
		return domain.ErrProjectNotFound
	}

	if s.replaceHook != nil {
		if err := s.replaceHook(projectID); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrReplaceFailed, err)
		}
	}

	rec.project.Name = f.Name
	rec.project.Description = f.Description
	rec.project.UpdatedAt = time.Now().UTC()
	rec.funnel = *staged
	return nil
}

// DeleteProject removes the project, its publication and leads.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(s.projects, projectID)
	delete(s.leads, projectID)
	if slug, ok := s.bySlug[projectID]; ok {
		delete(s.slugs, slug)
		delete(s.bySlug, projectID)
	}
	for i, id := range s.order {
		if id == projectID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// GetOrCreateSlug returns the project's publish slug, minting one on
// first publish.
func (s *Store) GetOrCreateSlug(ctx context.Context, projectID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[projectID]; !ok {
		return "", domain.ErrProjectNotFound
	}
	if slug, ok := s.bySlug[projectID]; ok {
		return slug, nil
	}

	slug := newSlug()
	for s.slugs[slug] != "" {
		slug = newSlug()
	}
	s.slugs[slug] = projectID
	s.bySlug[projectID] = slug
	return slug, nil
}

// GetSlug returns the existing slug or domain.ErrNotPublished.
func (s *Store) GetSlug(ctx context.Context, projectID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.projects[projectID]; !ok {
		return "", domain.ErrProjectNotFound
	}
	slug, ok := s.bySlug[projectID]
	if !ok {
		return "", domain.ErrNotPublished
	}
	return slug, nil
}

// ResolveSlug dereferences a slug to its project id.
func (s *Store) ResolveSlug(ctx context.Context, slug string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	projectID, ok := s.slugs[slug]
	if !ok {
		return "", domain.ErrSlugNotFound
	}
	return projectID, nil
}

// CreateLead appends a lead. Leads are never mutated after creation.
func (s *Store) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[lead.ProjectID]; !ok {
		return "", domain.ErrProjectNotFound
	}

	lead.ID = uuid.NewString()
	lead.CreatedAt = time.Now().UTC()
	if lead.Answers == nil {
		lead.Answers = map[string]any{}
	}
	s.leads[lead.ProjectID] = append(s.leads[lead.ProjectID], lead)
	return lead.ID, nil
}

// ListLeads returns the project's leads in insertion order.
func (s *Store) ListLeads(ctx context.Context, projectID string) ([]domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.projects[projectID]; !ok {
		return nil, domain.ErrProjectNotFound
	}
	out := make([]domain.Lead, len(s.leads[projectID]))
	copy(out, s.leads[projectID])
	return out, nil
}

// copyFunnel deep-copies through the wire encoding so stored graphs can
// never alias caller memory.
func copyFunnel(f *funnel.Funnel) (*funnel.Funnel, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("copy funnel: %w", err)
	}
	var out funnel.Funnel
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copy funnel: %w", err)
	}
	return &out, nil
}

func newSlug() string {
	return uuid.NewString()[:8]
}
