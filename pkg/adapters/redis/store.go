// Package redis implements ports.ProjectStore and ports.DistributedLocker
// on Redis. Graph replaces run inside a single MULTI/EXEC transaction, so
// readers observe either the fully-old or fully-new node/edge set.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
)

// Store implements ports.ProjectStore using Redis.
//
// Key layout (under the configured prefix):
//
//	projects                   ZSET  project ids scored by creation time
//	project:{id}               JSON  project identity and scalars
//	project:{id}:nodes         LIST  node JSON, stored order
//	project:{id}:edges         LIST  edge JSON, stored order
//	project:{id}:leads         LIST  lead JSON, append-only
//	project:{id}:slug          STR   publish slug
//	slug:{slug}                STR   project id
type Store struct {
	client *backend.Client
	prefix string
}

// Option configures the Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// New creates a new Redis store.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "quizkit:",
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying connection so callers can share it with
// the Locker.
func (s *Store) Client() *backend.Client { return s.client }

func (s *Store) indexKey() string              { return s.prefix + "projects" }
func (s *Store) projectKey(id string) string   { return s.prefix + "project:" + id }
func (s *Store) nodesKey(id string) string     { return s.projectKey(id) + ":nodes" }
func (s *Store) edgesKey(id string) string     { return s.projectKey(id) + ":edges" }
func (s *Store) leadsKey(id string) string     { return s.projectKey(id) + ":leads" }
func (s *Store) slugOfKey(id string) string    { return s.projectKey(id) + ":slug" }
func (s *Store) slugKey(slug string) string    { return s.prefix + "slug:" + slug }

// CreateProject creates a project and stores its initial graph in one
// transaction.
func (s *Store) CreateProject(ctx context.Context, f *funnel.Funnel) (*domain.Project, error) {
	now := time.Now().UTC()
	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	meta, err := json.Marshal(project)
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	nodes, edges, err := marshalGraph(f)
	if err != nil {
		return nil, err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.projectKey(project.ID), meta, 0)
		if len(nodes) > 0 {
			pipe.RPush(ctx, s.nodesKey(project.ID), nodes...)
		}
		if len(edges) > 0 {
			pipe.RPush(ctx, s.edgesKey(project.ID), edges...)
		}
		pipe.ZAdd(ctx, s.indexKey(), backend.Z{
			Score:  float64(now.UnixNano()),
			Member: project.ID,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// GetProject returns project identity and timestamps.
func (s *Store) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.loadProject(ctx, projectID)
}

func (s *Store) loadProject(ctx context.Context, projectID string) (*domain.Project, error) {
	val, err := s.client.Get(ctx, s.projectKey(projectID)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	var project domain.Project
	if err := json.Unmarshal([]byte(val), &project); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &project, nil
}

// ListProjects returns all projects, most recently created first.
func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.loadProject(ctx, id)
		if err == domain.ErrProjectNotFound {
			// Index can briefly outlive a deleted project.
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *project)
	}
	return out, nil
}

// LoadGraph materializes the project's current graph in the wire shape.
// Meta, nodes and edges are read in a single MULTI/EXEC so the snapshot
// can never interleave with a concurrent ReplaceGraph commit.
func (s *Store) LoadGraph(ctx context.Context, projectID string) (*funnel.Funnel, error) {
	var (
		metaCmd  *backend.StringCmd
		nodesCmd *backend.StringSliceCmd
		edgesCmd *backend.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		metaCmd = pipe.Get(ctx, s.projectKey(projectID))
		nodesCmd = pipe.LRange(ctx, s.nodesKey(projectID), 0, -1)
		edgesCmd = pipe.LRange(ctx, s.edgesKey(projectID), 0, -1)
		return nil
	})
	if err != nil && err != backend.Nil {
		return nil, fmt.Errorf("load graph: %w", err)
	}

	val, err := metaCmd.Result()
	if err == backend.Nil {
		return nil, domain.ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	var project domain.Project
	if err := json.Unmarshal([]byte(val), &project); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}

	rawNodes, err := nodesCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	rawEdges, err := edgesCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("load edges: %w", err)
	}

	f := &funnel.Funnel{
		Version:     funnel.Version,
		Name:        project.Name,
		Description: project.Description,
		Nodes:       make([]funnel.Node, 0, len(rawNodes)),
		Edges:       make([]funnel.Edge, 0, len(rawEdges)),
	}
	for _, raw := range rawNodes {
		var n funnel.Node
		if err := json.Unmarshal([]byte(raw), &n); err != nil {
			return nil, fmt.Errorf("unmarshal node: %w", err)
		}
		f.Nodes = append(f.Nodes, n)
	}
	for _, raw := range rawEdges {
		var e funnel.Edge
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("unmarshal edge: %w", err)
		}
		f.Edges = append(f.Edges, e)
	}
	return f, nil
}

// ReplaceGraph swaps the project's entire node/edge set in one MULTI/EXEC
// transaction: scalars updated, old lists dropped, new entries inserted.
// Redis queues the commands and applies them atomically on EXEC, so a
// failure before commit leaves the old graph untouched.
func (s *Store) ReplaceGraph(ctx context.Context, projectID string, f *funnel.Funnel) error {
	project, err := s.loadProject(ctx, projectID)
	if err != nil {
		return err
	}

	project.Name = f.Name
	project.Description = f.Description
	project.UpdatedAt = time.Now().UTC()

	meta, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReplaceFailed, err)
	}
	nodes, edges, err := marshalGraph(f)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReplaceFailed, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.projectKey(projectID), meta, 0)
		pipe.Del(ctx, s.nodesKey(projectID))
		pipe.Del(ctx, s.edgesKey(projectID))
		if len(nodes) > 0 {
			pipe.RPush(ctx, s.nodesKey(projectID), nodes...)
		}
		if len(edges) > 0 {
			pipe.RPush(ctx, s.edgesKey(projectID), edges...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrReplaceFailed, err)
	}
	return nil
}

// DeleteProject removes the project, its graph, publication and leads.
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return err
	}

	slug, err := s.client.Get(ctx, s.slugOfKey(projectID)).Result()
	if err != nil && err != backend.Nil {
		return fmt.Errorf("delete project: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.projectKey(projectID))
		pipe.Del(ctx, s.nodesKey(projectID))
		pipe.Del(ctx, s.edgesKey(projectID))
		pipe.Del(ctx, s.leadsKey(projectID))
		pipe.Del(ctx, s.slugOfKey(projectID))
		if slug != "" {
			pipe.Del(ctx, s.slugKey(slug))
		}
		pipe.ZRem(ctx, s.indexKey(), projectID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// GetOrCreateSlug returns the project's publish slug, minting one on
// first publish. Collisions are retried with a fresh slug.
func (s *Store) GetOrCreateSlug(ctx context.Context, projectID string) (string, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return "", err
	}

	slug, err := s.client.Get(ctx, s.slugOfKey(projectID)).Result()
	if err == nil {
		return slug, nil
	}
	if err != backend.Nil {
		return "", fmt.Errorf("get slug: %w", err)
	}

	for {
		slug = uuid.NewString()[:8]
		ok, err := s.client.SetNX(ctx, s.slugKey(slug), projectID, 0).Result()
		if err != nil {
			return "", fmt.Errorf("mint slug: %w", err)
		}
		if ok {
			break
		}
	}

	// A concurrent first publish may have recorded its slug already.
	// SetNX decides the winner; the loser discards its mint so no orphan
	// slug key keeps resolving to the project.
	claimed, err := s.client.SetNX(ctx, s.slugOfKey(projectID), slug, 0).Result()
	if err != nil {
		return "", fmt.Errorf("record slug: %w", err)
	}
	if !claimed {
		if err := s.client.Del(ctx, s.slugKey(slug)).Err(); err != nil {
			return "", fmt.Errorf("discard slug: %w", err)
		}
		winner, err := s.client.Get(ctx, s.slugOfKey(projectID)).Result()
		if err != nil {
			return "", fmt.Errorf("get slug: %w", err)
		}
		return winner, nil
	}
	return slug, nil
}

// GetSlug returns the existing slug or domain.ErrNotPublished.
func (s *Store) GetSlug(ctx context.Context, projectID string) (string, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return "", err
	}
	slug, err := s.client.Get(ctx, s.slugOfKey(projectID)).Result()
	if err == backend.Nil {
		return "", domain.ErrNotPublished
	}
	if err != nil {
		return "", fmt.Errorf("get slug: %w", err)
	}
	return slug, nil
}

// ResolveSlug dereferences a slug to its project id.
func (s *Store) ResolveSlug(ctx context.Context, slug string) (string, error) {
	projectID, err := s.client.Get(ctx, s.slugKey(slug)).Result()
	if err == backend.Nil {
		return "", domain.ErrSlugNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolve slug: %w", err)
	}
	return projectID, nil
}

// CreateLead appends a lead to the project's lead list.
func (s *Store) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	if _, err := s.loadProject(ctx, lead.ProjectID); err != nil {
		return "", err
	}

	lead.ID = uuid.NewString()
	lead.CreatedAt = time.Now().UTC()
	if lead.Answers == nil {
		lead.Answers = map[string]any{}
	}

	data, err := json.Marshal(lead)
	if err != nil {
		return "", fmt.Errorf("marshal lead: %w", err)
	}
	if err := s.client.RPush(ctx, s.leadsKey(lead.ProjectID), data).Err(); err != nil {
		return "", fmt.Errorf("append lead: %w", err)
	}
	return lead.ID, nil
}

// ListLeads returns the project's leads in insertion order.
func (s *Store) ListLeads(ctx context.Context, projectID string) ([]domain.Lead, error) {
	if _, err := s.loadProject(ctx, projectID); err != nil {
		return nil, err
	}

	raw, err := s.client.LRange(ctx, s.leadsKey(projectID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	out := make([]domain.Lead, 0, len(raw))
	for _, item := range raw {
		var lead domain.Lead
		if err := json.Unmarshal([]byte(item), &lead); err != nil {
			return nil, fmt.Errorf("unmarshal lead: %w", err)
		}
		out = append(out, lead)
	}
	return out, nil
}

// marshalGraph encodes nodes and edges individually, preserving order.
func marshalGraph(f *funnel.Funnel) (nodes, edges []any, err error) {
	for i := range f.Nodes {
		data, err := json.Marshal(&f.Nodes[i])
		if err != nil {
			return nil, nil, fmt.Errorf("marshal node: %w", err)
		}
		nodes = append(nodes, data)
	}
	for i := range f.Edges {
		data, err := json.Marshal(&f.Edges[i])
		if err != nil {
			return nil, nil, fmt.Errorf("marshal edge: %w", err)
		}
		edges = append(edges, data)
	}
	return nodes, edges, nil
}
