// Package http exposes the funnel core as a JSON API. The routes cover
// the editor surface (project CRUD and publish) and the runtime client
// protocol (published funnel fetch and lead capture); step navigation
// itself runs client-side against the fetched graph.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quizkit/quizkit"
	"github.com/quizkit/quizkit/internal/logging"
	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/funnel"
	"github.com/quizkit/quizkit/pkg/graph"
)

// Server bundles the service with transport concerns.
type Server struct {
	svc    *quizkit.Service
	logger *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger for request handling.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(svc *quizkit.Service, opts ...Option) http.Handler {
	s := &Server{
		svc:    svc,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/health", s.health)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", s.listProjects)
		r.Post("/projects", s.createProject)
		r.Get("/projects/{id}", s.getProject)
		r.Put("/projects/{id}", s.updateProject)
		r.Delete("/projects/{id}", s.deleteProject)
		r.Post("/projects/{id}/publish", s.publish)
		r.Get("/projects/{id}/publish", s.publication)
		r.Get("/projects/{id}/leads", s.listLeads)
		r.Get("/p/{slug}", s.published)
		r.Post("/leads", s.createLead)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": quizkit.Version,
	})
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.svc.ListProjects(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, projects)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var f funnel.Funnel
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	project, err := s.svc.CreateProject(r.Context(), &f)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, project)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.ExportFunnel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var f funnel.Funnel
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := s.svc.SaveProject(r.Context(), chi.URLParam(r, "id"), &f); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteProject(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) publish(w http.ResponseWriter, r *http.Request) {
	pub, err := s.svc.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pub)
}

func (s *Server) publication(w http.ResponseWriter, r *http.Request) {
	pub, err := s.svc.Publication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pub)
}

func (s *Server) published(w http.ResponseWriter, r *http.Request) {
	projectID, f, err := s.svc.ResolvePublished(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The runtime client asks for ?meta to learn where to post leads.
	if r.URL.Query().Get("meta") != "" {
		s.writeJSON(w, http.StatusOK, map[string]string{"projectId": projectID})
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

type leadRequest struct {
	ProjectID string         `json:"projectId"`
	Email     string         `json:"email"`
	Name      string         `json:"name,omitempty"`
	Answers   map[string]any `json:"answers,omitempty"`
	Outcome   string         `json:"outcome,omitempty"`
}

func (s *Server) createLead(w http.ResponseWriter, r *http.Request) {
	var body leadRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if body.ProjectID == "" || body.Email == "" {
		s.writeJSON(w, http.StatusBadRequest, errorBody("projectId and email are required"))
		return
	}

	id, err := s.svc.CaptureLead(r.Context(), domain.Lead{
		ProjectID: body.ProjectID,
		Email:     body.Email,
		Name:      body.Name,
		Answers:   body.Answers,
		Outcome:   body.Outcome,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) listLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.svc.Leads(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, leads)
}

// writeError maps core errors to HTTP statuses: validation and graph
// shape problems are the caller's fault, unknown ids are 404, everything
// else is a server fault.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var aggr *funnel.AggregateError
	var dangling *graph.DanglingReferenceError
	var duplicate *graph.DuplicateIDError

	switch {
	case errors.As(err, &aggr):
		details := make([]string, 0, len(aggr.Errors))
		for _, e := range aggr.Errors {
			details = append(details, e.Error())
		}
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": details,
		})
	case errors.As(err, &dangling), errors.As(err, &duplicate):
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrEmailRequired):
		s.writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, domain.ErrProjectNotFound),
		errors.Is(err, domain.ErrSlugNotFound),
		errors.Is(err, domain.ErrNotPublished):
		s.writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	default:
		s.logger.Error("request failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("response encode failed", "error", err)
	}
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
