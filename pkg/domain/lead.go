package domain

import "time"

// Lead is a captured visitor record. Leads are append-only: created once
// at form submission and never mutated or deleted by the core.
type Lead struct {
	ID        string         `json:"id"`
	ProjectID string         `json:"projectId"`
	Email     string         `json:"email"`
	Name      string         `json:"name,omitempty"`
	Answers   map[string]any `json:"answers"`
	// Outcome tags the result the visitor was routed to, when known.
	Outcome   string    `json:"outcome,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
