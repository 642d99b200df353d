package domain

import "time"

// Project wraps a funnel graph with identity and timestamps. The graph
// itself is owned by the store and swapped wholesale on every save.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Publication is the public address of a project's current graph.
// The slug is stable across re-publishes; it always resolves to the
// latest saved graph, not a frozen point-in-time copy.
type Publication struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}
