package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter    EventType = "node_enter"
	EventFallback     EventType = "fallback"
	EventLeadCaptured EventType = "lead_captured"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// NodeEvent represents entry into a step.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

// FallbackEvent fires when edge selection found no matching condition and
// degraded to the first outgoing edge. This usually means an authoring
// mistake the graceful-degradation rule would otherwise hide.
type FallbackEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	OptionID string `json:"option_id"`
	EdgeID   string `json:"edge_id"`
}

// LeadEvent represents a captured lead.
type LeadEvent struct {
	EventBase
	ProjectID string `json:"project_id"`
	LeadID    string `json:"lead_id"`
	NodeID    string `json:"node_id"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks run synchronously inside the transition; keep them cheap.
type LifecycleHooks struct {
	OnNodeEnter    func(context.Context, *NodeEvent)
	OnFallback     func(context.Context, *FallbackEvent)
	OnLeadCaptured func(context.Context, *LeadEvent)
}
