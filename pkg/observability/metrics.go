// Package observability exposes prometheus collectors for the funnel
// runtime and adapts them to domain.LifecycleHooks, so the engine stays
// free of any metrics dependency.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quizkit/quizkit/pkg/domain"
)

// Metrics holds the runtime collectors.
type Metrics struct {
	NodeVisits *prometheus.CounterVec
	Fallbacks  *prometheus.CounterVec
	Leads      *prometheus.CounterVec
}

// New creates and registers the collectors.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizkit_node_visits_total",
				Help: "Total number of step visits",
			},
			[]string{"node_type"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizkit_edge_fallbacks_total",
				Help: "Transitions that found no matching edge condition and degraded to the first edge",
			},
			[]string{"node_id"},
		),
		Leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quizkit_leads_captured_total",
				Help: "Leads captured at form steps",
			},
			[]string{"project_id"},
		),
	}
	reg.MustRegister(m.NodeVisits, m.Fallbacks, m.Leads)
	return m
}

// Hooks adapts the collectors to engine lifecycle hooks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.NodeType).Inc()
		},
		OnFallback: func(_ context.Context, e *domain.FallbackEvent) {
			m.Fallbacks.WithLabelValues(e.NodeID).Inc()
		},
		OnLeadCaptured: func(_ context.Context, e *domain.LeadEvent) {
			m.Leads.WithLabelValues(e.ProjectID).Inc()
		},
	}
}

// Merge chains two hook sets so callers can combine metrics with logging
// or custom hooks.
func Merge(a, b domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			if a.OnNodeEnter != nil {
				a.OnNodeEnter(ctx, e)
			}
			if b.OnNodeEnter != nil {
				b.OnNodeEnter(ctx, e)
			}
		},
		OnFallback: func(ctx context.Context, e *domain.FallbackEvent) {
			if a.OnFallback != nil {
				a.OnFallback(ctx, e)
			}
			if b.OnFallback != nil {
				b.OnFallback(ctx, e)
			}
		},
		OnLeadCaptured: func(ctx context.Context, e *domain.LeadEvent) {
			if a.OnLeadCaptured != nil {
				a.OnLeadCaptured(ctx, e)
			}
			if b.OnLeadCaptured != nil {
				b.OnLeadCaptured(ctx, e)
			}
		},
	}
}
