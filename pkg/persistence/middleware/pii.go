package middleware

import (
	"context"
	"regexp"

	"github.com/quizkit/quizkit/pkg/domain"
	"github.com/quizkit/quizkit/pkg/ports"
)

type piiMiddleware struct {
	ports.ProjectStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks answer values whose
// question node id matches one of the patterns before the lead is
// stored. Masking is one-way: the original value never reaches the
// store. Use it for answers that identify the visitor but have no
// analytical value.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ProjectStore) ports.ProjectStore {
		return &piiMiddleware{ProjectStore: next, patterns: patterns}
	}
}

func (m *piiMiddleware) CreateLead(ctx context.Context, lead domain.Lead) (string, error) {
	// Copy before masking so the caller's lead stays untouched.
	masked := make(map[string]any, len(lead.Answers))
	for k, v := range lead.Answers {
		masked[k] = v
		for _, p := range m.patterns {
			if p.MatchString(k) {
				masked[k] = "***"
				break
			}
		}
	}
	lead.Answers = masked
	return m.ProjectStore.CreateLead(ctx, lead)
}
