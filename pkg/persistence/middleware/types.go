package middleware

import "github.com/quizkit/quizkit/pkg/ports"

// Middleware wraps a ProjectStore to add behavior around lead storage.
type Middleware func(ports.ProjectStore) ports.ProjectStore

// Chain applies the middlewares in order; the first one ends up
// outermost.
func Chain(store ports.ProjectStore, mws ...Middleware) ports.ProjectStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
