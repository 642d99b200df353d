// Package domain holds the shared types of the funnel runtime: visitor
// session state, projects, captured leads, lifecycle events and the
// sentinel errors the core returns across its boundaries.
package domain
