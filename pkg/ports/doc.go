// Package ports defines the boundary contracts between the funnel core
// and its collaborators. Storage, locking and transports are adapters
// behind these interfaces, so the core stays testable in isolation.
package ports
