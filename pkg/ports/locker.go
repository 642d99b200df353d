package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes graph replaces per project across
// replicas. It blocks until the lock is acquired, the context is
// canceled, or the TTL expires (implementation specific).
type DistributedLocker interface {
	// Lock acquires a lock for the given key (a project id).
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
