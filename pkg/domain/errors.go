package domain

import "errors"

// ErrProjectNotFound is returned when a project id cannot be resolved.
var ErrProjectNotFound = errors.New("project not found")

// ErrSlugNotFound is returned when a published slug cannot be resolved.
var ErrSlugNotFound = errors.New("slug not found")

// ErrNotPublished is returned when a project has no publication yet.
var ErrNotPublished = errors.New("project not published")

// ErrReplaceFailed is returned when the atomic graph replace did not
// commit. The store guarantees the old graph is still intact.
var ErrReplaceFailed = errors.New("graph replace failed")

// ErrEmailRequired is returned when a lead is submitted without an email.
var ErrEmailRequired = errors.New("lead email is required")
