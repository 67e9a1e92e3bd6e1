package graph

import (
	"errors"
	"fmt"
)

// HydrationError is returned when a row cannot be turned into an entity,
// most commonly because its identity cannot be established (missing or
// NULL id column). It is fatal: the whole materialization is aborted and
// no partial result is returned.
type HydrationError struct {
	Label string // entity label
	Row   int    // zero-based index of the offending row
	Err   error  // underlying cause
}

// Error returns the error string.
func (e *HydrationError) Error() string {
	return fmt.Sprintf("graph: hydrating %s row %d: %v", e.Label, e.Row, e.Err)
}

// Unwrap returns the underlying error.
func (e *HydrationError) Unwrap() error {
	return e.Err
}

// IsHydrationError returns true if the error is a HydrationError.
func IsHydrationError(err error) bool {
	if err == nil {
		return false
	}
	var e *HydrationError
	return errors.As(err, &e)
}

// ResolveError reports a violated resolver invariant, e.g. a child link
// that would be appended twice. It indicates a bug in the resolver or in
// the NodeSpec edge mutators, not a recoverable data condition.
type ResolveError struct {
	Label string
	msg   string
}

// Error returns the error string.
func (e *ResolveError) Error() string {
	return fmt.Sprintf("graph: resolving %s: %s", e.Label, e.msg)
}

// IsResolveError returns true if the error is a ResolveError.
func IsResolveError(err error) bool {
	if err == nil {
		return false
	}
	var e *ResolveError
	return errors.As(err, &e)
}
