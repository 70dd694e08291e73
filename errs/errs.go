// Package errs defines the engine's error kinds as small typed errors: a
// struct per kind with an Error() method, so callers can errors.As to the
// kind they care about instead of matching on error strings.
package errs

import "fmt"

// ParseFailure reports that a project failed to parse. Non-fatal: the
// project is excluded and the failure is surfaced as a warning alongside
// whatever index was otherwise built.
type ParseFailure struct {
	Project string
	Details string
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("parse failure in project %q: %s", e.Project, e.Details)
}

// UnresolvedReference reports that a call site could not be resolved to a
// MethodID. Non-fatal: the edge is dropped and this is a debug diagnostic
// only, never surfaced to the end user as a warning.
type UnresolvedReference struct {
	Method string
	Site   string
}

func (e *UnresolvedReference) Error() string {
	return fmt.Sprintf("unresolved reference from %q at %q", e.Method, e.Site)
}

// InvalidInput reports a malformed request at an API boundary — fatal,
// returned directly to the caller.
type InvalidInput struct {
	What string
}

func (e *InvalidInput) Error() string { return fmt.Sprintf("invalid input: %s", e.What) }

// Cancelled reports that an operation was aborted via its cancellation
// signal before completion. State is left unchanged.
type Cancelled struct {
	Phase string
}

func (e *Cancelled) Error() string { return fmt.Sprintf("cancelled during %s", e.Phase) }

// Internal reports an invariant violation — fatal, carries a full
// diagnostic reason for whoever triages it.
type Internal struct {
	Reason string
}

func (e *Internal) Error() string { return fmt.Sprintf("internal error: %s", e.Reason) }
