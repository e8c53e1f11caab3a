// Package diag provides the three-line Error/Cause/Fix diagnostic used for
// every externally-observable failure in scope, per the error handling
// design: a handful of named kinds, never a raw language-specific error
// leaking to the CLI surface.
package diag

import "fmt"

// Kind names one of the error categories from the error handling design.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindAliasConflict  Kind = "alias_conflict"
	KindMux            Kind = "mux"
	KindRubric         Kind = "rubric"
	KindCheckerTimeout Kind = "checker_timeout"
	KindCheckerOS      Kind = "checker_os_failure"
	KindStateRace      Kind = "state_race"
	KindFatal          Kind = "fatal"
)

// Error is scope's diagnostic error type. Cause and Fix are optional but
// every CLI-surfaced error should set at least Cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause string
	Fix   string
	Err   error // wrapped underlying error, if any
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Diagnostic renders the three-line Error/Cause/Fix block used for CLI
// output. Lines that have no content are omitted.
func (e *Error) Diagnostic() string {
	out := fmt.Sprintf("Error: %s", e.Error())
	if e.Cause != "" {
		out += fmt.Sprintf("\nCause: %s", e.Cause)
	}
	if e.Fix != "" {
		out += fmt.Sprintf("\nFix: %s", e.Fix)
	}
	return out
}

// New builds a diagnostic error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds a diagnostic error of the given kind wrapping err.
func Wrap(kind Kind, err error, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// WithCause returns a copy of e with Cause set.
func (e *Error) WithCause(cause string) *Error {
	c := *e
	c.Cause = cause
	return &c
}

// WithFix returns a copy of e with Fix set.
func (e *Error) WithFix(fix string) *Error {
	c := *e
	c.Fix = fix
	return &c
}

// NotFound builds a KindNotFound diagnostic for a missing session/id/alias.
func NotFound(what string) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found", what)).
		WithFix("check the id or alias with `scope poll` and try again")
}

// AliasConflict builds a KindAliasConflict diagnostic.
func AliasConflict(alias string) *Error {
	return New(KindAliasConflict, fmt.Sprintf("alias %q is already in use", alias)).
		WithCause("at most one live session may hold a given alias").
		WithFix("pick a different --id, or abort the session currently holding it")
}

// Fatal builds a KindFatal diagnostic for an invariant violation.
func Fatal(msg, cause string) *Error {
	return New(KindFatal, msg).WithCause(cause)
}

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	de, ok := err.(*Error)
	return ok && de.Kind == kind
}
