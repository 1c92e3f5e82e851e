// Sentinel - OSINT Conflict Event Intelligence Pipeline
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errkind implements the ingestion pipeline's error taxonomy.
//
// Every stage classifies the failures it produces into one of the Kinds
// below instead of returning bare errors, so the orchestrator can decide
// uniformly whether to retry, record a source failure, fall back, or
// escalate. Only Configuration and fatal Persistence errors are allowed to
// propagate out of a cycle; everything else is recovered locally and folded
// into the cycle's stats record.
package errkind

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure by how the caller should respond.
type Kind int

const (
	// Unknown is never produced deliberately; its presence indicates a
	// component returned a bare error instead of classifying it.
	Unknown Kind = iota
	// Configuration errors are fatal at startup; the process refuses to run.
	Configuration
	// TransientFetch covers network errors, timeouts, and 5xx responses.
	// Retried with exponential backoff; on exhaustion it becomes a
	// recorded source failure and is swallowed for the cycle.
	TransientFetch
	// PermanentFetch covers 4xx responses and DNS NXDOMAIN. Counted as a
	// source failure with no retry.
	PermanentFetch
	// Parse covers malformed RSS, HTML, or JSON. The article is skipped
	// and a source failure is recorded; the cycle continues.
	Parse
	// LLMSchema covers a missing or schema-invalid LLM response. Triggers
	// fallback to deterministic extraction; never fatal.
	LLMSchema
	// Geocoding covers an unresolved location. The event becomes
	// locationless; the caller decides whether to keep or drop it.
	Geocoding
	// Persistence covers a store write failure. Retried once at the
	// batch level; on second failure the batch is diverted to the
	// offline spool rather than treated as fatal.
	Persistence
	// Cancellation reflects a caller-cancelled context. Not an error
	// condition; callers should treat it as a cooperative stop.
	Cancellation
)

func (k Kind) String() string {
	switch k {
	case Configuration:
		return "configuration"
	case TransientFetch:
		return "transient_fetch"
	case PermanentFetch:
		return "permanent_fetch"
	case Parse:
		return "parse"
	case LLMSchema:
		return "llm_schema"
	case Geocoding:
		return "geocoding"
	case Persistence:
		return "persistence"
	case Cancellation:
		return "cancellation"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with its Kind and the component that
// classified it, so downstream handlers can switch on Kind without string
// matching.
type Error struct {
	Kind      Kind
	Component string
	Err       error
}

func (e *Error) Error() string {
	if e.Component == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s[%s]: %v", e.Kind, e.Component, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given Kind and component. Returns nil if err is nil.
func New(kind Kind, component string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Component: component, Err: err}
}

// Wrapf classifies a formatted error.
func Wrapf(kind Kind, component, format string, args ...interface{}) error {
	return &Error{Kind: kind, Component: component, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err was classified with the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the classified Kind, or Unknown if err was never classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Retryable reports whether a failure of this Kind should be retried by the
// caller (TransientFetch and Persistence are the only retryable kinds in
// this taxonomy; Persistence retries exactly once at the batch level).
func Retryable(kind Kind) bool {
	return kind == TransientFetch || kind == Persistence
}

// Fatal reports whether a failure of this Kind must propagate out of the
// current ingestion cycle instead of being recovered locally.
func Fatal(kind Kind) bool {
	return kind == Configuration
}
