// Package apierr defines the closed set of error kinds used across the
// orchestrator, from the backend client up through the HTTP surface.
package apierr

import (
	"errors"
	"fmt"
)

// Kind is one of the error categories named by the specification.
type Kind string

const (
	KindInvalidInput          Kind = "invalid_input"
	KindUnauthorized          Kind = "unauthorized"
	KindForbidden             Kind = "forbidden"
	KindNotFound              Kind = "not_found"
	KindConflict              Kind = "conflict"
	KindTimeout               Kind = "timeout"
	KindNetwork               Kind = "network"
	KindServer                Kind = "server"
	KindMalformedResponse     Kind = "malformed_response"
	KindPolicyViolation       Kind = "policy_violation"
	KindClassifierUnavailable Kind = "classifier_unavailable"
	KindSessionExpired        Kind = "session_expired"
	KindSessionFull           Kind = "session_full"
	KindUpstreamUnavailable   Kind = "upstream_unavailable"
	KindInternal              Kind = "internal"
)

// Error wraps a Kind with a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an *Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an *Error of the given kind around an existing cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err if it (or something it wraps) is an
// *Error. Returns ("", false) otherwise.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return "", false
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Retryable reports whether errors of this kind should be retried by
// internal/retry per the destination's retryable allow-list.
func Retryable(kind Kind) bool {
	return kind == KindNetwork || kind == KindTimeout
}
