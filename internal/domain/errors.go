package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrReadingNotFound indicates requested reading doesn't exist
	ErrReadingNotFound = errors.New("reading not found")

	// ErrFieldNotFound indicates the backend has no field with the requested id
	ErrFieldNotFound = errors.New("field not found")

	// ErrUnauthenticated indicates the session could not be established or renewed
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrBreakerOpen indicates an upstream is failing and calls are short-circuited
	ErrBreakerOpen = errors.New("upstream circuit open")
)

// FetchError is a network or HTTP failure talking to an upstream.
type FetchError struct {
	Op     string // e.g. "GET /read/newest/dev-1"
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError is a malformed numeric or structured field.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AuthError is a 401 from a protected endpoint that survived the refresh attempt.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsUpstreamFault reports whether err says something about upstream health.
// Caller cancellation, auth failures and 4xx replies do not.
func IsUpstreamFault(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return false
	}
	var fe *FetchError
	if errors.As(err, &fe) && fe.Status >= 400 && fe.Status < 500 {
		return false
	}
	return true
}
