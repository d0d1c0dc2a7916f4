package domain

import (
	"context"
	"errors"
	"fmt"
)

// Error taxonomy shared by stores, services and handlers. Entity-specific
// errors wrap one of these so callers can branch with errors.Is.
var (
	ErrNotFound                  = errors.New("not found")
	ErrNotAuthenticated          = errors.New("not authenticated")
	ErrForbidden                 = errors.New("forbidden")
	ErrUpstreamUnavailable       = errors.New("upstream unavailable")
	ErrMalformedUpstreamResponse = errors.New("malformed upstream response")
	ErrInvalidInput              = errors.New("invalid input")
	ErrConflict                  = errors.New("conflict")

	// ErrUpstreamTimeout is an ErrUpstreamUnavailable caused by a deadline or
	// cancellation, reported separately so clients can tell the two apart.
	ErrUpstreamTimeout = fmt.Errorf("%w: timed out", ErrUpstreamUnavailable)

	ErrAlreadyResolved  = fmt.Errorf("%w: prediction already resolved", ErrConflict)
	ErrSessionCompleted = fmt.Errorf("%w: session already completed", ErrConflict)
)

// Upstream joins cause to ErrUpstreamUnavailable, or to ErrUpstreamTimeout
// when the cause is a context deadline or cancellation.
func Upstream(cause error) error {
	if cause == nil {
		return nil
	}
	if errors.Is(cause, context.DeadlineExceeded) || errors.Is(cause, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrUpstreamTimeout, cause)
	}
	return fmt.Errorf("%w: %w", ErrUpstreamUnavailable, cause)
}

// Invalid returns an ErrInvalidInput carrying a field-level message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
