package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Authentication errors. Every login failure is terminal: the flow
	// returns to NoSession and the user restarts it, no automatic retry.
	ErrAuthFailed    = fmt.Errorf("authentication failed")
	ErrMissingCode   = fmt.Errorf("%w: missing authorization code", ErrAuthFailed)
	ErrStateMismatch = fmt.Errorf("%w: state mismatch", ErrAuthFailed)
	ErrTokenExchange = fmt.Errorf("%w: token exchange failed", ErrAuthFailed)
	ErrBackendAuth   = fmt.Errorf("%w: backend rejected login", ErrAuthFailed)

	// ErrUnauthorized is the distinguished 401: the session token is no
	// longer valid and the caller is logged out as a side effect.
	ErrUnauthorized = fmt.Errorf("%w: session invalidated", ErrAuthFailed)

	ErrNotAuthenticated = fmt.Errorf("not authenticated")

	// API and service errors
	ErrNetwork            = fmt.Errorf("network request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPlaylistNotFound   = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// ServerError represents a non-2xx response from the backend API.
//
// Checked with [errors.As]; a 401 is mapped to [ErrUnauthorized] instead.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: status %d", e.Status)
}
