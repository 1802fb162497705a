package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey indicates a provider was constructed without a credential.
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrUnknownProvider indicates the registry has no provider for the given key.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrTimeout indicates the upstream request exceeded the configured timeout.
	ErrTimeout = errors.New("provider request timed out")

	// ErrUnavailable indicates the upstream endpoint is unreachable.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse indicates the upstream answered with a body the
	// client could not extract generated text from.
	ErrMalformedResponse = errors.New("malformed provider response")
)

// Error wraps any construction or call failure with the provider it came from.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrapErr attaches the provider name unless err is already an *Error.
func wrapErr(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return err
	}
	return &Error{Provider: name, Err: err}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrMalformedResponse):
		return "MALFORMED_RESPONSE"
	default:
		return "UNKNOWN"
	}
}
