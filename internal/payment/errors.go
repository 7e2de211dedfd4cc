package payment

import (
	"errors"
	"fmt"
)

// Kind classifies adapter failures for the caller's error mapping.
type Kind string

const (
	// KindConfiguration: missing or invalid provider credentials.
	// Operator-correctable, never shown raw to the shopper.
	KindConfiguration Kind = "configuration"
	// KindProvider: the remote provider rejected or failed the request.
	// May carry a provider-supplied human-readable reason.
	KindProvider Kind = "provider"
	// KindTimeout: no response within the configured bound. Displayed as a
	// provider failure but logged distinctly.
	KindTimeout Kind = "timeout"
)

// Error is the taxonomy error returned by adapters.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func NewConfigurationError(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, Message: fmt.Sprintf(format, args...)}
}

func NewProviderError(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindProvider, Message: fmt.Sprintf(format, args...), cause: cause}
}

func NewTimeoutError(cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindTimeout, Message: fmt.Sprintf(format, args...), cause: cause}
}

// KindOf extracts the taxonomy kind from err, or "" when err is not an
// adapter error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}
