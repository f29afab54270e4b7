package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for a missing or malformed wallet address.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfiguration is returned when no credential exists for the requested network.
	ErrConfiguration = errors.New("configuration error")
	// ErrUpstream is returned when a provider is unreachable or answers with garbage.
	ErrUpstream = errors.New("upstream failure")
)

// PortfolioError carries a user-facing message together with its error class.
type PortfolioError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *PortfolioError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Is matches against the error class so callers can use errors.Is(err, ErrInvalidInput).
func (e *PortfolioError) Is(target error) bool {
	return target == e.Kind
}

func (e *PortfolioError) Unwrap() error {
	return e.Cause
}

// NewInvalidInputError builds an ErrInvalidInput class error.
func NewInvalidInputError(message string) error {
	return &PortfolioError{Kind: ErrInvalidInput, Message: message}
}

// NewConfigurationError builds an ErrConfiguration class error.
func NewConfigurationError(message string) error {
	return &PortfolioError{Kind: ErrConfiguration, Message: message}
}

// NewUpstreamError builds an ErrUpstream class error wrapping the provider failure.
func NewUpstreamError(message string, cause error) error {
	return &PortfolioError{Kind: ErrUpstream, Message: message, Cause: cause}
}

// UserMessage returns the message safe to surface to API callers.
func UserMessage(err error) string {
	var pe *PortfolioError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
