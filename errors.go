package vidfacade

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/feitianbubu/vidfacade/adapters"
)

// Common errors
var (
	ErrUnknownProvider     = errors.New("unknown provider")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrInvalidRequest      = errors.New("invalid request")
)

// UpstreamError is returned when a provider answers with a non-success status
// or cannot be reached.
type UpstreamError = adapters.UpstreamError

// ConfigurationError is returned when a provider setting required at request
// time is missing.
type ConfigurationError = adapters.ConfigurationError

// UnknownProviderError reports a provider name outside the supported set
type UnknownProviderError struct {
	Name string `json:"name"`
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unsupported provider: %s. Supported providers: a2e, did, heygen", e.Name)
}

func (e *UnknownProviderError) Is(target error) bool { return target == ErrUnknownProvider }

// ProviderUnavailableError reports a supported provider that failed to
// initialize, typically because its credential is not configured.
type ProviderUnavailableError struct {
	Provider ProviderType `json:"provider"`
	Reason   error        `json:"-"`
}

func (e *ProviderUnavailableError) Error() string {
	if e.Reason != nil {
		return fmt.Sprintf("%s service is not configured: %v", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s service is not configured", e.Provider)
}

func (e *ProviderUnavailableError) Is(target error) bool { return target == ErrProviderUnavailable }

func (e *ProviderUnavailableError) Unwrap() error { return e.Reason }

// ValidationError represents a request validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidRequest }

// IsRetryableError reports whether the caller may reasonably retry err.
// Nothing in this package retries on its own.
func IsRetryableError(err error) bool {
	var upErr *UpstreamError
	if !errors.As(err, &upErr) || errors.Is(err, adapters.ErrInvalidResult) {
		return false
	}
	// Transport failures, server errors (5xx) and rate limiting (429)
	return upErr.StatusCode == 0 || upErr.StatusCode >= 500 || upErr.StatusCode == http.StatusTooManyRequests
}

var (
	_ error = (*UnknownProviderError)(nil)
	_ error = (*ProviderUnavailableError)(nil)
	_ error = (*ValidationError)(nil)
)
