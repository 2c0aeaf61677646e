package adapters

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned by adapter constructors when the provider
// secret is absent.
var ErrMissingCredential = errors.New("missing provider credential")

// ErrInvalidResult marks an UpstreamError raised because a provider answered
// with a result that cannot be normalized. Retrying does not change it.
var ErrInvalidResult = errors.New("invalid provider result")

// UpstreamError reports a non-success response from a provider, or a
// transport failure (StatusCode 0) before any response arrived.
type UpstreamError struct {
	Provider   string `json:"provider,omitempty"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("[%s] upstream error: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("[%s] upstream error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ConfigurationError reports a provider setting that must be fixed by the
// operator before requests can succeed.
type ConfigurationError struct {
	Provider string `json:"provider"`
	Setting  string `json:"setting"`
	Message  string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("[%s] configuration error for %s: %s", e.Provider, e.Setting, e.Message)
}

var (
	_ error = (*UpstreamError)(nil)
	_ error = (*ConfigurationError)(nil)
)
