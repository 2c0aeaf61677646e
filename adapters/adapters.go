// Package adapters holds the contract shared by every talking-video provider
// adapter together with the normalized result shape and error kinds they
// report. Concrete providers live in the sub-packages.
package adapters

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds every outbound provider call.
const DefaultTimeout = 60 * time.Second

// TaskStatus represents the normalized status of a generation task
type TaskStatus string

const (
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Valid reports whether s is one of the canonical statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusProcessing, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

// TaskResult is the normalized result returned by every adapter
type TaskResult struct {
	TaskID        string     `json:"task_id,omitempty"`
	Status        TaskStatus `json:"status"`
	Provider      string     `json:"provider"`
	ResultURL     string     `json:"result_url,omitempty"`
	FailedMessage string     `json:"failed_message,omitempty"`
}

// Provider is implemented by each provider adapter.
type Provider interface {
	// Name returns the canonical lowercase provider tag
	Name() string

	// Start submits a new generation task and returns it in processing state
	Start(ctx context.Context, imageRef, text string) (*TaskResult, error)

	// Poll retrieves the normalized status of a task
	Poll(ctx context.Context, taskID string) (*TaskResult, error)
}

// Options carries the collaborators an adapter needs besides its credentials.
type Options struct {
	HTTPClient *http.Client
	Logger     *zap.Logger
	Timeout    time.Duration
}

// Option configures Options
type Option func(*Options)

// WithHTTPClient sets the HTTP client used for outbound calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.HTTPClient = c }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.Timeout = d }
}

// BuildOptions applies opts over the defaults.
func BuildOptions(opts ...Option) Options {
	o := Options{Timeout: DefaultTimeout}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: o.Timeout}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}
