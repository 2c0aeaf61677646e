package vidfacade

import (
	"context"
	"strings"
	"time"

	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/adapters/heygen"
	"github.com/feitianbubu/vidfacade/config"
)

// DefaultPollInterval is used by WaitForCompletion when none is given.
const DefaultPollInterval = 5 * time.Second

// Client is the entry point of the façade: it validates caller input,
// resolves the provider and delegates to its adapter.
type Client struct {
	registry *Registry
}

// NewClient builds a client whose registry is constructed from cfg.
func NewClient(cfg *config.Config, opts ...adapters.Option) *Client {
	return &Client{registry: NewRegistry(cfg, opts...)}
}

// NewClientWithRegistry creates a client over an existing registry
func NewClientWithRegistry(registry *Registry) *Client {
	return &Client{registry: registry}
}

// Registry returns the underlying registry.
func (c *Client) Registry() *Registry {
	return c.registry
}

// Start submits a talking video generation task.
func (c *Client) Start(ctx context.Context, provider, imageURL, text string) (*TaskResult, error) {
	req := &GenerationRequest{Provider: provider, ImageURL: imageURL, Text: text}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	p, err := c.registry.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}
	return p.Start(ctx, req.ImageURL, req.Text)
}

// Poll retrieves the normalized status of a generation task.
func (c *Client) Poll(ctx context.Context, provider, taskID string) (*TaskResult, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, &ValidationError{Field: "task_id", Message: "task_id is required"}
	}

	p, err := c.registry.Resolve(provider)
	if err != nil {
		return nil, err
	}
	return p.Poll(ctx, taskID)
}

// Diagnose performs a raw diagnostic generate call against provider.
func (c *Client) Diagnose(ctx context.Context, provider, imageRef, text string) (*heygen.DiagnosticResult, error) {
	p, err := c.registry.Resolve(provider)
	if err != nil {
		return nil, err
	}
	d, ok := p.(Diagnoser)
	if !ok {
		return nil, &ValidationError{Field: "provider", Message: p.Name() + " does not support diagnostic calls"}
	}
	return d.Diagnose(ctx, imageRef, text)
}

// WaitForCompletion polls a task until it completes or fails. Poll errors are
// returned immediately.
func (c *Client) WaitForCompletion(ctx context.Context, provider, taskID string, pollInterval time.Duration) (*TaskResult, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			result, err := c.Poll(ctx, provider, taskID)
			if err != nil {
				return nil, err
			}

			switch result.Status {
			case TaskStatusCompleted, TaskStatusFailed:
				return result, nil
			}
		}
	}
}

// Providers reports the availability of every supported provider
func (c *Client) Providers() []ProviderStatus {
	return c.registry.Status()
}

// validateRequest validates the generation request
func validateRequest(req *GenerationRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "request cannot be nil"}
	}

	if strings.TrimSpace(req.ImageURL) == "" {
		return &ValidationError{Field: "image_url", Message: "image_url is required"}
	}

	if strings.TrimSpace(req.Text) == "" {
		return &ValidationError{Field: "text", Message: "text is required"}
	}
	return nil
}
