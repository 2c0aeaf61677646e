package vidfacade

import (
	"context"

	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/adapters/heygen"
)

// adapterWrapper wraps an adapters.Provider so that every result it returns
// satisfies the normalized result contract, whatever the adapter produced.
type adapterWrapper struct {
	name     ProviderType
	provider adapters.Provider
}

// Name returns the canonical provider tag
func (w *adapterWrapper) Name() string {
	return string(w.name)
}

// Start submits a generation task. A successful start is always processing.
func (w *adapterWrapper) Start(ctx context.Context, imageRef, text string) (*TaskResult, error) {
	result, err := w.provider.Start(ctx, imageRef, text)
	if err != nil {
		return nil, err
	}
	result, err = adapters.Normalize(w.Name(), result)
	if err != nil {
		return nil, err
	}
	result.Status = TaskStatusProcessing
	result.ResultURL = ""
	result.FailedMessage = ""
	return result, nil
}

// Poll retrieves the normalized status of a task
func (w *adapterWrapper) Poll(ctx context.Context, taskID string) (*TaskResult, error) {
	result, err := w.provider.Poll(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if result != nil && result.TaskID == "" {
		result.TaskID = taskID
	}
	return adapters.Normalize(w.Name(), result)
}

// Diagnose forwards to the wrapped provider when it supports diagnostics.
func (w *adapterWrapper) Diagnose(ctx context.Context, imageRef, text string) (*heygen.DiagnosticResult, error) {
	d, ok := w.provider.(Diagnoser)
	if !ok {
		return nil, &ValidationError{Field: "provider", Message: w.Name() + " does not support diagnostic calls"}
	}
	return d.Diagnose(ctx, imageRef, text)
}

var (
	_ Provider  = (*adapterWrapper)(nil)
	_ Diagnoser = (*adapterWrapper)(nil)
)
