package vidfacade

import (
	"context"

	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/adapters/heygen"
)

// Provider defines the interface that all talking video providers implement
type Provider = adapters.Provider

// Diagnoser is implemented by providers that can perform a raw diagnostic
// generate call.
type Diagnoser interface {
	Diagnose(ctx context.Context, imageRef, text string) (*heygen.DiagnosticResult, error)
}
