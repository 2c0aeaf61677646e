package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/feitianbubu/vidfacade"
	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/config"
)

type stubProvider struct{}

func (stubProvider) Name() string { return "did" }

func (stubProvider) Start(ctx context.Context, imageRef, text string) (*adapters.TaskResult, error) {
	return adapters.Processing("did", "tlk_1"), nil
}

func (stubProvider) Poll(ctx context.Context, taskID string) (*adapters.TaskResult, error) {
	return adapters.Completed("did", taskID, "https://x/v.mp4"), nil
}

// withStubClient swaps in a client backed only by a D-ID stub and captures output.
func withStubClient(t *testing.T) *bytes.Buffer {
	t.Helper()
	origClient, origOut := newClient, ioOut
	origConfig, origEnv := configPath, envFile
	t.Cleanup(func() {
		newClient, ioOut = origClient, origOut
		configPath, envFile = origConfig, origEnv
	})

	newClient = func(cfg *config.Config, logger *zap.Logger) *vidfacade.Client {
		registry := vidfacade.NewRegistryWithProviders(map[vidfacade.ProviderType]adapters.Provider{
			vidfacade.ProviderDID: stubProvider{},
		})
		return vidfacade.NewClientWithRegistry(registry)
	}
	configPath = "does-not-exist.yaml"
	envFile = ""

	var buf bytes.Buffer
	ioOut = &buf
	return &buf
}

func TestRunProviders(t *testing.T) {
	out := withStubClient(t)

	if err := runProviders(providersCmd, nil); err != nil {
		t.Fatalf("runProviders() unexpected error: %v", err)
	}

	got := out.String()
	for _, want := range []string{"did      available", "a2e      unavailable", "heygen   unavailable"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunStartAndStatus(t *testing.T) {
	out := withStubClient(t)
	providerFlag, imageFlag, textFlag, waitFlag = "d-id", "https://img", "hi", false

	if err := runStart(startCmd, nil); err != nil {
		t.Fatalf("runStart() unexpected error: %v", err)
	}
	var started adapters.TaskResult
	if err := json.Unmarshal(out.Bytes(), &started); err != nil {
		t.Fatalf("decoding start output: %v", err)
	}
	if started.TaskID != "tlk_1" || started.Status != adapters.TaskStatusProcessing {
		t.Errorf("unexpected start result %+v", started)
	}

	out.Reset()
	taskFlag = started.TaskID
	if err := runStatus(statusCmd, nil); err != nil {
		t.Fatalf("runStatus() unexpected error: %v", err)
	}
	var polled adapters.TaskResult
	if err := json.Unmarshal(out.Bytes(), &polled); err != nil {
		t.Fatalf("decoding status output: %v", err)
	}
	if polled.Status != adapters.TaskStatusCompleted || polled.ResultURL != "https://x/v.mp4" {
		t.Errorf("unexpected status result %+v", polled)
	}
}

func TestRunStartUnknownProvider(t *testing.T) {
	withStubClient(t)
	providerFlag, imageFlag, textFlag, waitFlag = "vidu", "https://img", "hi", false

	err := runStart(startCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "unsupported provider") {
		t.Errorf("expected unsupported provider error, got %v", err)
	}
}
