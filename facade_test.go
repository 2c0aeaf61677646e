package vidfacade

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feitianbubu/vidfacade/config"
)

// upstreamState is the native task body each fake provider returns on poll.
type upstreamState struct {
	a2e, did, heygen string
}

func newFakeUpstream(t *testing.T, state *upstreamState, failStart bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	reject := func(w http.ResponseWriter) bool {
		if failStart {
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"message":"invalid image"}`))
		}
		return failStart
	}

	mux.HandleFunc("/api/v1/userImage2Video/start", func(w http.ResponseWriter, r *http.Request) {
		if !reject(w) {
			w.Write([]byte(`{"data":{"_id":"a2e-1"}}`))
		}
	})
	mux.HandleFunc("/api/v1/userImage2Video/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(state.a2e))
	})
	mux.HandleFunc("/talks", func(w http.ResponseWriter, r *http.Request) {
		if !reject(w) {
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"did-1","status":"created"}`))
		}
	})
	mux.HandleFunc("/talks/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(state.did))
	})
	mux.HandleFunc("/v2/video/generate", func(w http.ResponseWriter, r *http.Request) {
		if !reject(w) {
			w.Write([]byte(`{"data":{"video_id":"hg-1"}}`))
		}
	})
	mux.HandleFunc("/v1/video/task/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(state.heygen))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newFacade(t *testing.T, baseURL string) *Client {
	t.Helper()
	env := map[string]string{
		"A2E_TOKEN":       "a2e-token",
		"A2E_BASE_URL":    baseURL,
		"DID_KEY":         "did-key",
		"DID_BASE_URL":    baseURL,
		"HEYGEN_KEY":      "hg-key",
		"HEYGEN_BASE_URL": baseURL,
		"HEYGEN_VOICE_ID": "voice",
	}
	cfg := config.FromEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	return NewClient(cfg)
}

func TestFacadeStartAllProviders(t *testing.T) {
	server := newFakeUpstream(t, &upstreamState{}, false)
	client := newFacade(t, server.URL)

	want := map[string]string{"a2e": "a2e-1", "d-id": "did-1", "heygen": "hg-1"}
	for provider, taskID := range want {
		result, err := client.Start(context.Background(), provider, "https://img/face.png", "hello")
		if err != nil {
			t.Fatalf("Start(%s) unexpected error: %v", provider, err)
		}
		if result.TaskID != taskID || result.Status != TaskStatusProcessing {
			t.Errorf("Start(%s) = %+v", provider, result)
		}
		if result.Provider != strings.ReplaceAll(provider, "-", "") {
			t.Errorf("Start(%s) provider tag = %q", provider, result.Provider)
		}
	}
}

func TestFacadeStartUpstreamError(t *testing.T) {
	server := newFakeUpstream(t, &upstreamState{}, true)
	client := newFacade(t, server.URL)

	for _, provider := range Providers {
		_, err := client.Start(context.Background(), string(provider), "https://img/face.png", "hello")
		var upErr *UpstreamError
		if !errors.As(err, &upErr) {
			t.Fatalf("Start(%s): expected UpstreamError, got %v", provider, err)
		}
		if upErr.StatusCode != 422 || upErr.Message != "invalid image" {
			t.Errorf("Start(%s) error = %+v, want 422 invalid image", provider, upErr)
		}
	}
}

func TestFacadePollInvariants(t *testing.T) {
	states := []upstreamState{
		{
			a2e:    `{"data":{"current_status":"processing"}}`,
			did:    `{"status":"created"}`,
			heygen: `{"status":"pending"}`,
		},
		{
			a2e:    `{"data":{"current_status":"completed","result_url":"https://x/a.mp4"}}`,
			did:    `{"status":"done","result_url":"https://x/v.mp4"}`,
			heygen: `{"status":"completed","video_url":"https://x/h.mp4"}`,
		},
		{
			a2e:    `{"data":{"current_status":"failed"}}`,
			did:    `{"status":"error","error":{"message":"bad source"}}`,
			heygen: `{"status":"failed","error":"boom"}`,
		},
		{
			a2e:    `{"data":{}}`,
			did:    `{"status":"started"}`,
			heygen: `{}`,
		},
	}

	for _, state := range states {
		state := state
		server := newFakeUpstream(t, &state, false)
		client := newFacade(t, server.URL)

		for _, provider := range Providers {
			result, err := client.Poll(context.Background(), string(provider), "task-1")
			if err != nil {
				t.Fatalf("Poll(%s) unexpected error: %v", provider, err)
			}
			if result.Provider != string(provider) {
				t.Errorf("Poll(%s) provider = %q", provider, result.Provider)
			}
			if !result.Status.Valid() {
				t.Errorf("Poll(%s) status %q is not canonical", provider, result.Status)
			}
			if (result.ResultURL != "") != (result.Status == TaskStatusCompleted) {
				t.Errorf("Poll(%s) result_url presence violates invariant: %+v", provider, result)
			}
			if (result.FailedMessage != "") != (result.Status == TaskStatusFailed) {
				t.Errorf("Poll(%s) failed_message presence violates invariant: %+v", provider, result)
			}
		}
	}
}

func TestFacadeDIDScenarios(t *testing.T) {
	tests := []struct {
		body string
		want TaskResult
	}{
		{
			body: `{"status":"done","result_url":"https://x/v.mp4"}`,
			want: TaskResult{TaskID: "tlk", Status: TaskStatusCompleted, Provider: "did", ResultURL: "https://x/v.mp4"},
		},
		{
			body: `{"status":"error","error":{"message":"bad source"}}`,
			want: TaskResult{TaskID: "tlk", Status: TaskStatusFailed, Provider: "did", FailedMessage: "bad source"},
		},
	}

	for _, tt := range tests {
		server := newFakeUpstream(t, &upstreamState{did: tt.body}, false)
		client := newFacade(t, server.URL)

		got, err := client.Poll(context.Background(), "did", "tlk")
		if err != nil {
			t.Fatalf("Poll unexpected error: %v", err)
		}
		if *got != tt.want {
			t.Errorf("Poll() = %+v, want %+v", *got, tt.want)
		}
	}
}

func TestFacadeHeyGenMissingVoice(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer server.Close()

	cfg := config.FromEnv(func(k string) (string, bool) {
		switch k {
		case "HEYGEN_KEY":
			return "hg-key", true
		case "HEYGEN_BASE_URL":
			return server.URL, true
		case "HEYGEN_VOICE_ID":
			return "   ", true
		}
		return "", false
	})

	_, err := NewClient(cfg).Start(context.Background(), "heygen", "avatar-1", "hello")
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no outbound call, got %d", calls)
	}
}
