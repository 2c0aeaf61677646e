package a2e

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feitianbubu/vidfacade/adapters"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := New(Config{Token: "tok", BaseURL: server.URL})
	require.NoError(t, err)
	return p
}

func TestNew_MissingToken(t *testing.T) {
	_, err := New(Config{Token: "  "})
	require.Error(t, err)
	assert.True(t, errors.Is(err, adapters.ErrMissingCredential))
	assert.Contains(t, err.Error(), "A2E_TOKEN")
}

func TestStart(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, startPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body StartRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://img/face.png", body.ImageURL)
		assert.Equal(t, "say hi", body.Prompt)
		assert.Equal(t, NegativePrompt, body.NegativePrompt)
		assert.Equal(t, DefaultTaskName, body.Name)

		w.Write([]byte(`{"code":0,"data":{"_id":"a2e-task","current_status":"initialized"}}`))
	})

	result, err := p.Start(context.Background(), "https://img/face.png", "say hi")
	require.NoError(t, err)
	assert.Equal(t, &adapters.TaskResult{TaskID: "a2e-task", Status: adapters.TaskStatusProcessing, Provider: "a2e"}, result)
}

func TestStart_EmptyTextUsesDefaultPrompt(t *testing.T) {
	p, err := New(Config{Token: "tok"})
	require.NoError(t, err)

	req := p.BuildStartRequest("https://img/face.png", "")
	assert.Equal(t, DefaultPrompt, req.Prompt)
}

func TestStart_MissingTaskID(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	})

	_, err := p.Start(context.Background(), "https://img/face.png", "hi")
	var upErr *adapters.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusOK, upErr.StatusCode)
	assert.ErrorIs(t, err, adapters.ErrInvalidResult)
}

func TestStart_UpstreamError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid image"}`))
	})

	_, err := p.Start(context.Background(), "https://img/face.png", "hi")
	var upErr *adapters.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusUnprocessableEntity, upErr.StatusCode)
	assert.Equal(t, "invalid image", upErr.Message)
}

func TestPoll(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *adapters.TaskResult
	}{
		{
			name: "processing",
			body: `{"data":{"current_status":"processing"}}`,
			want: &adapters.TaskResult{TaskID: "t1", Status: adapters.TaskStatusProcessing, Provider: "a2e"},
		},
		{
			name: "completed",
			body: `{"data":{"current_status":"completed","result_url":"https://x/v.mp4"}}`,
			want: &adapters.TaskResult{TaskID: "t1", Status: adapters.TaskStatusCompleted, Provider: "a2e", ResultURL: "https://x/v.mp4"},
		},
		{
			name: "failed with message",
			body: `{"data":{"current_status":"failed","failed_message":"no face"}}`,
			want: &adapters.TaskResult{TaskID: "t1", Status: adapters.TaskStatusFailed, Provider: "a2e", FailedMessage: "no face"},
		},
		{
			name: "failed without message",
			body: `{"data":{"current_status":"failed"}}`,
			want: &adapters.TaskResult{TaskID: "t1", Status: adapters.TaskStatusFailed, Provider: "a2e", FailedMessage: "Unknown error"},
		},
		{
			name: "other native status",
			body: `{"data":{"current_status":"initialized"}}`,
			want: &adapters.TaskResult{TaskID: "t1", Status: adapters.TaskStatusProcessing, Provider: "a2e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, statusPath+"t1", r.URL.Path)
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				w.Write([]byte(tt.body))
			})

			got, err := p.Poll(context.Background(), "t1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
