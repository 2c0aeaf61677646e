// Package did adapts the D-ID talks API.
package did

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/feitianbubu/vidfacade/adapters"
)

const (
	// Name is the canonical provider tag.
	Name = "did"

	DefaultBaseURL  = "https://api.d-id.com"
	DefaultGreeting = "Hello there, welcome to my video!"

	talksPath = "/talks"
)

var taskIDPaths = []string{"id", "task_id"}

// Config holds the D-ID credentials and endpoint.
type Config struct {
	// APIKey is sent as Basic credentials unless it already carries a
	// "Basic " or "Bearer " scheme.
	APIKey  string
	BaseURL string
}

// Provider implements adapters.Provider for D-ID talking avatars.
type Provider struct {
	authHeader string
	baseURL    string
	transport  *adapters.Transport
}

// Script is the text D-ID speaks
type Script struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

// TalkRequest is the D-ID create-talk payload
type TalkRequest struct {
	SourceURL string `json:"source_url"`
	Script    Script `json:"script"`
}

// New creates a D-ID provider. The API key is required.
func New(cfg Config, opts ...adapters.Option) (*Provider, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, fmt.Errorf("%w: DID_KEY is not set", adapters.ErrMissingCredential)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Provider{
		authHeader: AuthHeader(key),
		baseURL:    baseURL,
		transport:  adapters.NewTransport(Name, adapters.BuildOptions(opts...)),
	}, nil
}

// AuthHeader returns the Authorization value for key.
func AuthHeader(key string) string {
	lower := strings.ToLower(key)
	if strings.HasPrefix(lower, "basic ") || strings.HasPrefix(lower, "bearer ") {
		return key
	}
	return "Basic " + key
}

// Name returns the provider name
func (p *Provider) Name() string {
	return Name
}

// BuildTalkRequest converts the generic request to D-ID format
func (p *Provider) BuildTalkRequest(imageURL, text string) *TalkRequest {
	if strings.TrimSpace(text) == "" {
		text = DefaultGreeting
	}
	return &TalkRequest{
		SourceURL: imageURL,
		Script:    Script{Type: "text", Input: text},
	}
}

// Start creates a talk
func (p *Provider) Start(ctx context.Context, imageURL, text string) (*adapters.TaskResult, error) {
	resp, err := p.transport.Call(ctx, http.MethodPost, p.baseURL+talksPath, p.headers(), p.BuildTalkRequest(imageURL, text))
	if err != nil {
		return nil, err
	}

	taskID := adapters.FirstString(resp.Body, taskIDPaths...)
	if taskID == "" {
		return nil, p.transport.MissingField(resp, "talk id")
	}
	return adapters.Processing(Name, taskID), nil
}

// Poll retrieves the talk status
func (p *Provider) Poll(ctx context.Context, taskID string) (*adapters.TaskResult, error) {
	resp, err := p.transport.Call(ctx, http.MethodGet, p.baseURL+talksPath+"/"+url.PathEscape(taskID), p.headers(), nil)
	if err != nil {
		return nil, err
	}
	return convertTalk(taskID, gjson.ParseBytes(resp.Body)), nil
}

// convertTalk maps the D-ID vocabulary {created, processing, done, error}.
func convertTalk(taskID string, talk gjson.Result) *adapters.TaskResult {
	switch talk.Get("status").String() {
	case "done":
		return adapters.Completed(Name, taskID, talk.Get("result_url").String())
	case "error":
		return adapters.Failed(Name, taskID, talk.Get("error.message").String())
	default:
		return adapters.Processing(Name, taskID)
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"Authorization": p.authHeader}
}

var _ adapters.Provider = (*Provider)(nil)
