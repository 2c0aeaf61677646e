// Package a2e adapts the A2E user image to video API.
package a2e

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/feitianbubu/vidfacade/adapters"
)

const (
	// Name is the canonical provider tag.
	Name = "a2e"

	DefaultBaseURL  = "https://video.a2e.ai"
	DefaultTaskName = "Talking Video"

	// DefaultPrompt is sent when the caller supplies no text.
	DefaultPrompt  = "the person is speaking. Looking at the camera. detailed eyes, clear teeth, still background"
	NegativePrompt = "low quality, static image, lowres, moving camera"

	startPath  = "/api/v1/userImage2Video/start"
	statusPath = "/api/v1/userImage2Video/"
)

// taskIDPaths are tried in order on the start response.
var taskIDPaths = []string{"data._id", "data.task_id", "task_id", "id"}

// Config holds the A2E credentials and endpoint.
type Config struct {
	Token    string
	BaseURL  string
	TaskName string
}

// Provider implements adapters.Provider for A2E image-to-video.
type Provider struct {
	token     string
	baseURL   string
	taskName  string
	transport *adapters.Transport
}

// StartRequest is the A2E start payload
type StartRequest struct {
	Name           string `json:"name"`
	ImageURL       string `json:"image_url"`
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
}

// New creates an A2E provider. The token is required.
func New(cfg Config, opts ...adapters.Option) (*Provider, error) {
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: A2E_TOKEN is not set", adapters.ErrMissingCredential)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	taskName := cfg.TaskName
	if taskName == "" {
		taskName = DefaultTaskName
	}

	return &Provider{
		token:     token,
		baseURL:   baseURL,
		taskName:  taskName,
		transport: adapters.NewTransport(Name, adapters.BuildOptions(opts...)),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return Name
}

// BuildStartRequest converts the generic request to A2E format. A2E drives
// the animation from a prompt, so the spoken text becomes the prompt.
func (p *Provider) BuildStartRequest(imageURL, text string) *StartRequest {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		prompt = DefaultPrompt
	}
	return &StartRequest{
		Name:           p.taskName,
		ImageURL:       imageURL,
		Prompt:         prompt,
		NegativePrompt: NegativePrompt,
	}
}

// Start creates an image-to-video task
func (p *Provider) Start(ctx context.Context, imageURL, text string) (*adapters.TaskResult, error) {
	resp, err := p.transport.Call(ctx, http.MethodPost, p.baseURL+startPath, p.headers(), p.BuildStartRequest(imageURL, text))
	if err != nil {
		return nil, err
	}

	taskID := adapters.FirstString(resp.Body, taskIDPaths...)
	if taskID == "" {
		return nil, p.transport.MissingField(resp, "task id")
	}
	p.transport.Logger().Debug("task started", zap.String("task_id", taskID))
	return adapters.Processing(Name, taskID), nil
}

// Poll retrieves the task status
func (p *Provider) Poll(ctx context.Context, taskID string) (*adapters.TaskResult, error) {
	resp, err := p.transport.Call(ctx, http.MethodGet, p.baseURL+statusPath+url.PathEscape(taskID), p.headers(), nil)
	if err != nil {
		return nil, err
	}
	return convertTask(taskID, gjson.GetBytes(resp.Body, "data")), nil
}

// convertTask maps the A2E task. Its vocabulary already matches the canonical
// one for terminal states; anything else is still in progress.
func convertTask(taskID string, task gjson.Result) *adapters.TaskResult {
	switch task.Get("current_status").String() {
	case "completed":
		return adapters.Completed(Name, taskID, task.Get("result_url").String())
	case "failed":
		return adapters.Failed(Name, taskID, task.Get("failed_message").String())
	default:
		return adapters.Processing(Name, taskID)
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + p.token}
}

var _ adapters.Provider = (*Provider)(nil)
