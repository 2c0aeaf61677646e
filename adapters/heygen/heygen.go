// Package heygen adapts the HeyGen video API.
//
// HeyGen generates from a pre-provisioned avatar rather than an arbitrary
// image, so the image reference handed to Start is interpreted as an avatar
// id. When it is empty the configured default avatar is used. A voice id must
// always be configured.
package heygen

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
	Name = "heygen"

	DefaultBaseURL     = "https://api.heygen.com"
	DefaultGreeting    = "Hello there, welcome to my video!"
	DefaultLanguage    = "en-US"
	DefaultAvatarStyle = "normal"
	DefaultVoiceSpeed  = 1.0
	DefaultWidth       = 1280
	DefaultHeight      = 720

	generatePath = "/v2/video/generate"
	taskPath     = "/v1/video/task/"

	// diagnosticBodyLimit bounds a non-JSON body echoed by Diagnose.
	diagnosticBodyLimit = 500
)

var (
	taskIDPaths    = []string{"task_id", "id", "data.task_id", "data.video_id"}
	statusPaths    = []string{"status", "data.status"}
	resultURLPaths = []string{"result_url", "video_url", "data.result_url", "data.video_url"}
)

// Config holds the HeyGen credentials and generation defaults.
type Config struct {
	APIKey      string
	BaseURL     string
	AvatarID    string
	VoiceID     string
	Language    string
	AvatarStyle string
	VoiceSpeed  float64
	Width       int
	Height      int
}

// Provider implements adapters.Provider for HeyGen avatar videos.
type Provider struct {
	cfg       Config
	baseURL   string
	transport *adapters.Transport
}

// Character selects the avatar
type Character struct {
	Type        string `json:"type"`
	AvatarID    string `json:"avatar_id"`
	AvatarStyle string `json:"avatar_style"`
}

// Voice describes the spoken text
type Voice struct {
	Type      string  `json:"type"`
	InputText string  `json:"input_text"`
	VoiceID   string  `json:"voice_id"`
	Language  string  `json:"language"`
	Speed     float64 `json:"speed"`
}

// VideoInput is one scene of the generated video
type VideoInput struct {
	Character Character `json:"character"`
	Voice     Voice     `json:"voice"`
}

// Dimension is the output resolution
type Dimension struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GenerateRequest is the /v2/video/generate payload
type GenerateRequest struct {
	VideoInputs []VideoInput `json:"video_inputs"`
	Dimension   Dimension    `json:"dimension"`
}

// DiagnosticResult describes a raw generate call made by Diagnose.
type DiagnosticResult struct {
	RequestURL string      `json:"request_url"`
	StatusCode int         `json:"status_code"`
	Response   interface{} `json:"response"`
}

// New creates a HeyGen provider. The API key is required; the avatar and
// voice ids are checked per request.
func New(cfg Config, opts ...adapters.Option) (*Provider, error) {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: HEYGEN_KEY is not set", adapters.ErrMissingCredential)
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg.AvatarID = strings.TrimSpace(cfg.AvatarID)
	cfg.VoiceID = strings.TrimSpace(cfg.VoiceID)
	if cfg.Language = strings.TrimSpace(cfg.Language); cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.AvatarStyle = strings.TrimSpace(cfg.AvatarStyle); cfg.AvatarStyle == "" {
		cfg.AvatarStyle = DefaultAvatarStyle
	}
	if cfg.VoiceSpeed <= 0 {
		cfg.VoiceSpeed = DefaultVoiceSpeed
	}
	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}

	return &Provider{
		cfg:       cfg,
		baseURL:   baseURL,
		transport: adapters.NewTransport(Name, adapters.BuildOptions(opts...)),
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return Name
}

// BuildGenerateRequest converts the generic request to HeyGen format. It fails
// with a ConfigurationError when no avatar or voice can be determined.
func (p *Provider) BuildGenerateRequest(avatarHint, text string) (*GenerateRequest, error) {
	avatarID := strings.TrimSpace(avatarHint)
	if avatarID == "" {
		avatarID = p.cfg.AvatarID
	}
	if avatarID == "" {
		return nil, &adapters.ConfigurationError{
			Provider: Name,
			Setting:  "HEYGEN_AVATAR_ID",
			Message:  "provide a HeyGen avatar_id via the image reference or set HEYGEN_AVATAR_ID",
		}
	}
	if p.cfg.VoiceID == "" {
		return nil, &adapters.ConfigurationError{
			Provider: Name,
			Setting:  "HEYGEN_VOICE_ID",
			Message:  "set HEYGEN_VOICE_ID to a valid HeyGen voice identifier",
		}
	}

	input := strings.TrimSpace(text)
	if input == "" {
		input = DefaultGreeting
	}

	return &GenerateRequest{
		VideoInputs: []VideoInput{{
			Character: Character{
				Type:        "avatar",
				AvatarID:    avatarID,
				AvatarStyle: p.cfg.AvatarStyle,
			},
			Voice: Voice{
				Type:      "text",
				InputText: input,
				VoiceID:   p.cfg.VoiceID,
				Language:  p.cfg.Language,
				Speed:     p.cfg.VoiceSpeed,
			},
		}},
		Dimension: Dimension{Width: p.cfg.Width, Height: p.cfg.Height},
	}, nil
}

// Start creates a video generation task
func (p *Provider) Start(ctx context.Context, avatarID, text string) (*adapters.TaskResult, error) {
	payload, err := p.BuildGenerateRequest(avatarID, text)
	if err != nil {
		return nil, err
	}

	resp, err := p.transport.Call(ctx, http.MethodPost, p.baseURL+generatePath, p.headers(), payload)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, p.transport.ResponseError(resp)
	}

	taskID := adapters.FirstString(resp.Body, taskIDPaths...)
	if taskID == "" {
		return nil, p.transport.MissingField(resp, "task id")
	}
	return adapters.Processing(Name, taskID), nil
}

// Poll retrieves the task status
func (p *Provider) Poll(ctx context.Context, taskID string) (*adapters.TaskResult, error) {
	resp, err := p.transport.Call(ctx, http.MethodGet, p.baseURL+taskPath+url.PathEscape(taskID), p.headers(), nil)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(resp.Body) {
		return nil, p.transport.ResponseError(resp)
	}
	return convertTask(taskID, resp.Body), nil
}

// Diagnose performs the generate call exactly as Start would and reports the
// endpoint, status code and decoded body without treating a non-2xx status as
// an error. It is meant for verifying a deployment's HeyGen setup.
func (p *Provider) Diagnose(ctx context.Context, avatarID, text string) (*DiagnosticResult, error) {
	payload, err := p.BuildGenerateRequest(avatarID, text)
	if err != nil {
		return nil, err
	}

	resp, err := p.transport.Do(ctx, http.MethodPost, p.baseURL+generatePath, p.headers(), payload)
	if err != nil {
		return nil, err
	}

	log := p.transport.Logger().With(zap.String("url", resp.URL), zap.Int("status", resp.StatusCode))
	if resp.Success() {
		log.Info("heygen diagnostic call")
	} else {
		log.Error("heygen diagnostic call")
	}

	result := &DiagnosticResult{RequestURL: resp.URL, StatusCode: resp.StatusCode}
	if gjson.ValidBytes(resp.Body) {
		result.Response = gjson.ParseBytes(resp.Body).Value()
	} else {
		result.Response = map[string]string{"raw": adapters.Truncate(string(resp.Body), diagnosticBodyLimit)}
	}
	return result, nil
}

func convertTask(taskID string, body []byte) *adapters.TaskResult {
	switch adapters.FirstString(body, statusPaths...) {
	case "completed":
		return adapters.Completed(Name, taskID, adapters.FirstString(body, resultURLPaths...))
	case "failed":
		return adapters.Failed(Name, taskID, failureMessage(body))
	default:
		return adapters.Processing(Name, taskID)
	}
}

// failureMessage reads error.message when error is an object, and the
// stringified error value otherwise. A missing or null top-level error falls
// back to data.error.
func failureMessage(body []byte) string {
	e := gjson.GetBytes(body, "error")
	if !e.Exists() || e.Type == gjson.Null {
		e = gjson.GetBytes(body, "data.error")
	}
	switch {
	case e.IsObject():
		return e.Get("message").String()
	case e.Type == gjson.Null, e.Type == gjson.False:
		return ""
	default:
		return e.String()
	}
}

func (p *Provider) headers() map[string]string {
	return map[string]string{"X-Api-Key": p.cfg.APIKey}
}

var _ adapters.Provider = (*Provider)(nil)
