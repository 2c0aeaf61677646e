package vidfacade

import "github.com/feitianbubu/vidfacade/adapters"

// TaskStatus represents the normalized status of a video generation task
type TaskStatus = adapters.TaskStatus

const (
	TaskStatusProcessing = adapters.TaskStatusProcessing
	TaskStatusCompleted  = adapters.TaskStatusCompleted
	TaskStatusFailed     = adapters.TaskStatusFailed
)

// TaskResult is the normalized result reported for every provider
type TaskResult = adapters.TaskResult

// GenerationRequest represents a talking video generation request
type GenerationRequest struct {
	Provider string `json:"provider"`
	// ImageURL is an image URL for most providers and an avatar id for HeyGen.
	ImageURL string `json:"image_url"`
	Text     string `json:"text"`
}

// ProviderType represents the supported video generation providers
type ProviderType string

const (
	ProviderA2E    ProviderType = "a2e"
	ProviderDID    ProviderType = "did"
	ProviderHeyGen ProviderType = "heygen"
)

// Providers lists every supported provider in a stable order.
var Providers = []ProviderType{ProviderA2E, ProviderDID, ProviderHeyGen}

// providerAliases maps accepted spellings to the canonical provider.
var providerAliases = map[string]ProviderType{
	"a2e":    ProviderA2E,
	"did":    ProviderDID,
	"d-id":   ProviderDID,
	"heygen": ProviderHeyGen,
}
