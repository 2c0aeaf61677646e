package vidfacade

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/adapters/a2e"
	"github.com/feitianbubu/vidfacade/adapters/did"
	"github.com/feitianbubu/vidfacade/adapters/heygen"
	"github.com/feitianbubu/vidfacade/config"
)

// Constructor builds one provider adapter from the configuration snapshot.
type Constructor func(cfg *config.Config, opts ...adapters.Option) (adapters.Provider, error)

// constructors is the closed set of supported providers.
var constructors = map[ProviderType]Constructor{
	ProviderA2E: func(cfg *config.Config, opts ...adapters.Option) (adapters.Provider, error) {
		return a2e.New(a2e.Config{
			Token:    cfg.A2E.Token,
			BaseURL:  cfg.A2E.BaseURL,
			TaskName: cfg.A2E.TaskName,
		}, opts...)
	},
	ProviderDID: func(cfg *config.Config, opts ...adapters.Option) (adapters.Provider, error) {
		return did.New(did.Config{APIKey: cfg.DID.APIKey, BaseURL: cfg.DID.BaseURL}, opts...)
	},
	ProviderHeyGen: func(cfg *config.Config, opts ...adapters.Option) (adapters.Provider, error) {
		return heygen.New(heygen.Config{
			APIKey:      cfg.HeyGen.APIKey,
			BaseURL:     cfg.HeyGen.BaseURL,
			AvatarID:    cfg.HeyGen.AvatarID,
			VoiceID:     cfg.HeyGen.VoiceID,
			Language:    cfg.HeyGen.Language,
			AvatarStyle: cfg.HeyGen.AvatarStyle,
			VoiceSpeed:  cfg.HeyGen.VoiceSpeed,
			Width:       cfg.HeyGen.Width,
			Height:      cfg.HeyGen.Height,
		}, opts...)
	},
}

type registryEntry struct {
	provider Provider
	err      error
}

// Registry resolves provider names to adapters. It is built once and never
// modified, so it is safe for concurrent use.
type Registry struct {
	entries map[ProviderType]registryEntry
}

// ProviderStatus describes whether a provider can serve requests
type ProviderStatus struct {
	Provider  ProviderType `json:"provider"`
	Available bool         `json:"available"`
	Reason    string       `json:"reason,omitempty"`
}

// NewRegistry constructs every supported adapter from cfg. A provider whose
// construction fails is recorded as unavailable; the others stay usable.
func NewRegistry(cfg *config.Config, opts ...adapters.Option) *Registry {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.Server.Timeout > 0 {
		opts = append([]adapters.Option{adapters.WithTimeout(cfg.Server.Timeout)}, opts...)
	}
	logger := adapters.BuildOptions(opts...).Logger

	r := &Registry{entries: make(map[ProviderType]registryEntry, len(constructors))}
	for name, construct := range constructors {
		p, err := construct(cfg, opts...)
		if err != nil {
			logger.Warn("provider disabled", zap.String("provider", string(name)), zap.Error(err))
			r.entries[name] = registryEntry{err: err}
			continue
		}
		r.entries[name] = registryEntry{provider: &adapterWrapper{name: name, provider: p}}
	}
	return r
}

// NewRegistryWithProviders builds a registry from already constructed
// adapters. Supported providers missing from the map are unavailable.
func NewRegistryWithProviders(providers map[ProviderType]adapters.Provider) *Registry {
	r := &Registry{entries: make(map[ProviderType]registryEntry, len(Providers))}
	for _, name := range Providers {
		p, ok := providers[name]
		if !ok || p == nil {
			r.entries[name] = registryEntry{err: adapters.ErrMissingCredential}
			continue
		}
		r.entries[name] = registryEntry{provider: &adapterWrapper{name: name, provider: p}}
	}
	return r
}

// ParseProvider maps a provider name or alias to its canonical type.
func ParseProvider(name string) (ProviderType, error) {
	p, ok := providerAliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return "", &UnknownProviderError{Name: name}
	}
	return p, nil
}

// Resolve returns the adapter for name. Unknown names yield an
// UnknownProviderError, known but unconfigured providers a
// ProviderUnavailableError.
func (r *Registry) Resolve(name string) (Provider, error) {
	p, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}
	entry, ok := r.entries[p]
	if !ok || entry.provider == nil {
		return nil, &ProviderUnavailableError{Provider: p, Reason: entry.err}
	}
	return entry.provider, nil
}

// Status reports the availability of every supported provider.
func (r *Registry) Status() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(Providers))
	for _, name := range Providers {
		entry := r.entries[name]
		st := ProviderStatus{Provider: name, Available: entry.provider != nil}
		if !st.Available && entry.err != nil {
			st.Reason = entry.err.Error()
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Provider < out[j].Provider })
	return out
}
