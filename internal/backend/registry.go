package backend

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Settings carries the provider credentials and model overrides the registry
// builds clients from.
type Settings struct {
	Provider        Provider
	AnthropicAPIKey string
	AnthropicModel  string
	GeminiAPIKey    string
	GeminiModel     string
	Timeout         time.Duration
}

// Registry lazily constructs and caches one client per provider. Concurrent
// first requests for the same provider share a single construction via
// singleflight, so a burst of traffic at startup builds each client once.
type Registry struct {
	settings Settings

	group   singleflight.Group
	mu      sync.RWMutex
	clients map[Provider]Client
}

// NewRegistry creates an empty registry for the given settings.
func NewRegistry(settings Settings) *Registry {
	return &Registry{
		settings: settings,
		clients:  make(map[Provider]Client),
	}
}

// Default returns the client for the configured default provider.
func (r *Registry) Default(ctx context.Context) (Client, error) {
	return r.Get(ctx, r.settings.Provider)
}

// Get returns the client for the given provider, constructing it on first
// use.
func (r *Registry) Get(ctx context.Context, provider Provider) (Client, error) {
	r.mu.RLock()
	client, ok := r.clients[provider]
	r.mu.RUnlock()
	if ok {
		return client, nil
	}

	v, err, _ := r.group.Do(string(provider), func() (any, error) {
		r.mu.RLock()
		client, ok := r.clients[provider]
		r.mu.RUnlock()
		if ok {
			return client, nil
		}

		client, err := r.newClient(ctx, provider)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.clients[provider] = client
		r.mu.Unlock()
		return client, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Client), nil
}

func (r *Registry) newClient(ctx context.Context, provider Provider) (Client, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey: r.settings.GeminiAPIKey,
			Model:  r.settings.GeminiModel,
		})
	case ProviderAnthropic:
		cfg := DefaultAnthropicConfig(r.settings.AnthropicAPIKey)
		if r.settings.AnthropicModel != "" {
			cfg.Model = r.settings.AnthropicModel
		}
		if r.settings.Timeout > 0 {
			cfg.Timeout = r.settings.Timeout
		}
		c := NewAnthropicClientWithConfig(cfg)
		if c.apiKey == "" {
			return nil, ErrNotConfigured
		}
		return c, nil
	}
	_, err := ParseProvider(string(provider))
	return nil, err
}
