// Package backend talks to the LLM providers that generate UI definitions.
// Each provider has its own client; all of them satisfy Client so the
// pipeline never cares which one is configured.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Provider identifies a supported LLM backend.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"
)

// ErrNotConfigured is returned when a provider is selected but its API key is
// missing.
var ErrNotConfigured = errors.New("backend: provider not configured")

// RawResult is a provider response before normalization. Providers that can
// enforce JSON output set Structured; free-text providers set Text and leave
// extraction to the normalizer. Exactly one of the two is populated.
type RawResult struct {
	Structured json.RawMessage
	Text       string
}

// Client generates raw UI definitions from a system prompt and a user
// request.
type Client interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*RawResult, error)
	Model() string
}

// ParseProvider validates a provider name from configuration.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderAnthropic:
		return ProviderAnthropic, nil
	case ProviderGemini:
		return ProviderGemini, nil
	}
	return "", fmt.Errorf("backend: unknown provider %q", s)
}
