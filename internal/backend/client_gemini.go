package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client via the Google GenAI SDK. Gemini supports
// constrained JSON output, so results come back structured and skip the
// free-text extraction path.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// NewGeminiClient creates a Gemini client.
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, ErrNotConfigured
	}
	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: config.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Generate requests a JSON-mode completion and returns it structured.
func (c *GeminiClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (*RawResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.1),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return nil, fmt.Errorf("no completion returned")
	}
	if !json.Valid([]byte(text)) {
		// JSON mode should guarantee this; fall back to text extraction if
		// the model slipped anyway.
		return &RawResult{Text: text}, nil
	}
	return &RawResult{Structured: json.RawMessage(text)}, nil
}

// Model returns the current model.
func (c *GeminiClient) Model() string {
	return c.model
}
