package ai

import (
	"context"
	"strings"
)

// Provider is one multimodal model backend
type Provider interface {
	Generate(ctx context.Context, prompt string, img Image) (string, error)
	Close() error
}

// ProviderFactory opens a provider for one request. The API key is never retained.
type ProviderFactory func(ctx context.Context, apiKey, model string) (Provider, error)

// NewProvider picks OpenAI for gpt-*/o* model names and Gemini otherwise
func NewProvider(ctx context.Context, apiKey, model string) (Provider, error) {
	if IsOpenAIModel(model) {
		return NewOpenAIClient(apiKey, model)
	}
	return NewGeminiClient(ctx, apiKey, model)
}

// IsOpenAIModel reports whether the model name belongs to OpenAI
func IsOpenAIModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	if strings.HasPrefix(m, "gpt-") || strings.HasPrefix(m, "chatgpt-") {
		return true
	}
	// o1, o3-mini, o4-mini ...
	return len(m) >= 2 && m[0] == 'o' && m[1] >= '0' && m[1] <= '9'
}
