package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestIsOpenAIModel(t *testing.T) {
	tests := map[string]bool{
		"gpt-4o":           true,
		"GPT-4.1-mini":     true,
		"o4-mini":          true,
		"gemini-2.5-flash": false,
		"gemini-2.5-pro":   false,
		"":                 false,
		"omni":             false,
	}
	for model, want := range tests {
		if got := IsOpenAIModel(model); got != want {
			t.Errorf("IsOpenAIModel(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestNewProviderRequiresKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), "", "gpt-4o"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("openai: expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewProvider(context.Background(), "", "gemini-2.5-flash"); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("gemini: expected ErrMissingAPIKey, got %v", err)
	}
}

func TestPromptsAndSchema(t *testing.T) {
	schema := ExtractionSchema()
	for _, field := range []string{`"document_type"`, `"items"`, `"quantity"`, `"confidence"`} {
		if !strings.Contains(schema, field) {
			t.Errorf("schema missing %s", field)
		}
	}
	if strings.Contains(schema, "raw_ai_response") {
		t.Error("schema should not ask the model for raw_ai_response")
	}

	if len(DefaultPrompts()) != 3 {
		t.Errorf("expected 3 default prompts")
	}
	if _, ok := FindPrompt(" PN "); !ok {
		t.Error("FindPrompt should be case-insensitive")
	}
	if _, ok := FindPrompt("nope"); ok {
		t.Error("unknown prompt id should not be found")
	}
}

func TestGeminiClientRequestsJSON(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), "test-key", "")
	if err != nil {
		t.Fatalf("NewGeminiClient failed: %v", err)
	}
	defer c.Close()

	if c.model.ResponseMIMEType != "application/json" {
		t.Errorf("ResponseMIMEType = %q, want application/json", c.model.ResponseMIMEType)
	}
}
