package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
)

var (
	ErrMissingAPIKey = errors.New("missing AI API key")
	ErrMissingImage  = errors.New("missing image data")
	ErrNoJSON        = errors.New("AI did not return a JSON object")
	ErrInvalidJSON   = errors.New("failed to parse JSON from AI")
)

// Request is one extraction call. APIKey is supplied by the caller on every request.
type Request struct {
	Image    string `json:"image"`
	APIKey   string `json:"apiKey"`
	Model    string `json:"model"`
	Prompt   string `json:"prompt,omitempty"`
	PromptID string `json:"promptId,omitempty"`
}

// Extractor turns a receipt image into models.ExtractedData with a single model call
type Extractor struct {
	newProvider  ProviderFactory
	defaultModel string
	maxImageEdge int
}

// NewExtractor creates an extractor using the real Gemini/OpenAI providers
func NewExtractor(defaultModel string, maxImageEdge int) *Extractor {
	if defaultModel == "" {
		defaultModel = DefaultGeminiModel
	}
	return &Extractor{
		newProvider:  NewProvider,
		defaultModel: defaultModel,
		maxImageEdge: maxImageEdge,
	}
}

// WithProviderFactory swaps the provider constructor
func (e *Extractor) WithProviderFactory(f ProviderFactory) *Extractor {
	e.newProvider = f
	return e
}

// Extract validates the request, calls the model once and parses its answer
func (e *Extractor) Extract(ctx context.Context, req Request) (*models.ExtractedData, error) {
	if req.Image == "" {
		return nil, ErrMissingImage
	}
	if req.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	img, err := DecodeDataURI(req.Image)
	if err != nil {
		return nil, err
	}
	img = Downscale(img, e.maxImageEdge)

	model := req.Model
	if model == "" {
		model = e.defaultModel
	}

	provider, err := e.newProvider(ctx, req.APIKey, model)
	if err != nil {
		return nil, err
	}
	defer provider.Close()

	text, err := provider.Generate(ctx, e.resolvePrompt(req), img)
	if err != nil {
		return nil, err
	}

	return ParseExtraction(text)
}

func (e *Extractor) resolvePrompt(req Request) string {
	if req.Prompt != "" {
		return req.Prompt
	}
	if p, ok := FindPrompt(req.PromptID); ok {
		return p.Text
	}
	p, _ := FindPrompt(DefaultPromptID)
	return p.Text
}

// ParseExtraction reads the first brace-delimited object out of the model's text.
// The full text is kept in RawAIResponse.
func ParseExtraction(text string) (*models.ExtractedData, error) {
	obj, ok := utils.ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoJSON, text)
	}

	var data models.ExtractedData
	if err := json.Unmarshal([]byte(obj), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if data.Items == nil {
		data.Items = []models.ExtractedItem{}
	}
	data.RawAIResponse = text

	return &data, nil
}
