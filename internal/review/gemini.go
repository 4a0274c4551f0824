package review

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrMissingAPIKey indicates no API key was provided for the Gemini backend.
var ErrMissingAPIKey = errors.New("missing Gemini API key")

// GeminiModel implements Model with the Gemini API.
type GeminiModel struct {
	client *genai.Client
	model  string
}

// NewGeminiModel creates a Gemini-backed Model.
func NewGeminiModel(ctx context.Context, apiKey, model string) (*GeminiModel, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiModel{client: client, model: model}, nil
}

// Compile-time interface check.
var _ Model = (*GeminiModel)(nil)

// Evaluate sends the prompt and page image and asks for a JSON reply.
func (g *GeminiModel) Evaluate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema(),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("generating review: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty reply", ErrMalformedResponse)
	}
	return text, nil
}

func responseSchema() *genai.Schema {
	list := &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"issues":      list,
			"suggestions": list,
			"score":       {Type: genai.TypeInteger},
		},
		Required: []string{"issues", "suggestions", "score"},
	}
}
