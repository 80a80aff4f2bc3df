// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when the gemini provider is selected without a
// model name.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiBackend calls the Gemini API with the page image as inline data.
type GeminiBackend struct {
	client *genai.Client
	model  string
}

// NewGeminiBackend creates a Gemini API client.
func NewGeminiBackend(ctx context.Context, apiKey, baseURL, model string) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiBackend{client: c, model: model}, nil
}

// Transcribe sends the system instruction and a user turn with the prompt
// text followed by the image.
func (g *GeminiBackend) Transcribe(ctx context.Context, req Request) (string, error) {
	mime := req.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	var cfg *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		}
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: req.UserPrompt},
			{InlineData: &genai.Blob{MIMEType: mime, Data: req.Image}},
		},
	}}

	res, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("calling gemini: %w", err)
	}
	if len(res.Candidates) == 0 {
		return "", ErrEmptyResponse
	}
	text := res.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
