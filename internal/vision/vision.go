// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package vision sends annotated page images to a multimodal model and
// returns the markdown it writes.
package vision

import (
	"context"
	"errors"
	"fmt"

	"github.com/pdiddy/pdfvision/pkg/types"
)

// ErrEmptyResponse is returned when the model answers without any choice or
// candidate to read content from.
var ErrEmptyResponse = errors.New("empty response from vision model")

// Request is one page transcription request.
type Request struct {
	Image        []byte
	MIMEType     string
	SystemPrompt string
	UserPrompt   string
}

// Backend transcribes one image. Implementations make exactly one call to
// the model per invocation.
type Backend interface {
	Transcribe(ctx context.Context, req Request) (string, error)
}

// New returns the backend selected by cfg.Provider.
func New(ctx context.Context, cfg types.VisionConfig) (Backend, error) {
	switch cfg.Provider {
	case types.ProviderOpenAI, "":
		return NewOpenAIBackend(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown vision provider %q", cfg.Provider)
	}
}
