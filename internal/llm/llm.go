package llm

import (
	"context"
	"errors"

	"github.com/ankush0511/nutriwise/internal/shared"
)

var (
	// ErrServiceUnavailable wraps transport and provider failures. Callers
	// surface it with a retry suggestion.
	ErrServiceUnavailable = errors.New("model service unavailable")
	// ErrEmptyResponse marks a call that succeeded but produced no usable
	// content.
	ErrEmptyResponse = errors.New("model returned no content")
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (ContentResponse, error)
}

// VisionAnalyzer is an interface for generating text from a prompt plus an image.
type VisionAnalyzer interface {
	GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (ContentResponse, error)
}

// Transcriber is an interface for generating text from a prompt plus an audio clip.
type Transcriber interface {
	GenerateFromAudio(ctx context.Context, prompt, mimeType string, audio []byte) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
