package llm

import (
	"context"
	"fmt"

	"github.com/ankush0511/nutriwise/internal/config"
	"github.com/ankush0511/nutriwise/internal/shared"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	geminiTextModel   = "gemini-2.0-flash"
	geminiVisionModel = "gemini-2.5-pro"
	geminiAudioModel  = "gemini-2.5-flash"
)

// GeminiClient is a client for the Google Gemini API. It serves as the
// text generator for scoring and alternatives, the vision analyzer for
// label OCR, and the transcriber for voice input.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini API client.
func NewGeminiClient(ctx context.Context, cfg *config.Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// GenerateContent sends a text-only prompt to the Gemini model.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	model := c.client.GenerativeModel(geminiTextModel)
	model.SetTemperature(0.1)
	return c.generate(ctx, model, geminiTextModel, genai.Text(prompt))
}

// GenerateFromImage sends a prompt plus an inline image to the Gemini vision model.
func (c *GeminiClient) GenerateFromImage(ctx context.Context, prompt, mimeType string, image []byte) (ContentResponse, error) {
	model := c.client.GenerativeModel(geminiVisionModel)
	return c.generate(ctx, model, geminiVisionModel,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: image},
	)
}

// GenerateFromAudio sends a prompt plus an inline audio clip to the Gemini model.
func (c *GeminiClient) GenerateFromAudio(ctx context.Context, prompt, mimeType string, audio []byte) (ContentResponse, error) {
	model := c.client.GenerativeModel(geminiAudioModel)
	return c.generate(ctx, model, geminiAudioModel,
		genai.Text(prompt),
		genai.Blob{MIMEType: mimeType, Data: audio},
	)
}

func (c *GeminiClient) generate(ctx context.Context, model *genai.GenerativeModel, modelName string, parts ...genai.Part) (ContentResponse, error) {
	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return ContentResponse{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ContentResponse{}, ErrEmptyResponse
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return ContentResponse{}, fmt.Errorf("%w: generated content is not text", ErrEmptyResponse)
	}

	usage := shared.TokenUsage{Model: modelName}
	if resp.UsageMetadata != nil {
		usage.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		usage.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	return ContentResponse{Content: string(text), Usage: usage}, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
