// Package recipe turns text, voice, or image input into a cooking recipe.
package recipe

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"text/template"
	"time"

	"github.com/ankush0511/nutriwise/internal/llm"
	"github.com/ankush0511/nutriwise/internal/parse"
	"github.com/ankush0511/nutriwise/internal/shared"
)

//go:embed recipe_prompt.md
var recipePrompt string

const mediaPrompt = "Based on the provided input, return output with:\n" +
	"1. Recipe Name\n" +
	"2. Required Ingredients (with quantities if possible)\n" +
	"3. Step-by-Step Cooking Instructions\n" +
	"4. Optional Tips for taste/health."

// Result carries a generated recipe plus operational metadata.
type Result struct {
	Text string
	Name string
	Meta shared.AgentMeta
}

// Generator produces recipes from the three supported input modes.
type Generator struct {
	textGen llm.TextGenerator
	vision  llm.VisionAnalyzer
	audio   llm.Transcriber
}

// NewGenerator creates a Generator from the injected model clients.
func NewGenerator(textGen llm.TextGenerator, vision llm.VisionAnalyzer, audio llm.Transcriber) *Generator {
	return &Generator{textGen: textGen, vision: vision, audio: audio}
}

// FromText generates a recipe from a typed ingredient list.
func (g *Generator) FromText(ctx context.Context, ingredients string) (Result, error) {
	if strings.TrimSpace(ingredients) == "" {
		return Result{}, fmt.Errorf("no ingredients provided")
	}

	prompt, err := buildRecipePrompt(ingredients)
	if err != nil {
		return Result{}, err
	}

	start := time.Now()
	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate recipe: %w", err)
	}
	return g.finish(ctx, "RecipeText", resp, start)
}

// FromImage generates a recipe from a photo of ingredients or a dish.
func (g *Generator) FromImage(ctx context.Context, mimeType string, image []byte) (Result, error) {
	if len(image) == 0 {
		return Result{}, fmt.Errorf("no image provided")
	}

	start := time.Now()
	resp, err := g.vision.GenerateFromImage(ctx, mediaPrompt, mimeType, image)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate recipe from image: %w", err)
	}
	return g.finish(ctx, "RecipeImage", resp, start)
}

// FromAudio generates a recipe from a voice recording of spoken ingredients.
func (g *Generator) FromAudio(ctx context.Context, mimeType string, audio []byte) (Result, error) {
	if len(audio) == 0 {
		return Result{}, fmt.Errorf("no audio provided")
	}

	start := time.Now()
	resp, err := g.audio.GenerateFromAudio(ctx, mediaPrompt, mimeType, audio)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate recipe from audio: %w", err)
	}
	return g.finish(ctx, "RecipeVoice", resp, start)
}

func (g *Generator) finish(ctx context.Context, agent string, resp llm.ContentResponse, start time.Time) (Result, error) {
	if strings.TrimSpace(resp.Content) == "" {
		return Result{}, fmt.Errorf("model returned no recipe text")
	}

	result := Result{
		Text: resp.Content,
		Meta: shared.AgentMeta{
			AgentName: agent,
			Usage:     resp.Usage,
			Latency:   time.Since(start),
		},
	}

	// Name extraction is best effort; the recipe text stands on its own.
	name, err := g.ExtractName(ctx, resp.Content)
	if err == nil {
		result.Name = name
	}
	return result, nil
}

// ExtractName asks the model for the recipe name as JSON and parses it out.
func (g *Generator) ExtractName(ctx context.Context, recipeText string) (string, error) {
	head := recipeText
	if len(head) > 100 {
		head = head[:100]
	}
	prompt := fmt.Sprintf(
		"Extract only the recipe name from the following text.\n"+
			"Return only the recipe name in JSON format with the key \"recipe_name\".\n"+
			"text=%s", head)

	resp, err := g.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to extract recipe name: %w", err)
	}

	var named struct {
		RecipeName string `json:"recipe_name"`
	}
	if !parse.ExtractInto(resp.Content, &named) || named.RecipeName == "" {
		return "", fmt.Errorf("no recipe name in model response")
	}
	return named.RecipeName, nil
}

// ImageURL builds a pollinations.ai rendering URL for a recipe name.
func ImageURL(recipeName string) string {
	return fmt.Sprintf(
		"https://pollinations.ai/p/%s?width=1024&height=1024&seed=42&model=nanobanana",
		url.PathEscape(recipeName),
	)
}

func buildRecipePrompt(ingredients string) (string, error) {
	tmpl, err := template.New("recipe").Parse(recipePrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Ingredients string }{Ingredients: ingredients}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
