package vision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator generates vision statements with the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  string
}

// NewGeminiGenerator creates a generator bound to one model
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate asks the model for a vision statement. A response cut off at
// the token budget is retried once with double the budget before giving
// up.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, budget int) (string, error) {
	return generateWithRetry(budget, func(budget int) (string, bool, error) {
		return g.generateOnce(ctx, prompt, budget)
	})
}

// generateWithRetry runs one attempt and, when the response was cut off
// at the budget, a single follow-up attempt at double the budget.
func generateWithRetry(budget int, attempt func(budget int) (string, bool, error)) (string, error) {
	if budget <= 0 {
		budget = 256
	}
	text, truncated, err := attempt(budget)
	if err != nil {
		return "", err
	}
	if truncated {
		text, truncated, err = attempt(budget * 2)
		if err != nil {
			return "", err
		}
		if truncated {
			return "", errors.New("model response exceeded output budget twice")
		}
	}
	if text == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}

func (g *GeminiGenerator) generateOnce(ctx context.Context, prompt string, budget int) (string, bool, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(budget),
		Temperature:     genai.Ptr[float32](0.7),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", false, fmt.Errorf("Gemini generate failed: %w", err)
	}
	if len(result.Candidates) == 0 {
		return "", false, errors.New("Gemini returned no candidates")
	}

	candidate := result.Candidates[0]
	truncated := candidate.FinishReason == genai.FinishReasonMaxTokens
	return strings.TrimSpace(result.Text()), truncated, nil
}
