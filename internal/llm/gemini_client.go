package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

// GeminiClient wraps Google's Generative AI SDK
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float64
	logger      logrus.FieldLogger
}

// NewGeminiClient creates a new Gemini API client
// apiKey: Google AI API key (from environment, config or keychain)
// model: Model name (e.g., "gemini-1.5-flash")
func NewGeminiClient(ctx context.Context, apiKey, model string, temperature float64, logger logrus.FieldLogger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		temperature: temperature,
		logger:      logger.WithFields(logrus.Fields{"component": "gemini", "model": model}),
	}, nil
}

// Complete sends a prompt to Gemini and returns the text response
func (c *GeminiClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	genConfig := &genai.GenerateContentConfig{
		Temperature:     ptrFloat32(float32(c.temperature)),
		MaxOutputTokens: int32(maxTokens),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), genConfig)
	if err != nil {
		return "", fmt.Errorf("gemini completion failed: %w", err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("gemini blocked the prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		return "", fmt.Errorf("gemini returned empty text (finish reason %s)", resp.Candidates[0].FinishReason)
	}

	c.logger.WithFields(logrus.Fields{
		"prompt_length":   len(prompt),
		"response_length": text.Len(),
	}).Debug("gemini completion")

	return text.String(), nil
}

func ptrFloat32(v float32) *float32 {
	return &v
}
