package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/sirupsen/logrus"
)

// CompatibleClient targets any server that speaks the OpenAI chat
// completions protocol at a custom base URL (self-hosted models, proxies).
type CompatibleClient struct {
	client      openai.Client
	model       openai.ChatModel
	temperature float64
	logger      logrus.FieldLogger
}

func NewCompatibleClient(baseURL, apiKey, model string, temperature float64, logger logrus.FieldLogger) (*CompatibleClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("compatible endpoint URL is required")
	}
	if model == "" {
		return nil, fmt.Errorf("compatible model name is required")
	}

	opts := []option.RequestOption{option.WithBaseURL(baseURL)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	} else {
		// the SDK otherwise falls back to OPENAI_API_KEY
		opts = append(opts, option.WithAPIKey("unused"))
	}

	return &CompatibleClient{
		client:      openai.NewClient(opts...),
		model:       openai.ChatModel(model),
		temperature: temperature,
		logger:      logger.WithFields(logrus.Fields{"component": "compatible-llm", "model": model, "endpoint": baseURL}),
	}, nil
}

func (c *CompatibleClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: openai.Float(c.temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("compatible completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("compatible endpoint returned no choices")
	}

	response := completion.Choices[0].Message.Content
	c.logger.WithFields(logrus.Fields{
		"prompt_length":   len(prompt),
		"response_length": len(response),
		"tokens_used":     completion.Usage.TotalTokens,
	}).Debug("compatible completion")

	return response, nil
}
