package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

// OpenAIClient talks to the hosted OpenAI chat completion API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float64
	logger      logrus.FieldLogger
}

func NewOpenAIClient(apiKey, model string, temperature float64, logger logrus.FieldLogger) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClient{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: temperature,
		logger:      logger.WithFields(logrus.Fields{"component": "openai", "model": model}),
	}, nil
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: float32(c.temperature),
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	response := resp.Choices[0].Message.Content
	c.logger.WithFields(logrus.Fields{
		"prompt_length":   len(prompt),
		"response_length": len(response),
		"tokens_used":     resp.Usage.TotalTokens,
	}).Debug("openai completion")

	return response, nil
}
