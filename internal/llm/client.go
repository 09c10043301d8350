package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rohankatakam/insightify/internal/config"
	"github.com/rohankatakam/insightify/internal/models"
	"github.com/sirupsen/logrus"
)

// Provider represents the LLM provider
type Provider string

const (
	ProviderGemini     Provider = "gemini"
	ProviderOpenAI     Provider = "openai"
	ProviderCompatible Provider = "compatible"
	ProviderNone       Provider = "none"
)

// Completer is a single provider backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Client renders report prompts and sends them to the configured provider.
// It satisfies insight.Producer.
type Client struct {
	provider  Provider
	completer Completer
	timeout   time.Duration
	logger    logrus.FieldLogger
}

// NewClient creates the client for cfg.Provider. A missing key is not an
// error here: the client is returned disabled and every Generate fails, so
// the run degrades to fallback insights.
func NewClient(ctx context.Context, cfg config.LLMConfig, logger logrus.FieldLogger) (*Client, error) {
	logger = logger.WithField("component", "llm")
	c := &Client{
		provider: Provider(cfg.Provider),
		timeout:  cfg.Timeout,
		logger:   logger,
	}

	var err error
	switch c.provider {
	case ProviderGemini, "":
		c.provider = ProviderGemini
		if cfg.GeminiKey == "" {
			logger.Warn("no Gemini API key configured; set GEMINI_API_KEY or run 'insightify config set llm.gemini_key'")
			return c, nil
		}
		c.completer, err = NewGeminiClient(ctx, cfg.GeminiKey, cfg.GeminiModel, cfg.Temperature, logger)
	case ProviderOpenAI:
		if cfg.OpenAIKey == "" {
			logger.Warn("no OpenAI API key configured; set OPENAI_API_KEY or run 'insightify config set llm.openai_key'")
			return c, nil
		}
		c.completer, err = NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.Temperature, logger)
	case ProviderCompatible:
		c.completer, err = NewCompatibleClient(cfg.CompatibleURL, cfg.CompatibleKey, cfg.CompatibleModel, cfg.Temperature, logger)
	case ProviderNone:
		logger.Info("insight generation disabled")
		return c, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	logger.WithField("provider", c.provider).Debug("llm client initialized")
	return c, nil
}

// NewClientWith wraps an existing backend.
func NewClientWith(provider Provider, completer Completer, timeout time.Duration, logger logrus.FieldLogger) *Client {
	return &Client{provider: provider, completer: completer, timeout: timeout, logger: logger}
}

// IsEnabled returns true if a provider backend is ready
func (c *Client) IsEnabled() bool {
	return c.completer != nil
}

// GetProvider returns the active LLM provider
func (c *Client) GetProvider() Provider {
	return c.provider
}

// Generate builds the prompt for report and returns the model's narrative.
func (c *Client) Generate(ctx context.Context, report models.Report) (string, error) {
	if !c.IsEnabled() {
		return "", fmt.Errorf("llm provider %q not enabled", c.provider)
	}

	prompt, err := BuildPrompt(report)
	if err != nil {
		return "", err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.completer.Complete(ctx, prompt, MaxTokens(report.Kind))
	if err != nil {
		return "", err
	}
	c.logger.WithFields(logrus.Fields{
		"provider": c.provider,
		"kind":     report.Kind,
		"duration": time.Since(start).Round(time.Millisecond),
	}).Info("insights generated")
	return text, nil
}
