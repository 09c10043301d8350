package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rohankatakam/insightify/internal/errors"
)

// ValidationContext specifies what configuration is required
type ValidationContext string

const (
	// ValidationContextDaily - the daily run needs a source and usually an LLM key
	ValidationContextDaily ValidationContext = "daily"
	// ValidationContextMonthly - the monthly run only reads stored records
	ValidationContextMonthly ValidationContext = "monthly"
	// ValidationContextProfile - whoami needs GitHub credentials
	ValidationContextProfile ValidationContext = "profile"
	// ValidationContextAll - validate all configuration
	ValidationContextAll ValidationContext = "all"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Err converts a failed result into a fatal config error, nil otherwise.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigError(strings.TrimSpace(vr.Error()))
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate validates configuration for the given context
func (c *Config) Validate(ctx ValidationContext) *ValidationResult {
	result := &ValidationResult{Valid: true}

	c.validateStruct(result)

	switch ctx {
	case ValidationContextDaily:
		c.validateSource(result)
		c.validateLLM(result)
		c.validateStorage(result)
		c.validateDelivery(result)
	case ValidationContextMonthly:
		c.validateLLM(result)
		c.validateStorage(result)
		c.validateDelivery(result)
	case ValidationContextProfile:
		c.validateGitHub(result)
	case ValidationContextAll:
		c.validateSource(result)
		c.validateLLM(result)
		c.validateStorage(result)
		c.validateDelivery(result)
	}

	return result
}

// validateStruct applies the field rules declared in the struct tags.
func (c *Config) validateStruct(result *ValidationResult) {
	err := structValidator.Struct(c)
	if err == nil {
		return
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result.AddError("%v", err)
		return
	}
	for _, fe := range fieldErrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			result.AddError("%s fails %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
		} else {
			result.AddError("%s fails %s (got %v)", field, fe.Tag(), fe.Value())
		}
	}
}

func (c *Config) validateGitHub(result *ValidationResult) {
	if c.GitHub.Token == "" {
		result.AddError("GH_TOKEN is required but not set")
	}
	if c.GitHub.Username == "" {
		result.AddError("GH_USERNAME is required but not set")
	}
}

func (c *Config) validateSource(result *ValidationResult) {
	switch c.Source.Type {
	case "github":
		c.validateGitHub(result)
	case "local":
		if len(c.Source.Local.Paths) == 0 {
			result.AddError("source.local.paths must list at least one repository")
		}
		if c.Source.Local.AuthorEmail == "" {
			result.AddError("source.local.author_email is required for the local source")
		}
	}
}

func (c *Config) validateLLM(result *ValidationResult) {
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.GeminiKey == "" {
			result.AddError("GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			result.AddError("OPENAI_API_KEY is required for the openai provider")
		}
	case "compatible":
		if c.LLM.CompatibleURL == "" {
			result.AddError("llm.compatible_url is required for the compatible provider")
		}
		if c.LLM.CompatibleModel == "" {
			result.AddError("llm.compatible_model is required for the compatible provider")
		}
	case "none":
		result.AddWarning("LLM provider disabled, reports will carry fallback insights")
	}
}

func (c *Config) validateStorage(result *ValidationResult) {
	switch c.Storage.Type {
	case "postgres":
		if c.Storage.PostgresDSN == "" {
			result.AddError("POSTGRES_DSN is required for postgres storage")
		} else if !strings.HasPrefix(c.Storage.PostgresDSN, "postgres://") && !strings.HasPrefix(c.Storage.PostgresDSN, "postgresql://") {
			result.AddError("POSTGRES_DSN must start with postgres:// or postgresql://")
		}
	case "bolt":
		if c.Storage.BoltPath == "" {
			result.AddError("storage.bolt_path is required for bolt storage")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			result.AddError("storage.sqlite_path is required for sqlite storage")
		}
	}
}

func (c *Config) validateDelivery(result *ValidationResult) {
	if c.Discord.Enabled && c.Discord.WebhookURL == "" {
		result.AddWarning("DISCORD_WEBHOOK_URL is not set, Discord notifications disabled")
	}
	if c.Email.Enabled && (c.Email.From == "" || c.Email.To == "" || c.Email.Password == "") {
		result.AddWarning("EMAIL_FROM, EMAIL_TO and EMAIL_PASSWORD are not all set, email reports disabled")
	}
}
