package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal containers

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration settings. It is built once by Load and
// handed to component constructors piecewise; nothing mutates it afterwards.
type Config struct {
	// IANA zone used for day boundaries and commit hour buckets
	Timezone string `mapstructure:"timezone" yaml:"timezone" validate:"required,timezone"`

	GitHub  GitHubConfig  `mapstructure:"github" yaml:"github"`
	Source  SourceConfig  `mapstructure:"source" yaml:"source"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	LLM     LLMConfig     `mapstructure:"llm" yaml:"llm"`
	Discord DiscordConfig `mapstructure:"discord" yaml:"discord"`
	Email   EmailConfig   `mapstructure:"email" yaml:"email"`
	Desktop DesktopConfig `mapstructure:"desktop" yaml:"desktop"`
	Charts  ChartsConfig  `mapstructure:"charts" yaml:"charts"`
	Report  ReportConfig  `mapstructure:"report" yaml:"report"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

type GitHubConfig struct {
	Username       string `mapstructure:"username" yaml:"username"`
	Token          string `mapstructure:"token" yaml:"token"`
	HoursLookback  int    `mapstructure:"hours_lookback" yaml:"hours_lookback" validate:"min=1,max=168"`
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit" validate:"min=1"` // Requests per second
	IncludePrivate bool   `mapstructure:"include_private" yaml:"include_private"`
}

type SourceConfig struct {
	Type  string            `mapstructure:"type" yaml:"type" validate:"oneof=github local"`
	Local LocalSourceConfig `mapstructure:"local" yaml:"local"`
}

type LocalSourceConfig struct {
	Paths       []string `mapstructure:"paths" yaml:"paths"`
	AuthorEmail string   `mapstructure:"author_email" yaml:"author_email" validate:"omitempty,email"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type" yaml:"type" validate:"oneof=file bolt sqlite postgres"`
	DataDirectory string `mapstructure:"data_directory" yaml:"data_directory" validate:"required"`
	BoltPath      string `mapstructure:"bolt_path" yaml:"bolt_path"`
	SQLitePath    string `mapstructure:"sqlite_path" yaml:"sqlite_path"`
	PostgresDSN   string `mapstructure:"postgres_dsn" yaml:"postgres_dsn"`
}

type LLMConfig struct {
	Provider        string        `mapstructure:"provider" yaml:"provider" validate:"oneof=gemini openai compatible none"`
	GeminiKey       string        `mapstructure:"gemini_key" yaml:"gemini_key"`
	GeminiModel     string        `mapstructure:"gemini_model" yaml:"gemini_model"`
	OpenAIKey       string        `mapstructure:"openai_key" yaml:"openai_key"`
	OpenAIModel     string        `mapstructure:"openai_model" yaml:"openai_model"`
	CompatibleURL   string        `mapstructure:"compatible_url" yaml:"compatible_url" validate:"omitempty,url"`
	CompatibleKey   string        `mapstructure:"compatible_key" yaml:"compatible_key"`
	CompatibleModel string        `mapstructure:"compatible_model" yaml:"compatible_model"`
	Temperature     float64       `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	Timeout         time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" yaml:"webhook_url" validate:"omitempty,url"`
	Username   string `mapstructure:"username" yaml:"username"`
	AvatarURL  string `mapstructure:"avatar_url" yaml:"avatar_url" validate:"omitempty,url"`
}

type EmailConfig struct {
	Enabled    bool   `mapstructure:"enabled" yaml:"enabled"`
	SMTPServer string `mapstructure:"smtp_server" yaml:"smtp_server"`
	SMTPPort   int    `mapstructure:"smtp_port" yaml:"smtp_port" validate:"min=1,max=65535"`
	From       string `mapstructure:"from" yaml:"from" validate:"omitempty,email"`
	To         string `mapstructure:"to" yaml:"to" validate:"omitempty,email"`
	Password   string `mapstructure:"password" yaml:"password"`
}

type DesktopConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

type ChartsConfig struct {
	Enabled   bool   `mapstructure:"enabled" yaml:"enabled"`
	Directory string `mapstructure:"directory" yaml:"directory"`
}

type ReportConfig struct {
	FillMissingDays bool   `mapstructure:"fill_missing_days" yaml:"fill_missing_days"`
	HTMLDirectory   string `mapstructure:"html_directory" yaml:"html_directory"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file" yaml:"file"`
}

// Default returns default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".insightify")
	return &Config{
		Timezone: "Asia/Karachi",
		GitHub: GitHubConfig{
			HoursLookback: 24,
			RateLimit:     5,
		},
		Source: SourceConfig{
			Type: "github",
		},
		Storage: StorageConfig{
			Type:          "file",
			DataDirectory: "data",
			BoltPath:      filepath.Join(base, "insightify.db"),
			SQLitePath:    filepath.Join(base, "insightify.sqlite"),
		},
		LLM: LLMConfig{
			Provider:    "gemini",
			GeminiModel: "gemini-1.5-flash",
			OpenAIModel: "gpt-4o-mini",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		Discord: DiscordConfig{
			Enabled:   true,
			Username:  "Insightify Bot",
			AvatarURL: "https://cdn-icons-png.flaticon.com/512/25/25231.png",
		},
		Email: EmailConfig{
			Enabled:    true,
			SMTPServer: "smtp.gmail.com",
			SMTPPort:   587,
		},
		Charts: ChartsConfig{
			Enabled:   true,
			Directory: "charts",
		},
		Report: ReportConfig{
			FillMissingDays: true,
			HTMLDirectory:   "reports",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file
func Load(path string) (*Config, error) {
	// Load .env files first (in order of precedence)
	loadEnvFiles()

	v := viper.New()
	v.SetConfigType("yaml")

	cfg := Default()
	setDefaults(v, cfg)

	v.SetEnvPrefix("INSIGHTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("config")
		v.AddConfigPath(".insightify")
		v.AddConfigPath(".")
		homeDir, _ := os.UserHomeDir()
		v.AddConfigPath(filepath.Join(homeDir, ".insightify"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(cfg)
	resolveSecrets(cfg, NewKeyringManager())

	return cfg, nil
}

// setDefaults registers every leaf so AutomaticEnv can see it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("timezone", cfg.Timezone)

	v.SetDefault("github.username", cfg.GitHub.Username)
	v.SetDefault("github.token", cfg.GitHub.Token)
	v.SetDefault("github.hours_lookback", cfg.GitHub.HoursLookback)
	v.SetDefault("github.rate_limit", cfg.GitHub.RateLimit)
	v.SetDefault("github.include_private", cfg.GitHub.IncludePrivate)

	v.SetDefault("source.type", cfg.Source.Type)
	v.SetDefault("source.local.paths", cfg.Source.Local.Paths)
	v.SetDefault("source.local.author_email", cfg.Source.Local.AuthorEmail)

	v.SetDefault("storage.type", cfg.Storage.Type)
	v.SetDefault("storage.data_directory", cfg.Storage.DataDirectory)
	v.SetDefault("storage.bolt_path", cfg.Storage.BoltPath)
	v.SetDefault("storage.sqlite_path", cfg.Storage.SQLitePath)
	v.SetDefault("storage.postgres_dsn", cfg.Storage.PostgresDSN)

	v.SetDefault("llm.provider", cfg.LLM.Provider)
	v.SetDefault("llm.gemini_key", cfg.LLM.GeminiKey)
	v.SetDefault("llm.gemini_model", cfg.LLM.GeminiModel)
	v.SetDefault("llm.openai_key", cfg.LLM.OpenAIKey)
	v.SetDefault("llm.openai_model", cfg.LLM.OpenAIModel)
	v.SetDefault("llm.compatible_url", cfg.LLM.CompatibleURL)
	v.SetDefault("llm.compatible_key", cfg.LLM.CompatibleKey)
	v.SetDefault("llm.compatible_model", cfg.LLM.CompatibleModel)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("llm.timeout", cfg.LLM.Timeout)

	v.SetDefault("discord.enabled", cfg.Discord.Enabled)
	v.SetDefault("discord.webhook_url", cfg.Discord.WebhookURL)
	v.SetDefault("discord.username", cfg.Discord.Username)
	v.SetDefault("discord.avatar_url", cfg.Discord.AvatarURL)

	v.SetDefault("email.enabled", cfg.Email.Enabled)
	v.SetDefault("email.smtp_server", cfg.Email.SMTPServer)
	v.SetDefault("email.smtp_port", cfg.Email.SMTPPort)
	v.SetDefault("email.from", cfg.Email.From)
	v.SetDefault("email.to", cfg.Email.To)
	v.SetDefault("email.password", cfg.Email.Password)

	v.SetDefault("desktop.enabled", cfg.Desktop.Enabled)

	v.SetDefault("charts.enabled", cfg.Charts.Enabled)
	v.SetDefault("charts.directory", cfg.Charts.Directory)

	v.SetDefault("report.fill_missing_days", cfg.Report.FillMissingDays)
	v.SetDefault("report.html_directory", cfg.Report.HTMLDirectory)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.file", cfg.Logging.File)
}

// loadEnvFiles loads .env files in order of precedence
func loadEnvFiles() {
	envFiles := []string{
		".env.local", // Local overrides (highest precedence)
		".env",       // Main environment file
	}

	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			// godotenv never overrides variables that are already set
			_ = godotenv.Load(file)
		}
	}

	homeDir, _ := os.UserHomeDir()
	homeEnvFile := filepath.Join(homeDir, ".insightify", ".env")
	if _, err := os.Stat(homeEnvFile); err == nil {
		_ = godotenv.Load(homeEnvFile)
	}
}

// applyEnvOverrides applies the well-known environment variables used by the
// scheduled workflows. They win over the config file.
func applyEnvOverrides(cfg *Config) {
	if tz := os.Getenv("TIMEZONE"); tz != "" {
		cfg.Timezone = tz
	}

	// GitHub configuration
	for _, name := range []string{"GH_TOKEN", "GITHUB_TOKEN"} {
		if token := os.Getenv(name); token != "" {
			cfg.GitHub.Token = token
			break
		}
	}
	if user := os.Getenv("GH_USERNAME"); user != "" {
		cfg.GitHub.Username = user
	}
	if hours := os.Getenv("GH_HOURS_LOOKBACK"); hours != "" {
		if n, err := strconv.Atoi(hours); err == nil {
			cfg.GitHub.HoursLookback = n
		}
	}

	// LLM configuration
	if provider := os.Getenv("LLM_PROVIDER"); provider != "" {
		cfg.LLM.Provider = provider
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.LLM.GeminiKey = key
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.LLM.GeminiModel = model
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.LLM.OpenAIKey = key
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.LLM.OpenAIModel = model
	}
	if url := os.Getenv("CUSTOM_LLM_URL"); url != "" {
		cfg.LLM.CompatibleURL = url
	}
	if key := os.Getenv("CUSTOM_LLM_KEY"); key != "" {
		cfg.LLM.CompatibleKey = key
	}

	// Delivery configuration
	if webhook := os.Getenv("DISCORD_WEBHOOK_URL"); webhook != "" {
		cfg.Discord.WebhookURL = webhook
	}
	if from := os.Getenv("EMAIL_FROM"); from != "" {
		cfg.Email.From = from
	}
	if to := os.Getenv("EMAIL_TO"); to != "" {
		cfg.Email.To = to
	}
	if password := os.Getenv("EMAIL_PASSWORD"); password != "" {
		cfg.Email.Password = password
	}
	if server := os.Getenv("SMTP_SERVER"); server != "" {
		cfg.Email.SMTPServer = server
	}
	if port := os.Getenv("SMTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Email.SMTPPort = p
		}
	}

	// Storage configuration
	if storageType := os.Getenv("STORAGE_TYPE"); storageType != "" {
		cfg.Storage.Type = storageType
	}
	if dsn := os.Getenv("POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if dir := os.Getenv("DATA_DIRECTORY"); dir != "" {
		cfg.Storage.DataDirectory = expandPath(dir)
	}

	cfg.Storage.BoltPath = expandPath(cfg.Storage.BoltPath)
	cfg.Storage.SQLitePath = expandPath(cfg.Storage.SQLitePath)
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Save saves configuration to file
func (c *Config) Save(path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("timezone", c.Timezone)
	v.Set("github", c.GitHub)
	v.Set("source", c.Source)
	v.Set("storage", c.Storage)
	v.Set("llm", c.LLM)
	v.Set("discord", c.Discord)
	v.Set("email", c.Email)
	v.Set("desktop", c.Desktop)
	v.Set("charts", c.Charts)
	v.Set("report", c.Report)
	v.Set("logging", c.Logging)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
