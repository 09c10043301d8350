package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

// secretField returns a pointer to the config field backing a secret key.
func secretField(cfg *Config, key string) *string {
	switch key {
	case SecretGitHubToken:
		return &cfg.GitHub.Token
	case SecretGeminiKey:
		return &cfg.LLM.GeminiKey
	case SecretOpenAIKey:
		return &cfg.LLM.OpenAIKey
	case SecretCompatibleKey:
		return &cfg.LLM.CompatibleKey
	case SecretEmailPassword:
		return &cfg.Email.Password
	}
	return nil
}

// SecretSource describes where a credential was found.
func SecretSource(cfg *Config, key string, km *KeyringManager) string {
	field := secretField(cfg, key)
	if field == nil || *field == "" {
		return "none"
	}
	if km != nil && km.IsAvailable() {
		if stored, err := km.Get(key); err == nil && stored == *field {
			return "keychain"
		}
	}
	return "config/env"
}

// resolveSecrets fills credentials that neither env nor the config file set.
// Precedence: 1. Env var 2. Config file 3. Keychain
func resolveSecrets(cfg *Config, km *KeyringManager) {
	if km == nil || !km.IsAvailable() {
		return
	}
	for _, key := range SecretKeys {
		field := secretField(cfg, key)
		if *field != "" {
			continue
		}
		if value, err := km.Get(key); err == nil && value != "" {
			*field = value
		}
	}
}

// Lookup returns the effective value of a dotted config key.
func Lookup(cfg *Config, key string) (interface{}, bool) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, false
	}
	var tree map[string]interface{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, false
	}

	var current interface{} = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Redacted returns a copy with every credential masked, for display.
func (c *Config) Redacted() *Config {
	clone := *c
	clone.Source.Local.Paths = append([]string(nil), c.Source.Local.Paths...)
	for _, key := range SecretKeys {
		field := secretField(&clone, key)
		if *field != "" {
			*field = MaskSecret(*field)
		}
	}
	return &clone
}

// YAML renders the redacted configuration.
func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c.Redacted())
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	return string(data), nil
}

// SetValue writes a single key into the YAML file at path, preserving the
// other keys already there.
func SetValue(path, key, value string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.Set(key, value)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ReadSecret prompts on w and reads a secret without echo when stdin is a
// terminal, falling back to a plain line read for piped input.
func ReadSecret(w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Fprintln(w)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
