package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zalando/go-keyring"
)

// KeyringService is the service name in the OS keychain
const KeyringService = "Insightify"

// Secret keys that may live in the OS keychain. The item name stored in the
// keychain is the config key itself.
const (
	SecretGitHubToken   = "github.token"
	SecretGeminiKey     = "llm.gemini_key"
	SecretOpenAIKey     = "llm.openai_key"
	SecretCompatibleKey = "llm.compatible_key"
	SecretEmailPassword = "email.password"
)

// SecretKeys lists every config key treated as a credential.
var SecretKeys = []string{
	SecretGitHubToken,
	SecretGeminiKey,
	SecretOpenAIKey,
	SecretCompatibleKey,
	SecretEmailPassword,
}

// IsSecretKey reports whether key names a credential.
func IsSecretKey(key string) bool {
	for _, k := range SecretKeys {
		if k == key {
			return true
		}
	}
	return false
}

// KeyringManager handles secure credential storage in OS keychain
type KeyringManager struct {
	logger logrus.FieldLogger
}

// NewKeyringManager creates a new keyring manager
func NewKeyringManager() *KeyringManager {
	return &KeyringManager{
		logger: logrus.StandardLogger().WithField("component", "keyring"),
	}
}

// Get returns the stored secret, or "" when nothing is stored.
func (km *KeyringManager) Get(key string) (string, error) {
	value, err := keyring.Get(KeyringService, key)
	if err == keyring.ErrNotFound {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from OS keychain: %w", key, err)
	}

	km.logger.WithField("key", key).Debug("secret retrieved from keychain")
	return value, nil
}

// Set stores a secret in the OS keychain
// - macOS: Keychain Access.app → "Insightify"
// - Windows: Credential Manager → "Insightify"
// - Linux: Secret Service (requires libsecret)
func (km *KeyringManager) Set(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", key)
	}
	if err := keyring.Set(KeyringService, key, value); err != nil {
		return fmt.Errorf("failed to save %s to OS keychain: %w", key, err)
	}

	km.logger.WithField("key", key).Info("secret saved to keychain")
	return nil
}

// Delete removes a secret; deleting a missing secret is not an error.
func (km *KeyringManager) Delete(key string) error {
	err := keyring.Delete(KeyringService, key)
	if err == keyring.ErrNotFound {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s from OS keychain: %w", key, err)
	}
	return nil
}

// IsAvailable checks if OS keychain is available
// Returns false on headless systems (CI) where keychain isn't available
func (km *KeyringManager) IsAvailable() bool {
	_, err := keyring.Get(KeyringService, "test-availability")
	if err == keyring.ErrNotFound {
		return true
	}
	if err != nil {
		km.logger.WithError(err).Debug("keychain not available")
		return false
	}
	return true
}

// MaskSecret masks a credential for display: first 4 and last 4 chars.
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) < 12 {
		return "***"
	}
	return fmt.Sprintf("%s...%s", secret[:4], secret[len(secret)-4:])
}
