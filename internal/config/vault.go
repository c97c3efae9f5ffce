package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"profilelens/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address" validate:"omitempty,url"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`
	// Mount is the KV v2 engine mount path
	Mount string `mapstructure:"mount"`

	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets names the KV v2 paths (relative to Mount) holding each secret
type VaultSecrets struct {
	// InferenceKey holds the inference provider key under "api_key"
	InferenceKey string `mapstructure:"inferenceKey"`
	// APIKeys holds a comma-separated list under "keys", e.g. "key1,key2"
	APIKeys string `mapstructure:"apiKeys"`
}

// SecretReader reads KV v2 secrets. *VaultClient implements it.
type SecretReader interface {
	GetStringSecret(ctx context.Context, path, key string) (string, error)
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	kv     *api.KVv2
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration.
// Returns nil when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		logger.Debug("Vault integration disabled")
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to create vault client", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeNetworkFailure, "failed to connect to vault", err).
			WithContext("address", vaultConfig.Address)
	}
	logger.Info("Connected to Vault",
		"address", vaultConfig.Address,
		"version", health.Version,
		"sealed", health.Sealed)

	mount := config.Mount
	if mount == "" {
		mount = "secret"
	}

	return &VaultClient{kv: client.KVv2(mount), logger: logger}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read vault token file", err).
				WithContext("file", config.TokenFile)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}

	return token, nil
}

// GetStringSecret reads one string field of a KV v2 secret
func (vc *VaultClient) GetStringSecret(ctx context.Context, path, key string) (string, error) {
	if vc == nil {
		return "", fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.kv.Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from %s: %w", path, err)
	}

	version := 0
	if secret.VersionMetadata != nil {
		version = secret.VersionMetadata.Version
	}
	value, err := stringField(secret.Data, path, key)
	if err != nil {
		return "", err
	}

	vc.logger.Debug("String secret retrieved from Vault",
		"path", path,
		"key", key,
		"version", version,
		"masked_value", maskSecret(value))

	return value, nil
}

func stringField(data map[string]any, path, key string) (string, error) {
	raw, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return value, nil
}

func maskSecret(value string) string {
	switch {
	case len(value) > 8:
		return value[:4] + "****" + value[len(value)-4:]
	case value != "":
		return "****"
	default:
		return ""
	}
}

// splitKeys splits a comma-separated list, dropping blanks
func splitKeys(value string) []string {
	keys := []string{}
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			keys = append(keys, part)
		}
	}
	return keys
}

// ApplyVaultSecrets loads secrets from Vault and applies them to the config.
// Vault values take precedence over file and environment values.
func ApplyVaultSecrets(ctx context.Context, config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		logger.Debug("Vault integration disabled, skipping secret loading")
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		logger.LogError(err, "Failed to initialize Vault client")
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}

	return applySecrets(ctx, client, config, logger)
}

func applySecrets(ctx context.Context, reader SecretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.InferenceKey != "" {
		key, err := reader.GetStringSecret(ctx, secrets.InferenceKey, "api_key")
		if err != nil {
			return fmt.Errorf("failed to load inference key from vault: %w", err)
		}
		if key != "" {
			config.Inference.APIKey = key
			logger.Info("Inference API key loaded from Vault")
		} else {
			logger.Warn("Empty inference API key found in Vault", "path", secrets.InferenceKey)
		}
	}

	if secrets.APIKeys != "" {
		value, err := reader.GetStringSecret(ctx, secrets.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if keys := splitKeys(value); len(keys) > 0 {
			config.Server.APIKeys = keys
			logger.Info("API keys loaded from Vault", "count", len(keys))
		} else {
			logger.Warn("No API keys found in Vault", "path", secrets.APIKeys)
		}
	}

	return nil
}
