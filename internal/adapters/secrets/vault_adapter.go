package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	vault "github.com/hashicorp/vault/api"
	"github.com/kevin07696/paytr-processor/internal/adapters/ports"
	"go.uber.org/zap"
)

// VaultConfig contains configuration for HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string

	// Token for token authentication
	Token string

	// AppRole credentials (if using AppRole auth)
	RoleID   string
	SecretID string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string

	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string

	// Cache TTL, zero disables caching
	CacheTTL time.Duration

	TLSSkipVerify bool
}

// DefaultVaultConfig returns default configuration for Vault adapter
func DefaultVaultConfig(address string) *VaultConfig {
	return &VaultConfig{
		Address:    address,
		AuthMethod: "token",
		MountPath:  "secret",
		KVVersion:  "v2",
		CacheTTL:   DefaultCacheTTL,
	}
}

// vaultAdapter reads secrets from a Vault KV engine
type vaultAdapter struct {
	client *vault.Client
	config *VaultConfig
	logger *zap.Logger
	cache  *secretCache
}

// NewVaultAdapter creates a new HashiCorp Vault adapter
func NewVaultAdapter(ctx context.Context, cfg *VaultConfig, logger *zap.Logger) (ports.SecretManagerAdapter, error) {
	vaultConfig := vault.DefaultConfig()
	vaultConfig.Address = cfg.Address

	if cfg.TLSSkipVerify {
		if err := vaultConfig.ConfigureTLS(&vault.TLSConfig{Insecure: true}); err != nil {
			return nil, fmt.Errorf("failed to configure TLS: %w", err)
		}
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}

	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, fmt.Errorf("failed to authenticate with Vault: %w", err)
	}

	logger.Info("Vault adapter initialized",
		zap.String("address", cfg.Address),
		zap.String("auth_method", cfg.AuthMethod),
		zap.String("mount_path", cfg.MountPath),
		zap.String("kv_version", cfg.KVVersion),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
		cache:  newSecretCache(cfg.CacheTTL),
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg *VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}

		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret retrieves a secret by its path relative to the mount,
// e.g. "paytr-processor/credentials"
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := a.cache.get(path); cached != nil {
		a.logger.Debug("Secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	startTime := time.Now()
	raw, err := a.client.Logical().ReadWithContext(ctx, a.fullPath(path))
	if err != nil {
		a.logger.Error("Failed to retrieve secret from Vault",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to read secret from Vault: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("secret not found: %s", path)
	}

	result, err := a.toSecret(raw)
	if err != nil {
		return nil, fmt.Errorf("secret %s: %w", path, err)
	}

	a.logger.Info("Secret retrieved from Vault",
		zap.String("path", path),
		zap.String("version", result.Version),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	a.cache.set(path, result)
	return result, nil
}

// GetSecretVersion retrieves a specific version of a secret (KV v2 only)
func (a *vaultAdapter) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	if a.config.KVVersion != "v2" {
		return nil, fmt.Errorf("GetSecretVersion requires KV v2")
	}

	raw, err := a.client.Logical().ReadWithDataWithContext(ctx, a.fullPath(path), map[string][]string{
		"version": {version},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read secret version: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("secret version not found: %s v%s", path, version)
	}

	return a.toSecret(raw)
}

func (a *vaultAdapter) fullPath(path string) string {
	if a.config.KVVersion == "v2" {
		return fmt.Sprintf("%s/data/%s", a.config.MountPath, path)
	}
	return fmt.Sprintf("%s/%s", a.config.MountPath, path)
}

func (a *vaultAdapter) toSecret(raw *vault.Secret) (*ports.Secret, error) {
	result := &ports.Secret{Metadata: make(map[string]string)}

	secretData := raw.Data
	if a.config.KVVersion == "v2" {
		data, ok := raw.Data["data"].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid secret format from Vault")
		}
		secretData = data

		if metadata, ok := raw.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := metadata["version"].(json.Number); ok {
				result.Version = v.String()
			}
			if ct, ok := metadata["created_time"].(string); ok {
				result.CreatedAt = ct
			}
		}
	} else {
		result.Version = "1"
	}

	value, err := vaultValue(secretData)
	if err != nil {
		return nil, err
	}
	result.Value = value

	keys := make([]string, 0, len(secretData))
	for k := range secretData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	result.Metadata["keys"] = fmt.Sprint(keys)

	return result, nil
}

// vaultValue returns the "value" field when present. Otherwise the string
// fields are re-encoded as a JSON object so credentials can be stored as
// separate KV fields.
func vaultValue(data map[string]interface{}) (string, error) {
	if val, ok := data["value"].(string); ok && val != "" {
		return val, nil
	}

	fields := make(map[string]string, len(data))
	for k, v := range data {
		if str, ok := v.(string); ok {
			fields[k] = str
		}
	}
	if len(fields) == 0 {
		return "", fmt.Errorf("secret value is empty or not found")
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode secret fields: %w", err)
	}
	return string(encoded), nil
}
