package main

import (
	"context"
	"fmt"

	"github.com/kevin07696/paytr-processor/internal/adapters/paytr"
	"github.com/kevin07696/paytr-processor/internal/adapters/ports"
	"github.com/kevin07696/paytr-processor/internal/adapters/secrets"
	"github.com/kevin07696/paytr-processor/internal/config"
	"go.uber.org/zap"
)

// initSecretManager builds the backend named by SECRET_MANAGER.
// It returns nil for "env", where credentials come straight from the environment.
//
// Environment Variables:
//   - SECRET_MANAGER: "aws", "gcp", "vault", "local" or "env" (default: env)
//   - AWS_REGION / AWS_SECRETS_ENDPOINT for aws
//   - GCP_PROJECT_ID and GOOGLE_APPLICATION_CREDENTIALS for gcp
//   - VAULT_ADDR with VAULT_TOKEN or VAULT_ROLE_ID/VAULT_SECRET_ID for vault
//   - LOCAL_SECRETS_PATH for local
func initSecretManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) (ports.SecretManagerAdapter, func() error, error) {
	noop := func() error { return nil }
	sc := cfg.Secrets

	switch sc.Manager {
	case config.SecretManagerAWS:
		awsCfg := secrets.DefaultAWSSecretsManagerConfig(sc.AWSRegion)
		awsCfg.Endpoint = sc.AWSEndpoint
		awsCfg.CacheTTL = sc.CacheTTL
		sm, err := secrets.NewAWSSecretsManagerAdapter(ctx, awsCfg, logger)
		return sm, noop, err

	case config.SecretManagerGCP:
		gcpCfg := secrets.DefaultGCPSecretManagerConfig(sc.GCPProjectID)
		gcpCfg.CacheTTL = sc.CacheTTL
		sm, err := secrets.NewGCPSecretManager(ctx, gcpCfg, logger)
		if err != nil {
			return nil, noop, err
		}
		return sm, sm.Close, nil

	case config.SecretManagerVault:
		vaultCfg := secrets.DefaultVaultConfig(sc.VaultAddress)
		vaultCfg.MountPath = sc.VaultMountPath
		vaultCfg.CacheTTL = sc.CacheTTL
		if sc.VaultRoleID != "" {
			vaultCfg.AuthMethod = "approle"
			vaultCfg.RoleID = sc.VaultRoleID
			vaultCfg.SecretID = sc.VaultSecretID
		} else {
			vaultCfg.Token = sc.VaultToken
		}
		sm, err := secrets.NewVaultAdapter(ctx, vaultCfg, logger)
		return sm, noop, err

	case config.SecretManagerLocal:
		logger.Warn("Using local filesystem secrets - NOT for production use!",
			zap.String("path", sc.LocalPath),
		)
		return secrets.NewLocalSecretManager(sc.LocalPath, logger), noop, nil

	case config.SecretManagerEnv:
		logger.Warn("Reading PayTR credentials from environment variables")
		return nil, noop, nil

	default:
		return nil, noop, fmt.Errorf("unsupported secret manager %q", sc.Manager)
	}
}

// loadCredentials returns the PayTR merchant credentials
func loadCredentials(ctx context.Context, cfg *config.Config, sm ports.SecretManagerAdapter) (paytr.Credentials, error) {
	if sm == nil {
		creds := paytr.Credentials{
			MerchantID: cfg.Gateway.MerchantID,
			APIKey:     cfg.Gateway.APIKey,
			APISecret:  cfg.Gateway.APISecret,
		}
		if !creds.Valid() {
			return paytr.Credentials{}, fmt.Errorf("PayTR credentials are incomplete")
		}
		return creds, nil
	}
	return secrets.LoadPayTRCredentials(ctx, sm, cfg.Gateway.CredentialsPath)
}

// loadHostJWTSecret returns nil when host authentication is not configured
func loadHostJWTSecret(ctx context.Context, cfg *config.Config, sm ports.SecretManagerAdapter) ([]byte, error) {
	if cfg.Auth.HostJWTSecret != "" {
		return []byte(cfg.Auth.HostJWTSecret), nil
	}
	if cfg.Auth.HostJWTSecretPath == "" || sm == nil {
		return nil, nil
	}
	return secrets.LoadHostJWTSecret(ctx, sm, cfg.Auth.HostJWTSecretPath)
}
