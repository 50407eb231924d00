package secrets

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kevin07696/paytr-processor/internal/adapters/paytr"
	"github.com/kevin07696/paytr-processor/internal/adapters/ports"
)

// LoadPayTRCredentials reads the merchant credentials stored at path.
// The secret is a JSON object with merchant_id, api_key and api_secret.
func LoadPayTRCredentials(ctx context.Context, sm ports.SecretManagerAdapter, path string) (paytr.Credentials, error) {
	secret, err := sm.GetSecret(ctx, path)
	if err != nil {
		return paytr.Credentials{}, fmt.Errorf("load PayTR credentials: %w", err)
	}

	var creds paytr.Credentials
	if err := json.Unmarshal([]byte(secret.Value), &creds); err != nil {
		return paytr.Credentials{}, fmt.Errorf("parse PayTR credentials at %s: %w", path, err)
	}
	if !creds.Valid() {
		return paytr.Credentials{}, fmt.Errorf("PayTR credentials at %s are incomplete", path)
	}
	return creds, nil
}

// LoadHostJWTSecret reads the HMAC key the commerce host signs its tokens with
func LoadHostJWTSecret(ctx context.Context, sm ports.SecretManagerAdapter, path string) ([]byte, error) {
	secret, err := sm.GetSecret(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("load host JWT secret: %w", err)
	}
	if secret.Value == "" {
		return nil, fmt.Errorf("host JWT secret at %s is empty", path)
	}
	return []byte(secret.Value), nil
}
