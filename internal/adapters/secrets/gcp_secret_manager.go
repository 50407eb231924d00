package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/kevin07696/paytr-processor/internal/adapters/ports"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCPSecretManagerConfig contains configuration for GCP Secret Manager
type GCPSecretManagerConfig struct {
	ProjectID string        // GCP Project ID (e.g., "my-project-123")
	CacheTTL  time.Duration // How long to cache secrets in memory
	Endpoint  string        // Optional API endpoint override, e.g. a regional endpoint
}

// DefaultGCPSecretManagerConfig returns defaults for GCP Secret Manager
func DefaultGCPSecretManagerConfig(projectID string) *GCPSecretManagerConfig {
	return &GCPSecretManagerConfig{
		ProjectID: projectID,
		CacheTTL:  DefaultCacheTTL,
	}
}

type accessSecretFunc func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)

// GCPSecretManager reads secrets from Google Cloud Secret Manager.
// Credentials come from GOOGLE_APPLICATION_CREDENTIALS, workload identity
// or the default application credentials.
type GCPSecretManager struct {
	access    accessSecretFunc
	closer    func() error
	projectID string
	logger    *zap.Logger
	cache     *secretCache
}

// NewGCPSecretManager creates a new GCP Secret Manager adapter
func NewGCPSecretManager(ctx context.Context, cfg *GCPSecretManagerConfig, logger *zap.Logger) (*GCPSecretManager, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP project ID is required")
	}

	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}

	logger.Info("GCP Secret Manager initialized",
		zap.String("project_id", cfg.ProjectID),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)

	access := func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
		return client.AccessSecretVersion(ctx, req)
	}
	return newGCPSecretManager(access, client.Close, cfg, logger), nil
}

func newGCPSecretManager(access accessSecretFunc, closer func() error, cfg *GCPSecretManagerConfig, logger *zap.Logger) *GCPSecretManager {
	return &GCPSecretManager{
		access:    access,
		closer:    closer,
		projectID: cfg.ProjectID,
		logger:    logger,
		cache:     newSecretCache(cfg.CacheTTL),
	}
}

// Close closes the GCP Secret Manager client
func (sm *GCPSecretManager) Close() error {
	if sm.closer == nil {
		return nil
	}
	return sm.closer()
}

// GetSecret retrieves the latest version of a secret.
// "paytr-processor/credentials" maps to
// projects/{project}/secrets/paytr-processor-credentials/versions/latest
func (sm *GCPSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := sm.cache.get(path); cached != nil {
		sm.logger.Debug("Secret cache hit", zap.String("path", path))
		return cached, nil
	}

	secret, err := sm.fetch(ctx, path, "latest")
	if err != nil {
		return nil, err
	}

	sm.cache.set(path, secret)
	return secret, nil
}

// GetSecretVersion retrieves a specific version of a secret
func (sm *GCPSecretManager) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	return sm.fetch(ctx, path, version)
}

func (sm *GCPSecretManager) fetch(ctx context.Context, path, version string) (*ports.Secret, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", sm.projectID, gcpSecretID(path), version)

	result, err := sm.access(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		sm.logger.Error("Failed to access GCP secret",
			zap.String("path", path),
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to access GCP secret %s: %w", path, err)
	}

	payload := result.GetPayload()
	if payload == nil {
		return nil, fmt.Errorf("GCP secret %s has no payload", path)
	}
	if payload.DataCrc32C != nil {
		sum := int64(crc32.Checksum(payload.GetData(), crc32.MakeTable(crc32.Castagnoli)))
		if sum != payload.GetDataCrc32C() {
			return nil, fmt.Errorf("GCP secret %s failed checksum verification", path)
		}
	}

	secret := &ports.Secret{
		Value:   string(payload.GetData()),
		Version: versionFromName(result.GetName()),
		Metadata: map[string]string{
			"gcp_project_id": sm.projectID,
			"gcp_secret":     gcpSecretID(path),
		},
	}

	sm.logger.Info("Secret fetched from GCP",
		zap.String("path", path),
		zap.String("version", secret.Version),
	)
	return secret, nil
}

// gcpSecretID turns a slash separated path into a valid secret ID
func gcpSecretID(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", "-")
}

func versionFromName(name string) string {
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
