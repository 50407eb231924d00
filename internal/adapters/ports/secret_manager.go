package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // Raw secret payload, usually JSON credentials
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter defines the port for reading secrets from a secret management service.
// Backends: AWS Secrets Manager, GCP Secret Manager, HashiCorp Vault, local files.
// Implementations cache values with a TTL; the processor only ever reads.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - AWS: "paytr-processor/credentials"
	//   - GCP: "projects/{project}/secrets/{name}/versions/latest"
	//   - Vault: "secret/data/paytr-processor/credentials"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// GetSecretVersion retrieves a specific version of a secret
	// Useful while credentials are being rotated on the gateway side
	GetSecretVersion(ctx context.Context, path string, version string) (*Secret, error)
}
