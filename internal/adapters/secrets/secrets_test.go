package secrets

import (
	"context"
	"errors"
	"hash/crc32"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/kevin07696/paytr-processor/internal/adapters/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const credentialsJSON = `{"merchant_id":"m_1","api_key":"key_1","api_secret":"secret_1"}`

func TestSecretCache_Expiry(t *testing.T) {
	c := newSecretCache(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.set("a", &ports.Secret{Value: "v"})
	require.NotNil(t, c.get("a"))

	now = now.Add(2 * time.Minute)
	assert.Nil(t, c.get("a"))
	assert.Empty(t, c.entries)
}

func TestSecretCache_Disabled(t *testing.T) {
	c := newSecretCache(0)
	c.set("a", &ports.Secret{Value: "v"})
	assert.Nil(t, c.get("a"))
}

type fakeSecretsManager struct {
	calls  int
	inputs []*secretsmanager.GetSecretValueInput
	err    error
}

func (f *fakeSecretsManager) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.calls++
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	version := "v-current"
	if params.VersionId != nil {
		version = *params.VersionId
	}
	created := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &secretsmanager.GetSecretValueOutput{
		SecretString: aws.String(credentialsJSON),
		VersionId:    aws.String(version),
		ARN:          aws.String("arn:aws:secretsmanager:eu-central-1:1:secret:paytr"),
		Name:         params.SecretId,
		CreatedDate:  &created,
	}, nil
}

func TestAWSAdapter_GetSecretCaches(t *testing.T) {
	fake := &fakeSecretsManager{}
	adapter := newAWSAdapter(fake, time.Minute, zap.NewNop())

	secret, err := adapter.GetSecret(context.Background(), "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, credentialsJSON, secret.Value)
	assert.Equal(t, "v-current", secret.Version)
	assert.Equal(t, "paytr-processor/credentials", secret.Metadata["name"])
	assert.Equal(t, "2026-03-01T00:00:00Z", secret.CreatedAt)

	_, err = adapter.GetSecret(context.Background(), "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
}

func TestAWSAdapter_GetSecretVersion(t *testing.T) {
	fake := &fakeSecretsManager{}
	adapter := newAWSAdapter(fake, time.Minute, zap.NewNop())

	secret, err := adapter.GetSecretVersion(context.Background(), "paytr-processor/credentials", "v-previous")
	require.NoError(t, err)
	assert.Equal(t, "v-previous", secret.Version)
	assert.Equal(t, "v-previous", aws.ToString(fake.inputs[0].VersionId))
}

func TestAWSAdapter_Error(t *testing.T) {
	fake := &fakeSecretsManager{err: errors.New("access denied")}
	adapter := newAWSAdapter(fake, time.Minute, zap.NewNop())

	_, err := adapter.GetSecret(context.Background(), "paytr-processor/credentials")
	assert.ErrorContains(t, err, "access denied")

	_, err = adapter.GetSecret(context.Background(), "paytr-processor/credentials")
	require.Error(t, err)
	assert.Equal(t, 2, fake.calls)
}

func TestGCPSecretManager_GetSecret(t *testing.T) {
	payload := []byte(credentialsJSON)
	sum := int64(crc32.Checksum(payload, crc32.MakeTable(crc32.Castagnoli)))

	var names []string
	access := func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
		names = append(names, req.GetName())
		return &secretmanagerpb.AccessSecretVersionResponse{
			Name:    "projects/proj/secrets/paytr-processor-credentials/versions/4",
			Payload: &secretmanagerpb.SecretPayload{Data: payload, DataCrc32C: &sum},
		}, nil
	}
	sm := newGCPSecretManager(access, nil, DefaultGCPSecretManagerConfig("proj"), zap.NewNop())

	secret, err := sm.GetSecret(context.Background(), "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, credentialsJSON, secret.Value)
	assert.Equal(t, "4", secret.Version)

	_, err = sm.GetSecret(context.Background(), "paytr-processor/credentials")
	require.NoError(t, err)
	_, err = sm.GetSecretVersion(context.Background(), "paytr-processor/credentials", "3")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"projects/proj/secrets/paytr-processor-credentials/versions/latest",
		"projects/proj/secrets/paytr-processor-credentials/versions/3",
	}, names)
	assert.NoError(t, sm.Close())
}

func TestGCPSecretManager_ChecksumMismatch(t *testing.T) {
	bad := int64(1)
	access := func(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
		return &secretmanagerpb.AccessSecretVersionResponse{
			Name:    req.GetName(),
			Payload: &secretmanagerpb.SecretPayload{Data: []byte("tampered"), DataCrc32C: &bad},
		}, nil
	}
	sm := newGCPSecretManager(access, nil, DefaultGCPSecretManagerConfig("proj"), zap.NewNop())

	_, err := sm.GetSecret(context.Background(), "jwt")
	assert.ErrorContains(t, err, "checksum")
}

func TestNewGCPSecretManager_RequiresProject(t *testing.T) {
	_, err := NewGCPSecretManager(context.Background(), &GCPSecretManagerConfig{}, zap.NewNop())
	assert.ErrorContains(t, err, "project ID is required")
}

func newVaultServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/v1/secret/data/paytr-processor/credentials":
			version := r.URL.Query().Get("version")
			if version == "" {
				version = "3"
			}
			_, _ = w.Write([]byte(`{"data":{"data":{"merchant_id":"m_1","api_key":"key_1","api_secret":"secret_1"},` +
				`"metadata":{"version":` + version + `,"created_time":"2026-02-01T00:00:00Z"}}}`))
		case "/v1/secret/data/paytr-processor/jwt":
			_, _ = w.Write([]byte(`{"data":{"data":{"value":"host-signing-key"},"metadata":{"version":1}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestVault(t *testing.T) ports.SecretManagerAdapter {
	t.Helper()
	server := newVaultServer(t)
	cfg := DefaultVaultConfig(server.URL)
	cfg.Token = "root"
	adapter, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestVaultAdapter_FieldsBecomeJSON(t *testing.T) {
	adapter := newTestVault(t)

	creds, err := LoadPayTRCredentials(context.Background(), adapter, "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, "m_1", creds.MerchantID)
	assert.Equal(t, "key_1", creds.APIKey)
	assert.Equal(t, "secret_1", creds.APISecret)

	secret, err := adapter.GetSecret(context.Background(), "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, "3", secret.Version)
	assert.Equal(t, "2026-02-01T00:00:00Z", secret.CreatedAt)
}

func TestVaultAdapter_ValueField(t *testing.T) {
	adapter := newTestVault(t)

	key, err := LoadHostJWTSecret(context.Background(), adapter, "paytr-processor/jwt")
	require.NoError(t, err)
	assert.Equal(t, []byte("host-signing-key"), key)
}

func TestVaultAdapter_GetSecretVersion(t *testing.T) {
	adapter := newTestVault(t)

	secret, err := adapter.GetSecretVersion(context.Background(), "paytr-processor/credentials", "2")
	require.NoError(t, err)
	assert.Equal(t, "2", secret.Version)
}

func TestVaultAdapter_NotFound(t *testing.T) {
	adapter := newTestVault(t)

	_, err := adapter.GetSecret(context.Background(), "paytr-processor/missing")
	assert.ErrorContains(t, err, "secret not found")
}

func TestNewVaultAdapter_AuthValidation(t *testing.T) {
	cfg := DefaultVaultConfig("http://127.0.0.1:1")
	_, err := NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "token is required")

	cfg.AuthMethod = "approle"
	_, err = NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "role_id and secret_id are required")

	cfg.AuthMethod = "kubernetes"
	_, err = NewVaultAdapter(context.Background(), cfg, zap.NewNop())
	assert.ErrorContains(t, err, "unsupported auth method")
}

func TestLocalSecretManager(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "paytr-processor"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paytr-processor", "credentials"), []byte(credentialsJSON), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "paytr-processor", "jwt"),
		[]byte(`{"value":"host-signing-key","tags":{"owner":"host"}}`), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), []byte("plain-value\n"), 0o600))

	sm := NewLocalSecretManager(dir, zap.NewNop())
	ctx := context.Background()

	creds, err := LoadPayTRCredentials(ctx, sm, "paytr-processor/credentials")
	require.NoError(t, err)
	assert.Equal(t, "m_1", creds.MerchantID)

	jwtSecret, err := sm.GetSecret(ctx, "paytr-processor/jwt")
	require.NoError(t, err)
	assert.Equal(t, "host-signing-key", jwtSecret.Value)
	assert.Equal(t, "host", jwtSecret.Metadata["owner"])

	plain, err := sm.GetSecretVersion(ctx, "plain", "v9")
	require.NoError(t, err)
	assert.Equal(t, "plain-value", plain.Value)

	_, err = sm.GetSecret(ctx, "missing")
	assert.ErrorContains(t, err, "secret not found")

	_, err = sm.GetSecret(ctx, "../../etc/passwd")
	assert.ErrorContains(t, err, "secret not found")
}

type staticSecrets map[string]string

func (s staticSecrets) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	v, ok := s[path]
	if !ok {
		return nil, errors.New("secret not found: " + path)
	}
	return &ports.Secret{Value: v}, nil
}

func (s staticSecrets) GetSecretVersion(ctx context.Context, path, version string) (*ports.Secret, error) {
	return s.GetSecret(ctx, path)
}

func TestLoadPayTRCredentials_Errors(t *testing.T) {
	sm := staticSecrets{
		"bad-json":   "not json",
		"incomplete": `{"merchant_id":"m_1"}`,
	}
	ctx := context.Background()

	_, err := LoadPayTRCredentials(ctx, sm, "missing")
	assert.ErrorContains(t, err, "load PayTR credentials")

	_, err = LoadPayTRCredentials(ctx, sm, "bad-json")
	assert.ErrorContains(t, err, "parse PayTR credentials")

	_, err = LoadPayTRCredentials(ctx, sm, "incomplete")
	assert.ErrorContains(t, err, "incomplete")
}

func TestLoadHostJWTSecret_Empty(t *testing.T) {
	_, err := LoadHostJWTSecret(context.Background(), staticSecrets{"jwt": ""}, "jwt")
	assert.ErrorContains(t, err, "is empty")
}
