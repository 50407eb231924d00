package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Secret manager backends
const (
	SecretManagerEnv   = "env"
	SecretManagerAWS   = "aws"
	SecretManagerGCP   = "gcp"
	SecretManagerVault = "vault"
	SecretManagerLocal = "local"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Gateway   GatewayConfig
	Secrets   SecretsConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Tracing   TracingConfig
	Logger    LoggerConfig
}

// ServerConfig holds the listener ports
type ServerConfig struct {
	HTTPPort        int
	GRPCPort        int
	MetricsPort     int
	ShutdownTimeout time.Duration
}

// GatewayConfig holds PayTR API configuration
type GatewayConfig struct {
	BaseURL string        // e.g. https://www.paytr.com/odeme/api
	Timeout time.Duration // per request

	// Only read when SECRET_MANAGER=env
	MerchantID string
	APIKey     string
	APISecret  string

	// Secret path holding {"merchant_id","api_key","api_secret"}
	CredentialsPath string
}

// SecretsConfig selects and configures the secret manager backend
type SecretsConfig struct {
	Manager  string
	CacheTTL time.Duration

	AWSRegion   string
	AWSEndpoint string

	GCPProjectID string

	VaultAddress   string
	VaultToken     string
	VaultRoleID    string
	VaultSecretID  string
	VaultMountPath string

	LocalPath string
}

// DatabaseConfig points at the host's session table. An empty URL disables
// session lookups.
type DatabaseConfig struct {
	URL          string
	MaxConns     int32
	QueryTimeout time.Duration
}

// AuthConfig holds the commerce host JWT settings. With neither the secret
// nor its path set, the processor endpoints are unauthenticated.
type AuthConfig struct {
	HostJWTSecret     string
	HostJWTSecretPath string
	Audience          string
}

// RateLimitConfig is applied per client IP on both transports
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// TracingConfig enables the stdout span exporter
type TracingConfig struct {
	Enabled     bool
	ServiceName string
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			HTTPPort:        getEnvAsInt("HTTP_PORT", 8080),
			GRPCPort:        getEnvAsInt("GRPC_PORT", 50051),
			MetricsPort:     getEnvAsInt("METRICS_PORT", 9090),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 30)) * time.Second,
		},
		Gateway: GatewayConfig{
			BaseURL:         getEnv("PAYTR_BASE_URL", "https://www.paytr.com/odeme/api"),
			Timeout:         time.Duration(getEnvAsInt("PAYTR_TIMEOUT", 30)) * time.Second,
			MerchantID:      os.Getenv("PAYTR_MERCHANT_ID"),
			APIKey:          os.Getenv("PAYTR_API_KEY"),
			APISecret:       os.Getenv("PAYTR_API_SECRET"),
			CredentialsPath: getEnv("PAYTR_CREDENTIALS_PATH", "paytr-processor/credentials"),
		},
		Secrets: SecretsConfig{
			Manager:        getEnv("SECRET_MANAGER", SecretManagerEnv),
			CacheTTL:       time.Duration(getEnvAsInt("SECRET_CACHE_TTL_MINUTES", 5)) * time.Minute,
			AWSRegion:      getEnv("AWS_REGION", "eu-central-1"),
			AWSEndpoint:    os.Getenv("AWS_SECRETS_ENDPOINT"),
			GCPProjectID:   os.Getenv("GCP_PROJECT_ID"),
			VaultAddress:   os.Getenv("VAULT_ADDR"),
			VaultToken:     os.Getenv("VAULT_TOKEN"),
			VaultRoleID:    os.Getenv("VAULT_ROLE_ID"),
			VaultSecretID:  os.Getenv("VAULT_SECRET_ID"),
			VaultMountPath: getEnv("VAULT_MOUNT_PATH", "secret"),
			LocalPath:      getEnv("LOCAL_SECRETS_PATH", "./secrets"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxConns:     int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			QueryTimeout: time.Duration(getEnvAsInt("DB_QUERY_TIMEOUT_MS", 2000)) * time.Millisecond,
		},
		Auth: AuthConfig{
			HostJWTSecret:     os.Getenv("HOST_JWT_SECRET"),
			HostJWTSecretPath: os.Getenv("HOST_JWT_SECRET_PATH"),
			Audience:          os.Getenv("HOST_JWT_AUDIENCE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("TRACING_ENABLED", false),
			ServiceName: getEnv("SERVICE_NAME", "paytr-processor"),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable default
func (c *Config) Validate() error {
	switch c.Secrets.Manager {
	case SecretManagerEnv:
		if c.Gateway.MerchantID == "" {
			return fmt.Errorf("PAYTR_MERCHANT_ID is required when SECRET_MANAGER=env")
		}
		if c.Gateway.APIKey == "" {
			return fmt.Errorf("PAYTR_API_KEY is required when SECRET_MANAGER=env")
		}
		if c.Gateway.APISecret == "" {
			return fmt.Errorf("PAYTR_API_SECRET is required when SECRET_MANAGER=env")
		}
		if c.Auth.HostJWTSecretPath != "" {
			return fmt.Errorf("HOST_JWT_SECRET_PATH needs a secret manager, use HOST_JWT_SECRET with SECRET_MANAGER=env")
		}
	case SecretManagerGCP:
		if c.Secrets.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when SECRET_MANAGER=gcp")
		}
	case SecretManagerVault:
		if c.Secrets.VaultAddress == "" {
			return fmt.Errorf("VAULT_ADDR is required when SECRET_MANAGER=vault")
		}
	case SecretManagerAWS, SecretManagerLocal:
	default:
		return fmt.Errorf("unsupported SECRET_MANAGER %q", c.Secrets.Manager)
	}

	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("PAYTR_BASE_URL must not be empty")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// AuthEnabled reports whether host requests must carry a JWT
func (c *Config) AuthEnabled() bool {
	return c.Auth.HostJWTSecret != "" || c.Auth.HostJWTSecretPath != ""
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
