// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Authorization engines selectable with AUTHZ_ENGINE.
const (
	EngineNative = "native"
	EngineOPA    = "opa"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty runs the server on the in-memory store.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// JWTPublicKey is the PEM-encoded public key or path to file used to verify access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTPrivateKey is the PEM-encoded private key or path to file. Only cmd/seed needs it to mint dev tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	JWTIssuer     string `mapstructure:"JWT_ISSUER"`
	JWTAudience   string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the access token lifetime (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`

	// AuthzEngine selects the permission evaluator: "native" or "opa".
	AuthzEngine string `mapstructure:"AUTHZ_ENGINE"`

	// Decision cache (optional). Enabled when RedisAddr is set.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisPassword    string `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int    `mapstructure:"REDIS_DB"`
	DecisionCacheTTL string `mapstructure:"DECISION_CACHE_TTL"`

	// Events (optional). When Kafka brokers are set, role and membership changes and RPC telemetry go to Kafka.
	// KafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	AuthzEventsTopic string `mapstructure:"AUTHZ_EVENTS_TOPIC"`
	// KafkaGroupID is the consumer group of cmd/worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`

	// OpenTelemetry (optional). Empty endpoint keeps traces, metrics and logs in process.
	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_ISSUER", "budget-auth")
	v.SetDefault("JWT_AUDIENCE", "budget-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("AUTHZ_ENGINE", EngineNative)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DECISION_CACHE_TTL", "30s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUTHZ_EVENTS_TOPIC", "budget-authz-events")
	v.SetDefault("KAFKA_GROUP_ID", "budget-cache-invalidator")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "budget-control-plane")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}
	cfg.AuthzEngine = strings.ToLower(strings.TrimSpace(cfg.AuthzEngine))
	if cfg.AuthzEngine != EngineNative && cfg.AuthzEngine != EngineOPA {
		return nil, errors.New("config: AUTHZ_ENGINE must be native or opa")
	}
	if cfg.RedisDB < 0 {
		return nil, errors.New("config: REDIS_DB must not be negative")
	}
	if cfg.Env == "production" {
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when APP_ENV=production")
		}
		if cfg.JWTPublicKey == "" {
			return nil, errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
		}
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// CacheTTL parses DecisionCacheTTL as a time.Duration. Returns 30s if unset or invalid.
func (c *Config) CacheTTL() time.Duration {
	d, err := time.ParseDuration(c.DecisionCacheTTL)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty list disables the Kafka producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
