package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the booking service
type Config struct {
	AppName  string         `mapstructure:"app_name"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Maps     MapsConfig     `mapstructure:"maps"`
	Mail     MailConfig     `mapstructure:"mail"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Log      LogConfig      `mapstructure:"log"`
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Address string `mapstructure:"address"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	DB       int    `mapstructure:"db"`
	Password string `mapstructure:"password"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	PublicKeyPEM string `mapstructure:"public_key_pem"`
}

// BillingConfig holds billing provider configuration
type BillingConfig struct {
	Provider            string `mapstructure:"provider"`
	StripeSecret        string `mapstructure:"stripe_secret"`
	StripeWebhookSecret string `mapstructure:"stripe_webhook_secret"`
	SuccessURL          string `mapstructure:"success_url"`
	CancelURL           string `mapstructure:"cancel_url"`
}

// MapsConfig holds route provider configuration
type MapsConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Language string `mapstructure:"language"`
	Region   string `mapstructure:"region"`
}

// MailConfig holds transactional email configuration
type MailConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Region  string `mapstructure:"region"`
	Sender  string `mapstructure:"sender"`
}

// KafkaConfig holds event publishing configuration
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// PricingConfig holds fare computation settings external to the engine
type PricingConfig struct {
	Currency     string  `mapstructure:"currency"`
	VATPercent   float64 `mapstructure:"vat_percent"`
	TierCacheTTL int     `mapstructure:"tier_cache_ttl_seconds"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Address             string `mapstructure:"address"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	SamplingRatio  float64 `mapstructure:"sampling_ratio"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app_name", "booking-service")
	viper.SetDefault("http.address", ":8080")
	viper.SetDefault("postgres.max_conns", 10)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("auth.public_key_pem", "")
	viper.SetDefault("billing.provider", "stripe")
	viper.SetDefault("maps.language", "fr")
	viper.SetDefault("maps.region", "FR")
	viper.SetDefault("mail.enabled", false)
	viper.SetDefault("mail.region", "eu-west-3")
	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.topic", "booking-events")
	viper.SetDefault("pricing.currency", "EUR")
	viper.SetDefault("pricing.vat_percent", 10.0)
	viper.SetDefault("pricing.tier_cache_ttl_seconds", 30)
	viper.SetDefault("metrics.address", ":9090")
	viper.SetDefault("metrics.read_timeout_seconds", 5)
	viper.SetDefault("metrics.write_timeout_seconds", 10)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaeger_endpoint", "http://localhost:14268/api/traces")
	viper.SetDefault("tracing.sampling_ratio", 1.0)
	viper.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("app_name is required")
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("http.address is required")
	}
	if c.Postgres.DSN == "" {
		return fmt.Errorf("postgres.dsn is required")
	}
	if c.Postgres.MaxConns <= 0 {
		return fmt.Errorf("postgres.max_conns must be greater than 0")
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.Pricing.VATPercent < 0 {
		return fmt.Errorf("pricing.vat_percent must not be negative")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
