package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	URL            string        `mapstructure:"url" validate:"required"`
	MaxConnections int           `mapstructure:"max_connections"`
	MaxIdleTime    time.Duration `mapstructure:"max_idle_time"`
	MaxLifetime    time.Duration `mapstructure:"max_lifetime"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type RedisConfig struct {
	URL        string        `mapstructure:"url" validate:"required"`
	MaxRetries int           `mapstructure:"max_retries"`
	PoolSize   int           `mapstructure:"pool_size"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// StorageConfig points at the S3-compatible store holding installer
// binaries and public verification artifacts.
type StorageConfig struct {
	Endpoint       string `mapstructure:"endpoint" validate:"required"`
	AccessKey      string `mapstructure:"access_key" validate:"required"`
	SecretKey      string `mapstructure:"secret_key" validate:"required"`
	Bucket         string `mapstructure:"bucket" validate:"required"`
	UseSSL         bool   `mapstructure:"use_ssl"`
	ReleaseVersion string `mapstructure:"release_version" validate:"required"`
}

type AuthConfig struct {
	// DownloadSecret is the shared HMAC key for download tokens. Both the
	// issuance and download endpoints must see the same value.
	DownloadSecret string          `mapstructure:"download_secret" validate:"required,min=16"`
	TokenTTLHours  int             `mapstructure:"token_ttl_hours" validate:"gt=0"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Limit  int           `mapstructure:"limit" validate:"gt=0"`
	Window time.Duration `mapstructure:"window" validate:"gt=0"`
	Prefix string        `mapstructure:"prefix"`
}

type KafkaConfig struct {
	// Brokers empty disables the audit event bus.
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MonitoringConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type SecurityConfig struct {
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"min=1"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

func Load() (*Config, error) {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaults()

	// Environment variable overrides
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		// Config file is optional, continue with env vars and defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the required collaborator settings before any connection
// is attempted. A service with no HMAC secret or no entitlement store must
// fail at startup, not on the first request.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "development")

	// Database defaults
	viper.SetDefault("database.max_connections", 10)
	viper.SetDefault("database.max_idle_time", "15m")
	viper.SetDefault("database.max_lifetime", "1h")
	viper.SetDefault("database.connect_timeout", "10s")

	// Redis defaults
	viper.SetDefault("redis.max_retries", 3)
	viper.SetDefault("redis.pool_size", 10)
	viper.SetDefault("redis.timeout", "5s")

	// Storage defaults
	viper.SetDefault("storage.use_ssl", true)
	viper.SetDefault("storage.release_version", "1.0.0")

	// Auth defaults
	viper.SetDefault("auth.token_ttl_hours", 24)
	viper.SetDefault("auth.rate_limit.limit", 30)
	viper.SetDefault("auth.rate_limit.window", "60s")
	viper.SetDefault("auth.rate_limit.prefix", "rl:token")

	// Kafka defaults
	viper.SetDefault("kafka.topic", "download-events")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)
	viper.SetDefault("monitoring.metrics_path", "/metrics")

	// Security defaults: only the production website may mint tokens
	// cross-origin.
	viper.SetDefault("security.cors.allowed_origins", []string{
		"https://rinawarptech.com",
		"https://www.rinawarptech.com",
	})
	viper.SetDefault("security.cors.allowed_methods", []string{"POST", "OPTIONS"})
	viper.SetDefault("security.cors.allowed_headers", []string{"Content-Type"})
}
