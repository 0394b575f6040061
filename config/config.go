package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Env Environment

	// Server configuration
	ServerPort  string
	ServerHost  string
	CORSOrigins []string

	// Database configuration
	DBDriver    string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string
	AutoMigrate bool

	// Redis configuration, optional
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Rate limiting for write endpoints
	RateLimit       int
	RateLimitWindow time.Duration

	// Recipe image storage
	S3BucketName string
	AWSRegion    string

	// Observability
	SentryDSN    string
	OTLPEndpoint string
}

// sensitive keys may be overridden by Docker secret files
var secretKeys = map[string]string{
	"db_password":    "DB_PASSWORD",
	"jwt_secret":     "JWT_SECRET",
	"redis_password": "REDIS_PASSWORD",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v, env)

	for secret, key := range secretKeys {
		if value := readSecret(secret); value != "" {
			v.Set(key, value)
		}
	}

	cfg := &Config{
		Env:             env,
		ServerPort:      v.GetString("SERVER_PORT"),
		ServerHost:      v.GetString("SERVER_HOST"),
		CORSOrigins:     splitList(v.GetString("CORS_ORIGINS")),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSL_MODE"),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		RedisHost:       v.GetString("REDIS_HOST"),
		RedisPort:       v.GetString("REDIS_PORT"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		RedisURL:        v.GetString("REDIS_URL"),
		JWTSecret:       v.GetString("JWT_SECRET"),
		TokenTTL:        v.GetDuration("TOKEN_TTL"),
		RateLimit:       v.GetInt("RATE_LIMIT"),
		RateLimitWindow: v.GetDuration("RATE_LIMIT_WINDOW"),
		S3BucketName:    v.GetString("S3_BUCKET_NAME"),
		AWSRegion:       v.GetString("AWS_REGION"),
		SentryDSN:       v.GetString("SENTRY_DSN"),
		OTLPEndpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, env Environment) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "foodgram")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "foodgram.db")
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("RATE_LIMIT", 60)
	v.SetDefault("RATE_LIMIT_WINDOW", time.Minute)

	if env != Production {
		v.SetDefault("DB_PASSWORD", "postgres")
	}
}

// Addr returns the listen address for the HTTP server
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// RedisEnabled reports whether any Redis endpoint is configured
func (c *Config) RedisEnabled() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
