package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errors []string

	if cfg.ServerPort == "" {
		errors = append(errors, ValidationError{"SERVER_PORT", "is required"}.Error())
	}

	switch cfg.DBDriver {
	case "postgres":
		if cfg.DBHost == "" || cfg.DBName == "" || cfg.DBUser == "" {
			errors = append(errors, ValidationError{"DB_HOST/DB_NAME/DB_USER", "are required for postgres"}.Error())
		}
		if cfg.DBPassword == "" {
			errors = append(errors, ValidationError{"DB_PASSWORD", "db_password secret is required"}.Error())
		}
	case "sqlite":
		if cfg.Env == Production {
			errors = append(errors, ValidationError{"DB_DRIVER", "sqlite is not allowed in production"}.Error())
		}
		if cfg.SQLitePath == "" {
			errors = append(errors, ValidationError{"SQLITE_PATH", "is required for sqlite"}.Error())
		}
	default:
		errors = append(errors, ValidationError{"DB_DRIVER", fmt.Sprintf("unsupported driver %q", cfg.DBDriver)}.Error())
	}

	if cfg.JWTSecret == "" {
		errors = append(errors, ValidationError{"JWT_SECRET", "jwt_secret secret is required"}.Error())
	} else if cfg.Env == Production && len(cfg.JWTSecret) < 32 {
		errors = append(errors, ValidationError{"JWT_SECRET", "must be at least 32 characters in production"}.Error())
	}

	if cfg.TokenTTL <= 0 {
		errors = append(errors, ValidationError{"TOKEN_TTL", "must be positive"}.Error())
	}
	if cfg.RateLimit <= 0 || cfg.RateLimitWindow <= 0 {
		errors = append(errors, ValidationError{"RATE_LIMIT", "limit and window must be positive"}.Error())
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(errors, "\n"))
	}

	return nil
}
