package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerHost string
	ServerPort string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration; empty RedisURL and RedisHost disable the
	// rate limiter
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Image storage: uploads go to S3 when a bucket is set, otherwise
	// under MediaDir
	S3Bucket  string
	AWSRegion string
	MediaDir  string

	AllowedOrigins []string
}

// Load builds the configuration from environment variables, with Docker
// secret files taking precedence for sensitive values.
func Load() (*Config, error) {
	cfg := &Config{
		ServerHost:     getenv("SERVER_HOST", "0.0.0.0"),
		ServerPort:     getenv("SERVER_PORT", "8080"),
		DBHost:         getenv("DB_HOST", "localhost"),
		DBPort:         getenv("DB_PORT", "5432"),
		DBUser:         secretOr("db_user", "DB_USER", "postgres"),
		DBPassword:     secretOr("db_password", "DB_PASSWORD", ""),
		DBName:         getenv("DB_NAME", "platefeed"),
		DBSSLMode:      getenv("DB_SSL_MODE", "disable"),
		RedisURL:       getenv("REDIS_URL", ""),
		RedisHost:      getenv("REDIS_HOST", ""),
		RedisPort:      getenv("REDIS_PORT", "6379"),
		RedisPassword:  secretOr("redis_password", "REDIS_PASSWORD", ""),
		RedisDB:        0,
		JWTSecret:      secretOr("jwt_secret", "JWT_SECRET", ""),
		S3Bucket:       getenv("S3_BUCKET_NAME", ""),
		AWSRegion:      getenv("AWS_REGION", ""),
		MediaDir:       getenv("MEDIA_DIR", "media"),
		AllowedOrigins: splitList(getenv("ALLOWED_ORIGINS", "http://localhost:5173")),
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// secretOr reads a Docker secret, falling back to an environment variable
// and then a default.
func secretOr(secretName, envName, fallback string) string {
	if v := readSecret(secretName); v != "" {
		return v
	}
	return getenv(envName, fallback)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
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
