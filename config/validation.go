package config

import (
	"fmt"
	"strings"
)

// Validate checks the invariants the rest of the process relies on. The
// JWT secret is only optional outside production so that local setups and
// tests can run without a secrets directory.
func Validate(cfg *Config) error {
	var problems []string

	if cfg.ServerPort == "" {
		problems = append(problems, "SERVER_PORT must not be empty")
	}
	if cfg.DBHost == "" || cfg.DBPort == "" || cfg.DBName == "" {
		problems = append(problems, "database host, port and name are required")
	}
	if cfg.JWTSecret == "" && IsProduction() {
		problems = append(problems, "jwt_secret secret is required in production")
	}
	if cfg.S3Bucket != "" && cfg.AWSRegion == "" {
		problems = append(problems, "AWS_REGION is required when S3_BUCKET_NAME is set")
	}
	if cfg.S3Bucket == "" && cfg.MediaDir == "" {
		problems = append(problems, "MEDIA_DIR is required when no S3 bucket is configured")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}
