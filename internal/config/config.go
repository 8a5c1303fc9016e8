package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL   string // PLENUM_DATABASE_URL (required)
	HTTPAddr      string // PLENUM_HTTP_ADDR (default ":8080")
	NATSURL       string // PLENUM_NATS_URL (optional, empty = no events)
	OperatorToken string // PLENUM_OPERATOR_TOKEN (optional; grants retroactive mutations)
	RulesFile     string // PLENUM_RULES_FILE (optional TOML rule set seeded at startup)

	// Archive settings
	ArchiveInterval   time.Duration // PLENUM_ARCHIVE_INTERVAL (default 10m; 0 = disabled)
	ArchiveS3Bucket   string        // PLENUM_ARCHIVE_S3_BUCKET (enables S3 when set)
	ArchiveS3Endpoint string        // PLENUM_ARCHIVE_S3_ENDPOINT (custom endpoint for MinIO)
	ArchiveS3Region   string        // PLENUM_ARCHIVE_S3_REGION (default "us-east-1")
	ArchiveS3Key      string        // PLENUM_ARCHIVE_S3_KEY (default "plenum/record.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:       os.Getenv("PLENUM_DATABASE_URL"),
		HTTPAddr:          envOrDefault("PLENUM_HTTP_ADDR", ":8080"),
		NATSURL:           os.Getenv("PLENUM_NATS_URL"),
		OperatorToken:     os.Getenv("PLENUM_OPERATOR_TOKEN"),
		RulesFile:         os.Getenv("PLENUM_RULES_FILE"),
		ArchiveS3Bucket:   os.Getenv("PLENUM_ARCHIVE_S3_BUCKET"),
		ArchiveS3Endpoint: os.Getenv("PLENUM_ARCHIVE_S3_ENDPOINT"),
		ArchiveS3Region:   envOrDefault("PLENUM_ARCHIVE_S3_REGION", "us-east-1"),
		ArchiveS3Key:      envOrDefault("PLENUM_ARCHIVE_S3_KEY", "plenum/record.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("PLENUM_DATABASE_URL is required")
	}

	intervalStr := envOrDefault("PLENUM_ARCHIVE_INTERVAL", "10m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("PLENUM_ARCHIVE_INTERVAL: %w", err)
		}
		c.ArchiveInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
