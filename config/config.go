// Package config loads toolkit configuration from environment variables
// (typically via a .env file loaded by main) and validates CLI parameters.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"dashkit/storage"
)

// Config contains all environment-driven settings.
type Config struct {
	// Merge batch settings.
	MinFreeSpaceGB int // free-space guard on the output filesystem; 0 disables

	// Resource monitoring during long runs; 0 disables.
	MonitorInterval time.Duration

	// Optional clip archive (S3-compatible storage).
	ArchiveEnabled bool
	Archive        storage.ArchiveConfig
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	cfg := Config{
		MinFreeSpaceGB:  getEnvInt("MIN_FREE_SPACE_GB", 0),
		MonitorInterval: time.Duration(getEnvInt("MONITOR_INTERVAL_SECONDS", 0)) * time.Second,
		ArchiveEnabled:  getEnv("ARCHIVE_ENABLED", "false") == "true",
		Archive: storage.ArchiveConfig{
			AccessKey: getEnv("ARCHIVE_ACCESS_KEY", ""),
			SecretKey: getEnv("ARCHIVE_SECRET_KEY", ""),
			AccountID: getEnv("ARCHIVE_ACCOUNT_ID", ""),
			Bucket:    getEnv("ARCHIVE_BUCKET", ""),
			Endpoint:  getEnv("ARCHIVE_ENDPOINT", ""),
			Region:    getEnv("ARCHIVE_REGION", "auto"),
			BaseURL:   getEnv("ARCHIVE_BASE_URL", ""),
			Prefix:    getEnv("ARCHIVE_PREFIX", "dashcam"),
		},
	}
	return cfg
}

// EnsurePositive rejects non-positive values for parameters that require
// positivity, e.g. grid dimensions.
func EnsurePositive(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("parameter %s must be a positive integer, got %d", name, value)
	}
	return nil
}

// EnsureNonNegative rejects negative values, e.g. gap and margin.
func EnsureNonNegative(name string, value int) error {
	if value < 0 {
		return fmt.Errorf("parameter %s must not be negative, got %d", name, value)
	}
	return nil
}

// getEnv returns environment variable or fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
