package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.MinFreeSpaceGB != 0 {
		t.Errorf("Expected free-space guard disabled by default, got %d", cfg.MinFreeSpaceGB)
	}
	if cfg.ArchiveEnabled {
		t.Error("Expected archive disabled by default")
	}
	if cfg.Archive.Region != "auto" {
		t.Errorf("Expected default region auto, got %s", cfg.Archive.Region)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MIN_FREE_SPACE_GB", "25")
	t.Setenv("MONITOR_INTERVAL_SECONDS", "30")
	t.Setenv("ARCHIVE_ENABLED", "true")
	t.Setenv("ARCHIVE_BUCKET", "clips")

	cfg := Load()
	if cfg.MinFreeSpaceGB != 25 {
		t.Errorf("Expected 25GB guard, got %d", cfg.MinFreeSpaceGB)
	}
	if cfg.MonitorInterval != 30*time.Second {
		t.Errorf("Expected 30s monitor interval, got %v", cfg.MonitorInterval)
	}
	if !cfg.ArchiveEnabled || cfg.Archive.Bucket != "clips" {
		t.Errorf("Archive config not loaded: %+v", cfg.Archive)
	}
}

func TestLoadIgnoresMalformedInt(t *testing.T) {
	t.Setenv("MIN_FREE_SPACE_GB", "lots")
	if got := Load().MinFreeSpaceGB; got != 0 {
		t.Errorf("Expected fallback for malformed value, got %d", got)
	}
}

func TestEnsurePositive(t *testing.T) {
	if err := EnsurePositive("cols", 3); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := EnsurePositive("cols", 0); err == nil {
		t.Error("Expected error for zero")
	}
	if err := EnsurePositive("cols", -4); err == nil {
		t.Error("Expected error for negative")
	}
}

func TestEnsureNonNegative(t *testing.T) {
	if err := EnsureNonNegative("gap", 0); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
	if err := EnsureNonNegative("gap", -1); err == nil {
		t.Error("Expected error for negative")
	}
}
