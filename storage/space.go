// Package storage guards local disk space before large merge batches and
// optionally archives merged clips to S3-compatible object storage.
package storage

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// FreeSpaceGB returns the free space in GB on the filesystem holding path.
func FreeSpaceGB(path string) (float64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read disk usage for %s: %w", path, err)
	}
	return float64(usage.Free) / (1024 * 1024 * 1024), nil
}

// EnsureFreeSpace fails when the filesystem holding path has less than
// minFreeGB gigabytes free. minFreeGB <= 0 disables the guard.
func EnsureFreeSpace(path string, minFreeGB int) error {
	if minFreeGB <= 0 {
		return nil
	}
	freeGB, err := FreeSpaceGB(path)
	if err != nil {
		return err
	}
	if freeGB < float64(minFreeGB) {
		return fmt.Errorf("only %.1fGB free at %s, need at least %dGB", freeGB, path, minFreeGB)
	}
	return nil
}
