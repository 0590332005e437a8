// Package merge turns one segment group into one output clip: a
// byte-preserving copy for singletons, stream-copy concatenation for longer
// sessions. Outputs are published atomically via a hidden temp file.
package merge

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"dashkit/grouping"
	"dashkit/naming"

	"github.com/google/uuid"
)

// Concatenator is the external stream-copy concatenation capability. The
// manifest at listPath holds ordered `file '<abs path>'` lines.
type Concatenator interface {
	Concat(ctx context.Context, listPath, outPath string) error
}

// Outcome describes what Merge did for one group.
type Outcome string

const (
	OutcomeCopied  Outcome = "copied"
	OutcomeMerged  Outcome = "merged"
	OutcomeSkipped Outcome = "skipped" // destination already present
)

// Merger merges segment groups using an injected concatenator.
type Merger struct {
	concat Concatenator
}

// NewMerger creates a Merger backed by the given concatenator.
func NewMerger(concat Concatenator) *Merger {
	return &Merger{concat: concat}
}

// OutputName derives the destination base name for a group: the first and
// last segments' timestamps plus the first segment's filename remainder.
// Without parseable timestamps the first segment's original name is reused.
func OutputName(group grouping.Group) string {
	first := group.First()
	last := group.Last()
	if !first.Meta.HasTimestamp() || !last.Meta.HasTimestamp() || first.Meta.Remainder == "" {
		return first.Base
	}
	return fmt.Sprintf("%s_%s_%s",
		first.Meta.Timestamp.Format(naming.TimestampLayout),
		last.Meta.Timestamp.Format(naming.TimestampLayout),
		first.Meta.Remainder,
	)
}

// Merge produces destPath from the group. Merging is at-most-once per
// destination: an existing destPath is reported as skipped, never
// overwritten. Multi-segment merges write to a hidden temp path first and
// rename on success, so an interrupted or failed run leaves no
// valid-looking partial output behind.
func (m *Merger) Merge(ctx context.Context, group grouping.Group, destPath string) (Outcome, error) {
	if group.Len() == 0 {
		return "", fmt.Errorf("empty segment group")
	}

	if _, err := os.Stat(destPath); err == nil {
		return OutcomeSkipped, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	if group.Len() == 1 {
		if err := copySegment(group.First().Path, destPath); err != nil {
			return "", err
		}
		return OutcomeCopied, nil
	}

	if err := m.concatGroup(ctx, group, destPath); err != nil {
		return "", err
	}
	return OutcomeMerged, nil
}

// copySegment copies src to destPath and carries the source's access and
// modification times over to the copy.
func copySegment(src, destPath string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open segment: %w", err)
	}
	defer in.Close()

	tmpPath := hiddenTempPath(destPath)
	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp output: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy segment: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize copy: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish copy: %w", err)
	}

	return applyFileTimes(destPath, src)
}

// concatGroup concatenates all group members in order via the external tool,
// then forces the output's times to the last member's so mtime-based sorting
// reflects the end of the combined clip.
func (m *Merger) concatGroup(ctx context.Context, group grouping.Group, destPath string) error {
	destDir := filepath.Dir(destPath)

	listPath := filepath.Join(destDir, fmt.Sprintf("concat_%s.txt", uuid.NewString()))
	if err := writeManifest(listPath, group); err != nil {
		return err
	}
	defer os.Remove(listPath)

	tmpPath := hiddenTempPath(destPath)
	if err := m.concat.Concat(ctx, listPath, tmpPath); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish merged clip: %w", err)
	}

	return applyFileTimes(destPath, group.Last().Path)
}

// writeManifest writes the ffmpeg concat demuxer manifest for the group.
func writeManifest(listPath string, group grouping.Group) error {
	f, err := os.Create(listPath)
	if err != nil {
		return fmt.Errorf("failed to create concat list file: %w", err)
	}

	for _, seg := range group.Segments {
		abs, err := filepath.Abs(seg.Path)
		if err != nil {
			f.Close()
			os.Remove(listPath)
			return fmt.Errorf("failed to resolve segment path: %w", err)
		}
		if _, err := fmt.Fprintf(f, "file '%s'\n", abs); err != nil {
			f.Close()
			os.Remove(listPath)
			return fmt.Errorf("failed to write concat list: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		os.Remove(listPath)
		return fmt.Errorf("failed to finalize concat list: %w", err)
	}
	return nil
}

// applyFileTimes copies src's access and modification times onto target.
func applyFileTimes(target, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", src, err)
	}
	atime, mtime := fileTimes(info)
	if err := os.Chtimes(target, atime, mtime); err != nil {
		return fmt.Errorf("failed to set file times on %s: %w", target, err)
	}
	return nil
}

func hiddenTempPath(destPath string) string {
	return filepath.Join(filepath.Dir(destPath), "."+filepath.Base(destPath)+".tmp")
}
