// Package combine drives the full dashcam collection pass: walk a source
// tree, group recording segments into sessions, merge each session into the
// target tree and carry every other file over verbatim.
package combine

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"dashkit/grouping"
	"dashkit/merge"
	"dashkit/storage"
)

// Archiver uploads a finished clip and returns its public URL.
type Archiver interface {
	UploadClip(localPath string) (string, error)
}

// Options configures one combine pass.
type Options struct {
	Source         string
	Target         string
	MinFreeSpaceGB int      // free-space guard on the target; 0 disables
	Archiver       Archiver // optional; merged clips are uploaded when set
}

// Stats counts what one pass did.
type Stats struct {
	Groups       int
	Merged       int
	Copied       int // single-segment groups copied
	Skipped      int // outputs already present
	Failed       int
	OtherCopied  int
	OtherSkipped int
	Archived     int
}

// DefaultTarget returns the sibling output directory for a source folder:
// <src>_Combined next to it.
func DefaultTarget(src string) string {
	abs, err := filepath.Abs(src)
	if err != nil {
		abs = src
	}
	return filepath.Join(filepath.Dir(abs), filepath.Base(abs)+"_Combined")
}

// Run executes one combine pass. Parameter and free-space problems fail
// before any side effect; per-group and per-file failures are logged and
// counted, and the pass continues. Context cancellation stops the pass.
func Run(ctx context.Context, merger *merge.Merger, opts Options) (Stats, error) {
	var stats Stats

	info, err := os.Stat(opts.Source)
	if err != nil {
		return stats, fmt.Errorf("source folder not accessible: %w", err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("source %s is not a directory", opts.Source)
	}
	if opts.Target == "" {
		opts.Target = DefaultTarget(opts.Source)
	}

	if err := os.MkdirAll(opts.Target, 0755); err != nil {
		return stats, fmt.Errorf("failed to create target folder: %w", err)
	}
	if err := storage.EnsureFreeSpace(opts.Target, opts.MinFreeSpaceGB); err != nil {
		return stats, err
	}

	videos, others, err := scan(opts.Source)
	if err != nil {
		return stats, err
	}
	log.Printf("Found %d MP4 files and %d other files in %s", len(videos), len(others), opts.Source)

	segments := make([]grouping.Segment, len(videos))
	for i, path := range videos {
		segments[i] = grouping.NewSegment(path)
	}
	groups := grouping.GroupSegments(segments)
	stats.Groups = len(groups)
	log.Printf("Segments form %d groups", len(groups))

	for i, group := range groups {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		relDir, err := filepath.Rel(opts.Source, filepath.Dir(group.First().Path))
		if err != nil {
			relDir = "."
		}
		dest := filepath.Join(opts.Target, relDir, merge.OutputName(group))

		log.Printf("Processing group %d/%d (%d segments) -> %s", i+1, len(groups), group.Len(), filepath.Base(dest))
		outcome, err := merger.Merge(ctx, group, dest)
		if err != nil {
			log.Printf("Group %d/%d failed: %v", i+1, len(groups), err)
			stats.Failed++
			continue
		}

		switch outcome {
		case merge.OutcomeMerged:
			stats.Merged++
		case merge.OutcomeCopied:
			stats.Copied++
		case merge.OutcomeSkipped:
			log.Printf("Output already exists, skipping: %s", dest)
			stats.Skipped++
		}

		if opts.Archiver != nil && outcome != merge.OutcomeSkipped {
			if _, err := opts.Archiver.UploadClip(dest); err != nil {
				log.Printf("Warning: failed to archive %s: %v", dest, err)
			} else {
				stats.Archived++
			}
		}
	}

	for _, path := range others {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}

		rel, err := filepath.Rel(opts.Source, path)
		if err != nil {
			log.Printf("Skipping file outside source tree: %s", path)
			continue
		}
		dest := filepath.Join(opts.Target, rel)

		if _, err := os.Stat(dest); err == nil {
			stats.OtherSkipped++
			continue
		}
		if err := copyVerbatim(path, dest); err != nil {
			log.Printf("Failed to copy %s: %v", rel, err)
			stats.Failed++
			continue
		}
		stats.OtherCopied++
	}

	log.Printf("Combine pass done: %d merged, %d copied, %d skipped, %d failed; %d other files copied, %d skipped",
		stats.Merged, stats.Copied, stats.Skipped, stats.Failed, stats.OtherCopied, stats.OtherSkipped)
	return stats, nil
}

// scan walks the source tree and splits regular files into MP4 recordings
// and everything else.
func scan(source string) (videos, others []string, err error) {
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".mp4") {
			videos = append(videos, path)
		} else {
			others = append(others, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to walk source tree: %w", err)
	}
	return videos, others, nil
}

// copyVerbatim copies src to dest preserving the modification time.
func copyVerbatim(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return err
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
