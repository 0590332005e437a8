package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	_ "image/jpeg"
)

// Prober reports a video's duration and first-stream resolution.
type Prober interface {
	Duration(ctx context.Context, videoPath string) (float64, error)
	Dimensions(ctx context.Context, videoPath string) (int, int, error)
}

// FrameExtractor grabs one scaled still image at an instant of the video.
type FrameExtractor interface {
	ExtractFrame(ctx context.Context, videoPath string, atSeconds float64, width, height int, outPath string) error
}

// Generator builds contact sheets for videos using injected probe and
// extraction collaborators.
type Generator struct {
	probe     Prober
	extractor FrameExtractor
	layout    Layout
	maxWidth  int
	maxHeight int
}

// NewGenerator creates a Generator. maxWidth/maxHeight bound each thumbnail;
// the layout defines the grid.
func NewGenerator(probe Prober, extractor FrameExtractor, layout Layout, maxWidth, maxHeight int) (*Generator, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("thumbnail box must be positive, got %dx%d", maxWidth, maxHeight)
	}
	return &Generator{
		probe:     probe,
		extractor: extractor,
		layout:    layout,
		maxWidth:  maxWidth,
		maxHeight: maxHeight,
	}, nil
}

// OutputPath returns where the contact sheet for videoPath is saved.
func OutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return videoPath[:len(videoPath)-len(ext)] + ".png"
}

// Process generates one contact sheet beside videoPath. An existing output
// is skipped. Any probe or extraction failure aborts this video only; the
// temp frame directory is removed on every path.
func (g *Generator) Process(ctx context.Context, videoPath string) (string, error) {
	outPath := OutputPath(videoPath)
	if _, err := os.Stat(outPath); err == nil {
		log.Printf("[%s] Contact sheet already exists, skipping", filepath.Base(videoPath))
		return outPath, nil
	}

	srcW, srcH, err := g.probe.Dimensions(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to probe resolution: %w", err)
	}
	duration, err := g.probe.Duration(ctx, videoPath)
	if err != nil {
		return "", fmt.Errorf("failed to probe duration: %w", err)
	}

	thumbW, thumbH, err := ScaledDimensions(srcW, srcH, g.maxWidth, g.maxHeight)
	if err != nil {
		return "", err
	}

	points, err := SamplePoints(duration, g.layout.FrameCount())
	if err != nil {
		return "", err
	}

	tmpDir, err := os.MkdirTemp("", "dashkit-frames-")
	if err != nil {
		return "", fmt.Errorf("failed to create frame directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	frames := make([]image.Image, 0, len(points))
	for i, at := range points {
		framePath := filepath.Join(tmpDir, fmt.Sprintf("frame_%03d.png", i))
		if err := g.extractor.ExtractFrame(ctx, videoPath, at, thumbW, thumbH, framePath); err != nil {
			return "", fmt.Errorf("failed to extract frame %d/%d: %w", i+1, len(points), err)
		}
		frame, err := loadImage(framePath)
		if err != nil {
			return "", fmt.Errorf("failed to decode frame %d/%d: %w", i+1, len(points), err)
		}
		frames = append(frames, frame)
	}

	sheet, err := ComposeSheet(frames, g.layout)
	if err != nil {
		return "", err
	}

	if err := saveSheet(sheet, outPath); err != nil {
		return "", err
	}

	// Best effort: carry the source video's times onto the sheet so file
	// managers sort it next to its video.
	if err := applySourceTimes(outPath, videoPath); err != nil {
		log.Printf("[%s] Warning: failed to set file times on contact sheet: %v", filepath.Base(videoPath), err)
	}

	return outPath, nil
}

// ProcessAll generates sheets for every video, at most jobs at a time.
// jobs=1 preserves the sequential, deterministic ordering of a plain batch.
// Per-video failures are logged and counted, never fatal to the batch.
func (g *Generator) ProcessAll(ctx context.Context, videos []string, jobs int) (succeeded, failed int) {
	if jobs < 1 {
		jobs = 1
	}
	sem := semaphore.NewWeighted(int64(jobs))

	results := make([]error, len(videos))
	for i, video := range videos {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Context cancelled: count the rest as failed and stop.
			for j := i; j < len(videos); j++ {
				results[j] = err
			}
			break
		}
		go func(i int, video string) {
			defer sem.Release(1)
			start := time.Now()
			out, err := g.Process(ctx, video)
			results[i] = err
			if err != nil {
				log.Printf("[%s] Contact sheet failed: %v", filepath.Base(video), err)
				return
			}
			log.Printf("[%s] Contact sheet written to %s in %v", filepath.Base(video), out, time.Since(start).Round(time.Millisecond))
		}(i, video)
	}

	// Draining the full weight waits for all workers.
	if err := sem.Acquire(context.Background(), int64(jobs)); err == nil {
		sem.Release(int64(jobs))
	}

	for _, err := range results {
		if err != nil {
			failed++
		} else {
			succeeded++
		}
	}
	return succeeded, failed
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	return img, err
}

// saveSheet writes the sheet through a hidden temp file so an interrupted
// run never leaves a half-written PNG at the published path.
func saveSheet(sheet image.Image, outPath string) error {
	tmpPath := filepath.Join(filepath.Dir(outPath), "."+filepath.Base(outPath)+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create contact sheet file: %w", err)
	}
	if err := png.Encode(f, sheet); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to encode contact sheet: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize contact sheet: %w", err)
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to publish contact sheet: %w", err)
	}
	return nil
}

func applySourceTimes(target, src string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chtimes(target, info.ModTime(), info.ModTime())
}

// IsVideoFile reports whether path has a recognized video extension.
func IsVideoFile(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mkv": {}, ".mov": {}, ".avi": {}, ".wmv": {},
	".flv": {}, ".ts": {}, ".m4v": {}, ".webm": {}, ".mpg": {},
	".mpeg": {}, ".3gp": {}, ".m2ts": {}, ".mts": {}, ".ogv": {},
	".vob": {}, ".f4v": {},
}
