// Package ffmpeg wraps the external ffmpeg/ffprobe binaries behind small
// functions the pipelines can call: stream-copy concatenation, duration and
// resolution probing, and single-frame extraction.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// Tools holds the resolved paths of the external binaries.
type Tools struct {
	FFmpegPath  string
	FFprobePath string
}

// Locate resolves ffmpeg and ffprobe from PATH. A missing binary is the
// caller's cue to exit before any work starts.
func Locate() (*Tools, error) {
	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	return &Tools{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}, nil
}

// Concat performs container-level stream-copy concatenation of the files
// listed in the concat manifest at listPath into outPath.
func (t *Tools) Concat(ctx context.Context, listPath, outPath string) error {
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		outPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}

// Duration returns the container duration of videoPath in seconds.
func (t *Tools) Duration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx, t.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe duration failed: %v\nOutput: %s", err, stderr.String())
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned invalid duration %q", strings.TrimSpace(stdout.String()))
	}
	if !validDuration(duration) {
		return 0, fmt.Errorf("invalid video duration: %f", duration)
	}
	return duration, nil
}

// Dimensions returns the width and height of the first video stream.
func (t *Tools) Dimensions(ctx context.Context, videoPath string) (int, int, error) {
	cmd := exec.CommandContext(ctx, t.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=p=0:s=x",
		videoPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, 0, fmt.Errorf("ffprobe dimensions failed: %v\nOutput: %s", err, stderr.String())
	}

	return parseDimensions(stdout.String())
}

// ExtractFrame grabs one frame of videoPath at the given instant, scaled to
// width x height, into outPath. A zero exit without an output file is still
// an extraction failure.
func (t *Tools) ExtractFrame(ctx context.Context, videoPath string, atSeconds float64, width, height int, outPath string) error {
	cmd := exec.CommandContext(ctx, t.FFmpegPath,
		"-loglevel", "error",
		"-ss", FormatTimestamp(atSeconds),
		"-i", videoPath,
		"-frames:v", "1",
		"-vf", fmt.Sprintf("scale=%d:%d", width, height),
		"-y",
		outPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg frame extraction at %s failed: %v\nOutput: %s",
			FormatTimestamp(atSeconds), err, stderr.String())
	}
	if _, err := os.Stat(outPath); err != nil {
		return fmt.Errorf("ffmpeg exited cleanly but produced no frame at %s", FormatTimestamp(atSeconds))
	}
	return nil
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm for ffmpeg's -ss flag.
// Millisecond rounding carries into the seconds field.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	whole := int64(seconds)
	millis := int64(math.Round((seconds - float64(whole)) * 1000))
	if millis == 1000 {
		whole++
		millis = 0
	}
	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

func parseDimensions(probeOutput string) (int, int, error) {
	text := strings.TrimSpace(probeOutput)
	if text == "" {
		return 0, 0, fmt.Errorf("ffprobe returned no resolution")
	}
	line := strings.SplitN(text, "\n", 2)[0]
	line = strings.TrimSuffix(strings.TrimSpace(line), "x")
	parts := strings.Split(line, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("ffprobe returned invalid resolution %q", line)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe returned invalid width %q", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("ffprobe returned invalid height %q", parts[1])
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("ffprobe returned non-positive resolution %dx%d", width, height)
	}
	return width, height, nil
}

func validDuration(d float64) bool {
	return !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0
}
