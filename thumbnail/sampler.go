// Package thumbnail samples evenly spaced frames from a video and composes
// them into a single contact-sheet image saved beside the source.
package thumbnail

import (
	"fmt"
	"math"
)

// SamplePoints returns count instants evenly spaced through a duration of d
// seconds, excluding the very start and end: d/(count+1)*k for k=1..count.
func SamplePoints(d float64, count int) ([]float64, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
		return nil, fmt.Errorf("invalid video duration: %f", d)
	}
	if count <= 0 {
		return nil, fmt.Errorf("frame count must be positive, got %d", count)
	}

	interval := d / float64(count+1)
	points := make([]float64, count)
	for k := 1; k <= count; k++ {
		points[k-1] = interval * float64(k)
	}
	return points, nil
}

// ScaledDimensions fits srcW x srcH inside maxW x maxH preserving aspect
// ratio. Results are floored and clamped to [1, max] per axis, so the
// thumbnail never exceeds the requested box.
func ScaledDimensions(srcW, srcH, maxW, maxH int) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, fmt.Errorf("invalid source resolution %dx%d", srcW, srcH)
	}
	if maxW <= 0 || maxH <= 0 {
		return 0, 0, fmt.Errorf("invalid maximum box %dx%d", maxW, maxH)
	}

	scale := math.Min(float64(maxW)/float64(srcW), float64(maxH)/float64(srcH))
	w := clamp(int(float64(srcW)*scale), 1, maxW)
	h := clamp(int(float64(srcH)*scale), 1, maxH)
	return w, h, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
