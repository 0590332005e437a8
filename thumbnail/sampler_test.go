package thumbnail

import (
	"math"
	"testing"
)

func TestSamplePointsEvenlySpaced(t *testing.T) {
	points, err := SamplePoints(70, 6)
	if err != nil {
		t.Fatalf("SamplePoints failed: %v", err)
	}
	if len(points) != 6 {
		t.Fatalf("Expected 6 points, got %d", len(points))
	}
	for k, p := range points {
		want := 10 * float64(k+1)
		if math.Abs(p-want) > 1e-9 {
			t.Errorf("Point %d = %f, want %f", k, p, want)
		}
	}
	if points[0] <= 0 || points[len(points)-1] >= 70 {
		t.Error("Sample points must exclude the start and end of the video")
	}
}

func TestSamplePointsInvalidDuration(t *testing.T) {
	for _, d := range []float64{0, -5, math.Inf(1), math.NaN()} {
		if _, err := SamplePoints(d, 4); err == nil {
			t.Errorf("Expected error for duration %v", d)
		}
	}
}

func TestSamplePointsInvalidCount(t *testing.T) {
	if _, err := SamplePoints(60, 0); err == nil {
		t.Error("Expected error for zero frame count")
	}
}

func TestScaledDimensions(t *testing.T) {
	cases := []struct {
		srcW, srcH, maxW, maxH int
		wantW, wantH           int
	}{
		{1920, 1080, 320, 180, 320, 180}, // exact 16:9 fit
		{1920, 1080, 320, 320, 320, 180}, // width-bound
		{1080, 1920, 320, 320, 180, 320}, // portrait, height-bound
		{100, 100, 320, 180, 180, 180},   // square limited by height
		{4000, 10, 320, 180, 320, 1},     // extreme ratio clamps to 1
		{320, 180, 320, 180, 320, 180},   // identity
	}
	for _, tc := range cases {
		w, h, err := ScaledDimensions(tc.srcW, tc.srcH, tc.maxW, tc.maxH)
		if err != nil {
			t.Errorf("ScaledDimensions(%d,%d,%d,%d) failed: %v", tc.srcW, tc.srcH, tc.maxW, tc.maxH, err)
			continue
		}
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("ScaledDimensions(%d,%d,%d,%d) = %dx%d, want %dx%d",
				tc.srcW, tc.srcH, tc.maxW, tc.maxH, w, h, tc.wantW, tc.wantH)
		}
		if w > tc.maxW || h > tc.maxH {
			t.Errorf("Result %dx%d exceeds box %dx%d", w, h, tc.maxW, tc.maxH)
		}
	}
}

func TestScaledDimensionsInvalidInput(t *testing.T) {
	if _, _, err := ScaledDimensions(0, 1080, 320, 180); err == nil {
		t.Error("Expected error for zero source width")
	}
	if _, _, err := ScaledDimensions(1920, 1080, 0, 180); err == nil {
		t.Error("Expected error for zero max width")
	}
}
