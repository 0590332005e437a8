package naming

import (
	"testing"
	"time"
)

func TestParseDatetimePrefix(t *testing.T) {
	meta, err := Parse("20250419195801_000785AC.MP4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := time.Date(2025, 4, 19, 19, 58, 1, 0, time.Local)
	if !meta.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, meta.Timestamp)
	}
	if meta.CameraID != "AC" {
		t.Errorf("Expected camera AC, got %q", meta.CameraID)
	}
	if meta.MaxGap != 120*time.Second {
		t.Errorf("Expected 120s gap threshold, got %v", meta.MaxGap)
	}
	if meta.Remainder != "000785AC.MP4" {
		t.Errorf("Expected remainder 000785AC.MP4, got %q", meta.Remainder)
	}
}

func TestParseLetterPrefix(t *testing.T) {
	meta, err := Parse("NO20200101-001521-002110B.mp4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	want := time.Date(2020, 1, 1, 0, 15, 21, 0, time.Local)
	if !meta.Timestamp.Equal(want) {
		t.Errorf("Expected timestamp %v, got %v", want, meta.Timestamp)
	}
	if meta.CameraID != "B" {
		t.Errorf("Expected camera B, got %q", meta.CameraID)
	}
	if meta.MaxGap != 200*time.Second {
		t.Errorf("Expected 200s gap threshold, got %v", meta.MaxGap)
	}
	if meta.Remainder != "002110B.mp4" {
		t.Errorf("Expected remainder 002110B.mp4, got %q", meta.Remainder)
	}
}

func TestParseCaseInsensitiveExtension(t *testing.T) {
	meta, err := Parse("20250419195801_000785AC.mp4")
	if err != nil {
		t.Fatalf("Parse failed for lowercase extension: %v", err)
	}
	if meta.CameraID != "AC" {
		t.Errorf("Expected camera AC, got %q", meta.CameraID)
	}
}

func TestParseTimestampWithoutCamera(t *testing.T) {
	// Matches the datetime-prefix convention loosely but carries no channel
	// letters, so only the timestamp is available.
	meta, err := Parse("20250419195801_dashcam.MP4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !meta.HasTimestamp() {
		t.Error("Expected a timestamp")
	}
	if meta.HasCamera() {
		t.Errorf("Expected no camera, got %q", meta.CameraID)
	}
}

func TestParseUnknownName(t *testing.T) {
	for _, name := range []string{
		"holiday_footage.MP4",
		"20250419_000785AC.MP4", // 8-digit prefix, not 14
		"NO20200101-001521-002110B.avi",
		"",
	} {
		if _, err := Parse(name); err == nil {
			t.Errorf("Expected error for %q", name)
		}
	}
}

func TestParsePriorityOrder(t *testing.T) {
	// A 14-digit prefix wins over the letter-prefix convention even when the
	// rest of the name is ambiguous.
	meta, err := Parse("20250419195801_000785AC.MP4")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if meta.MaxGap != 120*time.Second {
		t.Errorf("Expected datetime-prefix threshold, got %v", meta.MaxGap)
	}
}
