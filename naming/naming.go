// Package naming parses dashcam recording filenames into the metadata the
// grouper needs: acquisition timestamp, camera channel and the gap threshold
// tied to each naming convention.
package naming

import (
	"fmt"
	"regexp"
	"time"
)

// Metadata is what a filename convention yields for one recording file.
// Timestamp is the zero value and CameraID the empty string when the
// corresponding piece could not be extracted.
type Metadata struct {
	Timestamp time.Time
	CameraID  string
	MaxGap    time.Duration
	Remainder string // non-timestamp part of the name, extension included
}

// HasTimestamp reports whether a recording timestamp was extracted.
func (m Metadata) HasTimestamp() bool {
	return !m.Timestamp.IsZero()
}

// HasCamera reports whether a camera channel was extracted.
func (m Metadata) HasCamera() bool {
	return m.CameraID != ""
}

// convention is one supported filename layout. match extracts the timestamp
// and remainder, camera extracts the trailing channel letters from the same
// name. camera may fail while match succeeds.
type convention struct {
	name   string
	match  *regexp.Regexp
	camera *regexp.Regexp
	maxGap time.Duration
}

var conventions = []convention{
	{
		// 20250419195801_000785AC.MP4
		name:   "datetime-prefix",
		match:  regexp.MustCompile(`(?i)^(\d{14})_(.+\.MP4)$`),
		camera: regexp.MustCompile(`(?i)^\d{14}_\d+([A-Z]+)\.MP4$`),
		maxGap: 120 * time.Second,
	},
	{
		// NO20200101-001521-002110B.mp4
		name:   "letter-prefix",
		match:  regexp.MustCompile(`(?i)^[A-Z]+(\d{8})-(\d{6})-(\d+[A-Z]+\.MP4)$`),
		camera: regexp.MustCompile(`(?i)^[A-Z]+\d{8}-\d{6}-\d+([A-Z]+)\.MP4$`),
		maxGap: 200 * time.Second,
	},
}

// TimestampLayout is the 14-digit datetime form shared by both conventions
// and reused when composing merged output names.
const TimestampLayout = "20060102150405"

// Parse matches baseName against the supported conventions in priority order
// and returns the metadata of the first one that matches. A non-nil error
// means no convention matched and the file must be treated as ungroupable.
func Parse(baseName string) (Metadata, error) {
	for _, conv := range conventions {
		m := conv.match.FindStringSubmatch(baseName)
		if m == nil {
			continue
		}

		var stamp string
		var remainder string
		if len(m) == 3 {
			stamp = m[1]
			remainder = m[2]
		} else {
			stamp = m[1] + m[2]
			remainder = m[3]
		}

		meta := Metadata{
			MaxGap:    conv.maxGap,
			Remainder: remainder,
		}
		if ts, err := time.ParseInLocation(TimestampLayout, stamp, time.Local); err == nil {
			meta.Timestamp = ts
		}
		if cm := conv.camera.FindStringSubmatch(baseName); cm != nil {
			meta.CameraID = cm[1]
		}
		return meta, nil
	}

	return Metadata{}, fmt.Errorf("no known naming convention matches %q", baseName)
}
