// Package grouping partitions discovered recording segments into continuous
// sessions: first by camera channel, then by temporal contiguity within each
// convention's gap threshold.
package grouping

import (
	"path/filepath"
	"sort"

	"dashkit/naming"
)

// Segment is one physical recording file plus its parsed filename metadata.
type Segment struct {
	Path string
	Base string
	Meta naming.Metadata
}

// NewSegment builds a Segment for path, parsing its base name. Files that
// match no convention get empty metadata and are treated as ungroupable.
func NewSegment(path string) Segment {
	base := filepath.Base(path)
	meta, err := naming.Parse(base)
	if err != nil {
		meta = naming.Metadata{}
	}
	return Segment{Path: path, Base: base, Meta: meta}
}

// Group is an ordered run of segments from one camera whose consecutive
// timestamps differ by at most the earlier segment's gap threshold.
type Group struct {
	Segments []Segment
}

// First returns the earliest segment of the group.
func (g Group) First() Segment { return g.Segments[0] }

// Last returns the latest segment of the group.
func (g Group) Last() Segment { return g.Segments[len(g.Segments)-1] }

// Len returns the number of segments in the group.
func (g Group) Len() int { return len(g.Segments) }

// GroupSegments buckets segments by camera, orders each bucket by base
// filename and splits it wherever the recording gap exceeds the previous
// segment's threshold. Segments without a camera channel are never merged
// with anything: each becomes a singleton group. Bucket order is
// deterministic (camera IDs sorted, the camera-less bucket last).
func GroupSegments(segments []Segment) []Group {
	buckets := make(map[string][]Segment)
	for _, seg := range segments {
		buckets[seg.Meta.CameraID] = append(buckets[seg.Meta.CameraID], seg)
	}

	cameras := make([]string, 0, len(buckets))
	for camera := range buckets {
		if camera != "" {
			cameras = append(cameras, camera)
		}
	}
	sort.Strings(cameras)

	var groups []Group
	for _, camera := range cameras {
		groups = append(groups, groupByTime(buckets[camera])...)
	}

	// Camera-less segments are ungroupable: one group per file.
	loose := buckets[""]
	sort.Slice(loose, func(i, j int) bool { return loose[i].Base < loose[j].Base })
	for _, seg := range loose {
		groups = append(groups, Group{Segments: []Segment{seg}})
	}

	return groups
}

// groupByTime walks one camera's segments in filename order and extends the
// current group while consecutive timestamps stay within the earlier
// segment's gap threshold. A missing timestamp on either side is a boundary.
func groupByTime(segments []Segment) []Group {
	sort.Slice(segments, func(i, j int) bool { return segments[i].Base < segments[j].Base })

	var groups []Group
	var current []Segment

	for i, seg := range segments {
		if i == 0 {
			current = []Segment{seg}
			continue
		}

		prev := segments[i-1]
		if contiguous(prev, seg) {
			current = append(current, seg)
			continue
		}

		groups = append(groups, Group{Segments: current})
		current = []Segment{seg}
	}

	if len(current) > 0 {
		groups = append(groups, Group{Segments: current})
	}

	return groups
}

// contiguous reports whether next belongs to the same recording session as
// prev. Unorderable timestamps never count as contiguous.
func contiguous(prev, next Segment) bool {
	if !prev.Meta.HasTimestamp() || !next.Meta.HasTimestamp() {
		return false
	}
	gap := next.Meta.Timestamp.Sub(prev.Meta.Timestamp)
	return gap <= prev.Meta.MaxGap
}
