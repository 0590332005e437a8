package merge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dashkit/grouping"
)

// fakeConcat emulates the concat demuxer: it parses the manifest and writes
// the byte concatenation of the listed files to outPath.
type fakeConcat struct {
	calls     int
	manifests []string
	fail      bool
}

func (f *fakeConcat) Concat(ctx context.Context, listPath, outPath string) error {
	f.calls++
	data, err := os.ReadFile(listPath)
	if err != nil {
		return err
	}
	f.manifests = append(f.manifests, string(data))

	if f.fail {
		return fmt.Errorf("ffmpeg concat failed: exit status 1")
	}

	var combined bytes.Buffer
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		path := strings.TrimSuffix(strings.TrimPrefix(line, "file '"), "'")
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		combined.Write(content)
	}
	return os.WriteFile(outPath, combined.Bytes(), 0644)
}

func writeSegment(t *testing.T, dir, name, content string, mtime time.Time) grouping.Segment {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write segment %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("Failed to set times on %s: %v", name, err)
	}
	return grouping.NewSegment(path)
}

func TestMergeSingleSegmentCopies(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2025, 4, 19, 10, 0, 0, 0, time.Local)
	seg := writeSegment(t, dir, "20250419100000_000001AC.MP4", "segment-bytes", mtime)
	group := grouping.Group{Segments: []grouping.Segment{seg}}

	fc := &fakeConcat{}
	dest := filepath.Join(dir, "out", OutputName(group))
	outcome, err := NewMerger(fc).Merge(context.Background(), group, dest)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if outcome != OutcomeCopied {
		t.Errorf("Expected copied outcome, got %s", outcome)
	}
	if fc.calls != 0 {
		t.Errorf("Single segment must not invoke the concatenator")
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Output missing: %v", err)
	}
	if string(data) != "segment-bytes" {
		t.Errorf("Copy is not byte-identical: %q", data)
	}

	info, _ := os.Stat(dest)
	if !info.ModTime().Equal(mtime) {
		t.Errorf("Expected source mtime %v, got %v", mtime, info.ModTime())
	}
}

func TestMergeMultiSegmentConcatenates(t *testing.T) {
	dir := t.TempDir()
	early := time.Date(2025, 4, 19, 10, 0, 0, 0, time.Local)
	late := time.Date(2025, 4, 19, 10, 1, 0, 0, time.Local)
	segA := writeSegment(t, dir, "20250419100000_000001AC.MP4", "AAAA", early)
	segB := writeSegment(t, dir, "20250419100100_000002AC.MP4", "BBBB", late)
	group := grouping.Group{Segments: []grouping.Segment{segA, segB}}

	fc := &fakeConcat{}
	dest := filepath.Join(dir, "out", OutputName(group))
	outcome, err := NewMerger(fc).Merge(context.Background(), group, dest)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if outcome != OutcomeMerged {
		t.Errorf("Expected merged outcome, got %s", outcome)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("Output missing: %v", err)
	}
	if string(data) != "AAAABBBB" {
		t.Errorf("Unexpected concatenation result: %q", data)
	}

	// Output times must match the LAST member.
	info, _ := os.Stat(dest)
	if !info.ModTime().Equal(late) {
		t.Errorf("Expected last segment mtime %v, got %v", late, info.ModTime())
	}

	// Manifest lists both members in order and was removed afterwards.
	if len(fc.manifests) != 1 {
		t.Fatalf("Expected one manifest, got %d", len(fc.manifests))
	}
	lines := strings.Split(strings.TrimSpace(fc.manifests[0]), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "000001AC") || !strings.Contains(lines[1], "000002AC") {
		t.Errorf("Manifest wrong or out of order: %v", lines)
	}
	assertNoTransients(t, filepath.Join(dir, "out"))
}

func TestMergeSkipsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	seg := writeSegment(t, dir, "20250419100000_000001AC.MP4", "new", time.Now())
	group := grouping.Group{Segments: []grouping.Segment{seg}}

	dest := filepath.Join(dir, OutputName(group))
	if err := os.WriteFile(dest, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to pre-create destination: %v", err)
	}

	outcome, err := NewMerger(&fakeConcat{}).Merge(context.Background(), group, dest)
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("Expected skipped outcome, got %s", outcome)
	}

	data, _ := os.ReadFile(dest)
	if string(data) != "old" {
		t.Errorf("Existing destination was overwritten: %q", data)
	}
}

func TestMergeFailureLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	segA := writeSegment(t, dir, "20250419100000_000001AC.MP4", "AAAA", time.Now())
	segB := writeSegment(t, dir, "20250419100100_000002AC.MP4", "BBBB", time.Now())
	group := grouping.Group{Segments: []grouping.Segment{segA, segB}}

	dest := filepath.Join(dir, "out", OutputName(group))
	_, err := NewMerger(&fakeConcat{fail: true}).Merge(context.Background(), group, dest)
	if err == nil {
		t.Fatal("Expected merge failure")
	}

	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("Failed merge left output at the destination path")
	}
	assertNoTransients(t, filepath.Join(dir, "out"))
}

func TestOutputNameFromTimestamps(t *testing.T) {
	group := grouping.Group{Segments: []grouping.Segment{
		grouping.NewSegment("20250419100000_000001AC.MP4"),
		grouping.NewSegment("20250419100100_000002AC.MP4"),
	}}
	got := OutputName(group)
	want := "20250419100000_20250419100100_000001AC.MP4"
	if got != want {
		t.Errorf("OutputName = %s, want %s", got, want)
	}
}

func TestOutputNameFallsBackToFirstBase(t *testing.T) {
	group := grouping.Group{Segments: []grouping.Segment{
		grouping.NewSegment("holiday_footage.MP4"),
	}}
	if got := OutputName(group); got != "holiday_footage.MP4" {
		t.Errorf("OutputName = %s, want original base name", got)
	}
}

func TestFileTimesMatchSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "20250419195800_000001AC.MP4")
	want := time.Date(2025, 4, 19, 19, 58, 0, 0, time.Local)
	if err := os.WriteFile(path, []byte("AAAA"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, want, want); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	atime, mtime := fileTimes(info)
	if !mtime.Equal(want) {
		t.Errorf("mtime = %v, want %v", mtime, want)
	}
	if !atime.Equal(want) {
		t.Errorf("atime = %v, want %v", atime, want)
	}
}

// assertNoTransients verifies no concat manifests or hidden temp outputs
// survived in dir.
func assertNoTransients(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "concat_") || strings.HasSuffix(name, ".tmp") {
			t.Errorf("Transient file survived: %s", name)
		}
	}
}
