package diff_test

import (
	"testing"

	"github.com/zigzalgo/autoreview/internal/diff"
)

func TestNewFileRanges_SingleHunk(t *testing.T) {
	body := []string{
		"--- a/x.go",
		"+++ b/x.go",
		"@@ -10,3 +12,4 @@ func example() {",
		" context",
		"+added",
	}

	ranges := diff.NewFileRanges(body)
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if ranges[0].Start != 12 || ranges[0].Count != 4 {
		t.Errorf("expected [12,+4), got %+v", ranges[0])
	}
}

func TestNewFileRanges_BareStart(t *testing.T) {
	ranges := diff.NewFileRanges([]string{"@@ -1 +1 @@"})
	if len(ranges) != 1 {
		t.Fatalf("expected 1 range, got %d", len(ranges))
	}
	if !ranges[0].Contains(1) {
		t.Error("expected range to contain line 1")
	}
	if ranges[0].Contains(2) {
		t.Error("expected range to exclude line 2")
	}
}

func TestNewFileRanges_SkipsMalformed(t *testing.T) {
	ranges := diff.NewFileRanges([]string{"@@ not a hunk header", "@@ -1,2 +garbage @@"})
	if len(ranges) != 0 {
		t.Errorf("expected malformed headers skipped, got %+v", ranges)
	}
}

func TestRange_Contains(t *testing.T) {
	r := diff.Range{Start: 5, Count: 3}
	for _, line := range []int{5, 6, 7} {
		if !r.Contains(line) {
			t.Errorf("expected range to contain %d", line)
		}
	}
	for _, line := range []int{4, 8} {
		if r.Contains(line) {
			t.Errorf("expected range to exclude %d", line)
		}
	}
}
