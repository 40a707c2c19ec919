package diff

import (
	"strconv"
	"strings"
)

// Range is a half-open interval [Start, Start+Count) of 1-based line
// numbers in the post-change file covered by one hunk.
type Range struct {
	Start int
	Count int
}

// Contains reports whether the 1-based line falls inside the range.
func (r Range) Contains(line int) bool {
	return line >= r.Start && line < r.Start+r.Count
}

// NewFileRanges scans a segment body for "@@ -a,b +c,d @@" hunk headers
// and returns the new-file ranges they declare. Malformed headers are
// skipped. Used only for optional line-number validation; the rest of the
// pipeline treats hunk contents as opaque text.
func NewFileRanges(body []string) []Range {
	var ranges []Range
	for _, line := range body {
		if !strings.HasPrefix(line, "@@") {
			continue
		}
		if r, ok := parseNewRange(line); ok {
			ranges = append(ranges, r)
		}
	}
	return ranges
}

// parseNewRange extracts the +start,count portion of a hunk header.
func parseNewRange(line string) (Range, bool) {
	parts := strings.Split(line, "@@")
	if len(parts) < 2 {
		return Range{}, false
	}

	for _, field := range strings.Fields(strings.TrimSpace(parts[1])) {
		if !strings.HasPrefix(field, "+") {
			continue
		}
		spec := strings.TrimPrefix(field, "+")
		start, count := parseRange(spec)
		if start <= 0 {
			return Range{}, false
		}
		return Range{Start: start, Count: count}, true
	}

	return Range{}, false
}

// parseRange parses "start,count" or bare "start" (count defaults to 1).
func parseRange(s string) (start, count int) {
	if idx := strings.Index(s, ","); idx >= 0 {
		start, _ = strconv.Atoi(s[:idx])
		count, _ = strconv.Atoi(s[idx+1:])
	} else {
		start, _ = strconv.Atoi(s)
		count = 1
	}
	return
}
