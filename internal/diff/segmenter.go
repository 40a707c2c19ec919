package diff

import (
	"strings"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// DefaultSeparatorPrefix matches the first token of git-style diff headers
// ("diff --git a/<path> b/<path>").
const DefaultSeparatorPrefix = "diff"

// Segment partitions lines into per-file diff segments. A line starting
// with separatorPrefix opens a new segment and becomes its header; all
// other lines are appended to the currently open segment's body. Lines
// seen before the first separator are dropped. Consecutive separators
// yield segments with empty bodies, which are preserved (a rename-only
// diff has a header and no hunks).
//
// The partition is lossless apart from the dropped preamble: every
// remaining input line lands in exactly one segment, in input order.
// Single pass, no lookahead.
func Segment(lines []string, separatorPrefix string) []domain.DiffSegment {
	if separatorPrefix == "" {
		separatorPrefix = DefaultSeparatorPrefix
	}

	var segments []domain.DiffSegment
	open := false
	var current domain.DiffSegment

	for _, line := range lines {
		if strings.HasPrefix(line, separatorPrefix) {
			if open {
				segments = append(segments, current)
			}
			current = domain.DiffSegment{Header: line}
			open = true
			continue
		}
		if !open {
			// No segment started yet; preamble lines are discarded.
			continue
		}
		current.Body = append(current.Body, line)
	}

	if open {
		segments = append(segments, current)
	}

	return segments
}

// SplitLines splits raw diff text into lines for Segment, tolerating a
// trailing newline without producing a phantom empty segment line at the
// very end of input.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
