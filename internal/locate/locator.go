// Package locate translates issue reports into positioned annotations
// against a single diff segment.
package locate

import (
	"strings"

	"github.com/zigzalgo/autoreview/internal/diff"
	"github.com/zigzalgo/autoreview/internal/domain"
)

// MatchPolicy selects how snippet text is compared against diff body lines.
type MatchPolicy int

const (
	// MatchSubstring accepts any body line containing the snippet as a
	// substring. This is forgiving but can anchor a short snippet to an
	// unrelated line.
	MatchSubstring MatchPolicy = iota
	// MatchTrimmedLine requires the snippet to equal a whole body line
	// after trimming whitespace and the +/-/space diff marker.
	MatchTrimmedLine
)

// DefaultHeaderSkipCount skips the ---, +++ and first @@ metadata lines
// that precede content in a git diff segment body.
const DefaultHeaderSkipCount = 3

// Options control the matching behaviour of a Locator.
type Options struct {
	// HeaderSkipCount is the number of leading body lines excluded from
	// snippet scanning. Zero means scan from the first body line; callers
	// wanting the git default should use DefaultHeaderSkipCount.
	HeaderSkipCount int

	// Policy selects substring containment or whole-trimmed-line equality.
	Policy MatchPolicy

	// ValidateLines drops line-number issues that fall outside every hunk's
	// new-file range instead of passing them through. Off by default: a
	// downstream review system may still accept them, and hunk parsing is
	// best-effort.
	ValidateLines bool
}

// Result carries the annotations produced for one segment plus the
// diagnostics for issues that could not be anchored.
type Result struct {
	Annotations []domain.Annotation
	Unmatched   []domain.UnmatchedSnippetWarning
	OutOfHunk   []domain.OutOfHunkWarning
}

// Locator anchors issues inside diff segments.
type Locator struct {
	opts Options
}

// New constructs a Locator with the supplied options.
func New(opts Options) *Locator {
	if opts.HeaderSkipCount < 0 {
		opts.HeaderSkipCount = 0
	}
	return &Locator{opts: opts}
}

// Locate produces one annotation per anchorable issue, in issue order.
//
// Snippet issues scan the body from HeaderSkipCount onward and anchor to
// the first matching line (earliest-line tie-break); the resulting
// position is the zero-based index within the body. Unmatched snippets
// produce no annotation and are reported in Result.Unmatched.
//
// Line issues pass their line number through verbatim as a RIGHT-side
// line anchor, unless ValidateLines is set and the line falls outside
// every hunk range, in which case the issue is dropped with a diagnostic.
//
// Output is deterministic for a fixed segment and issue ordering: the
// scan walks the body slice in index order with no map iteration.
func (l *Locator) Locate(segment domain.DiffSegment, issues []domain.Issue) Result {
	var res Result
	if len(issues) == 0 {
		return res
	}

	var ranges []diff.Range
	if l.opts.ValidateLines {
		ranges = diff.NewFileRanges(segment.Body)
	}

	for _, issue := range issues {
		switch issue.Kind {
		case domain.IssueSnippet:
			if pos, ok := l.findSnippet(segment.Body, issue.Snippet); ok {
				res.Annotations = append(res.Annotations, domain.Annotation{
					Path:     segment.SourcePath,
					Position: domain.IntPtr(pos),
					Body:     issue.Summary,
				})
			} else {
				res.Unmatched = append(res.Unmatched, domain.UnmatchedSnippetWarning{
					Path:    segment.SourcePath,
					Snippet: issue.Snippet,
					Summary: issue.Summary,
				})
			}

		case domain.IssueLine:
			if l.opts.ValidateLines && !lineInRanges(ranges, issue.Line) {
				res.OutOfHunk = append(res.OutOfHunk, domain.OutOfHunkWarning{
					Path: segment.SourcePath,
					Line: issue.Line,
				})
				continue
			}
			res.Annotations = append(res.Annotations, domain.Annotation{
				Path: segment.SourcePath,
				Line: domain.IntPtr(issue.Line),
				Side: domain.SideRight,
				Body: issue.Summary,
			})
		}
	}

	return res
}

// findSnippet returns the zero-based body index of the first line
// matching the snippet under the configured policy.
func (l *Locator) findSnippet(body []string, snippet string) (int, bool) {
	if snippet == "" {
		return 0, false
	}

	start := l.opts.HeaderSkipCount
	if start > len(body) {
		return 0, false
	}

	for i := start; i < len(body); i++ {
		if l.matches(body[i], snippet) {
			return i, true
		}
	}
	return 0, false
}

func (l *Locator) matches(line, snippet string) bool {
	switch l.opts.Policy {
	case MatchTrimmedLine:
		return strings.TrimSpace(stripMarker(line)) == strings.TrimSpace(snippet)
	default:
		return strings.Contains(line, snippet)
	}
}

// stripMarker removes the leading +, - or space diff marker, if present.
func stripMarker(line string) string {
	if len(line) == 0 {
		return line
	}
	switch line[0] {
	case '+', '-', ' ':
		return line[1:]
	}
	return line
}

func lineInRanges(ranges []diff.Range, line int) bool {
	for _, r := range ranges {
		if r.Contains(line) {
			return true
		}
	}
	return false
}
