package domain

// Side identifies which version of a file a line anchor refers to:
// LEFT is the pre-change file, RIGHT the post-change file.
type Side string

const (
	SideLeft  Side = "LEFT"
	SideRight Side = "RIGHT"
)

// DiffSegment is one file's slice of a concatenated unified diff: the
// separator header line plus every following line up to the next header
// or end of input. Body is never mutated after creation.
type DiffSegment struct {
	Header string
	Body   []string

	// SourcePath is the repository-relative path derived from the header.
	// Empty until path resolution runs.
	SourcePath string
}

// IssueKind discriminates the two issue variants the analysis engine
// can produce.
type IssueKind int

const (
	// IssueSnippet locates the issue by a verbatim code snippet that must
	// appear in the diff body.
	IssueSnippet IssueKind = iota
	// IssueLine locates the issue by an explicit 1-based line number in the
	// post-change file.
	IssueLine
)

// String returns a human-readable name for the issue kind.
func (k IssueKind) String() string {
	switch k {
	case IssueSnippet:
		return "snippet"
	case IssueLine:
		return "line"
	default:
		return "unknown"
	}
}

// Issue is a single report from the analysis engine. Exactly one of
// Snippet or Line is meaningful, selected by Kind. Issues are immutable
// once received from the engine boundary.
type Issue struct {
	Kind    IssueKind
	Summary string
	Snippet string // set when Kind == IssueSnippet
	Line    int    // set when Kind == IssueLine, 1-based
}

// Annotation is a positioned review comment. Exactly one anchor is
// populated: Position for diff-relative anchoring, or Line+Side for
// file-relative anchoring.
type Annotation struct {
	Path     string `json:"path"`
	Position *int   `json:"position,omitempty"` // zero-based offset into the diff body
	Line     *int   `json:"line,omitempty"`     // 1-based line in the resulting file
	Side     Side   `json:"side,omitempty"`
	Body     string `json:"body"`
}

// HasPosition reports whether the annotation carries a diff-relative anchor.
func (a Annotation) HasPosition() bool {
	return a.Position != nil
}

// HasLine reports whether the annotation carries a file-relative anchor.
func (a Annotation) HasLine() bool {
	return a.Line != nil
}

// IntPtr returns a pointer to the given int value.
// Exported for use in tests across packages.
func IntPtr(n int) *int {
	return &n
}
