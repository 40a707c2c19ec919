package domain

import "fmt"

// UnmatchedSnippetWarning records a snippet issue whose text matched no
// line of the diff body. Recoverable: the issue is dropped, no annotation
// is produced, and the warning is surfaced in the run summary.
type UnmatchedSnippetWarning struct {
	Path    string
	Snippet string
	Summary string
}

func (w UnmatchedSnippetWarning) String() string {
	return fmt.Sprintf("%s: snippet %q matched no diff line", w.Path, w.Snippet)
}

// OutOfHunkWarning records a line issue whose line number falls outside
// every hunk's new-file range. Only produced when line validation is
// enabled; the issue is dropped.
type OutOfHunkWarning struct {
	Path string
	Line int
}

func (w OutOfHunkWarning) String() string {
	return fmt.Sprintf("%s: line %d is outside every diff hunk", w.Path, w.Line)
}
