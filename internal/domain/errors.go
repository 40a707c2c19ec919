package domain

import "fmt"

// MalformedHeaderError indicates a diff segment header that cannot be
// resolved to a source path (too few tokens, or the path token lacks the
// a/ or b/ prefix). Fatal for the segment that produced it.
type MalformedHeaderError struct {
	Header string
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed diff header %q: %s", e.Header, e.Reason)
}

// NotFoundError indicates the resolved source file could not be read.
// Fatal for the segment that produced it.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("source file not found: %s", e.Path)
}

// Unwrap exposes the underlying filesystem error.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// EngineError indicates the analysis engine returned unusable data
// (malformed records, unparseable output, or an empty response where one
// was required). Fatal for the segment that produced it.
type EngineError struct {
	Engine string
	Reason string
	Err    error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine %s: %s: %v", e.Engine, e.Reason, e.Err)
	}
	return fmt.Sprintf("engine %s: %s", e.Engine, e.Reason)
}

// Unwrap exposes the underlying transport or parse error.
func (e *EngineError) Unwrap() error {
	return e.Err
}
