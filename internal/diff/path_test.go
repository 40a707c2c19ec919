package diff_test

import (
	"errors"
	"testing"

	"github.com/zigzalgo/autoreview/internal/diff"
	"github.com/zigzalgo/autoreview/internal/domain"
)

func TestSourcePath(t *testing.T) {
	path, err := diff.SourcePath("diff --git a/src/foo.py b/src/foo.py")
	if err != nil {
		t.Fatalf("SourcePath() error = %v", err)
	}
	if path != "src/foo.py" {
		t.Errorf("expected src/foo.py, got %q", path)
	}
}

func TestResolve(t *testing.T) {
	resolved, err := diff.Resolve("diff --git a/src/foo.py b/src/foo.py", "/repo")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if resolved != "/repo/src/foo.py" {
		t.Errorf("expected /repo/src/foo.py, got %q", resolved)
	}
}

func TestSourcePath_TooFewTokens(t *testing.T) {
	_, err := diff.SourcePath("diff --git a")
	var malformed *domain.MalformedHeaderError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
}

func TestSourcePath_MissingPrefix(t *testing.T) {
	_, err := diff.SourcePath("diff --git src/foo.py src/foo.py")
	var malformed *domain.MalformedHeaderError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
}

func TestSourcePath_EmptyAfterPrefix(t *testing.T) {
	_, err := diff.SourcePath("diff --git a/ b/")
	var malformed *domain.MalformedHeaderError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedHeaderError, got %v", err)
	}
}
