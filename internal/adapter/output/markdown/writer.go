// Package markdown renders review annotations into per-run Markdown
// reports grouped by file.
package markdown

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/zigzalgo/autoreview/internal/domain"
)

type clock func() string

// Artifact bundles annotations with their output destination.
type Artifact struct {
	OutputDir   string
	Repository  string
	RunID       string
	Annotations []domain.Annotation
	Diagnostics []string
}

// Writer renders review runs into Markdown files.
type Writer struct {
	now clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(now clock) *Writer {
	return &Writer{now: now}
}

// Write persists a Markdown artifact to disk and returns the file path.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	if err := os.MkdirAll(artifact.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_%s_%s.md",
		sanitise(artifact.Repository),
		sanitise(artifact.RunID),
		w.now(),
	)
	path := filepath.Join(artifact.OutputDir, filename)

	var builder strings.Builder
	Render(&builder, artifact)
	if err := os.WriteFile(path, []byte(builder.String()), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

// Render writes the report body. Annotations are grouped by path and
// ordered by anchor so the report is stable across runs.
func Render(w io.Writer, artifact Artifact) {
	caser := cases.Title(language.English)

	fmt.Fprintf(w, "# Review Report\n\n")
	if artifact.Repository != "" {
		fmt.Fprintf(w, "- Repository: %s\n", artifact.Repository)
	}
	if artifact.RunID != "" {
		fmt.Fprintf(w, "- Run: %s\n", artifact.RunID)
	}
	fmt.Fprintf(w, "- Annotations: %d\n\n", len(artifact.Annotations))

	if len(artifact.Annotations) == 0 {
		fmt.Fprintf(w, "No issues reported.\n")
	} else {
		byPath := groupByPath(artifact.Annotations)
		paths := make([]string, 0, len(byPath))
		for path := range byPath {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			fmt.Fprintf(w, "## %s\n\n", path)
			for _, annotation := range byPath[path] {
				fmt.Fprintf(w, "- %s: %s\n", anchorLabel(caser, annotation), annotation.Body)
			}
			fmt.Fprintf(w, "\n")
		}
	}

	if len(artifact.Diagnostics) > 0 {
		fmt.Fprintf(w, "## Diagnostics\n\n")
		for _, diagnostic := range artifact.Diagnostics {
			fmt.Fprintf(w, "- %s\n", diagnostic)
		}
	}
}

func groupByPath(annotations []domain.Annotation) map[string][]domain.Annotation {
	byPath := make(map[string][]domain.Annotation)
	for _, annotation := range annotations {
		byPath[annotation.Path] = append(byPath[annotation.Path], annotation)
	}
	return byPath
}

func anchorLabel(caser cases.Caser, annotation domain.Annotation) string {
	switch {
	case annotation.HasPosition():
		return fmt.Sprintf("%s %d", caser.String("position"), *annotation.Position)
	case annotation.HasLine():
		side := strings.ToLower(string(annotation.Side))
		return fmt.Sprintf("%s %d (%s)", caser.String("line"), *annotation.Line, side)
	default:
		return caser.String("file")
	}
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, string(filepath.Separator), "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
