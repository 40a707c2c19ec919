// Package json renders review annotations as machine-readable JSON.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zigzalgo/autoreview/internal/domain"
)

// Report is the serialized shape of one review run.
type Report struct {
	RunID       string              `json:"runId,omitempty"`
	Repository  string              `json:"repository,omitempty"`
	Segments    int                 `json:"segments"`
	Succeeded   int                 `json:"succeeded"`
	Annotations []domain.Annotation `json:"annotations"`
	Diagnostics []string            `json:"diagnostics,omitempty"`
}

// Artifact bundles a report with its output destination.
type Artifact struct {
	OutputDir  string
	Repository string
	RunID      string
	Report     Report
}

// Writer persists review reports as JSON files.
type Writer struct {
	now func() string
}

// NewWriter creates a JSON writer with a timestamp supplier.
func NewWriter(now func() string) *Writer {
	return &Writer{now: now}
}

// Write persists a report to disk and returns the file path.
func (w *Writer) Write(ctx context.Context, artifact Artifact) (string, error) {
	outputDir := filepath.Join(artifact.OutputDir, fmt.Sprintf("%s_%s", artifact.Repository, w.now()))
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	filePath := filepath.Join(outputDir, fmt.Sprintf("review-%s.json", artifact.RunID))

	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create json file: %w", err)
	}
	defer file.Close()

	if err := Encode(file, artifact.Report); err != nil {
		return "", err
	}

	return filePath, nil
}

// Encode writes a report to the given writer as indented JSON.
// Annotations are emitted as an array even when empty so consumers
// never see null.
func Encode(w io.Writer, report Report) error {
	if report.Annotations == nil {
		report.Annotations = []domain.Annotation{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report to json: %w", err)
	}
	return nil
}
