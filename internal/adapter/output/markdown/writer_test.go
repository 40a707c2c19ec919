package markdown_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzalgo/autoreview/internal/adapter/output/markdown"
	"github.com/zigzalgo/autoreview/internal/domain"
)

func fixedClock() string { return "20240101-000000" }

func sampleArtifact() markdown.Artifact {
	return markdown.Artifact{
		Repository: "myrepo",
		RunID:      "abc123",
		Annotations: []domain.Annotation{
			{Path: "/repo/src/foo.py", Position: domain.IntPtr(3), Body: "division by zero"},
			{Path: "/repo/src/bar.py", Line: domain.IntPtr(42), Side: domain.SideRight, Body: "leak"},
		},
		Diagnostics: []string{"unmatched snippet in /repo/src/baz.py"},
	}
}

func TestRender_GroupsByPath(t *testing.T) {
	var buf bytes.Buffer
	markdown.Render(&buf, sampleArtifact())
	report := buf.String()

	assert.Contains(t, report, "# Review Report")
	assert.Contains(t, report, "## /repo/src/bar.py")
	assert.Contains(t, report, "## /repo/src/foo.py")
	assert.Contains(t, report, "Position 3: division by zero")
	assert.Contains(t, report, "Line 42 (right): leak")
	assert.Contains(t, report, "## Diagnostics")
	assert.Contains(t, report, "unmatched snippet")

	// Paths are sorted, so bar.py precedes foo.py.
	assert.Less(t, strings.Index(report, "bar.py"), strings.Index(report, "foo.py"))
}

func TestRender_NoAnnotations(t *testing.T) {
	var buf bytes.Buffer
	markdown.Render(&buf, markdown.Artifact{Repository: "myrepo"})

	assert.Contains(t, buf.String(), "No issues reported.")
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	writer := markdown.NewWriter(fixedClock)

	artifact := sampleArtifact()
	artifact.OutputDir = dir

	path, err := writer.Write(context.Background(), artifact)
	require.NoError(t, err)
	assert.Contains(t, path, "myrepo_abc123_20240101-000000.md")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Review Report")
}
