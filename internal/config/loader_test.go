package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvString(t *testing.T) {
	os.Setenv("TEST_API_KEY", "secret-key-123")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_API_KEY")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_API_KEY}",
			expected: "secret-key-123",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_API_KEY",
			expected: "secret-key-123",
		},
		{
			name:     "expand in middle of string",
			input:    "key:${TEST_API_KEY}:end",
			expected: "key:secret-key-123:end",
		},
		{
			name:     "expand multiple variables",
			input:    "${TEST_API_KEY}:${TEST_PATH}",
			expected: "secret-key-123:/path/to/data",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "static", cfg.Engine.Name)
	assert.Equal(t, 3, cfg.Locator.HeaderSkipCount)
	assert.Equal(t, "substring", cfg.Locator.MatchPolicy)
	assert.False(t, cfg.Locator.ValidateLines)
	assert.Equal(t, 4, cfg.Review.Concurrency)
	assert.Equal(t, "120s", cfg.Review.SegmentTimeout)
	assert.False(t, cfg.Review.FailFast)
	assert.Equal(t, "auto", cfg.Output.Format)
	assert.Equal(t, "60s", cfg.HTTP.Timeout)
	assert.Equal(t, 5, cfg.HTTP.MaxRetries)
	assert.True(t, cfg.Store.Enabled)
	assert.True(t, cfg.Observability.Logging.RedactAPIKeys)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
engine:
  name: openai
  model: gpt-4o-mini
  apiKey: ${AR_TEST_KEY}
locator:
  headerSkipCount: 4
  matchPolicy: trimmed-line
  validateLines: true
review:
  concurrency: 8
  failFast: true
output:
  format: markdown
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ar.yaml"), []byte(content), 0o644))

	os.Setenv("AR_TEST_KEY", "sk-from-env")
	defer os.Unsetenv("AR_TEST_KEY")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Engine.Name)
	assert.Equal(t, "sk-from-env", cfg.Engine.APIKey)
	assert.Equal(t, 4, cfg.Locator.HeaderSkipCount)
	assert.Equal(t, "trimmed-line", cfg.Locator.MatchPolicy)
	assert.True(t, cfg.Locator.ValidateLines)
	assert.Equal(t, 8, cfg.Review.Concurrency)
	assert.True(t, cfg.Review.FailFast)
	assert.Equal(t, "markdown", cfg.Output.Format)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AR_ENGINE_NAME", "openai")
	t.Setenv("AR_ENGINE_APIKEY", "sk-env-123")
	t.Setenv("AR_REVIEW_REPOROOT", "/checkout")
	t.Setenv("AR_GIT_BASEREF", "develop")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Engine.Name)
	assert.Equal(t, "sk-env-123", cfg.Engine.APIKey)
	assert.Equal(t, "/checkout", cfg.Review.RepoRoot)
	assert.Equal(t, "develop", cfg.Git.BaseRef)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	content := `
engine:
  name: openai
  apiKey: sk-from-file
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ar.yaml"), []byte(content), 0o644))
	t.Setenv("AR_ENGINE_APIKEY", "sk-from-env")

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "sk-from-env", cfg.Engine.APIKey)
}

func TestLoad_InvalidMatchPolicy(t *testing.T) {
	dir := t.TempDir()
	content := `
locator:
  matchPolicy: fuzzy
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ar.yaml"), []byte(content), 0o644))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "matchPolicy")
}

func TestLoad_InvalidOutputFormat(t *testing.T) {
	dir := t.TempDir()
	content := `
output:
  format: xml
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ar.yaml"), []byte(content), 0o644))

	_, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output.format")
}
