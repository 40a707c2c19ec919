// Package config holds the application configuration model and loader.
package config

// Config represents the full application configuration.
type Config struct {
	Engine        EngineConfig        `yaml:"engine"`
	HTTP          HTTPConfig          `yaml:"http"`
	Locator       LocatorConfig       `yaml:"locator"`
	Review        ReviewConfig        `yaml:"review"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// EngineConfig configures the analysis engine.
type EngineConfig struct {
	// Name selects the engine implementation: "openai" or "static".
	Name      string  `yaml:"name"`
	Model     string  `yaml:"model"`
	APIKey    string  `yaml:"apiKey"`
	MaxTokens int     `yaml:"maxTokens"`
	Seed      *uint64 `yaml:"seed,omitempty"`
}

// HTTPConfig holds engine HTTP client settings.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// LocatorConfig configures snippet-to-position matching.
type LocatorConfig struct {
	// HeaderSkipCount is the number of leading metadata lines of each
	// segment excluded from snippet matching.
	HeaderSkipCount int `yaml:"headerSkipCount"`

	// MatchPolicy is "substring" or "trimmed-line".
	MatchPolicy string `yaml:"matchPolicy"`

	// ValidateLines drops line anchors that fall outside the segment's
	// hunk ranges.
	ValidateLines bool `yaml:"validateLines"`
}

// ReviewConfig configures run behavior.
type ReviewConfig struct {
	RepoRoot       string `yaml:"repoRoot"`
	Concurrency    int    `yaml:"concurrency"`
	SegmentTimeout string `yaml:"segmentTimeout"`
	FailFast       bool   `yaml:"failFast"`
}

// GitConfig configures the diff source.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	BaseRef       string `yaml:"baseRef"`
	TargetRef     string `yaml:"targetRef"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Directory string `yaml:"directory"`
	// Format is "json", "markdown", or "auto" (markdown on a terminal,
	// json when piped).
	Format string `yaml:"format"`
}

// StoreConfig configures the persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}
