package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/zigzalgo/autoreview/internal/adapter/cli"
	enginehttp "github.com/zigzalgo/autoreview/internal/adapter/engine/http"
	"github.com/zigzalgo/autoreview/internal/adapter/engine/openai"
	"github.com/zigzalgo/autoreview/internal/adapter/engine/static"
	"github.com/zigzalgo/autoreview/internal/adapter/git"
	"github.com/zigzalgo/autoreview/internal/adapter/observability"
	"github.com/zigzalgo/autoreview/internal/adapter/repository"
	storeAdapter "github.com/zigzalgo/autoreview/internal/adapter/store"
	"github.com/zigzalgo/autoreview/internal/adapter/store/sqlite"
	"github.com/zigzalgo/autoreview/internal/config"
	"github.com/zigzalgo/autoreview/internal/locate"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
	"github.com/zigzalgo/autoreview/internal/version"
)

func main() {
	if err := run(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "ar",
		EnvPrefix:   "AR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoRoot := cfg.Review.RepoRoot
	if repoRoot == "" {
		repoRoot = "."
	}
	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = repoRoot
	}

	var engineLogger enginehttp.Logger
	var reviewLogger review.Logger
	if cfg.Observability.Logging.Enabled {
		engineLogger = observability.NewEngineLogger(cfg.Observability.Logging)
		reviewLogger = observability.NewReviewLogger(engineLogger)
	}

	engine, err := buildEngine(cfg, engineLogger)
	if err != nil {
		return err
	}
	defer engine.Close()

	var reviewStore review.Store
	var history cli.HistoryReader
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				reviewStore = storeAdapter.NewBridge(sqliteStore)
				history = sqliteStore
				defer reviewStore.Close()
			}
		}
	}

	locator := locate.New(locate.Options{
		HeaderSkipCount: cfg.Locator.HeaderSkipCount,
		Policy:          matchPolicy(cfg.Locator.MatchPolicy),
		ValidateLines:   cfg.Locator.ValidateLines,
	})

	orchestrator := review.NewOrchestrator(review.OrchestratorDeps{
		Engine:  engine,
		Content: repository.NewLocalRepository(repoRoot),
		Locator: locator,
		Store:   reviewStore,
		Logger:  reviewLogger,
	})

	segmentTimeout := parseDuration(cfg.Review.SegmentTimeout, 120*time.Second)

	root := cli.NewRootCommand(cli.Dependencies{
		Runner:     orchestrator,
		DiffSource: git.NewSource(repoDir),
		History:    history,
		Defaults: cli.Defaults{
			RepoRoot:       repoRoot,
			OutputDir:      "",
			OutputFormat:   resolveFormat(cfg.Output.Format),
			Concurrency:    cfg.Review.Concurrency,
			SegmentTimeout: segmentTimeout,
			FailFast:       cfg.Review.FailFast,
			BaseRef:        cfg.Git.BaseRef,
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// engineCloser unifies the engine implementations behind the port plus
// resource cleanup.
type engineCloser interface {
	review.Engine
	Close() error
}

func buildEngine(cfg config.Config, logger enginehttp.Logger) (engineCloser, error) {
	switch cfg.Engine.Name {
	case "openai":
		if cfg.Engine.APIKey == "" {
			return nil, fmt.Errorf("engine.apiKey is required for the openai engine (set AR_ENGINE_APIKEY or engine.apiKey)")
		}
		retry := enginehttp.RetryConfigFromSettings(
			cfg.HTTP.MaxRetries,
			cfg.HTTP.InitialBackoff,
			cfg.HTTP.MaxBackoff,
			cfg.HTTP.BackoffMultiplier,
		)
		return openai.New(openai.Config{
			APIKey:    cfg.Engine.APIKey,
			Model:     cfg.Engine.Model,
			Seed:      cfg.Engine.Seed,
			MaxTokens: cfg.Engine.MaxTokens,
			Logger:    logger,
			Timeout:   parseDuration(cfg.HTTP.Timeout, 60*time.Second),
			Retry:     &retry,
		}), nil
	case "static", "":
		return static.New(nil), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine.Name)
	}
}

// resolveFormat maps the "auto" format to markdown on a terminal and
// json when output is piped.
func resolveFormat(format string) string {
	if format != "auto" {
		return format
	}
	if review.IsOutputTerminal() {
		return "markdown"
	}
	return "json"
}

func matchPolicy(name string) locate.MatchPolicy {
	if name == "trimmed-line" {
		return locate.MatchTrimmedLine
	}
	return locate.MatchSubstring
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid duration %q, using default %s", value, fallback)
		return fallback
	}
	return parsed
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "ar"))
	}
	return paths
}

// Compile-time interface compliance checks
var _ review.Engine = (*openai.Engine)(nil)
var _ review.Engine = (*static.Engine)(nil)
var _ review.ContentSource = (*repository.LocalRepository)(nil)
var _ review.Store = (*storeAdapter.Bridge)(nil)
var _ cli.DiffSource = (*git.Source)(nil)
var _ cli.HistoryReader = (*sqlite.Store)(nil)
var _ cli.Runner = (*review.Orchestrator)(nil)
