// Package cli wires the cobra command tree for the ar binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	jsonout "github.com/zigzalgo/autoreview/internal/adapter/output/json"
	"github.com/zigzalgo/autoreview/internal/adapter/output/markdown"
	"github.com/zigzalgo/autoreview/internal/diff"
	"github.com/zigzalgo/autoreview/internal/store"
	"github.com/zigzalgo/autoreview/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no
// further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Runner defines the dependency required to run a review.
type Runner interface {
	Run(ctx context.Context, req review.Request) (review.Result, error)
}

// DiffSource renders diff text from a repository checkout.
type DiffSource interface {
	DiffLines(ctx context.Context, baseRef, targetRef string, includeUncommitted bool) ([]string, error)
	CurrentBranch(ctx context.Context) (string, error)
}

// HistoryReader lists past runs from the history store.
type HistoryReader interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetAnnotationsByRun(ctx context.Context, runID string) ([]store.AnnotationRecord, error)
}

// Arguments encapsulates IO streams injected from the host process.
type Arguments struct {
	InReader  io.Reader
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Defaults carries config-derived fallbacks for review flags.
type Defaults struct {
	RepoRoot       string
	OutputDir      string
	OutputFormat   string
	Concurrency    int
	SegmentTimeout time.Duration
	FailFast       bool
	BaseRef        string
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Runner     Runner
	DiffSource DiffSource    // Optional: required for review branch
	History    HistoryReader // Optional: required for runs
	Args       Arguments
	Defaults   Defaults
	Version    string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "ar",
		Short: "Diff-driven code review CLI",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	inReader := deps.Args.InReader
	if inReader == nil {
		inReader = os.Stdin
	}
	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Run a code review",
	}
	reviewCmd.AddCommand(diffCommand(deps.Runner, inReader, deps.Defaults))
	reviewCmd.AddCommand(branchCommand(deps.Runner, deps.DiffSource, deps.Defaults))
	root.AddCommand(reviewCmd)
	root.AddCommand(runsCommand(deps.History))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

// reviewFlags are the shared options of the review subcommands.
type reviewFlags struct {
	repoRoot       string
	failFast       bool
	concurrency    int
	segmentTimeout time.Duration
	outputDir      string
	format         string
	repository     string
}

func addReviewFlags(cmd *cobra.Command, flags *reviewFlags, defaults Defaults) {
	outputDir := defaults.OutputDir
	format := defaults.OutputFormat
	if format == "" {
		format = "json"
	}
	concurrency := defaults.Concurrency
	if concurrency == 0 {
		concurrency = 4
	}

	cmd.Flags().StringVar(&flags.repoRoot, "repo-root", defaults.RepoRoot, "Repository checkout the diff paths resolve against")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", defaults.FailFast, "Abort the run on the first segment error")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", concurrency, "Maximum segments analyzed in parallel")
	cmd.Flags().DurationVar(&flags.segmentTimeout, "segment-timeout", defaults.SegmentTimeout, "Per-segment engine timeout (0 disables)")
	cmd.Flags().StringVar(&flags.outputDir, "output", outputDir, "Directory to write the report (empty writes to stdout)")
	cmd.Flags().StringVar(&flags.format, "format", format, "Report format: json, markdown, or auto (markdown on a terminal)")
	cmd.Flags().StringVar(&flags.repository, "repository", "", "Optional repository name for report filenames")
}

func diffCommand(runner Runner, inReader io.Reader, defaults Defaults) *cobra.Command {
	var flags reviewFlags

	cmd := &cobra.Command{
		Use:   "diff [file]",
		Short: "Review a unified diff from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return errors.New("review runner is not configured")
			}

			var text []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				text, err = os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("read diff file: %w", err)
				}
			} else {
				text, err = io.ReadAll(inReader)
				if err != nil {
					return fmt.Errorf("read diff from stdin: %w", err)
				}
			}

			return runReview(cmd, runner, diff.SplitLines(string(text)), flags)
		},
	}

	addReviewFlags(cmd, &flags, defaults)
	return cmd
}

func branchCommand(runner Runner, source DiffSource, defaults Defaults) *cobra.Command {
	var flags reviewFlags
	var baseRef string
	var targetRef string
	var includeUncommitted bool
	var detectTarget bool

	base := defaults.BaseRef
	if base == "" {
		base = "main"
	}

	cmd := &cobra.Command{
		Use:   "branch [target]",
		Short: "Review a branch against a base reference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runner == nil {
				return errors.New("review runner is not configured")
			}
			if source == nil {
				return errors.New("git diff source is not configured")
			}

			if len(args) > 0 {
				targetRef = args[0]
			}
			ctx := cmd.Context()
			if targetRef == "" && detectTarget {
				resolved, err := source.CurrentBranch(ctx)
				if err != nil {
					return fmt.Errorf("detect target branch: %w", err)
				}
				targetRef = resolved
			}
			if targetRef == "" {
				return fmt.Errorf("target branch not specified; pass as an argument, use --target, or disable --detect-target")
			}

			lines, err := source.DiffLines(ctx, baseRef, targetRef, includeUncommitted)
			if err != nil {
				return fmt.Errorf("render diff: %w", err)
			}

			return runReview(cmd, runner, lines, flags)
		},
	}

	cmd.Flags().StringVar(&baseRef, "base", base, "Base reference to diff against")
	cmd.Flags().StringVar(&targetRef, "target", "", "Target branch to review (overrides positional)")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", false, "Include uncommitted changes on the target branch")
	cmd.Flags().BoolVar(&detectTarget, "detect-target", true, "Automatically detect the checked out branch when no target is provided")
	addReviewFlags(cmd, &flags, defaults)
	return cmd
}

func runsCommand(history HistoryReader) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past review runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if history == nil {
				return errors.New("run history store is not configured")
			}
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if runID != "" {
				annotations, err := history.GetAnnotationsByRun(ctx, runID)
				if err != nil {
					return err
				}
				for _, a := range annotations {
					switch {
					case a.Position != nil:
						fmt.Fprintf(out, "%s position %d: %s\n", a.Path, *a.Position, a.Body)
					case a.Line != nil:
						fmt.Fprintf(out, "%s line %d (%s): %s\n", a.Path, *a.Line, a.Side, a.Body)
					default:
						fmt.Fprintf(out, "%s: %s\n", a.Path, a.Body)
					}
				}
				return nil
			}

			runs, err := history.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			for _, run := range runs {
				fmt.Fprintf(out, "%s  %s  %s  %d/%d segments\n",
					run.RunID,
					run.Timestamp.Format(time.RFC3339),
					run.RepoRoot,
					run.Succeeded,
					run.Segments,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "Show the annotations of one run instead of listing")
	return cmd
}

// runReview executes the pipeline and renders the result per flags.
// Segment failures are reported on stderr; the command only errors when
// the run as a whole failed.
func runReview(cmd *cobra.Command, runner Runner, lines []string, flags reviewFlags) error {
	result, err := runner.Run(cmd.Context(), review.Request{
		DiffLines:      lines,
		RepoRoot:       flags.repoRoot,
		FailFast:       flags.failFast,
		Concurrency:    flags.concurrency,
		SegmentTimeout: flags.segmentTimeout,
	})
	if err != nil {
		return err
	}

	for _, diagnostic := range result.Diagnostics() {
		fmt.Fprintln(cmd.ErrOrStderr(), diagnostic)
	}

	return writeReport(cmd, result, flags)
}

func writeReport(cmd *cobra.Command, result review.Result, flags reviewFlags) error {
	timestamp := func() string { return time.Now().Format("20060102-150405") }

	format := flags.format
	if format == "auto" {
		format = "json"
		if review.IsOutputTerminal() {
			format = "markdown"
		}
	}

	switch format {
	case "markdown":
		artifact := markdown.Artifact{
			OutputDir:   flags.outputDir,
			Repository:  flags.repository,
			Annotations: result.Annotations,
			Diagnostics: result.Diagnostics(),
		}
		if flags.outputDir == "" {
			markdown.Render(cmd.OutOrStdout(), artifact)
			return nil
		}
		path, err := markdown.NewWriter(timestamp).Write(cmd.Context(), artifact)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	case "json", "":
		report := jsonout.Report{
			Segments:    result.Segments,
			Succeeded:   result.Succeeded,
			Annotations: result.Annotations,
			Diagnostics: result.Diagnostics(),
		}
		if flags.outputDir == "" {
			return jsonout.Encode(cmd.OutOrStdout(), report)
		}
		path, err := jsonout.NewWriter(timestamp).Write(cmd.Context(), jsonout.Artifact{
			OutputDir:  flags.outputDir,
			Repository: flags.repository,
			RunID:      "report",
			Report:     report,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
