// Package cmd provides the CLI commands for scope.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scope/internal/classify"
	"github.com/Aman-CERP/scope/internal/config"
	"github.com/Aman-CERP/scope/internal/crawler"
	scerrors "github.com/Aman-CERP/scope/internal/errors"
	"github.com/Aman-CERP/scope/internal/lock"
	"github.com/Aman-CERP/scope/internal/logging"
	"github.com/Aman-CERP/scope/internal/output"
	"github.com/Aman-CERP/scope/internal/pipeline"
	"github.com/Aman-CERP/scope/internal/preflight"
	"github.com/Aman-CERP/scope/internal/profiling"
	"github.com/Aman-CERP/scope/internal/sink"
	"github.com/Aman-CERP/scope/pkg/version"
)

// Debug logging and profiling flags
var (
	debugMode      bool
	loggingCleanup func()
	profileOpts    profiling.Options
	profileSession *profiling.Session
)

// deps holds the collaborators that reach outside the process.
// Nil fields select the real implementations.
type deps struct {
	runner   classify.Runner
	detector preflight.IndexerDetector
	newSink  pipeline.SinkFactory
}

type rootFlags struct {
	classifier   string
	inspect      bool
	verbose      bool
	jobs         int
	exclude      string
	outputDir    string
	gitignore    bool
	probeTimeout time.Duration
}

// NewRootCmd creates the root command for the scope CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(deps{})
}

func newRootCmd(d deps) *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "scope [flags] [dir...]",
		Short: "Feed a source tree to cscope and ctags",
		Long: `scope walks one or more directory trees, decides which files are
source code and streams their paths to cscope and ctags, which build
their databases in the output directory.

Files are picked by extension first; anything else is classified by
MIME type through file(1) or xdg-mime. Paths containing an exclude
substring are skipped along with their whole subtree.`,
		Example: `  # Index the current directory
  scope

  # Show every decision without starting the indexers
  scope --inspect --verbose src

  # List the classifiers and which one would be used
  scope --classifier list`,
		Args:          cobra.ArbitraryArgs,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScope(cmd, d, f, args)
		},
	}

	cmd.SetVersionTemplate("scope version {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return scerrors.ValidationError(err.Error(), err).
			WithSuggestion("run 'scope --help' for usage")
	})

	flags := cmd.Flags()
	flags.StringVarP(&f.classifier, "classifier", "c", "", `Classifier to use, or "list" to show them`)
	flags.BoolVarP(&f.inspect, "inspect", "i", false, "Print decisions instead of indexing")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Print every included path")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "Number of classification workers (default: number of CPUs)")
	flags.StringVarP(&f.exclude, "exclude", "x", "", "Comma-separated substrings to exclude, added to /.git/,/.svn/,/CVS/")
	flags.StringVarP(&f.outputDir, "output-dir", "o", "", `Directory for the tag databases (default ".")`)
	flags.BoolVar(&f.gitignore, "gitignore", false, "Also skip paths ignored by .gitignore files")
	flags.DurationVar(&f.probeTimeout, "probe-timeout", 0, "Time limit for one classifier call (0 means none)")

	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging to ~/.scope/logs/")
	cmd.PersistentFlags().StringVar(&profileOpts.CPU, "profile-cpu", "", "Write CPU profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Heap, "profile-mem", "", "Write memory profile to file")
	cmd.PersistentFlags().StringVar(&profileOpts.Trace, "profile-trace", "", "Write execution trace to file")

	cmd.PersistentPreRunE = startLoggingAndProfiling
	cmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return shutdown()
	}

	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newDoctorCmd(d))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	err := NewRootCmd().Execute()
	// PersistentPostRunE is skipped when a command fails.
	if serr := shutdown(); err == nil {
		err = serr
	}
	return err
}

func startLoggingAndProfiling(cmd *cobra.Command, _ []string) error {
	if debugMode {
		logger, cleanup, err := logging.Setup(logging.DebugConfig())
		if err != nil {
			return scerrors.InternalError("failed to set up debug logging", err)
		}
		loggingCleanup = cleanup
		slog.SetDefault(logger)
		slog.Info("debug logging enabled",
			slog.String("log_file", logging.DefaultLogPath()),
			slog.String("version", version.Version))
	} else {
		slog.SetDefault(logging.NewConsole(cmd.ErrOrStderr(), "warn"))
	}

	if profileOpts.Enabled() {
		s, err := profiling.Start(profileOpts)
		if err != nil {
			return scerrors.InternalError("failed to start profiling", err)
		}
		profileSession = s
	}
	return nil
}

// shutdown stops profiling and debug logging. It is safe to call twice.
func shutdown() error {
	var err error
	if profileSession != nil {
		err = profileSession.Stop()
		profileSession = nil
	}
	if loggingCleanup != nil {
		slog.Info("debug logging stopped")
		loggingCleanup()
		loggingCleanup = nil
	}
	return err
}

// applyLogLevel moves console diagnostics to the configured level.
// Debug logging keeps its file handler.
func applyLogLevel(cmd *cobra.Command, cfg *config.Config) {
	if !debugMode {
		slog.SetDefault(logging.NewConsole(cmd.ErrOrStderr(), cfg.LogLevel))
	}
}

// loadConfig layers the flags that were set on top of the configuration files
// and environment.
func loadConfig(cmd *cobra.Command, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("classifier") {
		cfg.Classifier = f.classifier
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, crawler.ParseList(f.exclude)...)
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = f.outputDir
	}
	if flags.Changed("gitignore") {
		cfg.Gitignore = f.gitignore
	}
	if flags.Changed("probe-timeout") {
		cfg.ProbeTimeout = f.probeTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScope(cmd *cobra.Command, d deps, f *rootFlags, args []string) error {
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	applyLogLevel(cmd, cfg)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := d.runner
	if runner == nil {
		runner = classify.NewExecRunner(cfg.ProbeTimeout)
	}

	if cfg.Classifier == classify.ListName {
		printListing(ctx, cmd.OutOrStdout(), runner)
		return nil
	}

	reg := classify.New(ctx, cfg.Classifier, classify.WithRunner(runner))
	if !reg.Usable(ctx) {
		return scerrors.NoClassifierError(cfg.Classifier)
	}

	roots := args
	if len(roots) == 0 {
		roots = []string{"."}
	}

	opts := pipeline.Options{
		Roots:      roots,
		Excludes:   crawler.Merge(cfg.Exclude),
		Jobs:       cfg.Jobs,
		Verbose:    f.verbose,
		Gitignore:  cfg.Gitignore,
		DedupeSize: cfg.DedupeCacheSize,
		OutputDir:  cfg.OutputDir,
	}

	out := output.New(cmd.OutOrStdout())

	if f.inspect {
		opts.Mode = pipeline.ModeInspect
		out.Header("Classifier", reg.Name(ctx))
	} else {
		runLock := lock.New(cfg.OutputDir)
		if err := runLock.TryLock(); err != nil {
			return err
		}
		defer func() { _ = runLock.Unlock() }()
		logger.Debug("run lock acquired", slog.String("path", runLock.Path()))

		opts.SkipFiles = []string{runLock.Path()}

		opts.Backends = detectBackends(ctx, d, cfg, logger)
	}

	popts := []pipeline.Option{pipeline.WithLogger(logger)}
	if d.newSink != nil {
		popts = append(popts, pipeline.WithSinkFactory(d.newSink))
	}

	res, err := pipeline.New(reg, out, popts...).Run(ctx, opts)
	if err != nil {
		return err
	}

	if f.verbose {
		printSummary(cmd.ErrOrStderr(), res)
	}
	return nil
}

// printListing prints every classifier with its marker.
func printListing(ctx context.Context, w io.Writer, runner classify.Runner) {
	out := output.New(w)
	reg := classify.New(ctx, "", classify.WithRunner(runner))
	for _, e := range reg.Entries(ctx) {
		out.ListEntry(e.Index, e.Name, e.Marker())
	}
}

// detectBackends finds the enabled indexers. Missing ones are logged; the
// pipeline reports the run as failed when none is left.
func detectBackends(ctx context.Context, d deps, cfg *config.Config, logger *slog.Logger) []sink.Backend {
	var detector preflight.IndexerDetector = sink.NewDetector()
	if d.detector != nil {
		detector = d.detector
	}

	results := detector.Detect(ctx, sink.Selection{
		Cscope: cfg.Indexers.Cscope,
		Ctags:  cfg.Indexers.Ctags,
	})
	for _, r := range results {
		if r.Err != nil {
			logger.Warn("indexer not found",
				slog.String("indexer", r.Name),
				slog.String("error", r.Err.Error()))
			continue
		}
		logger.Debug("indexer found",
			slog.String("indexer", r.Name),
			slog.String("command", r.Backend.Command),
			slog.String("variant", string(r.Backend.Variant)))
	}
	return sink.Found(results)
}

func printSummary(w io.Writer, res pipeline.Result) {
	s := res.Pool
	fmt.Fprintf(w, "%d paths visited: %d included (%d by extension, %d by type), %d excluded\n",
		s.Visited, s.Included(), s.ByExtension, s.ByType, s.Excluded)
	if s.ProbeFailures > 0 || s.DispatchFailures > 0 || res.Crawl.WalkErrors > 0 {
		fmt.Fprintf(w, "%d probe failures, %d write failures, %d unreadable directories\n",
			s.ProbeFailures, s.DispatchFailures, res.Crawl.WalkErrors)
	}
	if s.Duplicates > 0 {
		fmt.Fprintf(w, "%d duplicate paths skipped\n", s.Duplicates)
	}
	if len(res.Backends) > 0 {
		fmt.Fprintf(w, "indexers: %v\n", res.Backends)
	}
}
