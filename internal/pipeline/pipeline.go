// Package pipeline wires the crawler, the worker pool and the sink together.
//
// A normal run moves through Idle, Running, Draining and Closed: the sink is
// opened before any worker starts, the crawler closes the queue when its
// walk ends, the workers drain what is left, and only after every worker has
// returned is the sink closed. An inspect run uses the same crawler and pool
// but never opens the sink.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/scope/internal/crawler"
	scerrors "github.com/Aman-CERP/scope/internal/errors"
	"github.com/Aman-CERP/scope/internal/output"
	"github.com/Aman-CERP/scope/internal/pool"
	"github.com/Aman-CERP/scope/internal/queue"
	"github.com/Aman-CERP/scope/internal/sink"
)

// Mode selects between indexing and a dry run.
type Mode int

const (
	// ModeNormal sends included paths to the indexers.
	ModeNormal Mode = iota
	// ModeInspect prints every decision and starts no indexer.
	ModeInspect
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeInspect {
		return "inspect"
	}
	return "normal"
}

// Options describes one run.
type Options struct {
	Roots      []string
	Excludes   []string
	Jobs       int
	Mode       Mode
	Verbose    bool
	Gitignore  bool
	DedupeSize int
	QueueSize  int

	// SkipFiles are files the crawler never queues, such as the run lock.
	SkipFiles []string

	// Backends and OutputDir are used in ModeNormal only.
	Backends  []sink.Backend
	OutputDir string
}

// Sink receives included paths in ModeNormal.
type Sink interface {
	Write(path string) error
	Close() error
}

// SinkFactory opens a Sink for the given backends.
type SinkFactory func(backends []sink.Backend, dir string, logger *slog.Logger) (Sink, error)

// Result reports what a run did.
type Result struct {
	// RunID tags every log record of the run.
	RunID    string
	Crawl    crawler.Stats
	Pool     pool.Stats
	Backends []string
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger shared by every stage.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithSinkFactory replaces the process-backed sink.
func WithSinkFactory(f SinkFactory) Option {
	return func(p *Pipeline) {
		p.newSink = f
	}
}

// Pipeline runs scans against one classifier.
type Pipeline struct {
	classifier pool.Classifier
	out        *output.Writer
	logger     *slog.Logger
	newSink    SinkFactory
}

// New creates a Pipeline that prints to out.
func New(classifier pool.Classifier, out *output.Writer, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		out:        out,
		logger:     slog.Default(),
		newSink:    processSink,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func processSink(backends []sink.Backend, dir string, logger *slog.Logger) (Sink, error) {
	return sink.New(backends, sink.WithDir(dir), sink.WithLogger(logger))
}

// Run executes one scan. Per-file problems are logged and counted; Run fails
// only when the indexers cannot start or ctx ends.
func (p *Pipeline) Run(ctx context.Context, opts Options) (res Result, err error) {
	res.RunID = uuid.NewString()
	logger := p.logger.With(slog.String("run_id", res.RunID))

	var dispatcher pool.Dispatcher

	switch opts.Mode {
	case ModeInspect:
		dispatcher = p.inspectDispatcher(opts.Verbose)
	default:
		s, err := p.newSink(opts.Backends, opts.OutputDir, logger)
		if err != nil {
			return res, scerrors.NoIndexerError(err)
		}
		// Deferred here so the sink closes on every path out of Run, after
		// the pool below has joined.
		defer func() {
			if cerr := s.Close(); cerr != nil {
				logger.Warn("indexer shutdown", slog.String("error", cerr.Error()))
			}
		}()
		if named, ok := s.(interface{ Backends() []string }); ok {
			res.Backends = named.Backends()
		}
		dispatcher = p.sinkDispatcher(s, indexerPath(opts.OutputDir), opts.Verbose)
	}

	dedupe := opts.DedupeSize
	if opts.Mode == ModeInspect {
		// Inspect prints one line per visited path, repeats included.
		dedupe = 0
	}

	c, err := crawler.New(opts.Excludes,
		crawler.WithLogger(logger),
		crawler.WithGitignore(opts.Gitignore),
		crawler.WithSkipFiles(opts.SkipFiles...))
	if err != nil {
		return res, scerrors.InternalError("failed to create crawler", err)
	}

	workers, err := pool.New(p.classifier, dispatcher,
		pool.WithJobs(opts.Jobs),
		pool.WithLogger(logger),
		pool.WithDedupeSize(dedupe))
	if err != nil {
		return res, scerrors.InternalError("failed to create worker pool", err)
	}

	q := queue.New(opts.QueueSize)

	logger.Debug("run starting",
		slog.String("mode", opts.Mode.String()),
		slog.Int("jobs", workers.Jobs()),
		slog.Any("roots", opts.Roots),
		slog.Any("excludes", opts.Excludes))

	var g errgroup.Group
	g.Go(func() error {
		return c.Run(ctx, opts.Roots, q.Producer())
	})
	g.Go(func() error {
		return workers.Run(ctx, q.Consumer())
	})
	runErr := g.Wait()

	res.Crawl = c.Stats()
	res.Pool = workers.Stats()
	logger.Info("run complete",
		slog.String("mode", opts.Mode.String()),
		slog.Any("stats", res.Pool),
		slog.Int64("walk_errors", res.Crawl.WalkErrors))

	if runErr != nil {
		return res, fmt.Errorf("scan interrupted: %w", runErr)
	}
	return res, nil
}

// indexerPath returns how a crawled path is spelled for the indexers. They
// run in outputDir, so relative paths are made absolute unless outputDir is
// the working directory.
func indexerPath(outputDir string) func(string) string {
	if sameDir(outputDir, ".") {
		return func(path string) string { return path }
	}
	return func(path string) string {
		if filepath.IsAbs(path) {
			return path
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return path
		}
		return abs
	}
}

func sameDir(a, b string) bool {
	if a == "" {
		a = "."
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}

// sinkDispatcher forwards included paths to s, spelled by rewrite.
func (p *Pipeline) sinkDispatcher(s Sink, rewrite func(string) string, verbose bool) pool.Dispatcher {
	return pool.DispatchFunc(func(_ context.Context, d pool.Decision) error {
		if !d.Included() {
			return nil
		}
		if verbose {
			p.out.Path(d.Path)
		}
		if err := s.Write(rewrite(d.Path)); err != nil {
			return scerrors.Wrap(scerrors.ErrCodeSinkWrite, err).WithDetail("path", d.Path)
		}
		return nil
	})
}

// inspectDispatcher prints a decision line per path. With verbose, included
// paths are printed bare instead.
func (p *Pipeline) inspectDispatcher(verbose bool) pool.Dispatcher {
	return pool.DispatchFunc(func(_ context.Context, d pool.Decision) error {
		if verbose && d.Included() {
			p.out.Path(d.Path)
			return nil
		}
		p.out.Decision(d.Reason.Label(), d.Included(), d.MIMEType, d.Path)
		return nil
	})
}
