// Package pool runs the classification workers.
//
// Each worker pops a path, tries the extension allow-list first and only
// spawns the classifier probe when that fails. Every decision, kept or not,
// goes to the Dispatcher; a path whose probe fails is logged and dropped.
package pool

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path/filepath"
	"runtime"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	scerrors "github.com/Aman-CERP/scope/internal/errors"
)

// DefaultDedupeSize is the number of recently dispatched paths remembered.
const DefaultDedupeSize = 4096

// Classifier decides whether a path is source code.
type Classifier interface {
	IncludeByExtension(path string) bool
	IncludeByType(mimeType string) bool
	Classify(ctx context.Context, path string) (string, error)
}

// Source is the read end of the work queue.
type Source interface {
	Pop(ctx context.Context) (string, bool)
}

// Dispatcher receives every decision. It must be safe for concurrent use.
type Dispatcher interface {
	Dispatch(ctx context.Context, d Decision) error
}

// DispatchFunc adapts a function to Dispatcher.
type DispatchFunc func(ctx context.Context, d Decision) error

// Dispatch implements Dispatcher.
func (f DispatchFunc) Dispatch(ctx context.Context, d Decision) error {
	return f(ctx, d)
}

// Option configures a Pool.
type Option func(*Pool)

// WithJobs sets the number of workers. Values below 1 select DefaultJobs.
func WithJobs(n int) Option {
	return func(p *Pool) {
		p.jobs = n
	}
}

// WithLogger sets the logger for per-file diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = l
	}
}

// WithDedupeSize sets how many dispatched paths are remembered to drop
// repeats from overlapping roots. Zero disables the check.
func WithDedupeSize(n int) Option {
	return func(p *Pool) {
		p.dedupeSize = n
	}
}

// DefaultJobs returns the available hardware parallelism, at least 1.
func DefaultJobs() int {
	return max(runtime.NumCPU(), 1)
}

// Pool is a fixed set of workers draining a Source.
type Pool struct {
	jobs       int
	classifier Classifier
	dispatcher Dispatcher
	logger     *slog.Logger

	dedupeSize int
	seen       *lru.Cache[string, struct{}]

	stats counters
}

// New creates a Pool.
func New(classifier Classifier, dispatcher Dispatcher, opts ...Option) (*Pool, error) {
	p := &Pool{
		classifier: classifier,
		dispatcher: dispatcher,
		logger:     slog.Default(),
		dedupeSize: DefaultDedupeSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.jobs < 1 {
		p.jobs = DefaultJobs()
	}

	if p.dedupeSize > 0 {
		seen, err := lru.New[string, struct{}](p.dedupeSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create dedupe cache: %w", err)
		}
		p.seen = seen
	}

	return p, nil
}

// Jobs returns the number of workers Run starts.
func (p *Pool) Jobs() int {
	return p.jobs
}

// Stats returns the counters accumulated so far.
func (p *Pool) Stats() Stats {
	return p.stats.snapshot()
}

// Run starts the workers and blocks until src is closed and drained or ctx
// ends. Per-path failures never stop the run.
func (p *Pool) Run(ctx context.Context, src Source) error {
	var g errgroup.Group
	for i := 0; i < p.jobs; i++ {
		g.Go(func() error {
			p.work(ctx, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Pool) work(ctx context.Context, src Source) {
	for {
		path, ok := src.Pop(ctx)
		if !ok {
			return
		}
		p.handle(ctx, path)
	}
}

func (p *Pool) handle(ctx context.Context, path string) {
	p.stats.visited.Add(1)

	if p.duplicate(path) {
		p.stats.duplicates.Add(1)
		return
	}

	d, ok := p.decide(ctx, path)
	if !ok {
		return
	}

	if err := p.dispatcher.Dispatch(ctx, d); err != nil {
		p.stats.dispatchFailures.Add(1)
		p.logger.Warn("dispatch failed", errorAttrs(path, err)...)
	}
}

// errorAttrs flattens err into log attributes in a stable order.
func errorAttrs(path string, err error) []any {
	fields := scerrors.FormatForLog(err)
	attrs := make([]any, 0, len(fields)+1)
	attrs = append(attrs, slog.String("path", path))
	for _, k := range slices.Sorted(maps.Keys(fields)) {
		attrs = append(attrs, slog.Any(k, fields[k]))
	}
	return attrs
}

// decide classifies path. ok is false when the probe failed.
func (p *Pool) decide(ctx context.Context, path string) (Decision, bool) {
	if p.classifier.IncludeByExtension(path) {
		p.stats.byExtension.Add(1)
		return Decision{Path: path, Reason: ReasonExtension}, true
	}

	mimeType, err := p.classifier.Classify(ctx, path)
	if err != nil {
		p.stats.probeFailures.Add(1)
		p.logger.Warn("cannot determine type",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return Decision{}, false
	}

	if p.classifier.IncludeByType(mimeType) {
		p.stats.byType.Add(1)
		return Decision{Path: path, Reason: ReasonType, MIMEType: mimeType}, true
	}

	p.stats.excluded.Add(1)
	return Decision{Path: path, Reason: ReasonExclude, MIMEType: mimeType}, true
}

// duplicate reports whether path was already handled under another spelling.
func (p *Pool) duplicate(path string) bool {
	if p.seen == nil {
		return false
	}
	key, err := filepath.Abs(path)
	if err != nil {
		key = filepath.Clean(path)
	}
	found, _ := p.seen.ContainsOrAdd(key, struct{}{})
	return found
}
