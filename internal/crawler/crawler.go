// Package crawler walks root directories and feeds every path that survives
// the exclude rules into the work queue.
//
// Exclusion is plain substring containment on the path as rendered from the
// root the user gave, so "./src/.git/HEAD" is cut by "/.git/". A directory is
// rendered with a trailing separator for this test, which lets "/.git/" cut
// the ".git" directory itself and not only its children. A matching
// directory is never read.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"
)

// ignoreCacheSize bounds the number of parsed .gitignore files kept.
const ignoreCacheSize = 1000

// Pusher is the write end of the work queue.
type Pusher interface {
	Push(ctx context.Context, path string) error
	Close()
}

// Stats counts what a walk did.
type Stats struct {
	Enqueued   int64
	Excluded   int64
	Ignored    int64
	WalkErrors int64
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets the logger for walk diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// WithGitignore makes the walk honour .gitignore files below each root.
func WithGitignore(enabled bool) Option {
	return func(c *Crawler) {
		c.gitignore = enabled
	}
}

// WithSkipFiles names files that are never queued. Paths are compared in
// absolute form.
func WithSkipFiles(paths ...string) Option {
	return func(c *Crawler) {
		for _, p := range paths {
			if abs, err := filepath.Abs(p); err == nil {
				if c.skip == nil {
					c.skip = make(map[string]struct{}, len(paths))
				}
				c.skip[abs] = struct{}{}
			}
		}
	}
}

// Crawler walks directory trees. Its configuration is read-only during Run.
type Crawler struct {
	excludes  []string
	gitignore bool
	skip      map[string]struct{}
	logger    *slog.Logger

	// ignoreCache holds the parsed .gitignore of each directory, nil when the
	// directory has none.
	ignoreCache *lru.Cache[string, *gitignore.GitIgnore]
	cacheMu     sync.Mutex

	enqueued   atomic.Int64
	excluded   atomic.Int64
	ignored    atomic.Int64
	walkErrors atomic.Int64
}

// New creates a Crawler that cuts every subtree matching one of excludes.
func New(excludes []string, opts ...Option) (*Crawler, error) {
	c := &Crawler{
		excludes: append([]string(nil), excludes...),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.gitignore {
		cache, err := lru.New[string, *gitignore.GitIgnore](ignoreCacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create gitignore cache: %w", err)
		}
		c.ignoreCache = cache
	}

	return c, nil
}

// Stats returns the counters accumulated so far.
func (c *Crawler) Stats() Stats {
	return Stats{
		Enqueued:   c.enqueued.Load(),
		Excluded:   c.excluded.Load(),
		Ignored:    c.ignored.Load(),
		WalkErrors: c.walkErrors.Load(),
	}
}

// Run walks every root concurrently and pushes surviving paths to out.
//
// out is closed exactly once, after every push from every root has returned.
// Unreadable directories are logged and skipped. Run fails only when ctx
// ends or out rejects a push.
func (c *Crawler) Run(ctx context.Context, roots []string, out Pusher) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, root := range roots {
		g.Go(func() error {
			return c.walkRoot(ctx, root, out)
		})
	}

	err := g.Wait()
	out.Close()
	return err
}

func (c *Crawler) walkRoot(ctx context.Context, root string, out Pusher) error {
	info, err := os.Stat(root)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.walkError(root, err)
		}
		return nil
	}
	return c.visit(ctx, root, root, info.IsDir(), out)
}

// visit handles one path that is known to exist.
func (c *Crawler) visit(ctx context.Context, root, path string, isDir bool, out Pusher) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rendered := path
	if isDir && !strings.HasSuffix(rendered, string(filepath.Separator)) {
		rendered += string(filepath.Separator)
	}
	if matchesAny(rendered, c.excludes) {
		c.excluded.Add(1)
		c.logger.Debug("excluded", slog.String("path", path))
		return nil
	}
	if !isDir && c.skipped(path) {
		c.excluded.Add(1)
		return nil
	}
	if path != root && c.isGitignored(root, path, isDir) {
		c.ignored.Add(1)
		c.logger.Debug("gitignored", slog.String("path", path))
		return nil
	}

	if err := out.Push(ctx, path); err != nil {
		return err
	}
	c.enqueued.Add(1)

	if !isDir {
		return nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		c.walkError(path, err)
		return nil
	}

	for _, entry := range entries {
		child := join(path, entry.Name())
		if _, err := os.Lstat(child); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		// Symlinked directories are queued but not followed.
		if err := c.visit(ctx, root, child, entry.IsDir(), out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Crawler) skipped(path string) bool {
	if len(c.skip) == 0 {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := c.skip[abs]
	return ok
}

func (c *Crawler) walkError(path string, err error) {
	c.walkErrors.Add(1)
	c.logger.Warn("cannot read directory",
		slog.String("path", path),
		slog.String("error", err.Error()))
}

// join appends name to dir without cleaning, so the rendered path keeps the
// root exactly as the user typed it.
func join(dir, name string) string {
	if strings.HasSuffix(dir, string(filepath.Separator)) {
		return dir + name
	}
	return dir + string(filepath.Separator) + name
}

// isGitignored checks the .gitignore of the root and of every directory
// between the root and path.
func (c *Crawler) isGitignored(root, path string, isDir bool) bool {
	if c.ignoreCache == nil {
		return false
	}

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}

	dir := root
	parts := strings.Split(filepath.Dir(rel), string(filepath.Separator))
	for i := 0; ; i++ {
		if m := c.matcher(dir); m != nil {
			local, err := filepath.Rel(dir, path)
			if err == nil && matchesIgnore(m, filepath.ToSlash(local), isDir) {
				return true
			}
		}
		if i >= len(parts) || parts[i] == "." {
			return false
		}
		dir = filepath.Join(dir, parts[i])
	}
}

func matchesIgnore(m *gitignore.GitIgnore, rel string, isDir bool) bool {
	if m.MatchesPath(rel) {
		return true
	}
	// "build/" style patterns only match with the trailing slash.
	return isDir && m.MatchesPath(rel+"/")
}

// matcher returns the parsed .gitignore in dir, or nil.
func (c *Crawler) matcher(dir string) *gitignore.GitIgnore {
	c.cacheMu.Lock()
	m, ok := c.ignoreCache.Get(dir)
	c.cacheMu.Unlock()
	if ok {
		return m
	}

	m, err := gitignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Warn("cannot parse .gitignore",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
		}
		m = nil
	}

	c.cacheMu.Lock()
	c.ignoreCache.Add(dir, m)
	c.cacheMu.Unlock()
	return m
}
