// Package sink streams matched paths to the indexer processes.
//
// Each backend is a child process reading one path per line on stdin. Many
// workers call Write at once; a per-backend mutex keeps every line whole.
// Close waits for in-flight writes, then flushes and closes each stdin and
// reaps the process. The indexer's exit status is not reported.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

var (
	// ErrNoBackend is returned when no indexer process could be started,
	// or every started one has since failed.
	ErrNoBackend = errors.New("no indexer backend available")
	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("sink closed")
)

// Option configures a Sink.
type Option func(*Sink)

// WithLogger sets the logger for backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Sink) {
		s.logger = l
	}
}

// WithDir sets the working directory of every backend process, where the
// indexers write their databases.
func WithDir(dir string) Option {
	return func(s *Sink) {
		s.dir = dir
	}
}

// process is one running backend.
type process struct {
	name  string
	cmd   *exec.Cmd
	stdin io.WriteCloser

	mu       sync.Mutex // serializes lines; guards w and disabled
	w        *bufio.Writer
	disabled bool
}

// Sink fans each path out to every enabled backend.
type Sink struct {
	logger *slog.Logger
	dir    string

	// For testing: override command construction
	execCommand func(name string, args ...string) *exec.Cmd

	procs []*process

	// gate lets writes run concurrently and makes Close wait for them.
	gate   sync.RWMutex
	closed bool

	closeOnce sync.Once
	closeErr  error
}

// New starts every backend that can be spawned. A backend that fails to start
// is logged and left out; ErrNoBackend is returned if none started.
func New(backends []Backend, opts ...Option) (*Sink, error) {
	s := &Sink{
		logger:      slog.Default(),
		execCommand: exec.Command,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, b := range backends {
		p, err := s.start(b)
		if err != nil {
			s.logger.Warn("indexer unavailable",
				slog.String("backend", b.Name),
				slog.String("command", b.Command),
				slog.String("error", err.Error()))
			continue
		}
		s.logger.Debug("indexer started",
			slog.String("backend", b.Name),
			slog.String("command", b.Command),
			slog.Int("pid", p.cmd.Process.Pid))
		s.procs = append(s.procs, p)
	}

	if len(s.procs) == 0 {
		return nil, ErrNoBackend
	}
	return s, nil
}

func (s *Sink) start(b Backend) (*process, error) {
	cmd := s.execCommand(b.Command, b.Args...)
	cmd.Dir = s.dir
	if !b.DiscardStderr {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	return &process{
		name:  b.Name,
		cmd:   cmd,
		stdin: stdin,
		w:     bufio.NewWriter(stdin),
	}, nil
}

// Backends returns the names of the started backends.
func (s *Sink) Backends() []string {
	names := make([]string, 0, len(s.procs))
	for _, p := range s.procs {
		names = append(names, p.name)
	}
	return names
}

// Write sends path followed by a newline to every enabled backend.
// A backend that fails is disabled; the others are unaffected.
func (s *Sink) Write(path string) error {
	s.gate.RLock()
	defer s.gate.RUnlock()

	if s.closed {
		return ErrClosed
	}

	line := path + "\n"
	var (
		errs    []error
		enabled int
	)
	for _, p := range s.procs {
		if err := p.writeLine(line); err != nil {
			s.logger.Warn("indexer write failed, disabling backend",
				slog.String("backend", p.name),
				slog.String("error", err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
		}
		if !p.isDisabled() {
			enabled++
		}
	}

	if enabled == 0 {
		errs = append(errs, ErrNoBackend)
	}
	return errors.Join(errs...)
}

func (p *process) writeLine(line string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disabled {
		return nil
	}
	if _, err := p.w.WriteString(line); err != nil {
		p.disabled = true
		return err
	}
	return nil
}

func (p *process) isDisabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.disabled
}

// Close flushes and closes every backend's input and waits for each process
// to exit. It runs once; later calls return the first result.
func (s *Sink) Close() error {
	s.closeOnce.Do(func() {
		s.gate.Lock()
		s.closed = true
		s.gate.Unlock()

		var errs []error
		for _, p := range s.procs {
			if err := p.shutdown(s.logger); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.name, err))
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}

func (p *process) shutdown(logger *slog.Logger) error {
	p.mu.Lock()
	var flushErr error
	if !p.disabled {
		flushErr = p.w.Flush()
	}
	p.mu.Unlock()

	// Closing stdin is the end-of-input signal.
	_ = p.stdin.Close()

	if err := p.cmd.Wait(); err != nil {
		logger.Debug("indexer exited",
			slog.String("backend", p.name),
			slog.String("status", err.Error()))
	}
	return flushErr
}
