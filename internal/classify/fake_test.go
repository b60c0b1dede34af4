package classify

import (
	"context"
	"os/exec"
	"strings"
	"sync"
)

// probeResult is a canned answer from fakeRunner.
type probeResult struct {
	stdout string
	stderr string
	err    error
}

// fakeRunner answers probes from a table keyed by the full command line.
// Unknown commands behave like a missing binary.
type fakeRunner struct {
	mu      sync.Mutex
	results map[string]probeResult
	// byPrefix answers any command line starting with the key.
	byPrefix map[string]func(cmdline string) probeResult
	calls    map[string]int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		results:  make(map[string]probeResult),
		byPrefix: make(map[string]func(string) probeResult),
		calls:    make(map[string]int),
	}
}

func (f *fakeRunner) set(cmdline string, res probeResult) *fakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[cmdline] = res
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	f.mu.Lock()
	f.calls[cmdline]++
	res, ok := f.results[cmdline]
	if !ok {
		for prefix, fn := range f.byPrefix {
			if strings.HasPrefix(cmdline, prefix) {
				res, ok = fn(cmdline), true
				break
			}
		}
	}
	f.mu.Unlock()

	if !ok {
		return nil, nil, exec.ErrNotFound
	}
	return []byte(res.stdout), []byte(res.stderr), res.err
}

func (f *fakeRunner) count(cmdline string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[cmdline]
}

func (f *fakeRunner) countPrefix(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k, v := range f.calls {
		if strings.HasPrefix(k, prefix) {
			n += v
		}
	}
	return n
}

// exitErr mimics a tool that ran and exited non-zero.
var exitErr = &exec.ExitError{}

const fileHelp = "Usage: file [OPTION...] [FILE...]\n      --mime-type  output the MIME type\n"

func withFile(f *fakeRunner) *fakeRunner {
	return f.set("file -h", probeResult{stderr: fileHelp, err: exitErr})
}

func withXDGMime(f *fakeRunner) *fakeRunner {
	return f.set("xdg-mime query filetype", probeResult{stderr: "xdg-mime: file argument missing", err: exitErr})
}
