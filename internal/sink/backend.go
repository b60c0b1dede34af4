package sink

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrIndexerNotFound is returned when no usable binary exists for an indexer.
var ErrIndexerNotFound = errors.New("indexer not found")

// Variant identifies the flavour of an indexer binary.
type Variant string

const (
	VariantCscope    Variant = "cscope"
	VariantExuberant Variant = "exuberant"
	VariantUniversal Variant = "universal"
)

// Backend describes one indexer process to start.
type Backend struct {
	// Name identifies the backend in logs ("cscope", "ctags").
	Name    string
	Command string
	Args    []string
	Variant Variant
	// DiscardStderr drops the process's diagnostics instead of passing them through.
	DiscardStderr bool
}

// ctagsCandidates are tried in order; BSD systems ship an unrelated "ctags".
var ctagsCandidates = []string{"uctags", "ectags", "ctags"}

// Detector locates indexer binaries.
type Detector struct {
	// For testing: override command execution
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
	lookPath    func(file string) (string, error)
}

// NewDetector creates a Detector that searches PATH.
func NewDetector() *Detector {
	return &Detector{
		execCommand: exec.CommandContext,
		lookPath:    exec.LookPath,
	}
}

// Cscope returns the cscope backend: build only, quick lookup, kernel mode,
// file list on stdin.
func (d *Detector) Cscope(ctx context.Context) (Backend, error) {
	if _, err := d.lookPath("cscope"); err != nil {
		return Backend{}, fmt.Errorf("%w: cscope: %v", ErrIndexerNotFound, err)
	}
	return Backend{
		Name:          "cscope",
		Command:       "cscope",
		Args:          []string{"-bqki", "-"},
		Variant:       VariantCscope,
		DiscardStderr: true,
	}, nil
}

// Ctags returns the first Exuberant or Universal ctags found.
func (d *Detector) Ctags(ctx context.Context) (Backend, error) {
	for _, name := range ctagsCandidates {
		if _, err := d.lookPath(name); err != nil {
			continue
		}

		var out bytes.Buffer
		cmd := d.execCommand(ctx, name, "--help")
		cmd.Stdout = &out
		cmd.Stderr = &out
		// Some builds exit non-zero after printing help.
		_ = cmd.Run()

		switch {
		case bytes.Contains(out.Bytes(), []byte("Universal Ctags")):
			return Backend{
				Name:          "ctags",
				Command:       name,
				Args:          []string{"-L", "-", "--extras=+q", "--fields=+i"},
				Variant:       VariantUniversal,
				DiscardStderr: true,
			}, nil
		case bytes.Contains(out.Bytes(), []byte("Exuberant")):
			return Backend{
				Name:          "ctags",
				Command:       name,
				Args:          []string{"-L", "-", "--extra=+q", "--fields=+i"},
				Variant:       VariantExuberant,
				DiscardStderr: true,
			}, nil
		}
	}
	return Backend{}, fmt.Errorf("%w: no Exuberant or Universal ctags among %v", ErrIndexerNotFound, ctagsCandidates)
}

// Selection chooses which indexers Detect looks for.
type Selection struct {
	Cscope bool
	Ctags  bool
}

// DetectResult is the outcome of looking for one indexer.
type DetectResult struct {
	Name    string
	Backend Backend
	Err     error
}

// Detect looks up every selected indexer and reports each outcome.
func (d *Detector) Detect(ctx context.Context, sel Selection) []DetectResult {
	var results []DetectResult
	if sel.Cscope {
		b, err := d.Cscope(ctx)
		results = append(results, DetectResult{Name: "cscope", Backend: b, Err: err})
	}
	if sel.Ctags {
		b, err := d.Ctags(ctx)
		results = append(results, DetectResult{Name: "ctags", Backend: b, Err: err})
	}
	return results
}

// Found returns the backends that were located.
func Found(results []DetectResult) []Backend {
	var out []Backend
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Backend)
		}
	}
	return out
}
