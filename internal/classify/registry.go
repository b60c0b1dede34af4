package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// NoneName is reported by Registry.Name when no classifier is usable.
const NoneName = "<none>"

// ListName is the pseudo classifier name that requests the listing.
const ListName = "list"

// ErrNoClassifier is returned by Classify when the registry is unusable.
var ErrNoClassifier = errors.New("no usable classifier")

// Registry holds the built-in classifiers in preference order and the one
// selected for this run.
type Registry struct {
	classifiers []Classifier
	current     int // index into classifiers, -1 when unusable
	runner      Runner
}

// Option configures a Registry.
type Option func(*Registry)

// WithRunner sets the Runner used for availability probes and queries.
func WithRunner(r Runner) Option {
	return func(reg *Registry) {
		reg.runner = r
	}
}

// New creates a Registry and selects its current classifier.
//
// With a non-empty name the first classifier carrying that name is selected,
// whether or not it is available, and an unknown name leaves the registry
// unusable. With an empty name the first available classifier wins.
func New(ctx context.Context, name string, opts ...Option) *Registry {
	r := &Registry{
		// file(1) first: it tells source-code subtypes apart where the
		// association database often reports plain text.
		classifiers: []Classifier{File(), XDGMime()},
		current:     -1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.runner == nil {
		r.runner = NewExecRunner(0)
	}

	for i, c := range r.classifiers {
		if name != "" {
			if c.Name() == name {
				r.current = i
				break
			}
			continue
		}
		if c.Available(ctx, r.runner) {
			r.current = i
			break
		}
	}

	return r
}

// Current returns the selected classifier, if any.
func (r *Registry) Current() (Classifier, bool) {
	if r.current < 0 {
		return Classifier{}, false
	}
	return r.classifiers[r.current], true
}

// Classifiers returns the registered classifiers in preference order.
func (r *Registry) Classifiers() []Classifier {
	out := make([]Classifier, len(r.classifiers))
	copy(out, r.classifiers)
	return out
}

// Usable reports whether the current classifier is available right now.
func (r *Registry) Usable(ctx context.Context) bool {
	c, ok := r.Current()
	if !ok {
		return false
	}
	return c.Available(ctx, r.runner)
}

// Name returns the current classifier's name, or NoneName when unusable.
func (r *Registry) Name(ctx context.Context) string {
	if !r.Usable(ctx) {
		return NoneName
	}
	c, _ := r.Current()
	return c.Name()
}

// Classify asks the current classifier for the MIME type of path.
func (r *Registry) Classify(ctx context.Context, path string) (string, error) {
	c, ok := r.Current()
	if !ok {
		return "", fmt.Errorf("%w: %w", ErrProbeFailed, ErrNoClassifier)
	}
	return c.Query(ctx, r.runner, path)
}

// IncludeByExtension reports whether path has a source-code extension.
// The answer does not depend on the current classifier.
func (r *Registry) IncludeByExtension(path string) bool {
	return IncludeByExtension(path)
}

// IncludeByType reports whether a MIME type denotes source code.
// The answer does not depend on which probe produced it.
func (r *Registry) IncludeByType(mimeType string) bool {
	return IncludeByType(mimeType)
}

// Entry describes one classifier in a listing.
type Entry struct {
	Index   int
	Name    string
	Usable  bool
	Current bool
}

// Entries probes every classifier and reports its listing state.
// It has no effect on the selection.
func (r *Registry) Entries(ctx context.Context) []Entry {
	entries := make([]Entry, 0, len(r.classifiers))
	for i, c := range r.classifiers {
		entries = append(entries, Entry{
			Index:   i,
			Name:    c.Name(),
			Usable:  c.Available(ctx, r.runner),
			Current: i == r.current,
		})
	}
	return entries
}

// Marker returns "!" for an unusable entry, "*" for the usable current one
// and "" otherwise.
func (e Entry) Marker() string {
	switch {
	case !e.Usable:
		return "!"
	case e.Current:
		return "*"
	default:
		return ""
	}
}

// List renders the listing as plain text, one classifier per line.
func (r *Registry) List(ctx context.Context) string {
	var sb strings.Builder
	for _, e := range r.Entries(ctx) {
		fmt.Fprintf(&sb, "[%d] %s", e.Index, e.Name)
		if m := e.Marker(); m != "" {
			fmt.Fprintf(&sb, " (%s)", m)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
