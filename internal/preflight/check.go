package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Aman-CERP/scope/internal/classify"
	"github.com/Aman-CERP/scope/internal/output"
	"github.com/Aman-CERP/scope/internal/sink"
)

// CheckStatus represents the result of a preflight check.
type CheckStatus int

const (
	// StatusPass indicates the check passed.
	StatusPass CheckStatus = iota
	// StatusWarn indicates a non-critical problem.
	StatusWarn
	// StatusFail indicates the check failed.
	StatusFail
)

// String returns the string representation of a CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the status by name in JSON output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status written by MarshalText.
func (s *CheckStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "PASS":
		*s = StatusPass
	case "WARN":
		*s = StatusWarn
	case "FAIL":
		*s = StatusFail
	default:
		return fmt.Errorf("unknown check status %q", text)
	}
	return nil
}

// CheckResult holds the result of a single preflight check.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical returns true if this is a required check that failed.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

// IndexerDetector locates indexer binaries.
type IndexerDetector interface {
	Detect(ctx context.Context, sel sink.Selection) []sink.DetectResult
}

// Checker performs preflight validation checks.
type Checker struct {
	verbose    bool
	output     io.Writer
	runner     classify.Runner
	detector   IndexerDetector
	classifier string
	indexers   sink.Selection
	jobs       int
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints check details.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) {
		c.verbose = verbose
	}
}

// WithOutput sets the output writer.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) {
		c.output = w
	}
}

// WithRunner sets the runner used to probe classifiers.
func WithRunner(r classify.Runner) Option {
	return func(c *Checker) {
		c.runner = r
	}
}

// WithDetector sets how indexers are located.
func WithDetector(d IndexerDetector) Option {
	return func(c *Checker) {
		c.detector = d
	}
}

// WithClassifier sets the classifier name a run would request.
func WithClassifier(name string) Option {
	return func(c *Checker) {
		c.classifier = name
	}
}

// WithIndexers sets which indexers a run would start.
func WithIndexers(sel sink.Selection) Option {
	return func(c *Checker) {
		c.indexers = sel
	}
}

// WithJobs sets the worker count used to size the descriptor check.
func WithJobs(n int) Option {
	return func(c *Checker) {
		c.jobs = n
	}
}

// New creates a new Checker with the given options.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:   os.Stdout,
		runner:   classify.NewExecRunner(0),
		detector: sink.NewDetector(),
		indexers: sink.Selection{Cscope: true, Ctags: true},
		jobs:     1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunAll runs every check against outputDir and returns the results.
func (c *Checker) RunAll(ctx context.Context, outputDir string) []CheckResult {
	var results []CheckResult

	results = append(results, c.CheckClassifiers(ctx)...)
	results = append(results, c.CheckIndexers(ctx)...)
	results = append(results, c.CheckWritePermissions(outputDir))
	results = append(results, c.CheckDiskSpace(outputDir))
	results = append(results, c.CheckFileDescriptors())

	return results
}

// CheckClassifiers reports each probe's availability, then whether the
// selection a run would make is usable. Only the latter is required.
func (c *Checker) CheckClassifiers(ctx context.Context) []CheckResult {
	reg := classify.New(ctx, c.classifier, classify.WithRunner(c.runner))

	var results []CheckResult
	for _, e := range reg.Entries(ctx) {
		r := CheckResult{Name: "classifier_" + e.Name}
		if e.Usable {
			r.Status = StatusPass
			r.Message = "available"
		} else {
			r.Status = StatusWarn
			r.Message = "not available"
			r.Details = classifierHint(e.Name)
		}
		results = append(results, r)
	}

	selected := CheckResult{Name: "classifier", Required: true}
	if name := reg.Name(ctx); name != classify.NoneName {
		selected.Status = StatusPass
		selected.Message = fmt.Sprintf("using %s", name)
	} else {
		selected.Status = StatusFail
		if c.classifier != "" {
			selected.Message = fmt.Sprintf("requested classifier %q is not usable", c.classifier)
		} else {
			selected.Message = "no classifier available"
		}
		selected.Details = "Install file(1) or xdg-utils"
	}
	return append(results, selected)
}

func classifierHint(name string) string {
	switch name {
	case "file":
		return "Install file(1) with --mime-type support"
	case "xdg-mime":
		return "Install xdg-utils and shared-mime-info"
	default:
		return ""
	}
}

// CheckIndexers reports each selected indexer and fails when none is found.
func (c *Checker) CheckIndexers(ctx context.Context) []CheckResult {
	var (
		results []CheckResult
		found   int
	)
	for _, d := range c.detector.Detect(ctx, c.indexers) {
		r := CheckResult{Name: d.Name}
		if d.Err != nil {
			r.Status = StatusWarn
			r.Message = "not found"
			r.Details = d.Err.Error()
		} else {
			found++
			r.Status = StatusPass
			r.Message = fmt.Sprintf("%s (%s)", d.Backend.Command, d.Backend.Variant)
		}
		results = append(results, r)
	}

	summary := CheckResult{Name: "indexers", Required: true}
	if found > 0 {
		summary.Status = StatusPass
		summary.Message = fmt.Sprintf("%d of %d available", found, len(results))
	} else {
		summary.Status = StatusFail
		summary.Message = "no indexer available"
		summary.Details = "Install cscope or Exuberant/Universal ctags"
	}
	return append(results, summary)
}

// CheckWritePermissions checks that the indexers can write to dir.
// A missing directory passes when its parent is writable, since runs create it.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	result := CheckResult{
		Name:     "write_permissions",
		Required: true,
	}

	target := dir
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		target = filepath.Dir(filepath.Clean(dir))
	}

	testFile := filepath.Join(target, ".scope-preflight-test")
	f, err := os.Create(testFile)
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("permission denied: %v", err)
		return result
	}
	_ = f.Close()
	_ = os.Remove(testFile)

	result.Status = StatusPass
	result.Message = "OK"
	return result
}

// HasCriticalFailures returns true if any required check failed.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.IsCritical() {
			return true
		}
	}
	return false
}

// SummaryStatus returns a summary status string for the results.
func (c *Checker) SummaryStatus(results []CheckResult) string {
	hasWarnings := false
	hasCriticalFailure := false

	for _, r := range results {
		if r.IsCritical() {
			hasCriticalFailure = true
		}
		if r.Status == StatusWarn || (r.Status == StatusFail && !r.Required) {
			hasWarnings = true
		}
	}

	if hasCriticalFailure {
		return "failed"
	}
	if hasWarnings {
		return "ready_with_warnings"
	}
	return "ready"
}

// PrintResults prints check results to the configured output.
func (c *Checker) PrintResults(results []CheckResult) {
	w := output.New(c.output)
	w.Line("scope System Check")
	w.Line("==================")
	w.Newline()

	for _, r := range results {
		w.Status(r.Status.String(), r.Name, r.Message)
		if c.verbose && r.Details != "" {
			w.Linef("      %s", r.Details)
		}
	}

	w.Newline()
	w.Linef("Status: %s", strings.ToUpper(c.SummaryStatus(results)))

	var warnings, errors []string
	for _, r := range results {
		if r.IsCritical() {
			errors = append(errors, r.Name+": "+r.Message)
		} else if r.Status == StatusWarn {
			warnings = append(warnings, r.Name+": "+r.Message)
		}
	}

	if len(errors) > 0 {
		w.Newline()
		w.Linef("%d error(s):", len(errors))
		for _, e := range errors {
			w.Linef("  - %s", e)
		}
	}

	if len(warnings) > 0 {
		w.Newline()
		w.Linef("%d warning(s):", len(warnings))
		for _, s := range warnings {
			w.Linef("  - %s", s)
		}
	}
}
