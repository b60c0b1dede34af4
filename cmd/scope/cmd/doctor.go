package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/scope/internal/classify"
	"github.com/Aman-CERP/scope/internal/config"
	"github.com/Aman-CERP/scope/internal/preflight"
	"github.com/Aman-CERP/scope/internal/sink"
)

// errCheckFailed is returned when a required check fails.
var errCheckFailed = errors.New("system check failed")

func newDoctorCmd(d deps) *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that the classifiers and indexers are usable",
		Long: `Run the checks a scan depends on.

Checks:
  - file(1) and xdg-mime availability, and which one a run would use
  - cscope and ctags (Exuberant or Universal) availability
  - Output directory write permission and free space
  - File descriptor limit for the configured number of jobs

A missing classifier or indexer is a warning as long as another one
is usable.

Use --verbose for detailed diagnostic information.
Use --json for machine-readable output.`,
		Example: `  # Run diagnostics
  scope doctor

  # JSON output for scripting
  scope doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd, d, verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed diagnostic info")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func runDoctor(cmd *cobra.Command, d deps, verbose, jsonOutput bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	applyLogLevel(cmd, cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := d.runner
	if runner == nil {
		runner = classify.NewExecRunner(cfg.ProbeTimeout)
	}

	opts := []preflight.Option{
		preflight.WithVerbose(verbose),
		preflight.WithOutput(cmd.OutOrStdout()),
		preflight.WithRunner(runner),
		preflight.WithClassifier(cfg.Classifier),
		preflight.WithIndexers(sink.Selection{
			Cscope: cfg.Indexers.Cscope,
			Ctags:  cfg.Indexers.Ctags,
		}),
		preflight.WithJobs(cfg.Jobs),
	}
	if d.detector != nil {
		opts = append(opts, preflight.WithDetector(d.detector))
	}

	checker := preflight.New(opts...)
	results := checker.RunAll(ctx, cfg.OutputDir)

	if jsonOutput {
		if err := outputJSON(cmd, checker, results); err != nil {
			return err
		}
	} else {
		checker.PrintResults(results)
	}

	if checker.HasCriticalFailures(results) {
		return errCheckFailed
	}
	return nil
}

// JSONOutput is the structure for JSON output.
type JSONOutput struct {
	Status   string                  `json:"status"`
	Checks   []preflight.CheckResult `json:"checks"`
	Warnings []string                `json:"warnings,omitempty"`
	Errors   []string                `json:"errors,omitempty"`
}

func outputJSON(cmd *cobra.Command, checker *preflight.Checker, results []preflight.CheckResult) error {
	out := JSONOutput{
		Status: checker.SummaryStatus(results),
		Checks: results,
	}

	for _, r := range results {
		if r.IsCritical() {
			out.Errors = append(out.Errors, r.Name+": "+r.Message)
		} else if r.Status == preflight.StatusWarn {
			out.Warnings = append(out.Warnings, r.Name+": "+r.Message)
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
