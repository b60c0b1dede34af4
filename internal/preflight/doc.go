// Package preflight checks that scope can run before it touches a tree.
//
// The checks cover:
//   - each classifier probe and the one a run would select
//   - the cscope and ctags indexers, and which ctags flavour is installed
//   - write access and free space in the output directory
//   - the file descriptor limit for the configured number of workers
//
// Use the Checker type to run them:
//
//	checker := preflight.New(preflight.WithJobs(8))
//	results := checker.RunAll(ctx, outputDir)
//	if checker.HasCriticalFailures(results) {
//	    // Handle failures
//	}
package preflight
