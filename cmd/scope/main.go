// Package main provides the entry point for the scope CLI.
package main

import (
	"fmt"
	"os"

	"github.com/Aman-CERP/scope/cmd/scope/cmd"
	scerrors "github.com/Aman-CERP/scope/internal/errors"
)

// Exit statuses.
const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(os.Stderr, scerrors.FormatForCLI(err))
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failed run to its exit status. Fatal startup errors and
// anything unclassified exit 1; bad flags and configuration exit 2.
func exitCode(err error) int {
	if scerrors.IsFatal(err) {
		return exitFailure
	}
	switch scerrors.GetCode(err) {
	case scerrors.ErrCodeInvalidInput, scerrors.ErrCodeConfigInvalid, scerrors.ErrCodeConfigParse:
		return exitUsage
	}
	return exitFailure
}
