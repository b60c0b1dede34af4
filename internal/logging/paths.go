package logging

import (
	"os"
	"path/filepath"
)

// DefaultLogDir returns the log directory (~/.scope/logs/), or one under the
// temp directory when there is no home.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".scope", "logs")
	}
	return filepath.Join(home, ".scope", "logs")
}

// DefaultLogPath returns the debug log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "scope.log")
}
