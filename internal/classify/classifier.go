package classify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// ErrProbeFailed is returned when a probe cannot run or its output is not text.
var ErrProbeFailed = errors.New("probe failed")

// kind identifies one of the built-in classifiers.
type kind int

const (
	// kindFile sniffs content with file(1).
	kindFile kind = iota
	// kindXDGMime asks the shared-mime-info database through xdg-mime(1).
	kindXDGMime
)

// Classifier is a value naming one probe tool.
// It holds no state; the Runner passed to each call does the work.
type Classifier struct {
	kind kind
}

// File returns the file(1) classifier.
func File() Classifier { return Classifier{kind: kindFile} }

// XDGMime returns the xdg-mime(1) classifier.
func XDGMime() Classifier { return Classifier{kind: kindXDGMime} }

// Name returns the name used to select the classifier on the command line.
func (c Classifier) Name() string {
	switch c.kind {
	case kindFile:
		return "file"
	case kindXDGMime:
		return "xdg-mime"
	default:
		return "unknown"
	}
}

// Available reports whether the probe tool can be used right now.
// The answer is not cached; tools can appear or vanish between calls.
func (c Classifier) Available(ctx context.Context, r Runner) bool {
	switch c.kind {
	case kindFile:
		// Only a file(1) that understands --mime-type is usable.
		stdout, stderr, err := r.Run(ctx, "file", "-h")
		if err != nil && !isExitError(err) {
			return false
		}
		return bytes.Contains(stderr, []byte("--mime-type")) ||
			bytes.Contains(stdout, []byte("--mime-type"))
	case kindXDGMime:
		// Spawning is enough; without a file argument xdg-mime exits non-zero.
		_, _, err := r.Run(ctx, "xdg-mime", "query", "filetype")
		return err == nil || isExitError(err)
	default:
		return false
	}
}

// Query returns the MIME type the probe reports for path.
func (c Classifier) Query(ctx context.Context, r Runner, path string) (string, error) {
	var (
		stdout []byte
		err    error
	)

	switch c.kind {
	case kindFile:
		stdout, _, err = r.Run(ctx, "file", "-b", "--mime-type", path)
	case kindXDGMime:
		stdout, _, err = r.Run(ctx, "xdg-mime", "query", "filetype", path)
	default:
		return "", fmt.Errorf("%w: unknown classifier kind %d", ErrProbeFailed, c.kind)
	}

	out := strings.TrimSpace(string(stdout))
	if err != nil && (!isExitError(err) || out == "") {
		return "", fmt.Errorf("%w: %s %s: %v", ErrProbeFailed, c.Name(), path, err)
	}
	if !utf8.ValidString(out) {
		return "", fmt.Errorf("%w: %s %s: output is not valid UTF-8", ErrProbeFailed, c.Name(), path)
	}

	return out, nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
