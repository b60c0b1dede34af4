// Package output writes scope's line-oriented results.
//
// Every method writes whole lines under a mutex, so workers may share one
// Writer. Styling is only applied when the destination is a terminal.
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// mimeWidth is the column width of the MIME type in decision lines.
const mimeWidth = 29

// Writer formats scope output.
type Writer struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
}

// Option configures a Writer.
type Option func(*Writer)

// WithColor forces colored or plain output.
func WithColor(color bool) Option {
	return func(w *Writer) {
		if color {
			w.styles = DefaultStyles()
		} else {
			w.styles = NoColorStyles()
		}
	}
}

// New creates a Writer. Color is enabled when out is a terminal and NO_COLOR
// is unset.
func New(out io.Writer, opts ...Option) *Writer {
	w := &Writer{out: out, styles: NoColorStyles()}
	if ShouldColor(out) {
		w.styles = DefaultStyles()
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Styles returns the styles in use.
func (w *Writer) Styles() Styles {
	return w.styles
}

// Line writes s followed by a newline.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Line(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, _ = fmt.Fprintln(w.out, s)
}

// Linef writes a formatted line.
func (w *Writer) Linef(format string, args ...any) {
	w.Line(fmt.Sprintf(format, args...))
}

// Path writes a bare path, as verbose mode does for each included file.
func (w *Writer) Path(path string) {
	w.Line(path)
}

// Header writes a "Key: value" line.
func (w *Writer) Header(key, value string) {
	w.Linef("%s: %s", w.styles.Label.Render(key), value)
}

// Decision writes an inspect line: label, MIME type padded to a fixed
// column, then the path.
func (w *Writer) Decision(label string, included bool, mimeType, path string) {
	style := w.styles.Exclude
	if included {
		style = w.styles.Include
	}
	w.Linef("%s: %-*s %s", style.Render(label), mimeWidth, mimeType, path)
}

// ListEntry writes one classifier listing line, "[i] name (marker)".
func (w *Writer) ListEntry(index int, name, marker string) {
	if marker == "" {
		w.Linef("[%d] %s", index, name)
		return
	}

	var style lipgloss.Style
	switch marker {
	case "*":
		style = w.styles.Current
	default:
		style = w.styles.Broken
	}
	w.Linef("[%d] %s (%s)", index, name, style.Render(marker))
}

// Status writes a "[TAG] name: message" check line.
func (w *Writer) Status(tag, name, message string) {
	var style lipgloss.Style
	switch tag {
	case "PASS":
		style = w.styles.Pass
	case "WARN":
		style = w.styles.Warn
	default:
		style = w.styles.Fail
	}
	w.Linef("[%s] %s: %s", style.Render(tag), name, message)
}

// Newline writes an empty line.
func (w *Writer) Newline() {
	w.Line("")
}
