package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Terminal palette (ANSI 256).
const (
	ColorGreen  = "154"
	ColorGray   = "245"
	ColorRed    = "196"
	ColorYellow = "220"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Include lipgloss.Style
	Exclude lipgloss.Style
	Current lipgloss.Style
	Broken  lipgloss.Style
	Pass    lipgloss.Style
	Warn    lipgloss.Style
	Fail    lipgloss.Style
	Label   lipgloss.Style
}

// DefaultStyles returns colored styles for a terminal.
func DefaultStyles() Styles {
	return Styles{
		Include: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Exclude: lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
		Current: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorGreen)),
		Broken:  lipgloss.NewStyle().Foreground(lipgloss.Color(ColorRed)),
		Pass:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGreen)),
		Warn:    lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)),
		Fail:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ColorRed)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(ColorGray)),
	}
}

// NoColorStyles returns styles that render text unchanged.
func NoColorStyles() Styles {
	return Styles{
		Include: lipgloss.NewStyle(),
		Exclude: lipgloss.NewStyle(),
		Current: lipgloss.NewStyle(),
		Broken:  lipgloss.NewStyle(),
		Pass:    lipgloss.NewStyle(),
		Warn:    lipgloss.NewStyle(),
		Fail:    lipgloss.NewStyle(),
		Label:   lipgloss.NewStyle(),
	}
}

// IsTTY checks if output is a terminal.
func IsTTY(w io.Writer) bool {
	if w == nil {
		return false
	}

	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	return false
}

// DetectNoColor checks if the NO_COLOR environment variable is set.
func DetectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// ShouldColor reports whether styled output should be written to w.
func ShouldColor(w io.Writer) bool {
	return IsTTY(w) && !DetectNoColor()
}
