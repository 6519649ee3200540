// Package output provides consistent CLI output formatting.
//
// Styling is applied only when the destination is a terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

// Writer provides formatted output for CLI commands.
type Writer struct {
	out      io.Writer
	useColor bool
}

// New creates a Writer, enabling color when out is a terminal.
func New(out io.Writer) *Writer {
	useColor := false
	if f, ok := out.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{out: out, useColor: useColor}
}

// Printf writes a plain formatted line.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(w.out, format+"\n", args...)
}

// Successf prints a success message.
func (w *Writer) Successf(format string, args ...any) {
	w.styled(successStyle, "✓ "+fmt.Sprintf(format, args...))
}

// Warningf prints a warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.styled(warnStyle, "! "+fmt.Sprintf(format, args...))
}

// Errorf prints an error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.styled(errorStyle, "✗ "+fmt.Sprintf(format, args...))
}

// Dimf prints de-emphasized detail.
func (w *Writer) Dimf(format string, args ...any) {
	w.styled(dimStyle, "  "+fmt.Sprintf(format, args...))
}

func (w *Writer) styled(style lipgloss.Style, msg string) {
	if w.useColor {
		msg = style.Render(msg)
	}
	_, _ = fmt.Fprintln(w.out, msg)
}
