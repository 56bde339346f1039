// Package output renders the scan's human-facing progress lines.
//
// Progress goes to stdout and errors to stderr; the JSON project map is never
// printed here. Styling uses lipgloss and degrades to plain text when the
// destination is not a terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	mu          sync.Mutex
	stdout      io.Writer = os.Stdout
	stderr      io.Writer = os.Stderr
	outStyles             = newStyles(os.Stdout)
	errStyles             = newStyles(os.Stderr)
	verboseMode bool
)

type styles struct {
	success lipgloss.Style
	error   lipgloss.Style
	info    lipgloss.Style
	step    lipgloss.Style
}

// newStyles builds styles for w, so color is only emitted when w is a
// terminal.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("green")).Bold(true),
		error:   r.NewStyle().Foreground(lipgloss.Color("red")).Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.Color("cyan")),
		step:    r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// SetVerbose enables or disables verbose output for debugging.
func SetVerbose(v bool) {
	mu.Lock()
	verboseMode = v
	mu.Unlock()
}

// SetWriters redirects progress and error output. Nil keeps the current
// writer. It returns a function restoring the previous writers.
func SetWriters(out, errOut io.Writer) (restore func()) {
	mu.Lock()
	defer mu.Unlock()

	prevOut, prevErr := stdout, stderr
	prevOutStyles, prevErrStyles := outStyles, errStyles
	if out != nil {
		stdout = out
		outStyles = newStyles(out)
	}
	if errOut != nil {
		stderr = errOut
		errStyles = newStyles(errOut)
	}
	return func() {
		mu.Lock()
		stdout, stderr = prevOut, prevErr
		outStyles, errStyles = prevOutStyles, prevErrStyles
		mu.Unlock()
	}
}

// writeLine renders msg with the style picked from the current style set and
// prints it to w.
func writeLine(w *io.Writer, set *styles, pick func(styles) lipgloss.Style, msg string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(*w, pick(*set).Render(msg))
}

func successOf(s styles) lipgloss.Style { return s.success }
func errorOf(s styles) lipgloss.Style   { return s.error }
func infoOf(s styles) lipgloss.Style    { return s.info }
func stepOf(s styles) lipgloss.Style    { return s.step }

// Success prints a completion message in green.
//
//	output.Success("Output: project_map.json")
func Success(msg string) {
	writeLine(&stdout, &outStyles, successOf, msg)
}

// Error prints an error message in red to stderr.
func Error(msg string) {
	writeLine(&stderr, &errStyles, errorOf, msg)
}

// Info prints a top-level status line.
func Info(msg string) {
	writeLine(&stdout, &outStyles, infoOf, msg)
}

// Step prints an indented stage line, e.g. "  Modules: 12 Python files parsed".
func Step(msg string) {
	writeLine(&stdout, &outStyles, stepOf, "  "+msg)
}

// Stepf is Step with formatting.
func Stepf(format string, args ...any) {
	Step(fmt.Sprintf(format, args...))
}

// Verbose prints a debug line only when verbose mode is enabled.
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()
	if enabled {
		writeLine(&stdout, &outStyles, stepOf, "    "+msg)
	}
}

// Width returns the column count of the terminal attached to stdout, or 0
// when stdout is not a terminal.
func Width() int {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil {
		return 0
	}
	return width
}

// Wrap joins items with ", ", starting a new line whenever the next item
// would pass width columns. The first line is assumed to start at column
// len(indent) and continuation lines begin with indent. A width of zero or
// less disables wrapping.
func Wrap(items []string, width int, indent string) string {
	if width <= 0 {
		return strings.Join(items, ", ")
	}

	var b strings.Builder
	col := len(indent)
	for i, item := range items {
		if i > 0 {
			b.WriteString(",")
			col++
			if col+1+len(item) > width {
				b.WriteString("\n" + indent)
				col = len(indent)
			} else {
				b.WriteString(" ")
				col++
			}
		}
		b.WriteString(item)
		col += len(item)
	}
	return b.String()
}
