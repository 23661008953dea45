package internal

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/moby/term"
)

// Writer provides methods for output operations that library code needs.
// This allows callers to control where and how output is written, rather than
// forcing library code to use global state like fmt.Print or log.Fatal.
type Writer interface {
	// Print writes a message to the output stream.
	Print(v ...interface{})

	// Printf writes a formatted message to the output stream.
	Printf(format string, v ...interface{})

	// Println writes a message with a newline to the output stream.
	Println(v ...interface{})

	// Warning writes a warning message to the error stream.
	Warning(v ...interface{})

	// Warningf writes a formatted warning message to the error stream.
	Warningf(format string, v ...interface{})

	// Errorf writes a formatted error message to the error stream.
	Errorf(format string, v ...interface{})

	// Verbosef writes a formatted message only when verbose output is enabled.
	Verbosef(format string, v ...interface{})

	// Debugf writes a formatted message only when debug output is enabled.
	Debugf(format string, v ...interface{})

	// Step starts a progress line for a unit of work. The caller must finish
	// it with Done or Fail.
	Step(header string) *Step

	// GetWriter returns the underlying io.Writer for direct writing.
	GetWriter() io.Writer
}

var (
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// StandardWriter implements Writer using standard output/error streams.
type StandardWriter struct {
	out io.Writer
	err io.Writer

	styled  bool
	verbose bool
	debug   bool

	// pending is set while a Step header is on the current line.
	pending bool
}

// NewStandardWriter creates a Writer that outputs to stdout and stderr.
// Status words are styled when stdout is a terminal.
func NewStandardWriter() *StandardWriter {
	_, stdout, stderr := term.StdStreams()
	return NewCustomWriter(stdout, stderr)
}

// NewCustomWriter creates a Writer with custom output streams.
// The out stream is used for normal output, while err is used for warnings and errors.
func NewCustomWriter(out, err io.Writer) *StandardWriter {
	_, isTerminal := term.GetFdInfo(out)

	return &StandardWriter{
		out:    out,
		err:    err,
		styled: isTerminal,
	}
}

// SetVerbosity enables verbose and debug output. Debug output implies verbose output.
func (w *StandardWriter) SetVerbosity(verbose, debug bool) {
	w.verbose = verbose || debug
	w.debug = debug
}

// IsVerbose reports whether verbose output is enabled.
func (w *StandardWriter) IsVerbose() bool {
	return w.verbose
}

// Print writes a message to the output stream without adding a newline.
func (w *StandardWriter) Print(v ...interface{}) {
	w.breakLine()
	fmt.Fprint(w.out, v...)
}

// Printf writes a formatted message to the output stream.
func (w *StandardWriter) Printf(format string, v ...interface{}) {
	w.breakLine()
	fmt.Fprintf(w.out, format, v...)
}

// Println writes a message with a newline to the output stream.
func (w *StandardWriter) Println(v ...interface{}) {
	w.breakLine()
	fmt.Fprintln(w.out, v...)
}

// Warning writes a warning message to the error stream with a "Warning: " prefix.
func (w *StandardWriter) Warning(v ...interface{}) {
	w.breakLine()
	fmt.Fprint(w.err, w.style(warningStyle, "Warning: "))
	fmt.Fprintln(w.err, v...)
}

// Warningf writes a formatted warning message to the error stream with a "Warning: " prefix.
func (w *StandardWriter) Warningf(format string, v ...interface{}) {
	w.breakLine()
	fmt.Fprintf(w.err, w.style(warningStyle, "Warning: ")+format+"\n", v...)
}

// Errorf writes a formatted error message to the error stream with an "ERROR: " prefix.
func (w *StandardWriter) Errorf(format string, v ...interface{}) {
	w.breakLine()
	fmt.Fprintf(w.err, w.style(failedStyle, "ERROR: ")+format+"\n", v...)
}

// Verbosef writes a formatted message to the output stream when verbose output is enabled.
func (w *StandardWriter) Verbosef(format string, v ...interface{}) {
	if !w.verbose {
		return
	}
	w.Printf(ensureNewline(format), v...)
}

// Debugf writes a formatted message to the output stream when debug output is enabled.
func (w *StandardWriter) Debugf(format string, v ...interface{}) {
	if !w.debug {
		return
	}
	w.Printf("DEBUG: "+ensureNewline(format), v...)
}

// GetWriter returns the underlying io.Writer for direct writing to the output stream.
func (w *StandardWriter) GetWriter() io.Writer {
	return w.out
}

// Step writes the header and leaves the line open for the result.
func (w *StandardWriter) Step(header string) *Step {
	w.breakLine()
	fmt.Fprint(w.out, header)
	w.pending = true

	return &Step{
		writer: w,
		header: header,
		start:  time.Now(),
	}
}

func (w *StandardWriter) breakLine() {
	if w.pending {
		fmt.Fprintln(w.out)
		w.pending = false
	}
}

func (w *StandardWriter) style(s lipgloss.Style, text string) string {
	if !w.styled {
		return text
	}
	return s.Render(text)
}

// Step is a progress line started by Writer.Step.
type Step struct {
	writer *StandardWriter
	header string
	start  time.Time
}

// Done finishes the step successfully. The detail, if any, is included
// alongside the elapsed time.
func (s *Step) Done(detail string) {
	s.finish(s.writer.style(doneStyle, "DONE!"), detail)
}

// Fail finishes the step unsuccessfully.
func (s *Step) Fail(err error) {
	detail := ""
	if err != nil {
		detail = firstLine(err.Error())
	}
	s.finish(s.writer.style(failedStyle, "FAILED!"), detail)
}

func (s *Step) finish(status, detail string) {
	w := s.writer
	if !w.pending {
		// Output was written after the header; restate it so the status
		// is attributable.
		fmt.Fprint(w.out, s.header)
	}
	w.pending = false

	elapsed := time.Since(s.start).Round(10 * time.Millisecond)
	if detail != "" {
		fmt.Fprintf(w.out, "%s (%s, %s)\n", status, elapsed, detail)
		return
	}
	fmt.Fprintf(w.out, "%s (%s)\n", status, elapsed)
}

func ensureNewline(format string) string {
	if strings.HasSuffix(format, "\n") {
		return format
	}
	return format + "\n"
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}

var _ Writer = (*StandardWriter)(nil)
