package cli

import (
	"fmt"
	"io"
	"slices"
)

// warning is a non-fatal problem reported after a command ran.
type warning struct {
	msg  string
	hint string
}

func (w warning) String() string {
	if w.hint == "" {
		return "warning: " + w.msg
	}

	return fmt.Sprintf("warning: %s (%s)", w.msg, w.hint)
}

// IO writes command results to stdout and diagnostics to stderr.
//
// Stdout only ever carries rows, ids and counts so it can be piped.
// Warnings are collected while the command runs and written to stderr by
// [IO.Finish], which turns them into exit code 1.
type IO struct {
	out      io.Writer
	errOut   io.Writer
	warnings []warning
}

// NewIO creates a new IO instance.
func NewIO(out, errOut io.Writer) *IO {
	return &IO{out: out, errOut: errOut}
}

// Warn records a warning with a hint on how to resolve it. Repeated
// identical warnings are reported once.
func (o *IO) Warn(msg string, hint string) {
	w := warning{msg: msg, hint: hint}
	if slices.Contains(o.warnings, w) {
		return
	}

	o.warnings = append(o.warnings, w)
}

// Println writes a result line to stdout.
func (o *IO) Println(a ...any) {
	_, _ = fmt.Fprintln(o.out, a...)
}

// Printf writes formatted results to stdout.
func (o *IO) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.out, format, a...)
}

// ErrPrintln writes to stderr.
func (o *IO) ErrPrintln(a ...any) {
	_, _ = fmt.Fprintln(o.errOut, a...)
}

// ErrPrintf writes formatted output to stderr.
func (o *IO) ErrPrintf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.errOut, format, a...)
}

// Finish writes collected warnings to stderr and returns the exit code:
// 1 when anything was warned about, 0 otherwise.
func (o *IO) Finish() int {
	for _, w := range o.warnings {
		_, _ = fmt.Fprintln(o.errOut, w)
	}

	if len(o.warnings) > 0 {
		return 1
	}

	return 0
}
