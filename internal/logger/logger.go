package logger

import (
	"io"
	"os"

	"github.com/fatih/color" // Import the fatih/color package for colored console output
)

// Output is where every level writes. It is stderr because stdout belongs to the
// remote tool whose output the proxy forwards untouched.
var Output io.Writer = os.Stderr

// printer returns a printf-style function that writes text in the given color to Output.
// Output is resolved on each call so tests can swap it after package init.
func printer(attr color.Attribute) func(format string, a ...any) {
	c := color.New(attr)
	return func(format string, a ...any) {
		_, _ = c.Fprintf(Output, format, a...)
	}
}

// Info logs informational messages in green color.
var Info = printer(color.FgGreen)

// Warn logs warning messages in bright magenta color.
// Used for per-item failures that do not abort a batch (e.g. a skipped symlink).
var Warn = printer(color.FgHiMagenta)

// Error logs error messages in red color.
var Error = printer(color.FgRed)

// Debug logs debug messages in cyan color if enabled, otherwise is a no-op.
// It starts as a no-op so packages can log before Init runs.
var Debug = func(format string, a ...any) {}

// Init enables or disables debug logging.
// When enabled, Debug prints cyan-colored messages; otherwise Debug silently drops them.
func Init(enableDebug bool) {
	if enableDebug {
		Debug = printer(color.FgCyan)
	} else {
		Debug = func(format string, a ...any) {}
	}
}
