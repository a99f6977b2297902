// Package remote runs a payload on the EDA host through the ssh client binary,
// inheriting the caller's terminal and reporting the remote exit status verbatim.
package remote

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/alessio/shellescape"
	"github.com/mattn/go-isatty"

	"edaproxy/internal/config"
	"edaproxy/internal/logger"
)

const (
	// ExitInterrupted is returned when the caller is interrupted while the session runs.
	ExitInterrupted = 130
	// ExitNotStarted is returned when the ssh binary itself could not be started.
	ExitNotStarted = 127
)

// Options are per-invocation switches on top of the connection settings.
type Options struct {
	// X11 requests graphical display forwarding for GUI-class tools.
	X11 bool
}

// Executor spawns one remote session per Execute call.
type Executor struct {
	Settings config.Connection

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTerminal reports whether the caller's input is an interactive terminal.
	IsTerminal func() bool

	// Interrupts delivers local interrupts. When nil, Execute subscribes to os.Interrupt.
	Interrupts <-chan os.Signal
}

// New returns an Executor bound to the process's standard streams.
func New(settings config.Connection) *Executor {
	return &Executor{
		Settings:   settings,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		IsTerminal: stdinIsTerminal,
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Command assembles the ssh argv: binary, configured options in order, optional -X,
// -t when stdin is a terminal, user@host, then the payload as one argument.
func (e *Executor) Command(payload string, opts Options) []string {
	argv := make([]string, 0, len(e.Settings.SSHOptions)+5)
	argv = append(argv, e.Settings.SSHBinary)
	argv = append(argv, e.Settings.SSHOptions...)
	if opts.X11 {
		argv = append(argv, "-X")
	}
	if e.IsTerminal != nil && e.IsTerminal() {
		argv = append(argv, "-t")
	}
	argv = append(argv, e.Settings.Target(), payload)
	return argv
}

// Execute runs payload remotely and blocks until the session ends. The result is the
// remote exit status, 128+N if ssh died from signal N, or ExitInterrupted if the caller
// was interrupted while waiting.
func (e *Executor) Execute(payload string, opts Options) int {
	argv := e.Command(payload, opts)
	logger.Debug("[DEBUG] Executing: %s\n", shellescape.QuoteCommand(argv))

	interrupts := e.Interrupts
	if interrupts == nil {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt)
		defer signal.Stop(sigCh)
		interrupts = sigCh
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = e.Stdin
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Start(); err != nil {
		logger.Error("[ERROR] Failed to start %s: %v\n", argv[0], err)
		return ExitNotStarted
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		code := exitCode(cmd.ProcessState, err)
		if interruptedDuring(interrupts, code != 0) {
			return ExitInterrupted
		}
		return code
	case <-interrupts:
		// With -t the remote side receives ^C as input, so this only fires for
		// non-interactive sessions or an explicit kill -INT of the wrapper.
		stopSession(cmd, done)
		return ExitInterrupted
	}
}

// interruptGrace bounds how long a failed session waits for an interrupt that raced
// its exit. A terminal ^C reaches ssh and the wrapper together, and ssh may be reaped
// before the runtime forwards the wrapper's copy of the signal.
var interruptGrace = 50 * time.Millisecond

// interruptedDuring reports a pending interrupt, waiting up to interruptGrace for a
// late one when linger is set.
func interruptedDuring(interrupts <-chan os.Signal, linger bool) bool {
	select {
	case <-interrupts:
		return true
	default:
	}
	if !linger {
		return false
	}
	select {
	case <-interrupts:
		return true
	case <-time.After(interruptGrace):
		return false
	}
}

// killAfter is how long ssh gets to restore the terminal and exit after SIGINT.
var killAfter = 2 * time.Second

// stopSession forwards the interrupt to ssh and kills it only if it does not exit.
func stopSession(cmd *exec.Cmd, done <-chan error) {
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		logger.Debug("[DEBUG] Failed to interrupt session: %v\n", err)
	}
	select {
	case <-done:
	case <-time.After(killAfter):
		logger.Debug("[DEBUG] Session ignored interrupt, killing it\n")
		_ = cmd.Process.Kill()
		<-done
	}
}

func exitCode(state *os.ProcessState, err error) int {
	if state == nil {
		if err != nil {
			logger.Error("[ERROR] Remote session failed: %v\n", err)
		}
		return 1
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		logger.Debug("[DEBUG] Wait returned %v\n", err)
	}
	return state.ExitCode()
}
