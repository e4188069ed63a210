// Package probe runs short-lived version-query subprocesses and reports
// their outcome as a typed Result instead of an error chain.
package probe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single probe invocation.
const DefaultTimeout = 2 * time.Second

// waitDelay bounds how long Run waits for stdio to drain after the process
// has been killed, in case it left children holding the pipes.
const waitDelay = 250 * time.Millisecond

// Reason tags the outcome of a probe.
type Reason int

const (
	// ReasonOK means the process finished in time with an empty stderr.
	ReasonOK Reason = iota
	// ReasonEmptyCommand means no program was given; nothing was started.
	ReasonEmptyCommand
	// ReasonNotFound means the program does not exist or could not be resolved.
	ReasonNotFound
	// ReasonPermission means the program exists but could not be executed.
	ReasonPermission
	// ReasonTimeout means the process did not finish before the deadline.
	ReasonTimeout
	// ReasonStderr means the process wrote to its standard error stream.
	ReasonStderr
	// ReasonFailed covers any other start or wait failure.
	ReasonFailed
)

// String returns the string representation of the reason
func (r Reason) String() string {
	switch r {
	case ReasonOK:
		return "ok"
	case ReasonEmptyCommand:
		return "empty command"
	case ReasonNotFound:
		return "not found"
	case ReasonPermission:
		return "permission denied"
	case ReasonTimeout:
		return "timeout"
	case ReasonStderr:
		return "error output"
	case ReasonFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of a single probe.
type Result struct {
	// Stdout holds the decoded standard output. Only set when Reason is ReasonOK.
	Stdout string
	// Stderr holds whatever the process wrote to standard error.
	Stderr string
	// Reason tags the outcome.
	Reason Reason
	// Err is the underlying error, if any. A non-zero exit with an empty
	// stderr still yields ReasonOK, with the *exec.ExitError kept here.
	Err error
}

// OK reports whether the probe produced usable output.
func (r Result) OK() bool {
	return r.Reason == ReasonOK
}

// Runner runs a program with arguments and reports the outcome.
type Runner interface {
	Run(ctx context.Context, args ...string) Result
}

// ExecRunner implements Runner with os/exec.
type ExecRunner struct {
	// Timeout bounds each invocation. Zero means DefaultTimeout.
	Timeout time.Duration
	// Logger receives debug output. Nil discards it.
	Logger *slog.Logger
}

// Compile-time verification that ExecRunner implements Runner.
var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner with the given timeout.
func NewExecRunner(timeout time.Duration, logger *slog.Logger) *ExecRunner {
	return &ExecRunner{Timeout: timeout, Logger: logger}
}

// Run starts args[0] with args[1:], supplies no input, and waits up to the
// configured timeout for it to finish.
func (r *ExecRunner) Run(ctx context.Context, args ...string) Result {
	log := r.logger()

	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Result{Reason: ReasonEmptyCommand}
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // G204: probing a user-chosen launcher is the whole point
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Stdin = nil
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	log.Debug("probe finished",
		"args", args,
		"duration", time.Since(start),
		"stdout_bytes", stdout.Len(),
		"stderr_bytes", stderr.Len(),
		"error", err,
	)

	result := Result{Stderr: stderr.String(), Err: err}

	if ctx.Err() != nil {
		result.Reason = ReasonFailed
		result.Err = ctx.Err()
		return result
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		result.Reason = ReasonTimeout
		return result
	}

	if err != nil {
		result.Reason = classify(err)
		if result.Reason != ReasonOK {
			return result
		}
	}

	if stderr.Len() > 0 {
		result.Reason = ReasonStderr
		return result
	}

	result.Reason = ReasonOK
	result.Stdout = strings.ToValidUTF8(stdout.String(), "\uFFFD")
	return result
}

// classify maps a start or wait error onto a Reason. A plain non-zero exit
// maps to ReasonOK so the caller can still inspect stdout.
func classify(err error) Reason {
	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, exec.ErrDot), errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	case errors.As(err, &exitErr):
		return ReasonOK
	default:
		return ReasonFailed
	}
}

func (r *ExecRunner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
