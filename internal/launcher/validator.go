package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/integrity"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/probe"
)

// IntegrityChecker pins an accepted launcher to known content.
// *integrity.Verifier satisfies it.
type IntegrityChecker interface {
	Verify(path string) (*integrity.Result, error)
}

// Config holds configuration for a Validator.
type Config struct {
	// Target identifies the runtime. Zero value means PHP.
	Target Target
	// Runner executes the version query. Nil means a probe.ExecRunner with
	// the default timeout.
	Runner probe.Runner
	// Integrity, if set, is consulted after the banner matched.
	Integrity IntegrityChecker
	// Logger is optional.
	Logger *slog.Logger
}

// Validator checks candidates against a Target.
type Validator struct {
	target    Target
	runner    probe.Runner
	integrity IntegrityChecker
	lookPath  func(string) (string, error)
	log       *slog.Logger
}

// NewValidator creates a validator.
func NewValidator(cfg Config) (*Validator, error) {
	target := cfg.Target
	if target == (Target{}) {
		target = PHP
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	runner := cfg.Runner
	if runner == nil {
		runner = probe.NewExecRunner(probe.DefaultTimeout, log)
	}

	return &Validator{
		target:    target,
		runner:    runner,
		integrity: cfg.Integrity,
		lookPath:  exec.LookPath,
		log:       log,
	}, nil
}

// Target returns the target the validator matches against.
func (v *Validator) Target() Target {
	return v.target
}

// Validate runs the candidate with the target's version flag and classifies
// the result. It never returns an error; rejections live in the Verdict.
func (v *Validator) Validate(ctx context.Context, candidate string) Verdict {
	verdict := v.validate(ctx, candidate)
	v.log.Debug("validated candidate",
		"candidate", candidate,
		"resolved", verdict.Resolved,
		"outcome", verdict.Outcome.String(),
		"cause", verdict.Cause,
	)
	return verdict
}

func (v *Validator) validate(ctx context.Context, candidate string) Verdict {
	verdict := Verdict{Candidate: candidate}

	if candidate == "" {
		verdict.Outcome = NotFound
		verdict.Cause = errors.New("empty path")
		return verdict
	}

	resolved, outcome, err := v.resolve(candidate)
	if err != nil {
		verdict.Outcome = outcome
		verdict.Cause = err
		return verdict
	}
	verdict.Resolved = resolved

	result := v.runner.Run(ctx, resolved, v.target.VersionFlag)
	if !result.OK() {
		verdict.Outcome, verdict.Cause = rejection(result)
		return verdict
	}

	if !v.target.MatchBanner(result.Stdout) {
		verdict.Outcome = WrongProgram
		verdict.Cause = fmt.Errorf("unexpected version output: %q", firstLine(result.Stdout))
		return verdict
	}

	if v.integrity != nil {
		pin, err := v.integrity.Verify(resolved)
		if err != nil {
			verdict.Outcome = Untrusted
			verdict.Cause = err
			return verdict
		}
		v.log.Debug("integrity pin passed", "path", resolved, "method", pin.Method.String())
	}

	verdict.Outcome = Accepted
	return verdict
}

// rejection maps a failed probe onto an Outcome and its cause.
func rejection(result probe.Result) (Outcome, error) {
	switch result.Reason {
	case probe.ReasonPermission:
		return PermissionDenied, result.Err
	case probe.ReasonTimeout:
		return Timeout, result.Err
	case probe.ReasonStderr:
		return WrongProgram, fmt.Errorf("wrote to stderr: %s", firstLine(result.Stderr))
	default:
		if result.Err != nil {
			return NotFound, result.Err
		}
		return NotFound, errors.New(result.Reason.String())
	}
}

// resolve turns a candidate into the file to execute. Bare command names go
// through the host's PATH search; anything that looks like a path must be an
// existing regular file.
func (v *Validator) resolve(candidate string) (string, Outcome, error) {
	if isBareCommand(candidate) {
		path, err := v.lookPath(candidate)
		if err != nil {
			return "", NotFound, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return "", NotFound, err
		}
		if !info.Mode().IsRegular() {
			return "", NotFound, fmt.Errorf("%s is not a regular file", path)
		}
		return path, Accepted, nil
	}

	info, err := os.Stat(candidate)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return "", PermissionDenied, err
		}
		return "", NotFound, err
	}
	if !info.Mode().IsRegular() {
		return "", NotFound, fmt.Errorf("%s is not a regular file", candidate)
	}
	return candidate, Accepted, nil
}

// isBareCommand reports whether candidate is a command name rather than a path.
func isBareCommand(candidate string) bool {
	if filepath.IsAbs(candidate) || filepath.VolumeName(candidate) != "" {
		return false
	}
	return !strings.ContainsAny(candidate, `/\`)
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
