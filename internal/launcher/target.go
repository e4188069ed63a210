// Package launcher decides whether a candidate path is the runtime launcher
// phpfind is looking for.
//
// A candidate is accepted only after it has been run with its version flag
// and the first two lines of output carry the product and vendor tokens.
// Rejections are reported as a Verdict so callers can branch on the reason
// without string matching.
package launcher

import (
	"errors"
	"fmt"
	"strings"
)

// Target identifies the runtime being located.
type Target struct {
	// Name is the human-readable runtime name used in prompts.
	Name string
	// Command is the bare command resolved through the host's PATH.
	Command string
	// VersionFlag is the single flag that makes the launcher print its banner.
	VersionFlag string
	// ProductToken must appear on the first line of the banner.
	ProductToken string
	// VendorToken must appear on the second line of the banner.
	VendorToken string
}

// PHP is the default target.
var PHP = Target{
	Name:         "PHP",
	Command:      "php",
	VersionFlag:  "-v",
	ProductToken: "PHP",
	VendorToken:  "The PHP Group",
}

// Validate checks that every field needed for matching is set.
func (t Target) Validate() error {
	var missing []string
	if strings.TrimSpace(t.Command) == "" {
		missing = append(missing, "command")
	}
	if strings.TrimSpace(t.VersionFlag) == "" {
		missing = append(missing, "version flag")
	}
	if t.ProductToken == "" {
		missing = append(missing, "product token")
	}
	if t.VendorToken == "" {
		missing = append(missing, "vendor token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("invalid target: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// DisplayName returns Name, or the command when no name is set.
func (t Target) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.Command
}

// MatchBanner reports whether version output identifies the target: line 0
// must contain ProductToken and line 1 must contain VendorToken.
func (t Target) MatchBanner(output string) bool {
	lines := strings.Split(output, "\n")
	if len(lines) < 2 {
		return false
	}
	return strings.Contains(lines[0], t.ProductToken) && strings.Contains(lines[1], t.VendorToken)
}

// Outcome is the classification of a validation attempt.
type Outcome int

const (
	// Accepted means the candidate is the target launcher.
	Accepted Outcome = iota
	// NotFound means the candidate is missing, not a regular file, or produced no output.
	NotFound
	// WrongProgram means the candidate ran but did not identify as the target.
	WrongProgram
	// Timeout means the candidate did not answer before the probe deadline.
	Timeout
	// PermissionDenied means the candidate exists but could not be executed.
	PermissionDenied
	// Untrusted means the candidate identified correctly but failed integrity pinning.
	Untrusted
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case NotFound:
		return "not found"
	case WrongProgram:
		return "wrong program"
	case Timeout:
		return "timeout"
	case PermissionDenied:
		return "permission denied"
	case Untrusted:
		return "untrusted"
	default:
		return "unknown"
	}
}

// Sentinel errors matched by ValidationError.Is.
var (
	ErrNotFound         = errors.New("launcher not found")
	ErrWrongProgram     = errors.New("not the expected launcher")
	ErrTimeout          = errors.New("launcher did not answer in time")
	ErrPermissionDenied = errors.New("launcher is not executable")
	ErrUntrusted        = errors.New("launcher failed integrity verification")
)

func (o Outcome) sentinel() error {
	switch o {
	case NotFound:
		return ErrNotFound
	case WrongProgram:
		return ErrWrongProgram
	case Timeout:
		return ErrTimeout
	case PermissionDenied:
		return ErrPermissionDenied
	case Untrusted:
		return ErrUntrusted
	default:
		return nil
	}
}

// ValidationError describes why a candidate was rejected.
type ValidationError struct {
	Candidate string
	Outcome   Outcome
	Cause     error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Candidate, e.Outcome, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Candidate, e.Outcome)
}

// Unwrap returns the underlying cause.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// Is matches the sentinel error for the outcome.
func (e *ValidationError) Is(target error) bool {
	s := e.Outcome.sentinel()
	return s != nil && target == s
}

// Verdict is the result of validating one candidate.
type Verdict struct {
	// Candidate is the path or command as given.
	Candidate string
	// Resolved is the file that was executed; empty when nothing was run.
	Resolved string
	// Outcome classifies the result.
	Outcome Outcome
	// Cause carries the underlying error for rejections, if any.
	Cause error
}

// Accepted reports whether the candidate was accepted.
func (v Verdict) Accepted() bool {
	return v.Outcome == Accepted
}

// Err converts a rejection into a *ValidationError; nil when accepted.
func (v Verdict) Err() error {
	if v.Accepted() {
		return nil
	}
	return &ValidationError{Candidate: v.Candidate, Outcome: v.Outcome, Cause: v.Cause}
}
