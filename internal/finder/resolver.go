package finder

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/launcher"
	"github.com/ZebulonRouseFrantzich/phpfind/internal/platform"
)

// SourcePrompt names the interactive fallback in Result.Source.
const SourcePrompt = "prompt"

// Asker is the interactive fallback. *Prompter satisfies it.
type Asker interface {
	Prompt(ctx context.Context) (string, error)
}

// Config holds configuration for a Resolver.
type Config struct {
	// Sources are tried in order. Nil means no automated discovery.
	Sources []Source
	// Validator checks every candidate a source yields.
	Validator Validator
	// Prompter is consulted last, and only when Resolve is allowed to prompt.
	Prompter Asker
	// Logger is optional.
	Logger *slog.Logger
}

// Attempt records the verdict for one candidate.
type Attempt struct {
	Source  string
	Verdict launcher.Verdict
}

// Result is the detailed outcome of a resolution.
type Result struct {
	// Path is the accepted launcher; empty when Found is false.
	Path  string
	Found bool
	// Source names where Path came from.
	Source string
	// Attempts lists every candidate validated, in order.
	Attempts []Attempt
	// PromptErr is why the prompt ended without a path, if it ran.
	PromptErr error
}

// Resolver composes sources, validation and the prompt fallback.
type Resolver struct {
	sources   []Source
	validator Validator
	prompter  Asker
	log       *slog.Logger
}

// NewResolver creates a resolver.
func NewResolver(cfg Config) *Resolver {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		sources:   cfg.Sources,
		validator: cfg.Validator,
		prompter:  cfg.Prompter,
		log:       log,
	}
}

// Resolve returns the first validated launcher path. When every source fails
// it prompts if allowPrompt is set and a prompter is configured. It never
// fails with an error: absence is reported as ("", false).
func (r *Resolver) Resolve(ctx context.Context, allowPrompt bool) (string, bool) {
	res := r.ResolveDetailed(ctx, allowPrompt)
	return res.Path, res.Found
}

// ResolveDetailed is Resolve with the per-candidate trail.
func (r *Resolver) ResolveDetailed(ctx context.Context, allowPrompt bool) Result {
	var res Result

	if r.validator != nil {
		for _, src := range r.sources {
			for _, candidate := range src.Candidates(ctx) {
				if ctx.Err() != nil {
					return res
				}
				verdict := r.validator.Validate(ctx, candidate)
				res.Attempts = append(res.Attempts, Attempt{Source: src.Name(), Verdict: verdict})
				if verdict.Accepted() {
					r.log.Debug("launcher resolved", "source", src.Name(), "path", candidate)
					res.Path, res.Found, res.Source = candidate, true, src.Name()
					return res
				}
			}
		}
	}

	if !allowPrompt || r.prompter == nil {
		r.log.Debug("launcher not found", "attempts", len(res.Attempts))
		return res
	}

	path, err := r.prompter.Prompt(ctx)
	if err != nil {
		if !errors.Is(err, ErrInputClosed) && !errors.Is(err, context.Canceled) {
			r.log.Warn("prompt failed", "error", err)
		}
		res.PromptErr = err
		return res
	}
	res.Path, res.Found, res.Source = path, true, SourcePrompt
	return res
}

// DefaultSources returns the standard cache, command and defaults sources.
func DefaultSources(store Store, target launcher.Target, family platform.Family, table DefaultLocationTable, extra []string, logger *slog.Logger) []Source {
	return []Source{
		CacheSource{Store: store, Logger: logger},
		CommandSource{Command: target.Command},
		DefaultsSource{Table: table, Family: family, Extra: extra},
	}
}
