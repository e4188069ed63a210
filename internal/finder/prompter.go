package finder

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZebulonRouseFrantzich/phpfind/internal/launcher"
)

// ErrInputClosed is returned by Prompt when the console reaches end of input
// before a valid path was entered.
var ErrInputClosed = errors.New("input closed before a valid path was entered")

// Validator checks one candidate. *launcher.Validator satisfies it.
type Validator interface {
	Validate(ctx context.Context, candidate string) launcher.Verdict
}

// PrompterConfig holds configuration for a Prompter.
type PrompterConfig struct {
	In        io.Reader
	Out       io.Writer
	Validator Validator
	Store     Store
	// Name is the runtime name shown in messages. Empty means "PHP".
	Name   string
	Logger *slog.Logger
}

// Prompter asks the user for the launcher location until a valid one is
// entered.
//
// Input is read by a single goroutine started on first use, so a line typed
// after a cancelled Prompt is delivered to the next Prompt call. Prompt must
// not be called concurrently.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	validator Validator
	store     Store
	name      string
	log       *slog.Logger

	startReader sync.Once
	lines       chan lineResult
	// inputErr is the terminal read error once the reader goroutine exits.
	inputErr error
}

// NewPrompter creates a prompter.
func NewPrompter(cfg PrompterConfig) *Prompter {
	name := cfg.Name
	if name == "" {
		name = launcher.PHP.Name
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	in := cfg.In
	if in == nil {
		in = strings.NewReader("")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Prompter{
		in:        bufio.NewReader(in),
		out:       out,
		validator: cfg.Validator,
		store:     cfg.Store,
		name:      name,
		log:       log,
	}
}

// Prompt loops until the user enters a path that validates, then saves it to
// the store and returns it. There is no attempt limit. It returns
// ErrInputClosed at end of input and ctx.Err() on cancellation.
//
// Each pass moves through the same states: awaiting input (prompt printed,
// reading a line), validating (the absolute path is checked), then accepted
// (saved and returned) or rejected (message printed, back to awaiting input).
func (p *Prompter) Prompt(ctx context.Context) (string, error) {
	if p.validator == nil {
		return "", errors.New("prompter has no validator")
	}

	fmt.Fprintf(p.out, "Unable to find %s executable.\n", p.name)

	for {
		fmt.Fprintf(p.out, "Please enter the location of the %s launcher on your system: ", p.name)

		line, err := p.readLine(ctx)
		if err != nil {
			return "", err
		}

		path, err := filepath.Abs(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintf(p.out, "\nThe %s server was not found at that location.\n", p.name)
			continue
		}

		verdict := p.validator.Validate(ctx, path)
		switch verdict.Outcome {
		case launcher.Accepted:
			p.save(path)
			return path, nil
		case launcher.PermissionDenied:
			fmt.Fprintf(p.out, "\nThe application does not have executable permission at %s\n", path)
		case launcher.Untrusted:
			fmt.Fprintf(p.out, "\nThe executable at %s failed integrity verification\n", path)
		default:
			fmt.Fprintf(p.out, "\nThe %s server was not found at that location.\n", p.name)
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
}

func (p *Prompter) save(path string) {
	if p.store == nil {
		return
	}
	if err := p.store.Save(path); err != nil {
		p.log.Warn("failed to cache launcher path", "path", path, "error", err)
	}
}

type lineResult struct {
	line string
	err  error
}

// readLines feeds p.lines until the input fails. The final result carries
// the error, possibly together with a last line that had no newline.
func (p *Prompter) readLines() {
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- lineResult{line: line, err: err}
		if err != nil {
			close(p.lines)
			return
		}
	}
}

// readLine returns the next input line, or early if ctx is cancelled. A
// final line without a newline is returned as is; the next call reports
// ErrInputClosed.
func (p *Prompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.inputErr != nil {
		return "", p.closedInput()
	}

	p.startReader.Do(func() {
		p.lines = make(chan lineResult)
		go p.readLines()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-p.lines:
		if !ok {
			return "", p.closedInput()
		}
		if r.err == nil {
			return r.line, nil
		}
		p.inputErr = r.err
		if r.line != "" && errors.Is(r.err, io.EOF) {
			return r.line, nil
		}
		return "", p.closedInput()
	}
}

func (p *Prompter) closedInput() error {
	if errors.Is(p.inputErr, io.EOF) {
		fmt.Fprintln(p.out)
		return ErrInputClosed
	}
	return fmt.Errorf("read input: %w", p.inputErr)
}
