package channel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/view"
)

// ErrRejected is returned by Ask for a blank question.
var ErrRejected = errors.New("question rejected")

// PlainFrontend is a line-based REPL for pipes and dumb terminals. Step
// transitions are printed as they happen and the rendered answer once the
// stream ends.
type PlainFrontend struct {
	opts    Options
	mgr     *session.Manager
	printer *stepPrinter
}

// NewPlainFrontend creates the line-based frontend.
func NewPlainFrontend(opts Options) *PlainFrontend {
	opts = opts.withDefaults()
	p := &PlainFrontend{
		opts:    opts,
		printer: &stepPrinter{out: opts.Out},
	}
	p.mgr = session.New(opts.Dialer,
		session.WithVersion(opts.Version),
		session.WithObserver(p.printer.observe),
		session.WithLogFields("frontend", "plain"),
	)
	return p
}

func (p *PlainFrontend) Name() string { return "plain" }

// Snapshot returns the current session state.
func (p *PlainFrontend) Snapshot() session.Snapshot { return p.mgr.Snapshot() }

// Run reads one question per line until EOF, "exit" or ctx is cancelled.
func (p *PlainFrontend) Run(ctx context.Context) error {
	defer p.mgr.Close()
	logger.Info("interactive session started (plain mode)", "protocol", p.opts.Version)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(p.opts.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(p.opts.Out, p.opts.Prompt)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(p.opts.Out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(p.opts.Out)
			return nil
		}

		text := strings.TrimSpace(line)
		switch text {
		case "":
			continue
		case "exit", "quit", "/exit", "/quit":
			fmt.Fprintln(p.opts.Out, "Goodbye!")
			return nil
		}

		if _, err := p.Ask(ctx, line); err != nil && ctx.Err() == nil {
			fmt.Fprintln(p.opts.Out, "error:", err)
		}
	}
}

// Ask streams one question to completion and prints the result. The
// returned error carries the session's error message when the stream
// failed. Cancelling ctx cancels the stream.
func (p *PlainFrontend) Ask(ctx context.Context, question string) (session.Snapshot, error) {
	if !p.mgr.SendMessage(question) {
		s := p.mgr.Snapshot()
		if s.Status == session.StatusError {
			return s, errors.New(s.Err)
		}
		return s, ErrRejected
	}

	done := make(chan struct{})
	go func() {
		p.mgr.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		p.mgr.Cancel()
		<-done
	}

	s := p.mgr.Snapshot()
	if turn, ok := s.LastTurn(); ok {
		p.printer.answer(turn, p.opts.View)
	}
	if s.Status == session.StatusError {
		return s, errors.New(s.Err)
	}
	return s, ctx.Err()
}

// stepPrinter prints each step the first time it reaches a new status.
type stepPrinter struct {
	mu   sync.Mutex
	out  io.Writer
	turn int
	seen map[string]view.StepStatus
}

func (sp *stepPrinter) observe(s session.Snapshot) {
	turn, ok := s.LastTurn()
	if !ok {
		return
	}
	sp.mu.Lock()
	defer sp.mu.Unlock()

	if len(s.Turns) != sp.turn {
		sp.turn = len(s.Turns)
		sp.seen = make(map[string]view.StepStatus)
	}
	for _, step := range view.DeriveSteps(s.Version, turn.Messages) {
		if step.Status == view.StepPending || sp.seen[step.Key] == step.Status {
			continue
		}
		sp.seen[step.Key] = step.Status
		fmt.Fprintln(sp.out, "  "+view.RenderStep(step))
	}
}

func (sp *stepPrinter) answer(t session.Turn, opts view.Options) {
	sp.mu.Lock()
	defer sp.mu.Unlock()

	parts := []string{}
	if a := view.ResolveAnswer(t.Messages); strings.TrimSpace(a) != "" {
		parts = append(parts, view.RenderAnswer(a, opts.Width))
	}
	if refs := view.References(t.Messages); len(refs) > 0 {
		parts = append(parts, view.RenderReferences(refs))
	}
	if len(parts) > 0 {
		fmt.Fprintln(sp.out)
		fmt.Fprintln(sp.out, strings.Join(parts, "\n\n"))
		fmt.Fprintln(sp.out)
	}
}
