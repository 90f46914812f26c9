package channel

import (
	"context"
	"errors"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linanwx/scout/channel/tui"
	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/session"
)

const logBufferSize = 256

// TUIFrontend runs the interactive session in a bubbletea program.
type TUIFrontend struct {
	opts Options
}

// NewTUIFrontend creates the full-screen frontend.
func NewTUIFrontend(opts Options) *TUIFrontend {
	return &TUIFrontend{opts: opts.withDefaults()}
}

func (f *TUIFrontend) Name() string { return "tui" }

func (f *TUIFrontend) Run(ctx context.Context) error {
	relay := session.NewRelay()
	mgr := session.New(f.opts.Dialer,
		session.WithVersion(f.opts.Version),
		session.WithObserver(relay.Publish),
		session.WithContext(ctx),
		session.WithLogFields("frontend", "tui"),
	)
	defer mgr.Close()

	app := tui.NewApp(mgr, relay, tui.Options{Prompt: f.opts.Prompt, View: f.opts.View})
	program := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	// Redirect logger output to the TUI log panel.
	lw := newLogWriter(program)
	logger.Intercept(lw)
	defer func() {
		logger.Restore()
		lw.stop()
	}()

	logger.Info("interactive session started", "protocol", f.opts.Version)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// logWriter forwards log lines to the TUI log panel. Writes never block:
// logging can happen inside Update, where program.Send would deadlock, so
// lines are queued and dropped when the queue is full.
type logWriter struct {
	program *tea.Program
	lines   chan string
	done    chan struct{}
	once    sync.Once
}

func newLogWriter(p *tea.Program) *logWriter {
	w := &logWriter{
		program: p,
		lines:   make(chan string, logBufferSize),
		done:    make(chan struct{}),
	}
	go w.forward()
	return w
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line == "" {
			continue
		}
		select {
		case w.lines <- line:
		default:
		}
	}
	return len(p), nil
}

func (w *logWriter) forward() {
	for {
		select {
		case line := <-w.lines:
			w.program.Send(tui.LogLineMsg{Line: line})
		case <-w.done:
			return
		}
	}
}

func (w *logWriter) stop() {
	w.once.Do(func() { close(w.done) })
}
