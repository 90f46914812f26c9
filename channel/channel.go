// Package channel provides the user-facing frontends: the interactive
// terminal (full-screen or line based) and the browser mirror.
package channel

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/stream"
	"github.com/linanwx/scout/view"
)

// Frontend is one way of talking to the user.
type Frontend interface {
	// Name returns the frontend name (e.g. "tui", "plain", "web").
	Name() string

	// Run serves the user until they quit or ctx is cancelled.
	Run(ctx context.Context) error
}

// Options are shared by all frontends.
type Options struct {
	Dialer  stream.Dialer
	Version protocol.Version
	Prompt  string
	View    view.Options

	In  io.Reader // plain mode input; defaults to os.Stdin
	Out io.Writer // plain mode output; defaults to os.Stdout
}

func (o Options) withDefaults() Options {
	if o.Version == "" {
		o.Version = protocol.DefaultVersion
	}
	if o.Prompt == "" {
		o.Prompt = "> "
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

// NewCLIFrontend returns the full-screen TUI when stdin and stdout are
// terminals, and the line-based frontend otherwise.
func NewCLIFrontend(opts Options) Frontend {
	if opts.In == nil && opts.Out == nil &&
		term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())) {
		return NewTUIFrontend(opts)
	}
	return NewPlainFrontend(opts)
}
