package channel

import (
	"context"
	"embed"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/view"
)

//go:embed web/index.html
var webFS embed.FS

const (
	defaultWebAddr   = "127.0.0.1:8080"
	webWriteTimeout  = 5 * time.Second
	webShutdownGrace = 3 * time.Second
)

// ClientFrame is a frame sent by the browser.
type ClientFrame struct {
	Type     string `json:"type"` // "ask" or "cancel"
	Question string `json:"question,omitempty"`
}

// ServerFrame is a frame pushed to the browser.
type ServerFrame struct {
	Type    string            `json:"type"` // "session"
	Session view.SessionModel `json:"session"`
}

// WebFrontend mirrors the session in a browser. Every websocket gets its own
// session manager.
type WebFrontend struct {
	opts    Options
	addr    string
	sockets atomic.Int64
}

// NewWebFrontend creates the browser frontend listening on addr.
func NewWebFrontend(addr string, opts Options) *WebFrontend {
	if strings.TrimSpace(addr) == "" {
		addr = defaultWebAddr
	}
	return &WebFrontend{opts: opts.withDefaults(), addr: addr}
}

func (f *WebFrontend) Name() string { return "web" }

// Handler returns the HTTP routes: the page on / and the socket on /ws.
func (f *WebFrontend) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", f.serveIndex)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		f.serveSocket(ctx, w, r)
	})
	return mux
}

func (f *WebFrontend) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", f.addr)
	if err != nil {
		return err
	}
	return f.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (f *WebFrontend) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: f.Handler(ctx), ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("web frontend listening", "addr", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), webShutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("web frontend shutdown", "err", err)
		}
		return nil
	}
}

func (f *WebFrontend) serveIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (f *WebFrontend) serveSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	id := f.sockets.Add(1)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	relay := session.NewRelay()
	mgr := session.New(f.opts.Dialer,
		session.WithVersion(f.opts.Version),
		session.WithObserver(relay.Publish),
		session.WithContext(ctx),
		session.WithLogFields("frontend", "web", "socket", id),
	)
	defer mgr.Close()
	logger.Info("websocket connected", "socket", id, "remote", r.RemoteAddr)

	// Initial state so the page can render before the first question.
	relay.Publish(mgr.Snapshot())

	go func() {
		defer cancel()
		for {
			var frame ClientFrame
			if err := wsjson.Read(ctx, conn, &frame); err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					logger.Debug("websocket read ended", "socket", id, "err", err)
				}
				return
			}
			switch frame.Type {
			case "ask":
				mgr.SendMessage(frame.Question)
			case "cancel":
				mgr.Cancel()
			default:
				logger.Warn("unknown websocket frame", "socket", id, "type", frame.Type)
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			logger.Info("websocket closed", "socket", id)
			return
		case <-relay.Ready():
			s, ok := relay.Take()
			if !ok {
				continue
			}
			frame := ServerFrame{Type: "session", Session: view.NewSessionModel(s, f.opts.View)}
			writeCtx, cancelWrite := context.WithTimeout(ctx, webWriteTimeout)
			err := wsjson.Write(writeCtx, conn, frame)
			cancelWrite()
			if err != nil {
				logger.Warn("websocket write failed", "socket", id, "err", err)
				return
			}
		}
	}
}
