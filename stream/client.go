package stream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/linanwx/scout/logger"
)

const (
	DefaultChatPath  = "/chat"
	maxErrorBodySize = 4 * 1024
)

// Client opens streams over HTTP against the backend's chat endpoint.
type Client struct {
	baseURL    string
	chatPath   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithChatPath overrides the endpoint path, relative to the base URL.
func WithChatPath(path string) Option {
	return func(c *Client) {
		if strings.TrimSpace(path) != "" {
			c.chatPath = path
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a client for baseURL. The URL is only validated by Open,
// so a client can be built from incomplete configuration and report the
// problem when it is first used.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSpace(baseURL),
		chatPath:   DefaultChatPath,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint builds the stream URL for req.
func (c *Client) Endpoint(req Request) (string, error) {
	if c.baseURL == "" {
		return "", ErrNotConfigured
	}
	base, err := url.Parse(c.baseURL)
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", fmt.Errorf("invalid backend URL %q: must be an absolute http(s) URL", c.baseURL)
	}

	u := base.JoinPath(c.chatPath)
	q := u.Query()
	q.Set("question", req.Question)
	if req.ConversationID != "" {
		q.Set("conversation_id", req.ConversationID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Open starts streaming req. Configuration problems are returned before any
// request is made.
func (c *Client) Open(ctx context.Context, req Request) (Conn, error) {
	endpoint, err := c.Endpoint(req)
	if err != nil {
		return nil, err
	}

	cn := newConn(ctx)
	go c.run(cn, endpoint)
	return cn, nil
}

func (c *Client) run(cn *conn, endpoint string) {
	defer close(cn.events)

	httpReq, err := http.NewRequestWithContext(cn.ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		logger.Error("stream request build failed", "err", err)
		cn.emit(Event{Kind: KindError})
		return
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("Cache-Control", "no-cache")

	logger.Debug("stream opening", "url", endpoint)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if cn.ctx.Err() == nil {
			logger.Error("stream request failed", "err", err)
			cn.emit(Event{Kind: KindError})
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		logger.Error("stream request rejected", "status", resp.StatusCode, "body", string(body))
		var data []byte
		if gjson.ValidBytes(body) {
			data = body
		}
		cn.emit(Event{Kind: KindError, Data: data})
		return
	}

	cn.pump(resp.Body)
}
