// Package health collects a diagnostic snapshot of the client: runtime,
// configuration paths and backend reachability.
package health

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"time"
)

const defaultProbeTimeout = 5 * time.Second

// Status values.
const (
	StatusHealthy      = "healthy"
	StatusDegraded     = "degraded"
	StatusUnconfigured = "unconfigured"
)

// Options selects what Collect inspects.
type Options struct {
	ConfigPath string
	LogPath    string
	BackendURL string
	Protocol   string
	ConfigErr  error // result of config validation, if it failed

	Timeout    time.Duration
	HTTPClient *http.Client
}

func (o Options) normalize() Options {
	if o.Timeout <= 0 {
		o.Timeout = defaultProbeTimeout
	}
	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}
	return o
}

type Snapshot struct {
	Status    string       `json:"status" yaml:"status"`
	Runtime   RuntimeInfo  `json:"runtime" yaml:"runtime"`
	Paths     PathsInfo    `json:"paths" yaml:"paths"`
	Backend   *BackendInfo `json:"backend,omitempty" yaml:"backend,omitempty"`
	Problem   string       `json:"problem,omitempty" yaml:"problem,omitempty"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
}

type RuntimeInfo struct {
	Version    string `json:"version" yaml:"version"`
	OS         string `json:"os" yaml:"os"`
	Arch       string `json:"arch" yaml:"arch"`
	Goroutines int    `json:"goroutines" yaml:"goroutines"`
}

type PathsInfo struct {
	Config       string `json:"config" yaml:"config"`
	ConfigExists bool   `json:"configExists" yaml:"configExists"`
	Log          string `json:"log,omitempty" yaml:"log,omitempty"`
}

// BackendInfo is the result of a plain GET against the backend base URL.
// Any HTTP response counts as reachable; the chat endpoint is not called.
type BackendInfo struct {
	URL        string `json:"url" yaml:"url"`
	Protocol   string `json:"protocol" yaml:"protocol"`
	Reachable  bool   `json:"reachable" yaml:"reachable"`
	StatusCode int    `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	LatencyMS  int64  `json:"latencyMs,omitempty" yaml:"latencyMs,omitempty"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Collect returns a health snapshot for the current process.
func Collect(ctx context.Context, opts Options) Snapshot {
	opts = opts.normalize()

	s := Snapshot{
		Status: StatusHealthy,
		Runtime: RuntimeInfo{
			Version:    runtime.Version(),
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			Goroutines: runtime.NumGoroutine(),
		},
		Paths: PathsInfo{
			Config:       opts.ConfigPath,
			ConfigExists: fileExists(opts.ConfigPath),
			Log:          opts.LogPath,
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if opts.ConfigErr != nil {
		s.Status = StatusUnconfigured
		s.Problem = opts.ConfigErr.Error()
		return s
	}

	s.Backend = probe(ctx, opts)
	if !s.Backend.Reachable {
		s.Status = StatusDegraded
		s.Problem = "backend unreachable"
	}
	return s
}

func probe(ctx context.Context, opts Options) *BackendInfo {
	info := &BackendInfo{URL: opts.BackendURL, Protocol: opts.Protocol}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.BackendURL, nil)
	if err != nil {
		info.Error = err.Error()
		return info
	}

	start := time.Now()
	resp, err := opts.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			info.Error = "timed out after " + opts.Timeout.String()
		} else {
			info.Error = err.Error()
		}
		return info
	}
	resp.Body.Close()

	info.Reachable = true
	info.StatusCode = resp.StatusCode
	info.LatencyMS = time.Since(start).Milliseconds()
	return info
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
