// Package config handles configuration loading and saving.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/protocol"
)

const (
	configDirName  = ".scout"
	configFileName = "config.yaml"
)

// ErrNoBackend is returned by Validate when no backend URL is configured.
var ErrNoBackend = errors.New("backend URL is not configured; run 'scout onboard' or set SCOUT_BACKEND_URL")

var configDirOverride string

// SetConfigDir overrides the config directory for the current process.
// Empty value clears the override.
func SetConfigDir(dir string) {
	configDirOverride = strings.TrimSpace(dir)
}

// Config is the root configuration structure.
type Config struct {
	Backend BackendConfig `json:"backend" yaml:"backend"`
	UI      UIConfig      `json:"ui,omitempty" yaml:"ui,omitempty"`
	Web     WebConfig     `json:"web,omitempty" yaml:"web,omitempty"`
	Logging LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// BackendConfig locates the research backend.
type BackendConfig struct {
	URL      string `json:"url" yaml:"url"`                                 // e.g. http://localhost:8000
	ChatPath string `json:"chatPath,omitempty" yaml:"chatPath,omitempty"`   // defaults to /chat
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`   // v1 or v2
}

// UIConfig tunes the renderers.
type UIConfig struct {
	PreviewLimit int    `json:"previewLimit,omitempty" yaml:"previewLimit,omitempty"` // fetched-page previews per turn
	Width        int    `json:"width,omitempty" yaml:"width,omitempty"`               // plain-mode wrap width
	Prompt       string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
}

// WebConfig configures the browser mirror.
type WebConfig struct {
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"` // default: 127.0.0.1:8080
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Level   string `json:"level,omitempty" yaml:"level,omitempty"`   // debug, info, warn, error
	Stdout  bool   `json:"stdout,omitempty" yaml:"stdout,omitempty"` // mirror to stderr
	File    string `json:"file,omitempty" yaml:"file,omitempty"`     // relative to the config dir
}

// ConfigDir returns ~/.scout unless overridden.
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the config file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the config file, applies defaults and overlays SCOUT_*
// environment variables. A missing file is not an error.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Validate reports configuration that would make every stream fail.
func (c *Config) Validate() error {
	raw := strings.TrimSpace(c.Backend.URL)
	if raw == "" {
		return ErrNoBackend
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: expected scheme and host", raw)
	}
	if _, err := c.ProtocolVersion(); err != nil {
		return err
	}
	return nil
}

// ProtocolVersion parses Backend.Protocol.
func (c *Config) ProtocolVersion() (protocol.Version, error) {
	return protocol.ParseVersion(c.Backend.Protocol)
}

// BuildLoggerConfig converts the logging section for logger.Init.
func (c *Config) BuildLoggerConfig() logger.Config {
	enabled := true
	if c.Logging.Enabled != nil {
		enabled = *c.Logging.Enabled
	}
	return logger.Config{
		Enabled: enabled,
		Level:   c.Logging.Level,
		Stdout:  c.Logging.Stdout,
		File:    c.Logging.File,
	}
}
