package config

import "github.com/linanwx/scout/stream"

const (
	defaultProtocol     = "v1"
	defaultPreviewLimit = 4
	defaultWidth        = 100
	defaultPrompt       = "> "
	defaultWebAddr      = "127.0.0.1:8080"
)

// DefaultConfig returns a config with sensible defaults. The backend URL has
// no default.
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			ChatPath: stream.DefaultChatPath,
			Protocol: defaultProtocol,
		},
		UI: UIConfig{
			PreviewLimit: defaultPreviewLimit,
			Width:        defaultWidth,
			Prompt:       defaultPrompt,
		},
		Web: WebConfig{
			Addr: defaultWebAddr,
		},
		Logging: defaultLoggingConfig(),
	}
}

func defaultLoggingConfig() LoggingConfig {
	enabled := true
	return LoggingConfig{
		Enabled: &enabled,
		Level:   "info",
		Stdout:  false,
		File:    "logs/scout.log",
	}
}

func (c *Config) applyDefaults() {
	if c.Backend.ChatPath == "" {
		c.Backend.ChatPath = stream.DefaultChatPath
	}
	if c.Backend.Protocol == "" {
		c.Backend.Protocol = defaultProtocol
	}
	if c.UI.PreviewLimit <= 0 {
		c.UI.PreviewLimit = defaultPreviewLimit
	}
	if c.UI.Width <= 0 {
		c.UI.Width = defaultWidth
	}
	if c.UI.Prompt == "" {
		c.UI.Prompt = defaultPrompt
	}
	if c.Web.Addr == "" {
		c.Web.Addr = defaultWebAddr
	}

	logDefaults := defaultLoggingConfig()
	if c.Logging.Enabled == nil {
		c.Logging.Enabled = logDefaults.Enabled
	}
	if c.Logging.Level == "" {
		c.Logging.Level = logDefaults.Level
	}
	if c.Logging.File == "" {
		c.Logging.File = logDefaults.File
	}
}
