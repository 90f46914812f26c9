package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "SCOUT"

// envOverrides lists the SCOUT_* variables. Unset variables leave the file
// value alone.
type envOverrides struct {
	BackendURL string `envconfig:"BACKEND_URL"`
	Protocol   string `envconfig:"PROTOCOL"`
	ChatPath   string `envconfig:"CHAT_PATH"`
	LogLevel   string `envconfig:"LOG_LEVEL"`
	WebAddr    string `envconfig:"WEB_ADDR"`
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return fmt.Errorf("read %s_* environment: %w", envPrefix, err)
	}
	if env.BackendURL != "" {
		c.Backend.URL = env.BackendURL
	}
	if env.Protocol != "" {
		c.Backend.Protocol = env.Protocol
	}
	if env.ChatPath != "" {
		c.Backend.ChatPath = env.ChatPath
	}
	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}
	if env.WebAddr != "" {
		c.Web.Addr = env.WebAddr
	}
	return nil
}
