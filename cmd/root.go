// Package cmd implements the scout command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/linanwx/scout/channel"
	"github.com/linanwx/scout/config"
	"github.com/linanwx/scout/logger"
	"github.com/linanwx/scout/stream"
	"github.com/linanwx/scout/view"
)

var (
	configDirFlag string
	backendFlag   string
	protocolFlag  string
	logLevelFlag  string

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "Terminal client for a streaming research assistant",
	Long: `scout sends questions to a research backend and shows its work as it
happens: web searches, ranked results, pages being read and the answer with
its references.

Configuration lives in ~/.scout/config.yaml (see 'scout onboard') and can be
overridden with SCOUT_* environment variables or flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDirFlag, "config-dir", "", "Config directory (default ~/.scout)")
	flags.StringVar(&backendFlag, "backend", "", "Backend base URL, e.g. http://localhost:8000")
	flags.StringVar(&protocolFlag, "protocol", "", "Stream protocol version (v1 or v2)")
	flags.StringVar(&logLevelFlag, "log-level", "", "Log level (debug, info, warn, error)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and starts logging.
func setup(cmd *cobra.Command, _ []string) error {
	config.SetConfigDir(configDirFlag)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if backendFlag != "" {
		cfg.Backend.URL = strings.TrimSpace(backendFlag)
	}
	if protocolFlag != "" {
		cfg.Backend.Protocol = protocolFlag
	}
	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	appConfig = cfg

	dir, _ := config.ConfigDir()
	if err := logger.Init(cfg.BuildLoggerConfig(), dir); err != nil {
		fmt.Fprintln(os.Stderr, "logger init error:", err)
	}
	logger.Debug("config loaded", "command", cmd.Name(), "backend", cfg.Backend.URL, "protocol", cfg.Backend.Protocol)
	return nil
}

// frontendOptions validates the backend settings and builds the options
// shared by every frontend.
func frontendOptions(cfg *config.Config) (channel.Options, error) {
	if err := cfg.Validate(); err != nil {
		return channel.Options{}, err
	}
	version, err := cfg.ProtocolVersion()
	if err != nil {
		return channel.Options{}, err
	}
	return channel.Options{
		Dialer:  stream.NewClient(cfg.Backend.URL, stream.WithChatPath(cfg.Backend.ChatPath)),
		Version: version,
		Prompt:  cfg.UI.Prompt,
		View:    frontendView(cfg),
	}, nil
}

func frontendView(cfg *config.Config) view.Options {
	return view.Options{Width: cfg.UI.Width, PreviewLimit: cfg.UI.PreviewLimit}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
