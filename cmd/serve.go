package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/linanwx/scout/channel"
	"github.com/linanwx/scout/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the research session in a browser",
	Long: `Start a local web page that mirrors the terminal client. Each browser
tab owns its own conversation; the page receives every session update over a
websocket.

Examples:
  scout serve
  scout serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config web.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	opts, err := frontendOptions(appConfig)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = appConfig.Web.Addr
	}

	ctx, cancel := signalContext()
	defer cancel()

	fe := channel.NewWebFrontend(addr, opts)
	fmt.Printf("scout web mirror on http://%s\n", addr)
	logger.Info("web frontend starting", "addr", addr, "backend", appConfig.Backend.URL)
	if err := fe.Run(ctx); err != nil {
		return err
	}
	logger.Info("web frontend stopped")
	return nil
}
