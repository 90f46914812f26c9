package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/linanwx/scout/config"
	"github.com/linanwx/scout/internal/health"
	"github.com/linanwx/scout/logger"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and backend reachability",
	Long: `Print a diagnostic report: runtime, config and log paths, and whether
the backend base URL answers. Exits non-zero when scout is not usable.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(_ *cobra.Command, _ []string) error {
	cfgPath, _ := config.ConfigPath()
	dir, _ := config.ConfigDir()

	opts := health.Options{
		ConfigPath: cfgPath,
		BackendURL: appConfig.Backend.URL,
		Protocol:   appConfig.Backend.Protocol,
		ConfigErr:  appConfig.Validate(),
	}
	if lc := appConfig.BuildLoggerConfig(); lc.Enabled {
		opts.LogPath = logger.ResolvePath(lc.File, dir)
	}

	ctx, cancel := signalContext()
	defer cancel()

	snap := health.Collect(ctx, opts)
	out, err := yaml.Marshal(snap)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)

	if snap.Status != health.StatusHealthy {
		return fmt.Errorf("scout is %s: %s", snap.Status, snap.Problem)
	}
	return nil
}
