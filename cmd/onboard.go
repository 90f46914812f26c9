package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/linanwx/scout/config"
	"github.com/linanwx/scout/protocol"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize scout configuration",
	Long:  `Create the scout configuration directory and write config.yaml with the backend address.`,
	RunE:  runOnboard,
}

func init() {
	rootCmd.AddCommand(onboardCmd)
}

func runOnboard(_ *cobra.Command, _ []string) error {
	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configPath); err == nil {
		overwrite := false
		err = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config already exists at "+configPath).
					Description("Overwrite the backend settings?").
					Value(&overwrite),
			),
		).Run()
		if err != nil {
			return err
		}
		if !overwrite {
			fmt.Println("Config unchanged:", configPath)
			return nil
		}
	}

	cfg := appConfig
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// --- interactive wizard ---

	backend := cfg.Backend.URL
	if backend == "" {
		backend = "http://localhost:8000"
	}
	proto := cfg.Backend.Protocol
	if proto == "" {
		proto = string(protocol.V1)
	}

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Base URL of the research backend. Questions are sent to <url>/chat.").
				Validate(validateBackendURL).
				Value(&backend),
			huh.NewSelect[string]().
				Title("Stream protocol").
				Description("v1 is the search/rank/fetch workflow; v2 streams titled steps.").
				Options(
					huh.NewOption("v1 (search, rank, fetch, answer)", string(protocol.V1)),
					huh.NewOption("v2 (titled steps)", string(protocol.V2)),
				).
				Value(&proto),
		),
	).Run()
	if err != nil {
		return err
	}

	cfg.Backend.URL = strings.TrimSpace(backend)
	cfg.Backend.Protocol = proto
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Config written to:", configPath)
	fmt.Println("Run 'scout chat' to start asking questions.")
	return nil
}

func validateBackendURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("backend URL is required")
	}
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter an absolute URL such as http://localhost:8000")
	}
	return nil
}
