package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/linanwx/scout/channel"
	"github.com/linanwx/scout/stream"
)

var replayQuestion string

var replayCmd = &cobra.Command{
	Use:   "replay <file.sse>",
	Short: "Render a recorded stream offline",
	Long: `Feed a recorded Server-Sent Events capture through the same session and
renderer used for live questions. Captures are written by 'scout ask --record'.
No backend is contacted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replayQuestion, "question", "(replay)", "Question shown in the turn header")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(_ *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}

	version, err := appConfig.ProtocolVersion()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	fe := channel.NewPlainFrontend(channel.Options{
		Dialer:  stream.NewReplayDialer(path),
		Version: version,
		Prompt:  appConfig.UI.Prompt,
		View:    frontendView(appConfig),
	})
	_, err = fe.Ask(ctx, replayQuestion)
	return err
}
