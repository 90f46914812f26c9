package cmd

import (
	"github.com/spf13/cobra"

	"github.com/linanwx/scout/channel"
	"github.com/linanwx/scout/logger"
)

var chatPlainFlag bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive research session",
	Long: `Start an interactive session. In a terminal this opens a full-screen
interface with the transcript, a step timeline and a log panel; otherwise it
falls back to a line-based prompt.

Keys (full-screen):
  enter    ask the question in the input line
  esc      stop the running answer
  ctrl+l   toggle the log panel
  ctrl+c   quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlainFlag, "plain", false, "Use the line-based prompt even in a terminal")
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	opts, err := frontendOptions(appConfig)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	var fe channel.Frontend
	if chatPlainFlag {
		fe = channel.NewPlainFrontend(opts)
	} else {
		fe = channel.NewCLIFrontend(opts)
	}
	logger.Info("starting frontend", "frontend", fe.Name())
	return fe.Run(ctx)
}
