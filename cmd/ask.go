package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"

	"github.com/linanwx/scout/channel"
	"github.com/linanwx/scout/protocol"
	"github.com/linanwx/scout/session"
	"github.com/linanwx/scout/stream"
)

var askRecordFlag string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Long: `Ask a single question, print the workflow steps as they complete and
then the answer with its references. Exits non-zero if the stream fails.

Examples:
  scout ask "what is today weather in taipai"
  scout ask --record taipei.sse "what is today weather in taipai"
  scout replay taipei.sse`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askRecordFlag, "record", "", "Write the received messages as an SSE capture for 'scout replay'")
	rootCmd.AddCommand(askCmd)
}

func runAsk(_ *cobra.Command, args []string) error {
	opts, err := frontendOptions(appConfig)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	question := strings.Join(args, " ")
	fe := channel.NewPlainFrontend(opts)
	snap, askErr := fe.Ask(ctx, question)

	if _, ok := snap.LastTurn(); ok && askRecordFlag != "" {
		if err := writeCapture(askRecordFlag, snap); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "capture written to", askRecordFlag)
	}
	if askErr != nil {
		if errors.Is(askErr, channel.ErrRejected) {
			return fmt.Errorf("empty question")
		}
		return askErr
	}
	return nil
}

// writeCapture stores the last turn as an SSE stream: one message frame per
// message, then an end frame, or an error frame if the stream failed.
func writeCapture(path string, s session.Snapshot) error {
	turn, ok := s.LastTurn()
	if !ok {
		return fmt.Errorf("nothing to record")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture: %w", err)
	}
	defer f.Close()

	for _, msg := range turn.Messages {
		data, err := protocol.EncodeEnvelope(msg)
		if err != nil {
			return fmt.Errorf("encode %s: %w", msg.Type(), err)
		}
		if err := stream.WriteFrame(f, stream.Frame{Event: "message", Data: data}); err != nil {
			return fmt.Errorf("write capture: %w", err)
		}
	}

	tail := stream.Frame{Event: "end", Data: []byte(`{"message":"` + protocol.DoneMarker + `"}`)}
	if s.Status == session.StatusError {
		data, _ := sjson.SetBytes([]byte(`{}`), "error", s.Err)
		tail = stream.Frame{Event: "error", Data: data}
	}
	if err := stream.WriteFrame(f, tail); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	return f.Close()
}
