package cmd

import (
	"context"
	"fmt"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/internal/protocol"
	"github.com/jfmyers9/simplay/internal/tui"
	"github.com/spf13/cobra"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Display a terminal UI for the daemon",
	Long: `Display a terminal UI that follows the daemon's playback state.

The TUI shows the current track, play state and queue position, and a list
of recently played tracks. It talks to a running 'simplay daemon'.

Keys:
  space  pause/play     n  next         p  previous
  r      start over     +  volume up    -  volume down
  l      like           u  unlike       q  quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	socketPath := config.SocketPath()
	send := func(ctx context.Context, req protocol.Request) (protocol.Response, error) {
		return protocol.Send(ctx, socketPath, req)
	}

	app := tui.New(send, tui.DefaultConfig())
	if err := app.Run(context.Background()); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
