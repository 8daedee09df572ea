package cmd

import (
	"fmt"
	"io"

	"github.com/jfmyers9/simplay/internal/protocol"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var statusWidth int

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current track and queue position",
	Long: `Ask the daemon what is playing.

The first line is "playing: Artist - Title (Album)" or "paused: ..." and the
second line shows the queue length and position. When nothing is loaded the
output is "idle".

Use --width to pad or truncate the first line to a fixed number of display
columns, which keeps status bars such as tmux from jumping around.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().IntVarP(&statusWidth, "width", "w", 0, "Fixed width of the first line (0 = disabled)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	resp, err := sendCommand(protocol.NewRequest(protocol.CmdStatus))
	if err != nil {
		return err
	}
	printStatus(cmd.OutOrStdout(), resp.Status, statusWidth)
	return nil
}

func printStatus(w io.Writer, st *protocol.Status, width int) {
	for _, line := range formatStatus(st, width) {
		_, _ = fmt.Fprintln(w, line)
	}
}

func formatStatus(st *protocol.Status, width int) []string {
	if st == nil || st.Song == nil {
		return []string{padToWidth("idle", width)}
	}

	state := "playing"
	if st.Paused {
		state = "paused"
	}
	song := st.Song
	line := fmt.Sprintf("%s: %s - %s (%s)", state, song.Artist, song.Title, song.Album)

	return []string{
		padToWidth(line, width),
		fmt.Sprintf("queue: %d | index: %d", st.QueueLen, st.Index),
	}
}

// padToWidth pads or truncates text to exactly width display columns.
// Truncated text ends in "...". A width of 0 or less leaves text unchanged.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "...")
	}
	return runewidth.FillRight(text, width)
}
