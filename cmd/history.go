package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jfmyers9/simplay/internal/config"
	"github.com/jfmyers9/simplay/internal/history"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently played tracks",
	Long: `List tracks the daemon has played, newest first, with whether each play
was submitted to the server.

Plays are kept for 30 days.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of plays to show (0 = all)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := config.HistoryPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "No plays recorded yet")
		return nil
	}

	journal, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() { _ = journal.Close() }()

	plays, err := journal.Recent(context.Background(), historyLimit)
	if err != nil {
		return err
	}
	return printHistory(cmd.OutOrStdout(), plays)
}

func printHistory(w io.Writer, plays []history.Play) error {
	if len(plays) == 0 {
		_, err := fmt.Fprintln(w, "No plays recorded yet")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYED\tARTIST\tTITLE\tALBUM\tSUBMITTED")
	for _, p := range plays {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			p.StartedAt.Local().Format(time.DateTime),
			p.Artist, p.Title, p.Album, submission(p))
	}
	return tw.Flush()
}

func submission(p history.Play) string {
	switch {
	case p.Submitted:
		return "yes"
	case p.Error != "":
		return "failed: " + p.Error
	default:
		return "no"
	}
}
