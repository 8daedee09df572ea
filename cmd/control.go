package cmd

import (
	"strings"

	"github.com/jfmyers9/simplay/internal/protocol"
	"github.com/spf13/cobra"
)

// controlCommand describes a CLI subcommand that forwards one request to
// the daemon.
type controlCommand struct {
	use   string
	short string
	cmd   string
	// argName is set for commands that take a free-form argument; words
	// are joined with spaces so quoting is optional.
	argName string
}

var controlCommands = []controlCommand{
	{use: "shuffle", short: "Shuffle the whole library", cmd: protocol.CmdShuffle},
	{use: "shuffle-artist", short: "Shuffle every song by an artist", cmd: protocol.CmdShuffleArtist, argName: "ARTIST"},
	{use: "shuffle-album", short: "Shuffle an album", cmd: protocol.CmdShuffleAlbum, argName: "ALBUM"},
	{use: "shuffle-playlist", short: "Shuffle a playlist", cmd: protocol.CmdShufflePlaylist, argName: "PLAYLIST"},
	{use: "play-album", short: "Play an album in track order", cmd: protocol.CmdPlayAlbum, argName: "ALBUM"},
	{use: "shuffle-liked", short: "Shuffle starred songs", cmd: protocol.CmdShuffleLiked},
	{use: "next", short: "Skip to the next track", cmd: protocol.CmdFastForward},
	{use: "prev", short: "Go back to the previous track", cmd: protocol.CmdRewind},
	{use: "pause", short: "Pause playback", cmd: protocol.CmdPause},
	{use: "play", short: "Resume playback", cmd: protocol.CmdPlay},
	{use: "startover", short: "Restart the current track", cmd: protocol.CmdStartOver},
	{use: "like", short: "Star the current track", cmd: protocol.CmdLikeSong},
	{use: "unlike", short: "Unstar the current track", cmd: protocol.CmdUnlikeSong},
	{use: "rate", short: "Rate the current track from 1 to 5", cmd: protocol.CmdRate, argName: "RATING"},
	{use: "volume-up", short: "Raise the volume one step", cmd: protocol.CmdVolumeUp},
	{use: "volume-down", short: "Lower the volume one step", cmd: protocol.CmdVolumeDown},
	{use: "add-to-playlist", short: "Add the current track to a playlist, creating it if needed", cmd: protocol.CmdAddSongToPlaylist, argName: "PLAYLIST"},
	{use: "delete-playlist", short: "Delete a playlist", cmd: protocol.CmdDeletePlaylist, argName: "PLAYLIST"},
}

func init() {
	for _, c := range controlCommands {
		rootCmd.AddCommand(c.command())
	}
}

func (c controlCommand) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   c.use,
		Short: c.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd.OutOrStdout(), c.request(args))
		},
	}
	if c.argName != "" {
		cmd.Use += " " + c.argName
		// The daemon reports a missing argument in its own words.
		cmd.Args = cobra.ArbitraryArgs
	}
	return cmd
}

func (c controlCommand) request(args []string) protocol.Request {
	if c.argName == "" || len(args) == 0 {
		return protocol.NewRequest(c.cmd)
	}
	return protocol.NewRequestWithArg(c.cmd, strings.Join(args, " "))
}
