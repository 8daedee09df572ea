// Package protocol defines the line-delimited JSON messages exchanged over
// the daemon's control socket. A client writes one Request, the daemon
// answers with one Response, and the connection is closed.
package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Command names accepted by the daemon.
const (
	CmdShuffle           = "shuffle"
	CmdShuffleArtist     = "shuffleartist"
	CmdShuffleAlbum      = "shufflealbum"
	CmdShufflePlaylist   = "shuffleplaylist"
	CmdPlayAlbum         = "playalbum"
	CmdShuffleLiked      = "shuffleliked"
	CmdFastForward       = "fastforward"
	CmdRewind            = "rewind"
	CmdPause             = "pause"
	CmdPlay              = "play"
	CmdStartOver         = "startover"
	CmdLikeSong          = "likesong"
	CmdUnlikeSong        = "unlikesong"
	CmdRate              = "rate"
	CmdVolumeUp          = "volumeup"
	CmdVolumeDown        = "volumedown"
	CmdAddSongToPlaylist = "addsongtoplaylist"
	CmdDeletePlaylist    = "deleteplaylist"
	CmdStatus            = "status"
)

// Request is a single command sent to the daemon.
type Request struct {
	Cmd string  `json:"cmd"`
	Arg *string `json:"arg,omitempty"`
}

// NewRequest builds a request without an argument.
func NewRequest(cmd string) Request {
	return Request{Cmd: cmd}
}

// NewRequestWithArg builds a request carrying arg.
func NewRequestWithArg(cmd, arg string) Request {
	return Request{Cmd: cmd, Arg: &arg}
}

// Response is the daemon's answer to a Request.
type Response struct {
	OK      bool    `json:"ok"`
	Message string  `json:"message"`
	Status  *Status `json:"status,omitempty"`
}

// Status is a snapshot of playback state.
type Status struct {
	Song     *SongInfo `json:"song,omitempty"`
	Paused   bool      `json:"paused"`
	QueueLen int       `json:"queue_len"`
	Index    int       `json:"index"`
}

// SongInfo identifies the current song.
type SongInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// OK builds a successful response.
func OK(message string) Response {
	return Response{OK: true, Message: message}
}

// Fail builds a failure response.
func Fail(message string) Response {
	return Response{OK: false, Message: message}
}

// WriteMessage encodes v as one JSON line.
func WriteMessage(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadMessage reads one newline-terminated JSON record into v. A final
// record without a trailing newline is accepted.
func ReadMessage(r *bufio.Reader, v any) error {
	line, err := r.ReadBytes('\n')
	if err != nil && (err != io.EOF || len(line) == 0) {
		return err
	}
	if err := json.Unmarshal(line, v); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return nil
}
