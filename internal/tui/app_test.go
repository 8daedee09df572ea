package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jfmyers9/simplay/internal/protocol"
)

func TestKeyRequest(t *testing.T) {
	tests := []struct {
		key    rune
		paused bool
		want   string
		ok     bool
	}{
		{key: ' ', paused: false, want: protocol.CmdPause, ok: true},
		{key: ' ', paused: true, want: protocol.CmdPlay, ok: true},
		{key: 'n', want: protocol.CmdFastForward, ok: true},
		{key: 'P', want: protocol.CmdRewind, ok: true},
		{key: 'r', want: protocol.CmdStartOver, ok: true},
		{key: '+', want: protocol.CmdVolumeUp, ok: true},
		{key: '-', want: protocol.CmdVolumeDown, ok: true},
		{key: 'l', want: protocol.CmdLikeSong, ok: true},
		{key: 'u', want: protocol.CmdUnlikeSong, ok: true},
		{key: 'x', ok: false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			req, ok := keyRequest(tt.key, tt.paused)
			if ok != tt.ok {
				t.Fatalf("keyRequest(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if req.Cmd != tt.want {
				t.Errorf("keyRequest(%q) = %q, want %q", tt.key, req.Cmd, tt.want)
			}
		})
	}
}

func status(id, title string, paused bool) *protocol.Status {
	return &protocol.Status{
		Song:     &protocol.SongInfo{ID: id, Title: title, Artist: "Artist", Album: "Album"},
		Paused:   paused,
		QueueLen: 10,
		Index:    2,
	}
}

func TestApplyStatus_RecentTracks(t *testing.T) {
	a := &App{}
	now := time.Now()

	a.applyStatus(status("1", "One", false), now)
	a.applyStatus(status("1", "One", true), now)
	a.applyStatus(nil, now)
	for i, title := range []string{"Two", "Three", "Four", "Five", "Six"} {
		a.applyStatus(status(string(rune('2'+i)), title, false), now)
	}

	if a.tracksPlayed != 6 {
		t.Errorf("tracksPlayed = %d, want 6", a.tracksPlayed)
	}
	recent := a.getRecentTracks()
	if len(recent) != maxRecentTracks {
		t.Fatalf("recent = %d entries, want %d", len(recent), maxRecentTracks)
	}
	if recent[0].Title != "Six" || recent[maxRecentTracks-1].Title != "Two" {
		t.Errorf("recent order = %q ... %q, want Six ... Two", recent[0].Title, recent[maxRecentTracks-1].Title)
	}
}

func TestPoll(t *testing.T) {
	var sent []string
	a := &App{
		config: DefaultConfig(),
		send: func(_ context.Context, req protocol.Request) (protocol.Response, error) {
			sent = append(sent, req.Cmd)
			resp := protocol.OK("ok")
			resp.Status = status("7", "Seven", false)
			return resp, nil
		},
	}

	a.poll()
	if len(sent) != 1 || sent[0] != protocol.CmdStatus {
		t.Errorf("sent = %v, want [status]", sent)
	}
	if a.status == nil || a.status.Song.ID != "7" || a.connErr != nil {
		t.Errorf("status = %+v, connErr = %v", a.status, a.connErr)
	}

	a.send = func(context.Context, protocol.Request) (protocol.Response, error) {
		return protocol.Response{}, errors.New("connect: no such file")
	}
	a.poll()
	if a.connErr == nil || a.status != nil {
		t.Errorf("after failure status = %+v, connErr = %v", a.status, a.connErr)
	}
}

func TestCommandRecordsMessage(t *testing.T) {
	a := &App{
		config: DefaultConfig(),
		send: func(_ context.Context, req protocol.Request) (protocol.Response, error) {
			if req.Cmd == protocol.CmdLikeSong {
				return protocol.Fail("No song playing"), nil
			}
			return protocol.OK("Next track"), nil
		},
	}

	a.command(protocol.NewRequest(protocol.CmdFastForward))
	if a.lastMsg != "Next track" || !a.lastMsgOK {
		t.Errorf("message = %q ok=%v", a.lastMsg, a.lastMsgOK)
	}
	a.command(protocol.NewRequest(protocol.CmdLikeSong))
	if a.lastMsg != "No song playing" || a.lastMsgOK {
		t.Errorf("message = %q ok=%v", a.lastMsg, a.lastMsgOK)
	}
}

func TestRenderNowPlaying(t *testing.T) {
	tests := []struct {
		name    string
		st      *protocol.Status
		err     error
		want    []string
		notWant string
	}{
		{name: "unavailable", err: errors.New("dial failed"), want: []string{"Daemon unavailable", "dial failed"}},
		{name: "idle", st: &protocol.Status{}, want: []string{"No track playing"}},
		{name: "playing", st: status("1", "Paranoid Android", false), want: []string{"Paranoid Android", "Artist", "Album", "▶"}},
		{name: "paused", st: status("1", "Airbag", true), want: []string{"Airbag", "⏸"}, notWant: "▶"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderNowPlaying(tt.st, tt.err)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
			if tt.notWant != "" && strings.Contains(got, tt.notWant) {
				t.Errorf("output %q should not contain %q", got, tt.notWant)
			}
		})
	}
}

func TestRenderQueue(t *testing.T) {
	if got := renderQueue(nil, 10); got != "" {
		t.Errorf("renderQueue(nil) = %q, want empty", got)
	}
	got := renderQueue(status("1", "x", false), 10)
	if !strings.HasPrefix(got, "3 ") || !strings.HasSuffix(got, " 10") {
		t.Errorf("renderQueue = %q, want 3 ... 10", got)
	}
}

func TestBuildProgressBar(t *testing.T) {
	tests := []struct {
		name              string
		done, total, w    int
		wantFull, wantEmp int
	}{
		{name: "half", done: 5, total: 10, w: 10, wantFull: 5, wantEmp: 5},
		{name: "done", done: 10, total: 10, w: 8, wantFull: 8, wantEmp: 0},
		{name: "overflow", done: 20, total: 10, w: 4, wantFull: 4, wantEmp: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := buildProgressBar(tt.done, tt.total, tt.w)
			if got := strings.Count(bar, "█"); got != tt.wantFull {
				t.Errorf("filled = %d, want %d", got, tt.wantFull)
			}
			if got := strings.Count(bar, "░"); got != tt.wantEmp {
				t.Errorf("empty = %d, want %d", got, tt.wantEmp)
			}
		})
	}

	if got := buildProgressBar(0, 0, 3); got != "---" {
		t.Errorf("empty total = %q, want ---", got)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00"},
		{65 * time.Second, "01:05"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
		{-time.Second, "00:00"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate(short) = %q", got)
	}
	if got := truncate("Everything In Its Right Place", 20); got != "Everything In Its..." {
		t.Errorf("truncate = %q", got)
	}
}
