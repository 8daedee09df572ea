// Package tui is a terminal dashboard for the daemon. It polls the control
// socket for status and sends playback commands on key presses.
package tui

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/simplay/internal/protocol"
)

const maxRecentTracks = 5

// Config holds TUI configuration options
type Config struct {
	RefreshRate    time.Duration // How often to poll the daemon
	CommandTimeout time.Duration // Per-request timeout
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		RefreshRate:    time.Second,
		CommandTimeout: 5 * time.Second,
	}
}

// Sender delivers one request to the daemon.
type Sender func(ctx context.Context, req protocol.Request) (protocol.Response, error)

// RecentTrack stores info about a recently played track
type RecentTrack struct {
	Title    string
	Artist   string
	PlayedAt time.Time
}

// App is the TUI application for controlling playback
type App struct {
	app        *tview.Application
	nowPlaying *tview.TextView
	queue      *tview.TextView
	message    *tview.TextView
	recent     *tview.TextView
	help       *tview.TextView

	config Config
	send   Sender

	// mu guards everything below. Key handlers, the poller and the draw
	// callback all touch it.
	mu sync.Mutex

	status    *protocol.Status
	connErr   error
	lastMsg   string
	lastMsgOK bool

	sessionStart time.Time
	tracksPlayed int
	lastSongID   string

	recentBuf   [maxRecentTracks]RecentTrack
	recentCount int

	lastNowPlaying string
	lastQueue      string
	lastMessage    string
	lastRecent     string
	lastBarWidth   int

	cancelFunc context.CancelFunc
}

// New creates a TUI that talks to the daemon through send
func New(send Sender, cfg Config) *App {
	a := &App{
		app:          tview.NewApplication(),
		config:       cfg,
		send:         send,
		sessionStart: time.Now(),
	}
	a.setupUI()
	return a
}

func (a *App) setupUI() {
	a.nowPlaying = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.nowPlaying.SetBorder(true).
		SetTitle(" Now Playing ").
		SetTitleAlign(tview.AlignLeft)

	a.queue = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	a.queue.SetBorder(true).
		SetTitle(" Queue ").
		SetTitleAlign(tview.AlignLeft)

	a.message = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.message.SetBorder(true).
		SetTitle(" Daemon ").
		SetTitleAlign(tview.AlignLeft)

	a.recent = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.recent.SetBorder(true).
		SetTitle(" Recent ").
		SetTitleAlign(tview.AlignLeft)

	a.help = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[gray]q:quit  space:play/pause  n:next  p:prev  r:restart  +/-:volume  l:like  u:unlike[-]")

	bottomRow := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.message, 0, 1, false).
		AddItem(a.recent, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.nowPlaying, 0, 3, false).
		AddItem(a.queue, 3, 1, false).
		AddItem(bottomRow, 7, 1, false).
		AddItem(a.help, 1, 1, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(flex, true)
}

// keyRequest maps a key to a daemon request. paused selects between
// pause and play for the space bar.
func keyRequest(r rune, paused bool) (protocol.Request, bool) {
	switch r {
	case ' ':
		if paused {
			return protocol.NewRequest(protocol.CmdPlay), true
		}
		return protocol.NewRequest(protocol.CmdPause), true
	case 'n', 'N':
		return protocol.NewRequest(protocol.CmdFastForward), true
	case 'p', 'P':
		return protocol.NewRequest(protocol.CmdRewind), true
	case 'r', 'R':
		return protocol.NewRequest(protocol.CmdStartOver), true
	case '+', '=':
		return protocol.NewRequest(protocol.CmdVolumeUp), true
	case '-', '_':
		return protocol.NewRequest(protocol.CmdVolumeDown), true
	case 'l', 'L':
		return protocol.NewRequest(protocol.CmdLikeSong), true
	case 'u', 'U':
		return protocol.NewRequest(protocol.CmdUnlikeSong), true
	}
	return protocol.Request{}, false
}

func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyEscape || event.Rune() == 'q' || event.Rune() == 'Q' {
		a.Stop()
		return nil
	}

	a.mu.Lock()
	paused := a.status != nil && a.status.Paused
	a.mu.Unlock()

	req, ok := keyRequest(event.Rune(), paused)
	if !ok {
		return event
	}
	// Requests can take a while; never block the event loop on them.
	go func() {
		a.command(req)
		a.poll()
		a.refresh()
	}()
	return nil
}

func (a *App) command(req protocol.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.CommandTimeout)
	defer cancel()

	resp, err := a.send(ctx, req)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.lastMsg, a.lastMsgOK = err.Error(), false
		return
	}
	a.lastMsg, a.lastMsgOK = resp.Message, resp.OK
}

// poll fetches the daemon status and records track changes.
func (a *App) poll() {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.CommandTimeout)
	defer cancel()

	resp, err := a.send(ctx, protocol.NewRequest(protocol.CmdStatus))
	if err == nil && !resp.OK {
		err = fmt.Errorf("status: %s", resp.Message)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err != nil {
		a.connErr = err
		a.status = nil
		return
	}
	a.connErr = nil
	a.applyStatus(resp.Status, time.Now())
}

// applyStatus stores st and moves the previous song to the recent list
// when the song changes. Must be called with a.mu held.
func (a *App) applyStatus(st *protocol.Status, now time.Time) {
	a.status = st
	if st == nil || st.Song == nil {
		return
	}
	if st.Song.ID == a.lastSongID {
		return
	}
	a.lastSongID = st.Song.ID
	a.tracksPlayed++

	idx := a.recentCount % maxRecentTracks
	a.recentBuf[idx] = RecentTrack{
		Title:    st.Song.Title,
		Artist:   st.Song.Artist,
		PlayedAt: now,
	}
	a.recentCount++
}

// getRecentTracks returns recent tracks in most-recent-first order.
// Must be called with a.mu held.
func (a *App) getRecentTracks() []RecentTrack {
	n := min(a.recentCount, maxRecentTracks)
	result := make([]RecentTrack, n)
	for i := range n {
		idx := (a.recentCount - 1 - i) % maxRecentTracks
		result[i] = a.recentBuf[idx]
	}
	return result
}

// Run polls the daemon and draws until the user quits or ctx is done
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	go a.pollLoop(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func (a *App) pollLoop(ctx context.Context) {
	rate := a.config.RefreshRate
	if rate <= 0 {
		rate = time.Second
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	a.poll()
	a.refresh()
	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.poll()
			a.refresh()
		}
	}
}

func (a *App) refresh() {
	a.app.QueueUpdateDraw(func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		a.setIfChanged(a.nowPlaying, &a.lastNowPlaying, renderNowPlaying(a.status, a.connErr))
		a.setIfChanged(a.queue, &a.lastQueue, renderQueue(a.status, a.barWidth()))
		a.setIfChanged(a.message, &a.lastMessage, a.renderMessage())
		a.setIfChanged(a.recent, &a.lastRecent, renderRecent(a.getRecentTracks()))
	})
}

func (a *App) setIfChanged(view *tview.TextView, last *string, text string) {
	if text != *last {
		*last = text
		view.SetText(text)
	}
}

// barWidth caches the last positive queue bar width so a transient zero
// during layout does not cause flicker.
func (a *App) barWidth() int {
	_, _, width, _ := a.queue.GetInnerRect()
	if w := width - 12; w > 0 {
		a.lastBarWidth = w
	}
	if a.lastBarWidth < 10 {
		a.lastBarWidth = 10
	}
	return a.lastBarWidth
}

func renderNowPlaying(st *protocol.Status, connErr error) string {
	if connErr != nil {
		return fmt.Sprintf("\n\n[red]Daemon unavailable[-]\n[gray]%s[-]", tview.Escape(connErr.Error()))
	}
	if st == nil || st.Song == nil {
		return "\n\n[gray]No track playing[-]"
	}

	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "[white::b]%s[-:-:-]\n", tview.Escape(st.Song.Title))
	fmt.Fprintf(&sb, "[yellow]%s[-]\n", tview.Escape(st.Song.Artist))
	fmt.Fprintf(&sb, "[gray]%s[-]", tview.Escape(st.Song.Album))

	stateIcon := "[green]▶[-]"
	if st.Paused {
		stateIcon = "[yellow]⏸[-]"
	}
	fmt.Fprintf(&sb, "\n\n%s", stateIcon)
	return sb.String()
}

func renderQueue(st *protocol.Status, width int) string {
	if st == nil || st.QueueLen == 0 {
		return ""
	}
	pos := st.Index + 1
	return fmt.Sprintf("%d %s %d", pos, buildProgressBar(pos, st.QueueLen, width), st.QueueLen)
}

// renderMessage must be called with a.mu held.
func (a *App) renderMessage() string {
	var sb strings.Builder
	switch {
	case a.lastMsg == "":
		sb.WriteString("[gray]Ready[-]\n\n")
	case a.lastMsgOK:
		fmt.Fprintf(&sb, "[green]%s[-]\n\n", tview.Escape(a.lastMsg))
	default:
		fmt.Fprintf(&sb, "[red]%s[-]\n\n", tview.Escape(a.lastMsg))
	}
	fmt.Fprintf(&sb, "Tracks: %d\n", a.tracksPlayed)
	fmt.Fprintf(&sb, "Session: %s", formatDuration(time.Since(a.sessionStart)))
	return sb.String()
}

func renderRecent(tracks []RecentTrack) string {
	if len(tracks) == 0 {
		return "[gray]No recent tracks[-]"
	}
	var sb strings.Builder
	for i, t := range tracks {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "[white]%s[-] [gray]%s[-]",
			tview.Escape(truncate(t.Title, 20)), tview.Escape(truncate(t.Artist, 16)))
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// buildProgressBar draws done out of total as a bar of width cells
func buildProgressBar(done, total, width int) string {
	if total <= 0 || width <= 0 {
		return strings.Repeat("-", max(width, 0))
	}

	progress := min(max(float64(done)/float64(total), 0), 1)
	filled := int(progress * float64(width))
	empty := width - filled

	return "[green]" + strings.Repeat("█", filled) + "[-]" +
		"[gray]" + strings.Repeat("░", empty) + "[-]"
}

// formatDuration formats a duration as MM:SS or HH:MM:SS for longer durations
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
