// Package discord publishes the current track as Discord Rich Presence
// over Discord's local IPC socket.
package discord

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/library"
)

// Update is a playback change. Track is nil when nothing is loaded.
type Update struct {
	Track  *library.Track
	Paused bool
}

type rpcClient interface {
	SetActivity(*Activity) error
	Close() error
}

// Presence manages Discord Rich Presence updates.
type Presence struct {
	appID   string
	logger  zerolog.Logger
	client  rpcClient
	connect func(string) (rpcClient, error)
	now     func() time.Time
	last    lastActivity
}

type lastActivity struct {
	id      string
	playing bool
}

func New(appID string, logger zerolog.Logger) *Presence {
	return &Presence{
		appID:  appID,
		logger: logger.With().Str("component", "discord").Logger(),
		connect: func(appID string) (rpcClient, error) {
			return ipcConnect(appID)
		},
		now: time.Now,
	}
}

// Run consumes updates until ctx is done or updates is closed. It connects
// lazily on the first playing track. If Discord isn't running, the error is
// logged and the connection is retried on the next update.
func (p *Presence) Run(ctx context.Context, updates <-chan Update) {
	defer p.close()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			p.handle(u)
		}
	}
}

func (p *Presence) handle(u Update) {
	if u.Track == nil || u.Paused {
		if p.last.playing {
			p.clearActivity()
			p.last = lastActivity{}
		}
		return
	}

	cur := lastActivity{id: u.Track.ID, playing: true}
	if cur == p.last {
		return
	}

	if err := p.ensureConnected(); err != nil {
		p.logger.Warn().Err(err).Msg("Discord not available")
		return
	}

	if err := p.client.SetActivity(activityFor(*u.Track, p.now())); err != nil {
		p.logger.Warn().Err(err).Msg("Failed to set activity")
		p.close()
		return
	}
	p.logger.Debug().Str("track", u.Track.Title).Msg("Presence updated")
	p.last = cur
}

func activityFor(t library.Track, start time.Time) *Activity {
	startUnix := start.Unix()
	ts := &Timestamps{Start: &startUnix}
	if t.HasDuration() {
		end := start.Add(time.Duration(t.Duration) * time.Second).Unix()
		ts.End = &end
	}
	return &Activity{
		Type:       activityListening,
		Details:    t.Title,
		State:      "by " + t.Artist,
		Timestamps: ts,
		Assets: &Assets{
			LargeImage: "simplay",
			LargeText:  t.Album,
		},
	}
}

func (p *Presence) ensureConnected() error {
	if p.client != nil {
		return nil
	}
	client, err := p.connect(p.appID)
	if err != nil {
		return err
	}
	p.logger.Info().Msg("Connected to Discord")
	p.client = client
	return nil
}

func (p *Presence) clearActivity() {
	if p.client == nil {
		return
	}
	if err := p.client.SetActivity(nil); err != nil {
		p.logger.Debug().Err(err).Msg("Failed to clear activity")
		p.close()
	}
}

func (p *Presence) close() {
	if p.client == nil {
		return
	}
	_ = p.client.Close()
	p.client = nil
}
