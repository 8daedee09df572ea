// Package daemon runs the long-lived playback daemon: it owns the queue,
// drives mpv, follows its end-of-track events and serves the control
// socket.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/discord"
	"github.com/jfmyers9/simplay/internal/history"
	"github.com/jfmyers9/simplay/internal/player"
)

// Config holds daemon configuration
type Config struct {
	SocketPath string        // Control socket path
	EndGrace   time.Duration // Added to track length before the fallback advance
	MaxShuffle int           // Library shuffle size, 0 for the whole library
	VolumeStep int           // Percent per volume up/down
}

// PlayerProcess is a running player that reports end-file events.
type PlayerProcess interface {
	Player
	Events() <-chan player.EndFile
	Close() error
}

// Option configures optional daemon features.
type Option func(*Daemon)

// WithJournal records every play in j.
func WithJournal(j *history.Journal) Option {
	return func(d *Daemon) { d.journal = j }
}

// WithPresence publishes the current track to Discord.
func WithPresence(p *discord.Presence) Option {
	return func(d *Daemon) { d.presence = p }
}

// Daemon coordinates the player, the playback session and the control server
type Daemon struct {
	config   Config
	player   PlayerProcess
	session  *Session
	server   *Server
	journal  *history.Journal
	presence *discord.Presence
	updates  chan discord.Update
	logger   zerolog.Logger
}

// New creates a new Daemon instance
func New(cfg Config, p PlayerProcess, lib Library, logger zerolog.Logger, opts ...Option) *Daemon {
	d := &Daemon{
		config: cfg,
		player: p,
		logger: logger.With().Str("component", "daemon").Logger(),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.session = NewSession(NewPlaybackState(cfg.EndGrace), p, lib, logger)
	if d.journal != nil {
		d.session.SetJournal(d.journal)
	}
	if d.presence != nil {
		d.updates = make(chan discord.Update, 8)
		d.session.Observe(d.publishPresence)
	}

	handler := NewHandler(d.session, HandlerConfig{
		MaxShuffle: cfg.MaxShuffle,
		VolumeStep: cfg.VolumeStep,
	}, logger)
	d.server = NewServer(cfg.SocketPath, handler, logger)
	return d
}

// publishPresence forwards snapshot without blocking playback. Updates
// are dropped while the presence loop is busy.
func (d *Daemon) publishPresence(snap Snapshot) {
	select {
	case d.updates <- discord.Update{Track: snap.Current, Paused: snap.Paused}:
	default:
		d.logger.Debug().Msg("Presence busy, dropping update")
	}
}

// Run starts the daemon and blocks until shutdown signal received
func (d *Daemon) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		select {
		case <-sigChan:
		case <-ctx.Done():
			return
		}
		d.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		d.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := d.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// run serves until ctx is cancelled.
func (d *Daemon) run(ctx context.Context) error {
	d.logger.Info().Msg("Starting daemon")

	if err := d.server.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.server.Serve(ctx); err != nil {
			d.logger.Error().Err(err).Msg("Server error")
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		// Losing mpv ends playback only. The server keeps answering, and
		// player commands fail until the daemon is restarted.
		d.session.consumeEvents(ctx, d.player.Events())
	}()

	if d.presence != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.presence.Run(ctx, d.updates)
		}()
	}

	wg.Wait()

	d.logger.Info().Msg("Daemon stopped")
	return nil
}

// Shutdown stops background playback work, the player and the journal.
func (d *Daemon) Shutdown() error {
	d.logger.Info().Msg("Shutting down daemon")

	d.session.Close()

	var errs []error
	if err := d.player.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to stop player: %w", err))
	}

	if d.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if n, err := d.journal.Cleanup(ctx, history.DefaultRetention); err != nil {
			d.logger.Warn().Err(err).Msg("Failed to clean up play history")
		} else if n > 0 {
			d.logger.Debug().Int64("deleted", n).Msg("Cleaned up play history")
		}
		if err := d.journal.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close history: %w", err))
		}
	}

	return errors.Join(errs...)
}
