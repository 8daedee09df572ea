package daemon

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/library"
)

// Player is the subset of the mpv controller the daemon drives.
type Player interface {
	Load(url string) error
	SetPause(paused bool) error
	SeekAbsolute(seconds float64) error
	SetVolume(volume float64) error
	Volume() (float64, error)
	Position() (pos float64, ok bool, err error)
}

// Library is the music server as seen by the daemon.
type Library interface {
	StreamURL(id string) string
	RandomSongs(ctx context.Context, n int) ([]library.Track, error)
	AllSongs(ctx context.Context) ([]library.Track, error)
	FindArtist(ctx context.Context, query string) (library.Item, error)
	FindAlbum(ctx context.Context, query string) (library.Item, error)
	FindPlaylist(ctx context.Context, query string) (library.Item, error)
	ArtistSongs(ctx context.Context, artistID string) ([]library.Track, error)
	AlbumSongs(ctx context.Context, albumID string) ([]library.Track, error)
	PlaylistSongs(ctx context.Context, playlistID string) ([]library.Track, error)
	StarredSongs(ctx context.Context) ([]library.Track, error)
	NowPlaying(ctx context.Context, id string) error
	Submit(ctx context.Context, id string) error
	Star(ctx context.Context, id string) error
	Unstar(ctx context.Context, id string) error
	Rate(ctx context.Context, id string, rating int) error
	AddToPlaylist(ctx context.Context, name, songID string) (string, bool, error)
	DeletePlaylist(ctx context.Context, name string) (string, error)
}

// Journal records plays locally.
type Journal interface {
	RecordPlay(ctx context.Context, t library.Track) error
	MarkSubmitted(ctx context.Context, trackID string, submitErr error) error
}

// Session ties the playback state to the player and the library. Commands,
// end-file events and fallback trackers all move playback through it.
type Session struct {
	state   *PlaybackState
	player  Player
	library Library
	journal Journal
	logger  zerolog.Logger

	observers []func(Snapshot)

	// second is the wall-clock length of one second of track time.
	second time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a session. Background work started by the session is
// cancelled by Close.
func NewSession(state *PlaybackState, p Player, lib Library, logger zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		state:   state,
		player:  p,
		library: lib,
		logger:  logger.With().Str("component", "session").Logger(),
		second:  time.Second,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetJournal enables play journaling. Must be called before playback starts.
func (s *Session) SetJournal(j Journal) {
	s.journal = j
}

// Observe registers fn to receive a snapshot after every track or pause
// change. fn must not block. Must be called before playback starts.
func (s *Session) Observe(fn func(Snapshot)) {
	s.observers = append(s.observers, fn)
}

// State returns the underlying playback state.
func (s *Session) State() *PlaybackState {
	return s.state
}

// Start replaces the queue and plays its first track.
func (s *Session) Start(tracks []library.Track, repeat, shuffle bool) error {
	first, err := s.state.Load(tracks, repeat, shuffle)
	if err != nil {
		return err
	}
	return s.playTrack(first)
}

// Next advances and plays the next track. A stale expectedID is a no-op.
func (s *Session) Next(manual bool, expectedID string) error {
	next, moved, err := s.state.Advance(manual, expectedID)
	if err != nil || !moved {
		return err
	}
	return s.playTrack(next)
}

// Previous retreats and plays the previous track.
func (s *Session) Previous(manual bool) error {
	prev, err := s.state.Retreat(manual)
	if err != nil {
		return err
	}
	return s.playTrack(prev)
}

// SetPaused pauses or resumes the player. Resuming restarts the fallback
// tracker for the current track.
func (s *Session) SetPaused(paused bool) error {
	if err := s.player.SetPause(paused); err != nil {
		return err
	}
	s.state.SetPaused(paused)
	s.notify()

	if paused {
		return nil
	}
	if cur, ok := s.state.Current(); ok && cur.HasDuration() {
		remaining := float64(cur.Duration)
		if pos, ok, err := s.player.Position(); err == nil && ok {
			remaining = max(remaining-pos, 0.1)
		}
		s.background(func(ctx context.Context) {
			s.track(ctx, cur, remaining)
		})
	}
	return nil
}

// Restart seeks to the beginning of the current track.
func (s *Session) Restart() error {
	return s.player.SeekAbsolute(0)
}

func (s *Session) playTrack(t library.Track) error {
	if err := s.player.Load(s.library.StreamURL(t.ID)); err != nil {
		return err
	}
	if err := s.player.SetPause(false); err != nil {
		return err
	}

	s.logger.Info().
		Str("id", t.ID).
		Str("track", t.Title).
		Str("artist", t.Artist).
		Msg("Now playing")

	s.background(func(ctx context.Context) {
		if err := s.library.NowPlaying(ctx, t.ID); err != nil {
			s.logger.Warn().Err(err).Str("id", t.ID).Msg("Failed to update now playing")
		}
	})

	if s.journal != nil {
		if err := s.journal.RecordPlay(s.ctx, t); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to record play")
		}
	}

	s.notify()

	if t.HasDuration() {
		s.background(func(ctx context.Context) {
			s.track(ctx, t, float64(t.Duration))
		})
	}
	return nil
}

// submit reports a completed play to the server and the journal.
func (s *Session) submit(t library.Track) {
	s.background(func(ctx context.Context) {
		err := s.library.Submit(ctx, t.ID)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", t.ID).Msg("Failed to submit play")
		} else {
			s.logger.Debug().Str("id", t.ID).Msg("Submitted play")
		}
		if s.journal != nil {
			if jerr := s.journal.MarkSubmitted(ctx, t.ID, err); jerr != nil {
				s.logger.Warn().Err(jerr).Msg("Failed to update play journal")
			}
		}
	})
}

func (s *Session) notify() {
	if len(s.observers) == 0 {
		return
	}
	snap := s.state.Snapshot()
	for _, fn := range s.observers {
		fn(snap)
	}
}

func (s *Session) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
}

// Close cancels background work and waits for it to return.
func (s *Session) Close() {
	s.cancel()
	s.wg.Wait()
}
