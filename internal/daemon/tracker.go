package daemon

import (
	"context"
	"errors"
	"time"

	"github.com/jfmyers9/simplay/internal/library"
)

// positionSlack is how close to the end the player position must be
// before the tracker treats the track as finished.
const positionSlack = 0.25

// track advances past t when the player never reports its end. It sleeps
// for the remaining track time plus the grace period, then either exits
// (track changed or paused), sleeps again (player still short of the end),
// or advances with t's id as the expected current track.
//
// The advance is manual: replacing the loaded file makes mpv emit an
// end-file for the old track, and that event must not advance a second time.
func (s *Session) track(ctx context.Context, t library.Track, remaining float64) {
	duration := float64(t.Duration)
	for {
		wait := time.Duration(remaining*float64(s.second)) + s.state.EndGrace()
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !s.state.Watching(t.ID) {
			return
		}

		pos, ok, err := s.player.Position()
		if err == nil && ok && pos+positionSlack < duration {
			remaining = max(duration-pos, 0.1)
			s.logger.Debug().
				Str("id", t.ID).
				Float64("position", pos).
				Float64("remaining", remaining).
				Msg("Track still playing, extending fallback")
			continue
		}

		s.logger.Debug().Str("id", t.ID).Msg("Fallback advancing past track")
		if err := s.Next(true, t.ID); err != nil {
			if errors.Is(err, ErrEndOfQueue) {
				s.logger.Info().Msg("End of queue")
			} else {
				s.logger.Warn().Err(err).Msg("Fallback advance failed")
			}
		}
		return
	}
}
