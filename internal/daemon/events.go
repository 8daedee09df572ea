package daemon

import (
	"context"
	"errors"

	"github.com/jfmyers9/simplay/internal/player"
)

// consumeEvents handles end-file events until ctx is done or the event
// channel closes.
func (s *Session) consumeEvents(ctx context.Context, events <-chan player.EndFile) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				s.logger.Error().Msg("Player event channel closed, playback unavailable until restart")
				return
			}
			s.handleEndFile(ev)
		}
	}
}

func (s *Session) handleEndFile(ev player.EndFile) {
	if s.state.ConsumeSuppression() {
		s.logger.Debug().Str("reason", ev.Reason).Msg("Ignoring end-file after manual skip")
		return
	}

	if ev.Reason == player.ReasonEOF {
		if cur, ok := s.state.Current(); ok {
			s.submit(cur)
		}
	}

	switch ev.Reason {
	case "", player.ReasonEOF, player.ReasonStop, player.ReasonError:
	default:
		s.logger.Debug().Str("reason", ev.Reason).Msg("Ignoring end-file")
		return
	}

	if err := s.Next(false, ""); err != nil {
		switch {
		case errors.Is(err, ErrEndOfQueue):
			s.logger.Info().Msg("End of queue")
		case errors.Is(err, ErrEmptyQueue):
			s.logger.Debug().Msg("End-file with nothing queued")
		default:
			s.logger.Error().Err(err).Msg("Failed to advance after end-file")
		}
	}
}
