package daemon

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/jfmyers9/simplay/internal/library"
)

var (
	// ErrEndOfQueue is returned when advancing past the last track without repeat.
	ErrEndOfQueue = errors.New("End of queue")
	// ErrAtStart is returned when retreating from the first track.
	ErrAtStart = errors.New("At start of queue")
	// ErrEmptyQueue is returned when the queue holds no tracks.
	ErrEmptyQueue = errors.New("Queue is empty")
)

// Snapshot is a consistent copy of the playback state.
type Snapshot struct {
	Current  *library.Track // nil when idle
	Paused   bool
	QueueLen int
	Index    int
}

// PlaybackState holds the queue and cursor shared by the command handler,
// the event consumer and the fallback trackers. All access goes through
// the mutex.
type PlaybackState struct {
	mu              sync.Mutex
	queue           []library.Track
	position        int
	current         *library.Track
	paused          bool
	repeat          bool
	shuffle         bool
	suppressNextEnd bool
	endGrace        time.Duration
}

// NewPlaybackState creates an idle state. endGrace is added to every
// fallback tracker sleep.
func NewPlaybackState(endGrace time.Duration) *PlaybackState {
	return &PlaybackState{endGrace: endGrace}
}

// Load replaces the queue with a copy of queue and selects its first track.
func (s *PlaybackState) Load(queue []library.Track, repeat, shuffle bool) (library.Track, error) {
	if len(queue) == 0 {
		return library.Track{}, ErrEmptyQueue
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = slices.Clone(queue)
	s.position = 0
	first := queue[0]
	s.current = &first
	s.paused = false
	s.repeat = repeat
	s.shuffle = shuffle
	s.suppressNextEnd = false
	return first, nil
}

// Advance moves to the next track. When expectedID is non-empty and does
// not match the current track the call is a no-op and moved is false.
// A manual advance suppresses the end-file event caused by replacing the
// loaded file.
func (s *PlaybackState) Advance(manual bool, expectedID string) (next library.Track, moved bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return library.Track{}, false, ErrEmptyQueue
	}
	if expectedID != "" && (s.current == nil || s.current.ID != expectedID) {
		return library.Track{}, false, nil
	}

	pos := s.position + 1
	if pos >= len(s.queue) {
		if !s.repeat {
			return library.Track{}, false, ErrEndOfQueue
		}
		if s.shuffle {
			lo.Shuffle(s.queue)
		}
		pos = 0
	}

	s.position = pos
	next = s.queue[pos]
	s.current = &next
	s.paused = false
	if manual {
		s.suppressNextEnd = true
	}
	return next, true, nil
}

// Retreat moves to the previous track.
func (s *PlaybackState) Retreat(manual bool) (library.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return library.Track{}, ErrEmptyQueue
	}
	if s.position == 0 {
		return library.Track{}, ErrAtStart
	}

	s.position--
	prev := s.queue[s.position]
	s.current = &prev
	s.paused = false
	if manual {
		s.suppressNextEnd = true
	}
	return prev, nil
}

// ConsumeSuppression reports whether the next end-file event should be
// ignored and clears the flag.
func (s *PlaybackState) ConsumeSuppression() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	suppressed := s.suppressNextEnd
	s.suppressNextEnd = false
	return suppressed
}

// SetPaused records the pause flag.
func (s *PlaybackState) SetPaused(paused bool) {
	s.mu.Lock()
	s.paused = paused
	s.mu.Unlock()
}

// Current returns the current track, if any.
func (s *PlaybackState) Current() (library.Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return library.Track{}, false
	}
	return *s.current, true
}

// Watching reports whether trackID is still current and playback is not
// paused. Fallback trackers exit once this is false.
func (s *PlaybackState) Watching(trackID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && s.current.ID == trackID && !s.paused
}

// Snapshot returns a copy of the state for status reporting.
func (s *PlaybackState) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Paused:   s.paused,
		QueueLen: len(s.queue),
		Index:    s.position,
	}
	if s.current != nil {
		cur := *s.current
		snap.Current = &cur
	}
	return snap
}

// EndGrace returns the configured fallback grace period.
func (s *PlaybackState) EndGrace() time.Duration {
	return s.endGrace
}
