package daemon

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/library"
	"github.com/jfmyers9/simplay/internal/player"
)

type fakePlayer struct {
	mu         sync.Mutex
	loaded     []string
	pauses     []bool
	seeks      []float64
	volume     float64
	volumeErr  error
	setVolumes []float64
	position   float64
	positionOK bool
	loadErr    error
	events     chan player.EndFile
	closed     bool
	broken     bool
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{volume: 50, events: make(chan player.EndFile, 4)}
}

func (p *fakePlayer) Load(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return player.ErrChannelClosed
	}
	if p.loadErr != nil {
		return p.loadErr
	}
	p.loaded = append(p.loaded, url)
	return nil
}

func (p *fakePlayer) SetPause(paused bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return player.ErrChannelClosed
	}
	p.pauses = append(p.pauses, paused)
	return nil
}

func (p *fakePlayer) SeekAbsolute(seconds float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return player.ErrChannelClosed
	}
	p.seeks = append(p.seeks, seconds)
	return nil
}

func (p *fakePlayer) SetVolume(v float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return player.ErrChannelClosed
	}
	p.setVolumes = append(p.setVolumes, v)
	p.volume = v
	return nil
}

func (p *fakePlayer) Volume() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return 0, player.ErrChannelClosed
	}
	return p.volume, p.volumeErr
}

func (p *fakePlayer) Position() (float64, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken {
		return 0, false, player.ErrChannelClosed
	}
	return p.position, p.positionOK, nil
}

func (p *fakePlayer) setPosition(pos float64, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.position, p.positionOK = pos, ok
}

func (p *fakePlayer) Events() <-chan player.EndFile { return p.events }

// disconnect mimics mpv going away: the event feed closes and every
// command fails from then on.
func (p *fakePlayer) disconnect() {
	p.mu.Lock()
	p.broken = true
	p.mu.Unlock()
	close(p.events)
}

func (p *fakePlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePlayer) loads() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.loaded)
}

type fakeLibrary struct {
	mu sync.Mutex

	all       []library.Track
	random    []library.Track
	starred   []library.Track
	artists   []library.Item
	albums    []library.Item
	playlists []library.Item
	songs     map[string][]library.Track // by artist, album or playlist id
	listErr   error

	randomSizes []int
	nowPlaying  []string
	submitted   []string
	submitErr   error
	stars       []string
	unstars     []string
	ratings     map[string]int
	added       map[string][]string
	deleted     []string
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{
		songs:   map[string][]library.Track{},
		ratings: map[string]int{},
		added:   map[string][]string{},
	}
}

func (l *fakeLibrary) StreamURL(id string) string { return "stream://" + id }

func (l *fakeLibrary) RandomSongs(_ context.Context, n int) ([]library.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.randomSizes = append(l.randomSizes, n)
	return slices.Clone(l.random), l.listErr
}

func (l *fakeLibrary) AllSongs(context.Context) ([]library.Track, error) {
	return slices.Clone(l.all), l.listErr
}

func find(query string, items []library.Item, kind string) (library.Item, error) {
	it, ok := library.BestMatch(query, items)
	if !ok {
		return library.Item{}, fmt.Errorf("%s %q: %w", kind, query, library.ErrNotFound)
	}
	return it, nil
}

func (l *fakeLibrary) FindArtist(_ context.Context, q string) (library.Item, error) {
	return find(q, l.artists, "artist")
}

func (l *fakeLibrary) FindAlbum(_ context.Context, q string) (library.Item, error) {
	return find(q, l.albums, "album")
}

func (l *fakeLibrary) FindPlaylist(_ context.Context, q string) (library.Item, error) {
	return find(q, l.playlists, "playlist")
}

func (l *fakeLibrary) ArtistSongs(_ context.Context, id string) ([]library.Track, error) {
	return slices.Clone(l.songs[id]), l.listErr
}

func (l *fakeLibrary) AlbumSongs(_ context.Context, id string) ([]library.Track, error) {
	return slices.Clone(l.songs[id]), l.listErr
}

func (l *fakeLibrary) PlaylistSongs(_ context.Context, id string) ([]library.Track, error) {
	return slices.Clone(l.songs[id]), l.listErr
}

func (l *fakeLibrary) StarredSongs(context.Context) ([]library.Track, error) {
	return slices.Clone(l.starred), l.listErr
}

func (l *fakeLibrary) NowPlaying(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.nowPlaying = append(l.nowPlaying, id)
	return nil
}

func (l *fakeLibrary) Submit(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.submitted = append(l.submitted, id)
	return l.submitErr
}

func (l *fakeLibrary) Star(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stars = append(l.stars, id)
	return nil
}

func (l *fakeLibrary) Unstar(_ context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unstars = append(l.unstars, id)
	return nil
}

func (l *fakeLibrary) Rate(_ context.Context, id string, rating int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ratings[id] = rating
	return nil
}

func (l *fakeLibrary) AddToPlaylist(_ context.Context, name, songID string) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if it, ok := library.BestMatch(name, l.playlists); ok {
		l.added[it.ID] = append(l.added[it.ID], songID)
		return it.Name, false, nil
	}
	id := fmt.Sprintf("pl%d", len(l.playlists)+1)
	l.playlists = append(l.playlists, library.Item{ID: id, Name: name})
	l.added[id] = []string{songID}
	return name, true, nil
}

func (l *fakeLibrary) DeletePlaylist(_ context.Context, name string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	it, err := find(name, l.playlists, "playlist")
	if err != nil {
		return "", err
	}
	l.deleted = append(l.deleted, it.ID)
	return it.Name, nil
}

func (l *fakeLibrary) calls(field *[]string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(*field)
}

type fakeJournal struct {
	mu        sync.Mutex
	recorded  []string
	submitted map[string]error
}

func (j *fakeJournal) RecordPlay(_ context.Context, t library.Track) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.recorded = append(j.recorded, t.ID)
	return nil
}

func (j *fakeJournal) MarkSubmitted(_ context.Context, trackID string, err error) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.submitted == nil {
		j.submitted = map[string]error{}
	}
	j.submitted[trackID] = err
	return nil
}

// newTestSession builds a session whose fallback trackers never fire
// during a test. Tracker tests shorten second themselves.
func newTestSession(t *testing.T) (*Session, *fakePlayer, *fakeLibrary) {
	t.Helper()
	p := newFakePlayer()
	lib := newFakeLibrary()
	s := NewSession(NewPlaybackState(0), p, lib, zerolog.Nop())
	s.second = time.Hour
	t.Cleanup(s.Close)
	return s, p, lib
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
