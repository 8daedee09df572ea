package discord

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/library"
)

type fakeRPC struct {
	activities []*Activity
	closed     bool
	failNext   error
}

func (f *fakeRPC) SetActivity(a *Activity) error {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return err
	}
	f.activities = append(f.activities, a)
	return nil
}

func (f *fakeRPC) Close() error {
	f.closed = true
	return nil
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestPresence() (*Presence, *fakeRPC) {
	fake := &fakeRPC{}
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			return fake, nil
		},
		now: func() time.Time { return fixedNow },
	}
	return p, fake
}

func playing(id, title string) Update {
	return Update{Track: &library.Track{
		ID: id, Title: title, Artist: "Artist", Album: "Album", Duration: 180,
	}}
}

func TestDedup_SkipsDuplicateUpdates(t *testing.T) {
	p, fake := newTestPresence()
	u := playing("s1", "Song")

	p.handle(u)
	p.handle(u)
	p.handle(u)

	if len(fake.activities) != 1 {
		t.Fatalf("expected 1 SetActivity call, got %d", len(fake.activities))
	}
}

func TestDedup_SendsOnTrackChange(t *testing.T) {
	p, fake := newTestPresence()

	p.handle(playing("s1", "Song A"))
	p.handle(playing("s2", "Song B"))

	if len(fake.activities) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(fake.activities))
	}
	if fake.activities[0].Details != "Song A" {
		t.Errorf("first activity details = %q, want %q", fake.activities[0].Details, "Song A")
	}
	if fake.activities[1].Details != "Song B" {
		t.Errorf("second activity details = %q, want %q", fake.activities[1].Details, "Song B")
	}
}

func TestClearsOnPause(t *testing.T) {
	p, fake := newTestPresence()

	u := playing("s1", "Song")
	p.handle(u)
	u.Paused = true
	p.handle(u)

	if len(fake.activities) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(fake.activities))
	}
	if fake.activities[1] != nil {
		t.Errorf("clear should send a nil activity, got %+v", fake.activities[1])
	}

	// Resuming the same track publishes it again.
	u.Paused = false
	p.handle(u)
	if len(fake.activities) != 3 {
		t.Fatalf("expected 3 SetActivity calls after resume, got %d", len(fake.activities))
	}
}

func TestClearsOnIdle(t *testing.T) {
	p, fake := newTestPresence()

	p.handle(playing("s1", "Song"))
	p.handle(Update{})

	if len(fake.activities) != 2 {
		t.Fatalf("expected 2 SetActivity calls, got %d", len(fake.activities))
	}
}

func TestNoClearWhenNeverPlayed(t *testing.T) {
	p, fake := newTestPresence()

	p.handle(Update{})
	p.handle(Update{Track: &library.Track{ID: "s1"}, Paused: true})

	if len(fake.activities) != 0 {
		t.Fatalf("expected 0 SetActivity calls, got %d", len(fake.activities))
	}
}

func TestReconnectsAfterError(t *testing.T) {
	connectCount := 0
	fake := &fakeRPC{}
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			connectCount++
			fake = &fakeRPC{}
			return fake, nil
		},
		now: time.Now,
	}

	p.handle(playing("s1", "Song"))
	if connectCount != 1 {
		t.Fatalf("expected 1 connect, got %d", connectCount)
	}

	old := fake
	old.failNext = errors.New("broken pipe")
	p.handle(playing("s2", "Other"))
	if !old.closed {
		t.Error("expected failed client to be closed")
	}

	p.handle(playing("s2", "Other"))
	if connectCount != 2 {
		t.Fatalf("expected 2 connects after error, got %d", connectCount)
	}
}

func TestDiscordUnavailable(t *testing.T) {
	p := &Presence{
		appID:  "test",
		logger: zerolog.Nop(),
		connect: func(string) (rpcClient, error) {
			return nil, errors.New("no discord socket found")
		},
		now: time.Now,
	}

	p.handle(playing("s1", "Song"))
	if p.client != nil {
		t.Error("client should stay nil when connect fails")
	}
	if p.last.playing {
		t.Error("failed update should not be remembered")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	p, fake := newTestPresence()
	p.client = fake

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan Update, 1)
	done := make(chan struct{})

	go func() {
		p.Run(ctx, updates)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after context cancel")
	}

	if !fake.closed {
		t.Error("expected client to be closed on context cancel")
	}
}

func TestActivityFields(t *testing.T) {
	tests := []struct {
		name    string
		track   library.Track
		wantEnd bool
	}{
		{
			name:    "with duration",
			track:   library.Track{ID: "1", Title: "Bohemian Rhapsody", Artist: "Queen", Album: "A Night at the Opera", Duration: 355},
			wantEnd: true,
		},
		{
			name:  "unknown duration",
			track: library.Track{ID: "2", Title: "Live Stream", Artist: "Radio", Album: "Unknown Album"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := activityFor(tt.track, fixedNow)
			if a.Type != activityListening {
				t.Errorf("type = %d, want %d", a.Type, activityListening)
			}
			if a.Details != tt.track.Title {
				t.Errorf("details = %q, want %q", a.Details, tt.track.Title)
			}
			if a.State != "by "+tt.track.Artist {
				t.Errorf("state = %q, want %q", a.State, "by "+tt.track.Artist)
			}
			if a.Assets == nil || a.Assets.LargeText != tt.track.Album {
				t.Errorf("assets = %+v, want large_text %q", a.Assets, tt.track.Album)
			}
			if a.Timestamps == nil || a.Timestamps.Start == nil {
				t.Fatal("expected a start timestamp")
			}
			if *a.Timestamps.Start != fixedNow.Unix() {
				t.Errorf("start = %d, want %d", *a.Timestamps.Start, fixedNow.Unix())
			}
			if got := a.Timestamps.End != nil; got != tt.wantEnd {
				t.Fatalf("has end = %v, want %v", got, tt.wantEnd)
			}
			if tt.wantEnd && *a.Timestamps.End != fixedNow.Unix()+int64(tt.track.Duration) {
				t.Errorf("end = %d, want start+duration", *a.Timestamps.End)
			}
		})
	}
}
