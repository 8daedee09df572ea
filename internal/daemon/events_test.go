package daemon

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/jfmyers9/simplay/internal/player"
)

func TestHandleEndFile(t *testing.T) {
	tests := []struct {
		name        string
		reason      string
		wantLoads   []string
		wantSubmits []string
	}{
		{name: "eof submits and advances", reason: player.ReasonEOF, wantLoads: []string{"stream://s1", "stream://s2"}, wantSubmits: []string{"s1"}},
		{name: "stop advances", reason: player.ReasonStop, wantLoads: []string{"stream://s1", "stream://s2"}},
		{name: "error advances", reason: player.ReasonError, wantLoads: []string{"stream://s1", "stream://s2"}},
		{name: "missing reason advances", reason: "", wantLoads: []string{"stream://s1", "stream://s2"}},
		{name: "quit is ignored", reason: player.ReasonQuit, wantLoads: []string{"stream://s1"}},
		{name: "redirect is ignored", reason: player.ReasonRedirect, wantLoads: []string{"stream://s1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, p, lib := newTestSession(t)
			if err := s.Start(makeTracks(3), false, false); err != nil {
				t.Fatalf("Start: %v", err)
			}

			s.handleEndFile(player.EndFile{Reason: tt.reason})
			s.Close()

			if got := p.loads(); !slices.Equal(got, tt.wantLoads) {
				t.Errorf("loaded = %v, want %v", got, tt.wantLoads)
			}
			if got := lib.calls(&lib.submitted); !slices.Equal(got, tt.wantSubmits) {
				t.Errorf("submitted = %v, want %v", got, tt.wantSubmits)
			}
		})
	}
}

func TestHandleEndFile_SuppressedAfterManualSkip(t *testing.T) {
	s, p, lib := newTestSession(t)
	if err := s.Start(makeTracks(3), false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Next(true, ""); err != nil {
		t.Fatalf("Next: %v", err)
	}

	// The skip replaced s1, so mpv reports its end. That event is ignored.
	s.handleEndFile(player.EndFile{Reason: player.ReasonStop})
	if got := p.loads(); len(got) != 2 {
		t.Fatalf("suppressed event advanced: loaded = %v", got)
	}

	// The next natural end advances again.
	s.handleEndFile(player.EndFile{Reason: player.ReasonEOF})
	s.Close()

	want := []string{"stream://s1", "stream://s2", "stream://s3"}
	if got := p.loads(); !slices.Equal(got, want) {
		t.Errorf("loaded = %v, want %v", got, want)
	}
	if got := lib.calls(&lib.submitted); !slices.Equal(got, []string{"s2"}) {
		t.Errorf("submitted = %v, want [s2]", got)
	}
}

func TestHandleEndFile_EndOfQueue(t *testing.T) {
	s, p, _ := newTestSession(t)
	if err := s.Start(makeTracks(1), false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	s.handleEndFile(player.EndFile{Reason: player.ReasonEOF})

	if got := p.loads(); len(got) != 1 {
		t.Errorf("loaded = %v, want only the first track", got)
	}
	if cur, _ := s.State().Current(); cur.ID != "s1" {
		t.Errorf("current = %q, want s1", cur.ID)
	}
}

func TestHandleEndFile_RecordsSubmission(t *testing.T) {
	s, _, lib := newTestSession(t)
	journal := &fakeJournal{}
	s.SetJournal(journal)
	lib.submitErr = errors.New("server down")

	if err := s.Start(makeTracks(2), false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.handleEndFile(player.EndFile{Reason: player.ReasonEOF})
	s.Close()

	journal.mu.Lock()
	defer journal.mu.Unlock()
	if err, ok := journal.submitted["s1"]; !ok || err == nil {
		t.Errorf("journal submission for s1 = %v (present %v), want the submit error", err, ok)
	}
}

func TestConsumeEvents_StopsOnClose(t *testing.T) {
	s, p, _ := newTestSession(t)
	if err := s.Start(makeTracks(2), false, false); err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.consumeEvents(context.Background(), p.events)
		close(done)
	}()

	p.events <- player.EndFile{Reason: player.ReasonEOF}
	waitFor(t, "advance", func() bool { return len(p.loads()) == 2 })

	close(p.events)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumeEvents did not return after channel close")
	}
}
