package library

import (
	"cmp"
	"slices"

	"github.com/samber/lo"

	"github.com/jfmyers9/simplay/pkg/subsonic"
)

// Track is an immutable library song.
type Track struct {
	ID       string
	Title    string
	Artist   string
	Album    string
	Duration int // whole seconds, 0 when unknown
	Disc     int // 0 when unknown
	Number   int // 0 when unknown
}

// HasDuration reports whether the track's length is known.
func (t Track) HasDuration() bool {
	return t.Duration > 0
}

func trackFromSong(s subsonic.Song) Track {
	return Track{
		ID:       s.ID,
		Title:    lo.CoalesceOrEmpty(s.Title, "Unknown Title"),
		Artist:   lo.CoalesceOrEmpty(s.Artist, "Unknown Artist"),
		Album:    lo.CoalesceOrEmpty(s.Album, "Unknown Album"),
		Duration: max(s.Duration, 0),
		Disc:     max(s.DiscNumber, 0),
		Number:   max(s.Track, 0),
	}
}

// tracksFromSongs converts songs, skipping entries without an id.
func tracksFromSongs(songs []subsonic.Song) []Track {
	return lo.FilterMap(songs, func(s subsonic.Song, _ int) (Track, bool) {
		return trackFromSong(s), s.ID != ""
	})
}

// SortByDiscAndNumber orders tracks by (disc, track number) in place,
// treating unknown values as 0. The sort is stable.
func SortByDiscAndNumber(tracks []Track) {
	slices.SortStableFunc(tracks, func(a, b Track) int {
		if c := cmp.Compare(a.Disc, b.Disc); c != 0 {
			return c
		}
		return cmp.Compare(a.Number, b.Number)
	})
}

// Shuffle returns a shuffled copy of tracks.
func Shuffle(tracks []Track) []Track {
	return lo.Shuffle(slices.Clone(tracks))
}

// ShuffleLimit shuffles tracks and keeps at most limit of them.
// A limit of 0 keeps everything.
func ShuffleLimit(tracks []Track, limit int) []Track {
	out := Shuffle(tracks)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
