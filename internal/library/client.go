package library

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/jfmyers9/simplay/pkg/subsonic"
)

// ErrNotFound is returned when a fuzzy lookup finds no candidate.
var ErrNotFound = errors.New("not found")

const (
	albumPageSize   = 200
	albumFetchLimit = 4
)

// Client adapts the Subsonic SDK to the daemon's vocabulary of tracks and
// named items.
type Client struct {
	api    *subsonic.Client
	logger zerolog.Logger
}

// New wraps api.
func New(api *subsonic.Client, logger zerolog.Logger) *Client {
	return &Client{
		api:    api,
		logger: logger.With().Str("component", "library").Logger(),
	}
}

// StreamURL returns a URL the player can load directly.
func (c *Client) StreamURL(id string) string {
	return c.api.StreamURL(id)
}

// RandomSongs asks the server for n random songs.
func (c *Client) RandomSongs(ctx context.Context, n int) ([]Track, error) {
	songs, err := c.api.Browse().RandomSongs(ctx, n)
	if err != nil {
		return nil, err
	}
	return tracksFromSongs(songs), nil
}

// AllSongs walks every album in the library, alphabetically, and returns
// their songs in album order.
func (c *Client) AllSongs(ctx context.Context) ([]Track, error) {
	var albumIDs []string
	for offset := 0; ; offset += albumPageSize {
		albums, err := c.api.Browse().AlbumList2(ctx, subsonic.AlbumListAlphabeticalByName, albumPageSize, offset)
		if err != nil {
			return nil, err
		}
		if len(albums) == 0 {
			break
		}
		albumIDs = append(albumIDs, lo.Map(albums, func(a subsonic.Album, _ int) string { return a.ID })...)
	}

	c.logger.Debug().Int("albums", len(albumIDs)).Msg("Fetching library")
	return c.albumsSongs(ctx, albumIDs)
}

// albumsSongs fetches the songs of each album concurrently and
// concatenates them in the order of ids.
func (c *Client) albumsSongs(ctx context.Context, ids []string) ([]Track, error) {
	results := make([][]Track, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(albumFetchLimit)
	for i, id := range ids {
		g.Go(func() error {
			tracks, err := c.AlbumSongs(ctx, id)
			if err != nil {
				return err
			}
			results[i] = tracks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(results), nil
}

// FindArtist resolves a free-text artist name.
func (c *Client) FindArtist(ctx context.Context, query string) (Item, error) {
	res, err := c.api.Browse().Search3(ctx, query)
	if err != nil {
		return Item{}, err
	}
	items := lo.Map(res.Artist, func(a subsonic.Artist, _ int) Item {
		return itemFrom(a.ID, a.Name, "")
	})
	return pick(query, items, "artist")
}

// FindAlbum resolves a free-text album name.
func (c *Client) FindAlbum(ctx context.Context, query string) (Item, error) {
	res, err := c.api.Browse().Search3(ctx, query)
	if err != nil {
		return Item{}, err
	}
	items := lo.Map(res.Album, func(a subsonic.Album, _ int) Item {
		return itemFrom(a.ID, a.Name, a.Title)
	})
	return pick(query, items, "album")
}

// FindPlaylist resolves a free-text playlist name.
func (c *Client) FindPlaylist(ctx context.Context, query string) (Item, error) {
	lists, err := c.api.Playlists().List(ctx)
	if err != nil {
		return Item{}, err
	}
	items := lo.Map(lists, func(p subsonic.Playlist, _ int) Item {
		return itemFrom(p.ID, p.Name, "")
	})
	return pick(query, items, "playlist")
}

// ArtistSongs returns the songs of every album by the artist.
func (c *Client) ArtistSongs(ctx context.Context, artistID string) ([]Track, error) {
	artist, err := c.api.Browse().Artist(ctx, artistID)
	if err != nil {
		return nil, err
	}
	ids := lo.FilterMap(artist.Album, func(a subsonic.Album, _ int) (string, bool) {
		return a.ID, a.ID != ""
	})
	return c.albumsSongs(ctx, ids)
}

// AlbumSongs returns an album's songs in server order.
func (c *Client) AlbumSongs(ctx context.Context, albumID string) ([]Track, error) {
	album, err := c.api.Browse().Album(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return tracksFromSongs(album.Song), nil
}

// PlaylistSongs returns a playlist's entries in order.
func (c *Client) PlaylistSongs(ctx context.Context, playlistID string) ([]Track, error) {
	pl, err := c.api.Playlists().Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}
	return tracksFromSongs(pl.Entry), nil
}

// StarredSongs returns the user's starred songs.
func (c *Client) StarredSongs(ctx context.Context) ([]Track, error) {
	starred, err := c.api.Browse().Starred2(ctx)
	if err != nil {
		return nil, err
	}
	return tracksFromSongs(starred.Song), nil
}

// NowPlaying reports id as currently playing.
func (c *Client) NowPlaying(ctx context.Context, id string) error {
	return c.api.Annotate().Scrobble(ctx, id, false)
}

// Submit records a completed play of id.
func (c *Client) Submit(ctx context.Context, id string) error {
	return c.api.Annotate().Scrobble(ctx, id, true)
}

// Star hearts a song.
func (c *Client) Star(ctx context.Context, id string) error {
	return c.api.Annotate().Star(ctx, id)
}

// Unstar removes the heart from a song.
func (c *Client) Unstar(ctx context.Context, id string) error {
	return c.api.Annotate().Unstar(ctx, id)
}

// Rate sets a 1-5 rating on a song.
func (c *Client) Rate(ctx context.Context, id string, rating int) error {
	return c.api.Annotate().SetRating(ctx, id, rating)
}

// AddToPlaylist appends songID to the playlist best matching name, or
// creates a playlist called name when none matches. It returns the
// playlist's display name and whether it was created.
func (c *Client) AddToPlaylist(ctx context.Context, name, songID string) (string, bool, error) {
	pl, err := c.FindPlaylist(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := c.api.Playlists().Create(ctx, name, songID); err != nil {
			return "", false, err
		}
		return name, true, nil
	case err != nil:
		return "", false, err
	}

	if err := c.api.Playlists().AddSongs(ctx, pl.ID, songID); err != nil {
		return "", false, err
	}
	return pl.Name, false, nil
}

// DeletePlaylist removes the playlist best matching name and returns its
// display name.
func (c *Client) DeletePlaylist(ctx context.Context, name string) (string, error) {
	pl, err := c.FindPlaylist(ctx, name)
	if err != nil {
		return "", err
	}
	if err := c.api.Playlists().Delete(ctx, pl.ID); err != nil {
		return "", err
	}
	return pl.Name, nil
}

func itemFrom(id, name, title string) Item {
	return Item{ID: id, Name: lo.CoalesceOrEmpty(name, title, "Unknown")}
}

func pick(query string, items []Item, kind string) (Item, error) {
	items = lo.Filter(items, func(it Item, _ int) bool { return it.ID != "" })
	item, ok := BestMatch(query, items)
	if !ok {
		return Item{}, fmt.Errorf("%s %q: %w", kind, query, ErrNotFound)
	}
	return item, nil
}
