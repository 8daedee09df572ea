package subsonic

import (
	"context"
	"net/url"
)

// PlaylistService covers the playlist endpoints.
type PlaylistService struct {
	client *Client
}

// List calls getPlaylists.
func (s *PlaylistService) List(ctx context.Context) ([]Playlist, error) {
	var resp struct {
		Playlists struct {
			Playlist List[Playlist] `json:"playlist"`
		} `json:"playlists"`
	}
	if err := s.client.callInto(ctx, "getPlaylists", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Playlists.Playlist, nil
}

// Get calls getPlaylist, which includes the playlist's entries.
func (s *PlaylistService) Get(ctx context.Context, id string) (*Playlist, error) {
	params := url.Values{}
	params.Set("id", id)

	var resp struct {
		Playlist Playlist `json:"playlist"`
	}
	if err := s.client.callInto(ctx, "getPlaylist", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Playlist, nil
}

// Create makes a new playlist seeded with songIDs.
func (s *PlaylistService) Create(ctx context.Context, name string, songIDs ...string) error {
	params := url.Values{}
	params.Set("name", name)
	for _, id := range songIDs {
		params.Add("songId", id)
	}
	return s.client.callInto(ctx, "createPlaylist", params, nil)
}

// AddSongs appends songIDs to an existing playlist.
func (s *PlaylistService) AddSongs(ctx context.Context, playlistID string, songIDs ...string) error {
	params := url.Values{}
	params.Set("playlistId", playlistID)
	for _, id := range songIDs {
		params.Add("songIdToAdd", id)
	}
	return s.client.callInto(ctx, "updatePlaylist", params, nil)
}

// Delete removes a playlist.
func (s *PlaylistService) Delete(ctx context.Context, id string) error {
	params := url.Values{}
	params.Set("id", id)
	return s.client.callInto(ctx, "deletePlaylist", params, nil)
}
