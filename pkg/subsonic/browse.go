package subsonic

import (
	"context"
	"net/url"
	"strconv"
)

// BrowseService covers the browsing, list and search endpoints.
type BrowseService struct {
	client *Client
}

// RandomSongs calls getRandomSongs.
func (s *BrowseService) RandomSongs(ctx context.Context, size int) ([]Song, error) {
	params := url.Values{}
	params.Set("size", strconv.Itoa(size))

	var resp struct {
		RandomSongs struct {
			Song List[Song] `json:"song"`
		} `json:"randomSongs"`
	}
	if err := s.client.callInto(ctx, "getRandomSongs", params, &resp); err != nil {
		return nil, err
	}
	return resp.RandomSongs.Song, nil
}

// AlbumList2 calls getAlbumList2 for one page of albums.
func (s *BrowseService) AlbumList2(ctx context.Context, listType AlbumListType, size, offset int) ([]Album, error) {
	params := url.Values{}
	params.Set("type", string(listType))
	params.Set("size", strconv.Itoa(size))
	params.Set("offset", strconv.Itoa(offset))

	var resp struct {
		AlbumList2 struct {
			Album List[Album] `json:"album"`
		} `json:"albumList2"`
	}
	if err := s.client.callInto(ctx, "getAlbumList2", params, &resp); err != nil {
		return nil, err
	}
	return resp.AlbumList2.Album, nil
}

// Search3 runs a free-text search over artists, albums and songs.
func (s *BrowseService) Search3(ctx context.Context, query string) (*SearchResult3, error) {
	params := url.Values{}
	params.Set("query", query)

	var resp struct {
		SearchResult3 SearchResult3 `json:"searchResult3"`
	}
	if err := s.client.callInto(ctx, "search3", params, &resp); err != nil {
		return nil, err
	}
	return &resp.SearchResult3, nil
}

// Artist calls getArtist, which includes the artist's albums.
func (s *BrowseService) Artist(ctx context.Context, id string) (*Artist, error) {
	params := url.Values{}
	params.Set("id", id)

	var resp struct {
		Artist Artist `json:"artist"`
	}
	if err := s.client.callInto(ctx, "getArtist", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Artist, nil
}

// Album calls getAlbum, which includes the album's songs.
func (s *BrowseService) Album(ctx context.Context, id string) (*Album, error) {
	params := url.Values{}
	params.Set("id", id)

	var resp struct {
		Album Album `json:"album"`
	}
	if err := s.client.callInto(ctx, "getAlbum", params, &resp); err != nil {
		return nil, err
	}
	return &resp.Album, nil
}

// Starred2 calls getStarred2.
func (s *BrowseService) Starred2(ctx context.Context) (*Starred2, error) {
	var resp struct {
		Starred2 Starred2 `json:"starred2"`
	}
	if err := s.client.callInto(ctx, "getStarred2", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Starred2, nil
}
