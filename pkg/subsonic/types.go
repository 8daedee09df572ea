package subsonic

import (
	"bytes"
	"encoding/json"
)

// List decodes a JSON field that servers send either as an array or, when
// it holds exactly one element, as a bare object.
type List[T any] []T

// UnmarshalJSON accepts an array, a single object, or null.
func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*l = items
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*l = List[T]{item}
	return nil
}

// Song is a child entry: a song in an album, playlist, search or starred list.
type Song struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	AlbumID    string `json:"albumId"`
	Duration   int    `json:"duration"`   // seconds, 0 when unknown
	Track      int    `json:"track"`      // 0 when unknown
	DiscNumber int    `json:"discNumber"` // 0 when unknown
	Starred    string `json:"starred"`
}

// Album is an ID3 album. Song is only populated by getAlbum.
type Album struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Title  string     `json:"title"`
	Artist string     `json:"artist"`
	Song   List[Song] `json:"song"`
}

// Artist is an ID3 artist. Album is only populated by getArtist.
type Artist struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Album List[Album] `json:"album"`
}

// Playlist is a stored playlist. Entry is only populated by getPlaylist.
type Playlist struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	SongCount int        `json:"songCount"`
	Entry     List[Song] `json:"entry"`
}

// SearchResult3 is the body of a search3 response.
type SearchResult3 struct {
	Artist List[Artist] `json:"artist"`
	Album  List[Album]  `json:"album"`
	Song   List[Song]   `json:"song"`
}

// Starred2 is the body of a getStarred2 response.
type Starred2 struct {
	Artist List[Artist] `json:"artist"`
	Album  List[Album]  `json:"album"`
	Song   List[Song]   `json:"song"`
}

// AlbumListType selects the ordering used by getAlbumList2.
type AlbumListType string

const (
	AlbumListAlphabeticalByName   AlbumListType = "alphabeticalByName"
	AlbumListAlphabeticalByArtist AlbumListType = "alphabeticalByArtist"
	AlbumListRandom               AlbumListType = "random"
	AlbumListNewest               AlbumListType = "newest"
	AlbumListRecent               AlbumListType = "recent"
	AlbumListFrequent             AlbumListType = "frequent"
	AlbumListStarred              AlbumListType = "starred"
)
