// Package subsonic provides a client for the Subsonic REST API as served
// by Navidrome, Airsonic, Gonic and other compatible servers.
//
// # Overview
//
// The client speaks the JSON flavour of the API (f=json) and authenticates
// every request with a salted token: t = md5(password + salt), where the
// salt is a fresh 8 character alphanumeric string. Passwords never leave
// the process in clear text.
//
// # Quick Start
//
//	import "github.com/jfmyers9/simplay/pkg/subsonic"
//
//	client, err := subsonic.NewClient(subsonic.Config{
//	    BaseURL:  "https://music.example.com",
//	    Username: "alice",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	songs, err := client.Browse().RandomSongs(ctx, 50)
//
// # Services
//
// Operations are grouped the way the API documentation groups them:
//
//   - Browse: albums, artists, search and starred items
//   - Annotate: scrobbling, stars and ratings
//   - Playlists: listing and editing playlists
//
// # Errors
//
// A response whose status is not "ok" is returned as *Error carrying the
// server's code and message. Network failures and non-2xx HTTP statuses
// are returned as *TransportError. Requests are never retried.
package subsonic
