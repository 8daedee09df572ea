package daemon

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/simplay/internal/library"
	"github.com/jfmyers9/simplay/internal/protocol"
)

var (
	// ErrInvalidArgument marks a missing or malformed command argument.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNoSong is returned by song commands while nothing is loaded.
	ErrNoSong = errors.New("No song playing")
)

// messageError carries a user-facing message while unwrapping to a
// sentinel.
type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }
func (e *messageError) Unwrap() error { return e.kind }

func invalidArgument(msg string) error {
	return &messageError{msg: msg, kind: ErrInvalidArgument}
}

func notFound(msg string) error {
	return &messageError{msg: msg, kind: library.ErrNotFound}
}

// HandlerConfig tunes command behaviour.
type HandlerConfig struct {
	MaxShuffle int // 0 shuffles the whole library
	VolumeStep int
}

type commandFunc func(ctx context.Context, arg string) (string, error)

// Handler executes control-socket requests against a session.
type Handler struct {
	session  *Session
	library  Library
	player   Player
	config   HandlerConfig
	logger   zerolog.Logger
	commands map[string]commandFunc
}

// NewHandler creates a handler for session.
func NewHandler(session *Session, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	h := &Handler{
		session: session,
		library: session.library,
		player:  session.player,
		config:  cfg,
		logger:  logger.With().Str("component", "handler").Logger(),
	}
	h.commands = map[string]commandFunc{
		protocol.CmdShuffle:           h.shuffleLibrary,
		protocol.CmdShuffleArtist:     h.shuffleArtist,
		protocol.CmdShuffleAlbum:      h.shuffleAlbum,
		protocol.CmdShufflePlaylist:   h.shufflePlaylist,
		protocol.CmdPlayAlbum:         h.playAlbum,
		protocol.CmdShuffleLiked:      h.shuffleLiked,
		protocol.CmdFastForward:       h.next,
		protocol.CmdRewind:            h.previous,
		protocol.CmdPause:             h.pause,
		protocol.CmdPlay:              h.play,
		protocol.CmdStartOver:         h.startOver,
		protocol.CmdLikeSong:          h.like,
		protocol.CmdUnlikeSong:        h.unlike,
		protocol.CmdRate:              h.rate,
		protocol.CmdVolumeUp:          h.volumeUp,
		protocol.CmdVolumeDown:        h.volumeDown,
		protocol.CmdAddSongToPlaylist: h.addToPlaylist,
		protocol.CmdDeletePlaylist:    h.deletePlaylist,
	}
	return h
}

// Handle executes req and always returns a response. A panic while
// executing a command is reported as an internal error.
func (h *Handler) Handle(ctx context.Context, req protocol.Request) (resp protocol.Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error().
				Str("cmd", req.Cmd).
				Interface("panic", r).
				Msg("Command panicked")
			resp = protocol.Fail("Internal error")
		}
	}()

	if req.Cmd == protocol.CmdStatus {
		return h.status()
	}

	fn, ok := h.commands[req.Cmd]
	if !ok {
		return protocol.Fail("Unknown command")
	}

	var arg string
	if req.Arg != nil {
		arg = strings.TrimSpace(*req.Arg)
	}

	msg, err := fn(ctx, arg)
	if err != nil {
		h.logger.Debug().Err(err).Str("cmd", req.Cmd).Msg("Command failed")
		return protocol.Fail(err.Error())
	}
	h.logger.Debug().Str("cmd", req.Cmd).Str("message", msg).Msg("Command succeeded")
	return protocol.OK(msg)
}

func (h *Handler) status() protocol.Response {
	snap := h.session.state.Snapshot()
	st := &protocol.Status{
		Paused:   snap.Paused,
		QueueLen: snap.QueueLen,
		Index:    snap.Index,
	}
	if snap.Current != nil {
		st.Song = &protocol.SongInfo{
			ID:     snap.Current.ID,
			Title:  snap.Current.Title,
			Artist: snap.Current.Artist,
			Album:  snap.Current.Album,
		}
	}
	resp := protocol.OK("ok")
	resp.Status = st
	return resp
}

// shuffle starts a repeating shuffled queue.
func (h *Handler) shuffle(tracks []library.Track) error {
	return h.session.Start(library.Shuffle(tracks), true, true)
}

func (h *Handler) shuffleLibrary(ctx context.Context, _ string) (string, error) {
	var (
		tracks []library.Track
		err    error
	)
	if h.config.MaxShuffle == 0 {
		tracks, err = h.library.AllSongs(ctx)
	} else {
		tracks, err = h.library.RandomSongs(ctx, h.config.MaxShuffle)
	}
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", notFound("No songs found")
	}
	if err := h.session.Start(library.ShuffleLimit(tracks, h.config.MaxShuffle), true, true); err != nil {
		return "", err
	}
	return "Shuffling library", nil
}

func (h *Handler) shuffleArtist(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", invalidArgument("Artist name required")
	}
	artist, err := h.library.FindArtist(ctx, name)
	if err != nil {
		return "", lookupError(err, "Artist not found")
	}
	tracks, err := h.library.ArtistSongs(ctx, artist.ID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", notFound("No songs found for artist")
	}
	if err := h.shuffle(tracks); err != nil {
		return "", err
	}
	return "Shuffling artist", nil
}

func (h *Handler) albumTracks(ctx context.Context, name string) (library.Item, []library.Track, error) {
	if name == "" {
		return library.Item{}, nil, invalidArgument("Album name required")
	}
	album, err := h.library.FindAlbum(ctx, name)
	if err != nil {
		return library.Item{}, nil, lookupError(err, "Album not found")
	}
	tracks, err := h.library.AlbumSongs(ctx, album.ID)
	if err != nil {
		return library.Item{}, nil, err
	}
	if len(tracks) == 0 {
		return library.Item{}, nil, notFound("No songs found for album")
	}
	return album, tracks, nil
}

func (h *Handler) shuffleAlbum(ctx context.Context, name string) (string, error) {
	album, tracks, err := h.albumTracks(ctx, name)
	if err != nil {
		return "", err
	}
	if err := h.shuffle(tracks); err != nil {
		return "", err
	}
	return "Shuffling album " + album.Name, nil
}

func (h *Handler) playAlbum(ctx context.Context, name string) (string, error) {
	album, tracks, err := h.albumTracks(ctx, name)
	if err != nil {
		return "", err
	}
	library.SortByDiscAndNumber(tracks)
	if err := h.session.Start(tracks, false, false); err != nil {
		return "", err
	}
	return "Playing album " + album.Name, nil
}

func (h *Handler) shufflePlaylist(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", invalidArgument("Playlist name required")
	}
	pl, err := h.library.FindPlaylist(ctx, name)
	if err != nil {
		return "", lookupError(err, "Playlist not found")
	}
	tracks, err := h.library.PlaylistSongs(ctx, pl.ID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", notFound("No songs found for playlist")
	}
	if err := h.shuffle(tracks); err != nil {
		return "", err
	}
	return "Shuffling playlist " + pl.Name, nil
}

func (h *Handler) shuffleLiked(ctx context.Context, _ string) (string, error) {
	tracks, err := h.library.StarredSongs(ctx)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", notFound("No liked songs found")
	}
	if err := h.session.Start(library.ShuffleLimit(tracks, h.config.MaxShuffle), true, true); err != nil {
		return "", err
	}
	return "Shuffling liked songs", nil
}

func (h *Handler) next(context.Context, string) (string, error) {
	if err := h.session.Next(true, ""); err != nil {
		return "", err
	}
	return "Next track", nil
}

func (h *Handler) previous(context.Context, string) (string, error) {
	if err := h.session.Previous(true); err != nil {
		return "", err
	}
	return "Previous track", nil
}

func (h *Handler) pause(context.Context, string) (string, error) {
	if err := h.session.SetPaused(true); err != nil {
		return "", err
	}
	return "Paused", nil
}

func (h *Handler) play(context.Context, string) (string, error) {
	if err := h.session.SetPaused(false); err != nil {
		return "", err
	}
	return "Playing", nil
}

func (h *Handler) startOver(context.Context, string) (string, error) {
	if err := h.session.Restart(); err != nil {
		return "", err
	}
	return "Restarted", nil
}

func (h *Handler) currentID() (string, error) {
	cur, ok := h.session.state.Current()
	if !ok {
		return "", ErrNoSong
	}
	return cur.ID, nil
}

func (h *Handler) like(ctx context.Context, _ string) (string, error) {
	id, err := h.currentID()
	if err != nil {
		return "", err
	}
	if err := h.library.Star(ctx, id); err != nil {
		return "", err
	}
	return "Hearted song", nil
}

func (h *Handler) unlike(ctx context.Context, _ string) (string, error) {
	id, err := h.currentID()
	if err != nil {
		return "", err
	}
	if err := h.library.Unstar(ctx, id); err != nil {
		return "", err
	}
	return "Unhearted song", nil
}

func (h *Handler) rate(ctx context.Context, arg string) (string, error) {
	if arg == "" {
		return "", invalidArgument("Rating required")
	}
	rating, err := strconv.Atoi(arg)
	if err != nil || rating < 1 || rating > 5 {
		return "", invalidArgument("Rating must be 1-5")
	}
	id, err := h.currentID()
	if err != nil {
		return "", err
	}
	if err := h.library.Rate(ctx, id, rating); err != nil {
		return "", err
	}
	return fmt.Sprintf("Rated song %d", rating), nil
}

func (h *Handler) volumeUp(context.Context, string) (string, error) {
	return h.adjustVolume(h.config.VolumeStep)
}

func (h *Handler) volumeDown(context.Context, string) (string, error) {
	return h.adjustVolume(-h.config.VolumeStep)
}

func (h *Handler) adjustVolume(delta int) (string, error) {
	current, err := h.player.Volume()
	if err != nil {
		return "", err
	}
	volume := min(max(current+float64(delta), 0), 100)
	if err := h.player.SetVolume(volume); err != nil {
		return "", err
	}
	return fmt.Sprintf("Volume %d", int(volume)), nil
}

func (h *Handler) addToPlaylist(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", invalidArgument("Playlist name required")
	}
	id, err := h.currentID()
	if err != nil {
		return "", err
	}
	display, created, err := h.library.AddToPlaylist(ctx, name, id)
	if err != nil {
		return "", err
	}
	if created {
		return "Created playlist " + display, nil
	}
	return "Added to playlist " + display, nil
}

func (h *Handler) deletePlaylist(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", invalidArgument("Playlist name required")
	}
	display, err := h.library.DeletePlaylist(ctx, name)
	if err != nil {
		return "", lookupError(err, "Playlist not found")
	}
	return "Deleted playlist " + display, nil
}

// lookupError replaces a library miss with msg and passes other errors
// through.
func lookupError(err error, msg string) error {
	if errors.Is(err, library.ErrNotFound) {
		return notFound(msg)
	}
	return err
}
