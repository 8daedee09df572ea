// Package player drives an mpv process over its JSON IPC socket.
//
// Two connections are opened to the same socket. The command connection
// carries request/reply pairs correlated by request_id and is used by one
// caller at a time. The event connection is read continuously and feeds
// end-file notifications to Events.
package player

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ErrChannelClosed is returned once the command connection has hit
// end-of-stream. It is permanent for the Controller.
var ErrChannelClosed = errors.New("player channel closed")

// CommandError is a reply whose error field was not "success".
type CommandError struct {
	Command string
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("mpv %s: %s", e.Command, e.Message)
}

// EndFile is an end-file notification. Reason is empty when mpv omitted it.
type EndFile struct {
	Reason string
}

// End-file reasons reported by mpv.
const (
	ReasonEOF      = "eof"
	ReasonStop     = "stop"
	ReasonQuit     = "quit"
	ReasonError    = "error"
	ReasonRedirect = "redirect"
)

type request struct {
	Command   []any  `json:"command"`
	RequestID uint64 `json:"request_id"`
}

type reply struct {
	Data      json.RawMessage `json:"data"`
	Error     string          `json:"error"`
	RequestID *uint64         `json:"request_id"`
}

type event struct {
	Event  string `json:"event"`
	Reason string `json:"reason"`
}

// Controller is a connected mpv instance.
type Controller struct {
	socketPath string
	logger     zerolog.Logger

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
	nextID uint64
	broken atomic.Bool

	eventConn net.Conn
	events    chan EndFile
	done      chan struct{}
	closeOnce sync.Once

	proc *process
}

// Dial connects to an mpv instance already listening on socketPath.
func Dial(socketPath string, logger zerolog.Logger) (*Controller, error) {
	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect mpv ipc: %w", err)
	}
	eventConn, err := net.Dial("unix", socketPath)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect mpv event ipc: %w", err)
	}

	c := &Controller{
		socketPath: socketPath,
		logger:     logger.With().Str("component", "player").Logger(),
		conn:       conn,
		reader:     bufio.NewReader(conn),
		nextID:     1,
		eventConn:  eventConn,
		events:     make(chan EndFile, 16),
		done:       make(chan struct{}),
	}
	go c.readEvents()
	return c, nil
}

// Events returns the end-file notification feed. The channel is closed
// when the event connection ends.
func (c *Controller) Events() <-chan EndFile {
	return c.events
}

func (c *Controller) readEvents() {
	defer close(c.events)

	r := bufio.NewReader(c.eventConn)
	for {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			var ev event
			if jsonErr := json.Unmarshal(line, &ev); jsonErr == nil && ev.Event == "end-file" {
				c.logger.Debug().Str("reason", ev.Reason).Msg("End of file")
				select {
				case c.events <- EndFile{Reason: ev.Reason}:
				case <-c.done:
					return
				}
			}
		}
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Warn().Err(err).Msg("Player event stream ended")
			}
			return
		}
	}
}

// command sends args and blocks until the reply with the matching
// request_id arrives. Replies and events for other ids are skipped.
func (c *Controller) command(args ...any) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.broken.Load() {
		return nil, ErrChannelClosed
	}

	id := c.nextID
	c.nextID++

	payload, err := json.Marshal(request{Command: args, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("marshal mpv command: %w", err)
	}
	payload = append(payload, '\n')
	if _, err := c.conn.Write(payload); err != nil {
		c.broken.Store(true)
		return nil, fmt.Errorf("%w: %v", ErrChannelClosed, err)
	}

	name := fmt.Sprint(args[0])
	for {
		line, err := c.reader.ReadBytes('\n')
		if err != nil {
			c.broken.Store(true)
			c.logger.Error().Err(err).Msg("Player command channel closed")
			return nil, ErrChannelClosed
		}
		var r reply
		if err := json.Unmarshal(line, &r); err != nil {
			c.logger.Debug().Err(err).Msg("Skipping malformed player line")
			continue
		}
		if r.RequestID == nil || *r.RequestID != id {
			continue
		}
		if r.Error != "" && r.Error != "success" {
			return nil, &CommandError{Command: name, Message: r.Error}
		}
		return r.Data, nil
	}
}

// Load replaces the current file with url and starts it.
func (c *Controller) Load(url string) error {
	_, err := c.command("loadfile", url, "replace")
	return err
}

// SetPause sets the pause property.
func (c *Controller) SetPause(paused bool) error {
	_, err := c.command("set_property", "pause", paused)
	return err
}

// SeekAbsolute seeks to seconds from the start of the file.
func (c *Controller) SeekAbsolute(seconds float64) error {
	_, err := c.command("seek", seconds, "absolute")
	return err
}

// Stop stops playback and unloads the file.
func (c *Controller) Stop() error {
	_, err := c.command("stop")
	return err
}

// SetVolume sets the volume, 0-100.
func (c *Controller) SetVolume(volume float64) error {
	_, err := c.command("set_property", "volume", volume)
	return err
}

// Volume reads the volume. It reports 100 when mpv cannot provide one.
func (c *Controller) Volume() (float64, error) {
	data, err := c.command("get_property", "volume")
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return 100, nil
	}
	if err != nil {
		return 0, err
	}
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil || v == nil {
		return 100, nil
	}
	return *v, nil
}

// Position reads time-pos in seconds. ok is false when mpv has no
// position, which is normal while a file is loading or none is loaded.
func (c *Controller) Position() (pos float64, ok bool, err error) {
	data, err := c.command("get_property", "time-pos")
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var v *float64
	if err := json.Unmarshal(data, &v); err != nil || v == nil {
		return 0, false, nil
	}
	return *v, true, nil
}

// Close tears down both connections and, if this Controller spawned mpv,
// terminates the process and removes its socket.
func (c *Controller) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.broken.Store(true)
		_ = c.eventConn.Close()
		err = c.conn.Close()
		if c.proc != nil {
			if perr := c.proc.stop(); perr != nil && err == nil {
				err = perr
			}
		}
	})
	return err
}
