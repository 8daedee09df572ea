package player

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

var (
	socketPollAttempts = 40
	socketPollInterval = 50 * time.Millisecond
	stopTimeout        = 2 * time.Second
)

// Args returns the command line used to start mpv as a headless audio
// player listening on socketPath.
func Args(socketPath string) []string {
	return []string{
		"--no-video",
		"--idle=yes",
		"--keep-open=yes",
		"--audio-display=no",
		"--no-terminal",
		"--input-terminal=no",
		"--msg-level=all=error",
		"--input-ipc-server=" + socketPath,
	}
}

type process struct {
	cmd        *exec.Cmd
	socketPath string
	exited     chan struct{}
}

// Spawn starts binary as a child process with its IPC server on
// socketPath, waits for the socket to appear and connects to it.
func Spawn(binary, socketPath string, logger zerolog.Logger) (*Controller, error) {
	if err := os.Remove(socketPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("remove stale player socket: %w", err)
	}

	// stdio is left nil so it is attached to the null device.
	cmd := exec.Command(binary, Args(socketPath)...)
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("mpv binary %q not found. Install mpv or set SIMPLAY_MPV to its path", binary)
		}
		return nil, fmt.Errorf("start mpv: %w", err)
	}

	proc := &process{cmd: cmd, socketPath: socketPath, exited: make(chan struct{})}
	go func() {
		err := cmd.Wait()
		logger.Debug().Err(err).Msg("mpv exited")
		close(proc.exited)
	}()

	if err := waitForSocket(socketPath, proc.exited); err != nil {
		_ = proc.stop()
		return nil, err
	}

	c, err := Dial(socketPath, logger)
	if err != nil {
		_ = proc.stop()
		return nil, err
	}
	c.proc = proc

	c.logger.Info().
		Int("pid", cmd.Process.Pid).
		Str("socket", socketPath).
		Msg("Started mpv")
	return c, nil
}

// waitForSocket polls for path to exist, giving up after
// socketPollAttempts or as soon as exited is closed.
func waitForSocket(path string, exited <-chan struct{}) error {
	for attempt := 0; ; attempt++ {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if attempt >= socketPollAttempts {
			return fmt.Errorf("timed out waiting for mpv IPC socket %s", path)
		}
		select {
		case <-exited:
			return fmt.Errorf("mpv exited before creating IPC socket %s", path)
		case <-time.After(socketPollInterval):
		}
	}
}

// stop sends SIGTERM, escalates to SIGKILL after stopTimeout and removes
// the socket file.
func (p *process) stop() error {
	defer func() { _ = os.Remove(p.socketPath) }()

	select {
	case <-p.exited:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal mpv: %w", err)
	}
	select {
	case <-p.exited:
		return nil
	case <-time.After(stopTimeout):
		_ = p.cmd.Process.Kill()
		<-p.exited
		return nil
	}
}
