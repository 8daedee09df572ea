package protocol

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultTimeout bounds a client round trip. Library-backed commands such
// as a whole-library shuffle can take a while on large collections.
const DefaultTimeout = 2 * time.Minute

// Send dials the control socket, writes req and waits for the response.
func Send(ctx context.Context, socketPath string, req Request) (Response, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return Response{}, fmt.Errorf("connect to %s: %w", socketPath, err)
	}
	defer func() { _ = conn.Close() }()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := WriteMessage(conn, req); err != nil {
		return Response{}, fmt.Errorf("send request: %w", err)
	}

	var resp Response
	if err := ReadMessage(bufio.NewReader(conn), &resp); err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return resp, nil
}
