package protocol

import (
	"bufio"
	"bytes"
	"context"
	"net"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRequestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		wire string
	}{
		{
			name: "without arg",
			req:  NewRequest(CmdStatus),
			wire: `{"cmd":"status"}`,
		},
		{
			name: "with arg",
			req:  NewRequestWithArg(CmdShuffleAlbum, "Abbey Road"),
			wire: `{"cmd":"shufflealbum","arg":"Abbey Road"}`,
		},
		{
			name: "empty arg is kept",
			req:  NewRequestWithArg(CmdRate, ""),
			wire: `{"cmd":"rate","arg":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, tt.req); err != nil {
				t.Fatalf("WriteMessage: %v", err)
			}
			if got := buf.String(); got != tt.wire+"\n" {
				t.Errorf("wire = %q, want %q", got, tt.wire+"\n")
			}

			var decoded Request
			if err := ReadMessage(bufio.NewReader(&buf), &decoded); err != nil {
				t.Fatalf("ReadMessage: %v", err)
			}
			if !reflect.DeepEqual(decoded, tt.req) {
				t.Errorf("decoded = %+v, want %+v", decoded, tt.req)
			}
		})
	}
}

func TestResponseRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		resp Response
	}{
		{name: "ok", resp: OK("Next track")},
		{name: "failure", resp: Fail("End of queue")},
		{
			name: "status idle",
			resp: Response{OK: true, Message: "ok", Status: &Status{}},
		},
		{
			name: "status playing",
			resp: Response{
				OK:      true,
				Message: "ok",
				Status: &Status{
					Song:     &SongInfo{ID: "1", Title: "Come Together", Artist: "The Beatles", Album: "Abbey Road"},
					Paused:   true,
					QueueLen: 17,
					Index:    3,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteMessage(&buf, tt.resp); err != nil {
				t.Fatal(err)
			}
			var decoded Response
			if err := ReadMessage(bufio.NewReader(&buf), &decoded); err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(decoded, tt.resp) {
				t.Errorf("decoded = %+v, want %+v", decoded, tt.resp)
			}
		})
	}
}

func TestStatusWireFields(t *testing.T) {
	var buf bytes.Buffer
	resp := Response{OK: true, Message: "ok", Status: &Status{QueueLen: 2}}
	if err := WriteMessage(&buf, resp); err != nil {
		t.Fatal(err)
	}
	want := `{"ok":true,"message":"ok","status":{"paused":false,"queue_len":2,"index":0}}` + "\n"
	if buf.String() != want {
		t.Errorf("wire = %s, want %s", buf.String(), want)
	}
}

func TestReadMessage_NoTrailingNewline(t *testing.T) {
	var req Request
	err := ReadMessage(bufio.NewReader(strings.NewReader(`{"cmd":"pause"}`)), &req)
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if req.Cmd != CmdPause || req.Arg != nil {
		t.Errorf("req = %+v", req)
	}
}

func TestReadMessage_Errors(t *testing.T) {
	for _, input := range []string{"", "not json\n"} {
		var req Request
		if err := ReadMessage(bufio.NewReader(strings.NewReader(input)), &req); err == nil {
			t.Errorf("ReadMessage(%q) succeeded, want error", input)
		}
	}
}

func TestSend(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "test.sock")
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = ln.Close() }()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer func() { _ = conn.Close() }()
		var req Request
		if err := ReadMessage(bufio.NewReader(conn), &req); err != nil {
			t.Errorf("server read: %v", err)
			return
		}
		_ = WriteMessage(conn, OK("got "+req.Cmd+" "+*req.Arg))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := Send(ctx, socketPath, NewRequestWithArg(CmdRate, "5"))
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !resp.OK || resp.Message != "got rate 5" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSend_NoDaemon(t *testing.T) {
	_, err := Send(context.Background(), filepath.Join(t.TempDir(), "missing.sock"), NewRequest(CmdStatus))
	if err == nil {
		t.Fatal("expected error dialing a missing socket")
	}
}
