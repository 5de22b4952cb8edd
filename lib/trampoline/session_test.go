// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package trampoline

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/desktopbridge/trampoline/lib/stdinio"
	"github.com/desktopbridge/trampoline/lib/wire"
)

// servePeer runs a one-connection reference peer on 127.0.0.1:0 and
// returns its port plus a channel delivering the decoded request.
func servePeer(t *testing.T, resp *Response) (uint16, <-chan *Request) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	received := make(chan *Request, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		request, err := ReadRequest(conn, 0)
		if err != nil {
			return
		}
		received <- request
		WriteResponse(conn, resp)
	}()

	return uint16(listener.Addr().(*net.TCPAddr).Port), received
}

func waitRequest(t *testing.T, received <-chan *Request) *Request {
	t.Helper()
	select {
	case request := <-received:
		return request
	case <-time.After(5 * time.Second):
		t.Fatal("peer never received a request")
		return nil
	}
}

func TestRun_RoundTrip(t *testing.T) {
	port, received := servePeer(t, &Response{Stdout: "ok\n", Stderr: ""})

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), SessionConfig{
		Port:   port,
		Args:   []string{"status"},
		Env:    []string{"DESKTOP_USERNAME=alice"},
		Stdin:  stdinio.FromReader(strings.NewReader("")),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if stdout.String() != "ok\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "ok\n")
	}
	if stderr.String() != "" {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}

	request := waitRequest(t, received)
	if len(request.Args) != 1 || request.Args[0] != "status" {
		t.Errorf("peer args = %v, want [status]", request.Args)
	}
	if len(request.Env) != 1 || request.Env[0] != "DESKTOP_USERNAME=alice" {
		t.Errorf("peer env = %v, want [DESKTOP_USERNAME=alice]", request.Env)
	}
	if len(request.Stdin) != 0 {
		t.Errorf("peer stdin = %q, want empty", request.Stdin)
	}
}

func TestRun_ForwardsStdin(t *testing.T) {
	port, received := servePeer(t, &Response{})

	input := "protocol=https\nhost=example.test\n\n"
	err := Run(context.Background(), SessionConfig{
		Port:   port,
		Args:   []string{"get"},
		Stdin:  stdinio.FromReader(strings.NewReader(input)),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	request := waitRequest(t, received)
	if string(request.Stdin) != input {
		t.Errorf("peer stdin = %q, want %q", request.Stdin, input)
	}
}

func TestRun_NilStdinStillSendsTerminator(t *testing.T) {
	port, received := servePeer(t, &Response{})

	err := Run(context.Background(), SessionConfig{
		Port:   port,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// ReadRequest only returns once the terminator frame arrived.
	request := waitRequest(t, received)
	if len(request.Stdin) != 0 {
		t.Errorf("peer stdin = %q, want empty", request.Stdin)
	}
}

func TestRun_RelaysStderr(t *testing.T) {
	port, _ := servePeer(t, &Response{Stdout: "", Stderr: "remote failure\n"})

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), SessionConfig{
		Port:   port,
		Args:   []string{"erase"},
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if stderr.String() != "remote failure\n" {
		t.Errorf("stderr = %q, want %q", stderr.String(), "remote failure\n")
	}
	if stdout.String() != "" {
		t.Errorf("stdout = %q, want empty", stdout.String())
	}
}

func TestRun_ConnectionRefused(t *testing.T) {
	// Grab a port and close the listener so nothing is listening.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error: %v", err)
	}
	port := uint16(listener.Addr().(*net.TCPAddr).Port)
	listener.Close()

	err = Run(context.Background(), SessionConfig{
		Port:   port,
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Errorf("Run() error = %v, want *ConnectionError", err)
	}
}

func TestRun_OversizedResponseFrameAborts(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := ReadRequest(conn, 0); err != nil {
			return
		}
		// Announce a stdout frame larger than the client's capacity.
		conn.Write([]byte{0xFF, 0xFF})
		conn.Write(make([]byte, 1<<16-1))
	}()

	err = Run(context.Background(), SessionConfig{
		Port:   uint16(listener.Addr().(*net.TCPAddr).Port),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	var sizeErr *wire.FrameSizeError
	if !errors.As(err, &sizeErr) {
		t.Errorf("Run() error = %v, want *wire.FrameSizeError", err)
	}
}
