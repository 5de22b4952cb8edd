// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desktopbridge/trampoline/lib/record"
	"github.com/desktopbridge/trampoline/lib/stdinio"
	"github.com/desktopbridge/trampoline/lib/trampoline"
)

func startServer(t *testing.T, s *server) uint16 {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, listener) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("serve() returned error: %v", err)
		}
	})

	return uint16(listener.Addr().(*net.TCPAddr).Port)
}

func TestServer_EndToEnd(t *testing.T) {
	scenario := &Scenario{
		Default: ResponseSpec{Stdout: "ok\n"},
		Rules: []Rule{
			{Command: "get", ResponseSpec: ResponseSpec{Stdout: "username=alice\n"}},
		},
	}
	port := startServer(t, &server{
		scenario: scenario,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	var stdout, stderr bytes.Buffer
	err := trampoline.Run(context.Background(), trampoline.SessionConfig{
		Port:   port,
		Args:   []string{"get"},
		Env:    []string{"DESKTOP_USERNAME=alice"},
		Stdin:  stdinio.FromReader(strings.NewReader("host=example.test\n")),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	if err != nil {
		t.Fatalf("client Run() error: %v", err)
	}
	if stdout.String() != "username=alice\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "username=alice\n")
	}
	if stderr.String() != "" {
		t.Errorf("stderr = %q, want empty", stderr.String())
	}
}

func TestServer_RecordsTranscript(t *testing.T) {
	transcriptPath := filepath.Join(t.TempDir(), "transcript.cbor")
	recorder, err := record.Create(transcriptPath)
	if err != nil {
		t.Fatalf("record.Create() error: %v", err)
	}

	port := startServer(t, &server{
		scenario: &Scenario{Default: ResponseSpec{Stdout: "ok\n"}},
		recorder: recorder,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	err = trampoline.Run(context.Background(), trampoline.SessionConfig{
		Port:   port,
		Args:   []string{"status", "--all"},
		Stdin:  stdinio.FromReader(strings.NewReader("payload")),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("client Run() error: %v", err)
	}
	if err := recorder.Close(); err != nil {
		t.Fatalf("recorder.Close() error: %v", err)
	}

	exchanges, err := record.ReadAll(transcriptPath)
	if err != nil {
		t.Fatalf("record.ReadAll() error: %v", err)
	}
	if len(exchanges) != 1 {
		t.Fatalf("transcript holds %d exchanges, want 1", len(exchanges))
	}
	exchange := exchanges[0]
	if len(exchange.Args) != 2 || exchange.Args[0] != "status" || exchange.Args[1] != "--all" {
		t.Errorf("recorded args = %v, want [status --all]", exchange.Args)
	}
	if string(exchange.Stdin) != "payload" {
		t.Errorf("recorded stdin = %q, want %q", exchange.Stdin, "payload")
	}
	if exchange.Stdout != "ok\n" {
		t.Errorf("recorded stdout = %q, want %q", exchange.Stdout, "ok\n")
	}
}
