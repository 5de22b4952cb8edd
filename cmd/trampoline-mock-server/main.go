// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/desktopbridge/trampoline/lib/process"
	"github.com/desktopbridge/trampoline/lib/record"
	"github.com/desktopbridge/trampoline/lib/trampoline"
	"github.com/desktopbridge/trampoline/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	var (
		listenAddr    string
		scenarioPath  string
		recordPath    string
		defaultStdout string
		defaultStderr string
		verbose       bool
		showVersion   bool
	)
	pflag.StringVarP(&listenAddr, "listen", "l", "127.0.0.1:0", "TCP address to listen on")
	pflag.StringVar(&scenarioPath, "scenario", "", "YAML scenario file with canned responses")
	pflag.StringVar(&recordPath, "record", "", "append served exchanges to this CBOR transcript")
	pflag.StringVar(&defaultStdout, "stdout", "", "default stdout response when no scenario matches")
	pflag.StringVar(&defaultStderr, "stderr", "", "default stderr response when no scenario matches")
	pflag.BoolVarP(&verbose, "verbose", "v", false, "enable per-connection debug logging")
	pflag.BoolVar(&showVersion, "version", false, "print version information and exit")
	pflag.Parse()

	if showVersion {
		version.Print("trampoline-mock-server")
		return nil
	}

	logger := newLogger(verbose)

	scenario := &Scenario{Default: ResponseSpec{Stdout: defaultStdout, Stderr: defaultStderr}}
	if scenarioPath != "" {
		loaded, err := LoadScenario(scenarioPath)
		if err != nil {
			return err
		}
		scenario = loaded
	}

	var recorder *record.Writer
	if recordPath != "" {
		writer, err := record.Create(recordPath)
		if err != nil {
			return err
		}
		defer writer.Close()
		recorder = writer
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	server := &server{
		scenario: scenario,
		recorder: recorder,
		logger:   logger,
	}

	logger.Info("mock server listening",
		"address", listener.Addr().String(),
		"port", listener.Addr().(*net.TCPAddr).Port,
	)
	return server.serve(ctx, listener)
}

// newLogger selects a human-readable handler on a terminal and JSON
// when stderr is piped (CI, integration tests).
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// server answers trampoline connections from a response scenario.
type server struct {
	scenario *Scenario
	recorder *record.Writer
	logger   *slog.Logger
}

// serve accepts connections until ctx is cancelled. Each connection is
// one complete exchange handled on its own goroutine.
func (s *server) serve(ctx context.Context, listener net.Listener) error {
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		go s.handle(conn)
	}
}

// handle decodes one request, answers it, and closes the connection.
func (s *server) handle(conn net.Conn) {
	defer conn.Close()

	request, err := trampoline.ReadRequest(conn, 0)
	if err != nil {
		s.logger.Error("decoding request", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	response := s.scenario.Respond(request)

	// Record before responding: once the client has both response
	// frames the exchange must already be in the transcript.
	if s.recorder != nil {
		exchange := record.Exchange{
			ReceivedAt: time.Now().UTC(),
			Args:       request.Args,
			Env:        request.Env,
			Stdin:      request.Stdin,
			Stdout:     response.Stdout,
			Stderr:     response.Stderr,
		}
		if err := s.recorder.Append(exchange); err != nil {
			s.logger.Error("recording exchange", "error", err)
		}
	}

	if err := trampoline.WriteResponse(conn, response); err != nil {
		s.logger.Error("writing response", "remote", conn.RemoteAddr().String(), "error", err)
		return
	}

	s.logger.Debug("served exchange",
		"args", request.Args,
		"env", len(request.Env),
		"stdin_bytes", len(request.Stdin),
	)
}
