// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package trampoline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"

	"github.com/desktopbridge/trampoline/lib/stdinio"
	"github.com/desktopbridge/trampoline/lib/wire"
)

// SessionConfig carries everything one invocation needs. Args and Env
// are sent exactly as given: the caller excludes the program name and
// has already filtered the environment.
type SessionConfig struct {
	// Port is the desktop server's loopback TCP port.
	Port uint16

	// Args are the positional arguments to forward, program name
	// excluded, in original order.
	Args []string

	// Env are the allow-listed NAME=VALUE entries to forward, in
	// original environment order.
	Env []string

	// Stdin supplies the caller's piped input with zero-wait
	// semantics. Nil means no stdin; the terminator frame is still
	// sent.
	Stdin stdinio.TryReader

	// Stdout and Stderr receive the two response payloads verbatim.
	Stdout io.Writer
	Stderr io.Writer

	// Logger receives debug-level progress events. Nil discards.
	Logger *slog.Logger

	// MaxFrameLength bounds incoming response frames. Zero selects
	// wire.DefaultMaxFrameLength.
	MaxFrameLength int
}

// Run performs the whole exchange: connect, send request, stream
// stdin, receive stdout and stderr frames, relay them, close. The
// connection is owned exclusively by this call and is closed on every
// exit path. There is no retry and no partial-success: the first
// failure aborts the invocation.
func Run(ctx context.Context, config SessionConfig) error {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(config.Port)))
	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", address)
	if err != nil {
		return &ConnectionError{Address: address, Err: err}
	}
	defer conn.Close()
	logger.Debug("connected", "address", address)

	writer := wire.NewWriter(conn)

	if err := writer.WriteString(strconv.Itoa(len(config.Args))); err != nil {
		return &IOError{Step: "sending argument count", Err: err}
	}
	for _, arg := range config.Args {
		if err := writer.WriteString(arg); err != nil {
			return &IOError{Step: "sending argument", Err: err}
		}
	}

	if err := writer.WriteString(strconv.Itoa(len(config.Env))); err != nil {
		return &IOError{Step: "sending environment variable count", Err: err}
	}
	for _, entry := range config.Env {
		if err := writer.WriteString(entry); err != nil {
			return &IOError{Step: "sending environment variable", Err: err}
		}
	}
	logger.Debug("request sent", "args", len(config.Args), "env", len(config.Env))

	if err := streamStdin(writer, config.Stdin, logger); err != nil {
		return err
	}

	reader := wire.NewReader(conn, config.MaxFrameLength)

	if err := relayFrame(reader, config.Stdout, "stdout"); err != nil {
		return err
	}
	if err := relayFrame(reader, config.Stderr, "stderr"); err != nil {
		return err
	}
	logger.Debug("response relayed")

	return nil
}

// streamStdin forwards available stdin bytes as raw frames, then sends
// the one-byte NUL terminator frame. End of stream and would-block
// both end the loop normally. A read failure before any byte was
// forwarded is treated as "no stdin provided"; after bytes were
// forwarded it is fatal, because the server has already seen part of
// the stream.
func streamStdin(writer *wire.Writer, stdin stdinio.TryReader, logger *slog.Logger) error {
	forwarded := 0
	if stdin != nil {
		buffer := make([]byte, wire.DefaultMaxFrameLength)
		for {
			n, err := stdin.TryRead(buffer)
			if errors.Is(err, io.EOF) || errors.Is(err, stdinio.ErrWouldBlock) {
				break
			}
			if err != nil {
				if forwarded == 0 {
					logger.Debug("stdin unreadable, treating as absent", "error", err)
					break
				}
				return &IOError{Step: "reading stdin", Err: err}
			}
			if err := writer.WriteFrame(buffer[:n]); err != nil {
				return &IOError{Step: "sending stdin data", Err: err}
			}
			forwarded += n
		}
	}

	if err := writer.WriteFrame(stdinTerminator); err != nil {
		return &IOError{Step: "sending stdin terminator", Err: err}
	}
	logger.Debug("stdin streamed", "bytes", forwarded)
	return nil
}

// relayFrame reads one response frame and copies its payload verbatim
// to destination. Oversized declared lengths surface as the protocol
// error from lib/wire, untouched.
func relayFrame(reader *wire.Reader, destination io.Writer, name string) error {
	payload, err := reader.ReadFrame()
	if err != nil {
		var sizeErr *wire.FrameSizeError
		if errors.As(err, &sizeErr) {
			return fmt.Errorf("reading %s response: %w", name, err)
		}
		return &IOError{Step: "reading " + name + " response", Err: err}
	}
	if _, err := destination.Write(payload); err != nil {
		return &IOError{Step: "writing local " + name, Err: err}
	}
	return nil
}
