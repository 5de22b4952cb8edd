// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package trampoline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/desktopbridge/trampoline/lib/wire"
)

// Request is one decoded trampoline invocation as the server sees it.
// This is the canonical definition of the request shape — the mock
// server and tests import it rather than re-deriving the frame order.
type Request struct {
	// Args are the forwarded positional arguments, program name
	// excluded, in original order.
	Args []string

	// Env are the allow-listed environment entries as NAME=VALUE
	// strings, in original environment order.
	Env []string

	// Stdin is the raw byte stream the caller piped into the
	// trampoline. Empty when no stdin was provided.
	Stdin []byte
}

// Response is the pair of captured output streams the server sends
// back, relayed verbatim to the trampoline's own stdout and stderr.
type Response struct {
	Stdout string
	Stderr string
}

// WriteRequest encodes req onto w in the fixed protocol order:
// argument count, arguments, environment count, environment entries
// (all as NUL-counted string frames), then the stdin bytes as one raw
// frame (omitted when empty) and the one-byte NUL terminator frame.
//
// Session streams stdin incrementally instead of buffering it;
// WriteRequest exists for peers and tests that already hold the full
// invocation in memory.
func WriteRequest(w io.Writer, req *Request) error {
	writer := wire.NewWriter(w)
	if err := writeStrings(writer, req.Args); err != nil {
		return err
	}
	if err := writeStrings(writer, req.Env); err != nil {
		return err
	}
	if len(req.Stdin) > 0 {
		if err := writer.WriteFrame(req.Stdin); err != nil {
			return err
		}
	}
	return writer.WriteFrame(stdinTerminator)
}

// stdinTerminator is the one-byte frame that ends the stdin segment.
var stdinTerminator = []byte{0}

// writeStrings sends the count of entries as a decimal string frame
// followed by one frame per entry.
func writeStrings(writer *wire.Writer, entries []string) error {
	if err := writer.WriteString(strconv.Itoa(len(entries))); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.WriteString(entry); err != nil {
			return err
		}
	}
	return nil
}

// ReadRequest decodes one full request from r, enforcing capacity as
// the maximum frame length (zero selects wire.DefaultMaxFrameLength).
// It consumes frames up to and including the stdin terminator.
func ReadRequest(r io.Reader, capacity int) (*Request, error) {
	reader := wire.NewReader(r, capacity)

	args, err := readStrings(reader, "argument")
	if err != nil {
		return nil, err
	}
	env, err := readStrings(reader, "environment variable")
	if err != nil {
		return nil, err
	}

	// Stdin chunks follow until the lone-NUL terminator frame. Chunk
	// boundaries carry no meaning; the payloads concatenate into one
	// stream.
	var stdin []byte
	for {
		chunk, err := reader.ReadFrame()
		if err != nil {
			return nil, fmt.Errorf("reading stdin segment: %w", err)
		}
		if len(chunk) == 1 && chunk[0] == 0 {
			break
		}
		stdin = append(stdin, chunk...)
	}

	return &Request{Args: args, Env: env, Stdin: stdin}, nil
}

// readStrings decodes a count frame and that many string frames.
func readStrings(reader *wire.Reader, kind string) ([]string, error) {
	countText, err := readString(reader)
	if err != nil {
		return nil, fmt.Errorf("reading %s count: %w", kind, err)
	}
	count, err := strconv.Atoi(countText)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("malformed %s count %q", kind, countText)
	}

	entries := make([]string, 0, count)
	for i := 0; i < count; i++ {
		entry, err := readString(reader)
		if err != nil {
			return nil, fmt.Errorf("reading %s %d of %d: %w", kind, i+1, count, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// readString reads one request string frame and strips the trailing
// NUL that the sender counted into the wire length.
func readString(reader *wire.Reader) (string, error) {
	payload, err := reader.ReadFrame()
	if err != nil {
		return "", err
	}
	if len(payload) == 0 || payload[len(payload)-1] != 0 {
		return "", fmt.Errorf("string frame %q is not NUL-terminated", payload)
	}
	return string(payload[:len(payload)-1]), nil
}

// WriteResponse encodes the two response frames in fixed order:
// captured stdout, then captured stderr. Response lengths never count
// a NUL — the receiving trampoline terminates locally.
func WriteResponse(w io.Writer, resp *Response) error {
	writer := wire.NewWriter(w)
	if err := writer.WriteFrame([]byte(resp.Stdout)); err != nil {
		return fmt.Errorf("writing stdout frame: %w", err)
	}
	if err := writer.WriteFrame([]byte(resp.Stderr)); err != nil {
		return fmt.Errorf("writing stderr frame: %w", err)
	}
	return nil
}
