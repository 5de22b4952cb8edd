// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package stdinio models standard input as an explicit "try read with
// zero wait" operation. The trampoline must forward whatever stdin its
// caller piped in, but it must never hang waiting for input that will
// not arrive — the caller may have attached no stdin at all.
//
// TryRead either returns a chunk that is available right now, reports
// end of stream with io.EOF, or reports ErrWouldBlock when nothing is
// currently available. There is no blocking variant.
package stdinio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrWouldBlock reports that no bytes are available right now. It is
// not a failure: the session treats it as the end of the stdin stream.
var ErrWouldBlock = errors.New("stdinio: no data currently available")

// TryReader is a source of stdin bytes with zero-wait semantics.
type TryReader interface {
	// TryRead fills p with available bytes. It returns io.EOF at the
	// end of the stream and ErrWouldBlock when no data is available
	// without waiting. n is zero whenever err is non-nil.
	TryRead(p []byte) (n int, err error)
}

// Nonblocking returns a TryReader over file, switching its descriptor
// to non-blocking mode. When file is a terminal the returned reader
// always reports ErrWouldBlock: an interactive invocation has no piped
// stdin, and reading would steal the user's typed input.
func Nonblocking(file *os.File) (TryReader, error) {
	fd := int(file.Fd())
	if term.IsTerminal(fd) {
		return terminalReader{}, nil
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		return nil, fmt.Errorf("setting %s non-blocking: %w", file.Name(), err)
	}
	return &descriptorReader{fd: fd}, nil
}

// FromReader adapts an ordinary io.Reader to the TryReader interface
// using blocking reads. Intended for tests and for callers that have
// already buffered the input; it never reports ErrWouldBlock.
func FromReader(r io.Reader) TryReader {
	return &blockingReader{r: r}
}

// terminalReader is the stand-in for an interactive stdin.
type terminalReader struct{}

func (terminalReader) TryRead(p []byte) (int, error) {
	return 0, ErrWouldBlock
}

// descriptorReader reads a non-blocking file descriptor with raw
// syscalls, bypassing the runtime poller so EAGAIN surfaces directly.
type descriptorReader struct {
	fd int
}

func (r *descriptorReader) TryRead(p []byte) (int, error) {
	for {
		n, err := unix.Read(r.fd, p)
		switch {
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN || err == unix.EWOULDBLOCK:
			return 0, ErrWouldBlock
		case err != nil:
			return 0, fmt.Errorf("reading stdin: %w", err)
		case n == 0:
			return 0, io.EOF
		default:
			return n, nil
		}
	}
}

type blockingReader struct {
	r io.Reader
}

func (b *blockingReader) TryRead(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return 0, io.EOF
	}
	return 0, err
}
