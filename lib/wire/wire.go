// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// DefaultMaxFrameLength is the receive capacity used when a Reader is
// constructed without an explicit one. It matches the fixed buffer
// size of the existing desktop peer.
const DefaultMaxFrameLength = 4096

// maxUint16 bounds outgoing payloads: the wire length field is two bytes.
const maxUint16 = 1<<16 - 1

// FrameSizeError reports a frame whose declared or requested length
// cannot be handled. It is the protocol-violation error of the
// trampoline wire format: a peer announcing a frame larger than the
// receiver's capacity has broken the contract, and the session must
// abort rather than truncate.
type FrameSizeError struct {
	// Length is the declared (incoming) or requested (outgoing)
	// payload length in bytes.
	Length int

	// Capacity is the limit that Length exceeded.
	Capacity int
}

func (e *FrameSizeError) Error() string {
	return fmt.Sprintf("frame length %d exceeds capacity %d", e.Length, e.Capacity)
}

// Writer encodes frames onto an underlying stream. Each call produces
// exactly one frame: the payload's byte count as a 2-byte
// little-endian prefix, then the payload. The zero value is not
// usable; construct with NewWriter.
type Writer struct {
	w io.Writer
	// scratch avoids a per-frame allocation for the length prefix.
	scratch [2]byte
}

// NewWriter returns a Writer that frames onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteFrame sends one frame carrying payload verbatim. The frame is
// delivered in full or the error is returned; a short write surfaces
// as an error (io.Writer contract), so no frame is ever silently
// dropped or partially sent without the caller knowing.
func (w *Writer) WriteFrame(payload []byte) error {
	if len(payload) > maxUint16 {
		return &FrameSizeError{Length: len(payload), Capacity: maxUint16}
	}
	binary.LittleEndian.PutUint16(w.scratch[:], uint16(len(payload)))
	if _, err := w.w.Write(w.scratch[:]); err != nil {
		return fmt.Errorf("writing frame length: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

// WriteString sends s as one frame with a trailing NUL byte appended.
// The NUL is counted in the wire length — the peer locates the end of
// the string by the NUL, not the length. See the package comment for
// why this asymmetry exists.
func (w *Writer) WriteString(s string) error {
	payload := make([]byte, len(s)+1)
	copy(payload, s)
	return w.WriteFrame(payload)
}

// Reader decodes frames from an underlying stream, enforcing an
// explicit receive capacity. The zero value is not usable; construct
// with NewReader.
type Reader struct {
	r        io.Reader
	capacity int
}

// NewReader returns a Reader over r with the given receive capacity.
// A capacity of zero or less selects DefaultMaxFrameLength.
func NewReader(r io.Reader, capacity int) *Reader {
	if capacity <= 0 {
		capacity = DefaultMaxFrameLength
	}
	return &Reader{r: r, capacity: capacity}
}

// ReadFrame reads one frame and returns its payload. The declared
// length is checked against the reader's capacity before any payload
// byte is read; an oversized announcement returns *FrameSizeError.
//
// Incoming lengths never include a trailing NUL (the sender of a
// response does not count one); callers that need a C-style string
// should append their own terminator.
//
// The payload is accumulated across as many reads as the stream
// requires. If the stream ends before the declared length is
// satisfied, the bytes read so far are returned without error — the
// existing peer tolerates a short final frame on connection close.
// EOF before the length prefix itself is reported as io.EOF.
func (r *Reader) ReadFrame() ([]byte, error) {
	var prefix [2]byte
	if _, err := io.ReadFull(r.r, prefix[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("reading frame length: %w", io.EOF)
		}
		return nil, fmt.Errorf("reading frame length: %w", err)
	}

	length := int(binary.LittleEndian.Uint16(prefix[:]))
	if length > r.capacity {
		return nil, &FrameSizeError{Length: length, Capacity: r.capacity}
	}

	payload := make([]byte, length)
	n, err := io.ReadFull(r.r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return payload[:n], nil
		}
		return nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return payload, nil
}
