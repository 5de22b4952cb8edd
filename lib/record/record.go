// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package record persists decoded trampoline exchanges as a CBOR
// stream. The mock server appends one Exchange per served connection
// when recording is enabled; tests and debugging sessions read the
// transcript back to see exactly what a caller sent and what was
// answered.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2) so the
// same exchange always produces identical bytes, which keeps
// transcript diffs meaningful.
package record

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Exchange is one served trampoline connection: the decoded request
// and the response that was sent back.
type Exchange struct {
	// ReceivedAt is when the request finished decoding, UTC.
	ReceivedAt time.Time `cbor:"received_at"`

	// Args are the forwarded positional arguments.
	Args []string `cbor:"args"`

	// Env are the forwarded NAME=VALUE entries.
	Env []string `cbor:"env,omitempty"`

	// Stdin is the raw stdin stream the caller piped in.
	Stdin []byte `cbor:"stdin,omitempty"`

	// Stdout and Stderr are the response payloads sent back.
	Stdout string `cbor:"stdout"`
	Stderr string `cbor:"stderr"`
}

// encMode is the deterministic CBOR encoder shared by all writers.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}
}

// Writer appends exchanges to a transcript file. Safe for concurrent
// use: the mock server records from one goroutine per connection.
type Writer struct {
	mu      sync.Mutex
	file    *os.File
	encoder *cbor.Encoder
}

// Create opens (truncating) a transcript file at path.
func Create(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating transcript: %w", err)
	}
	return &Writer{file: file, encoder: encMode.NewEncoder(file)}, nil
}

// Append writes one exchange to the transcript.
func (w *Writer) Append(exchange Exchange) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.encoder.Encode(exchange); err != nil {
		return fmt.Errorf("encoding exchange: %w", err)
	}
	return nil
}

// Close flushes and closes the transcript file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// ReadAll decodes every exchange in the transcript at path.
func ReadAll(path string) ([]Exchange, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	defer file.Close()

	var exchanges []Exchange
	decoder := cbor.NewDecoder(file)
	for {
		var exchange Exchange
		if err := decoder.Decode(&exchange); err != nil {
			if errors.Is(err, io.EOF) {
				return exchanges, nil
			}
			return nil, fmt.Errorf("decoding transcript entry %d: %w", len(exchanges), err)
		}
		exchanges = append(exchanges, exchange)
	}
}
