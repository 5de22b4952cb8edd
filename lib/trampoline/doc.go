// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package trampoline implements one side of the desktop trampoline
// exchange: a single synchronous round trip that forwards a CLI
// invocation (arguments, allow-listed environment, stdin bytes) to a
// long-running local server over TCP loopback and relays the server's
// captured stdout and stderr back to the local streams.
//
// The client side is Session, a strictly linear state machine with no
// retries and no concurrency: connect, send request, stream stdin,
// receive two response frames, close. The peer side — ReadRequest and
// WriteResponse — is the canonical definition of the request and
// response shapes, imported by the mock server and by tests rather
// than mirrored.
//
// The wire format is defined in lib/wire. Request strings travel with
// a counted trailing NUL; response frames do not carry one. That
// asymmetry belongs to the existing desktop peer and is preserved
// exactly.
package trampoline
