// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Trampoline-mock-server is a drop-in stand-in for the GUI-owned
// desktop server in development and integration tests. It speaks the
// trampoline wire protocol exactly: decode one request per connection
// (arguments, environment, stdin stream), answer with two response
// frames, close.
//
// Responses come from a YAML scenario file (--scenario) matching on
// the first forwarded argument, or from the --stdout/--stderr flag
// defaults. With --record, every served exchange is appended to a
// CBOR transcript for later inspection. The bound address is logged on
// startup so callers can export DESKTOP_PORT.
package main
