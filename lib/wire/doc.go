// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the length-prefixed frame codec of the
// trampoline protocol. A frame is a 2-byte little-endian length
// followed by that many payload bytes.
//
// The protocol carries a deliberate asymmetry inherited from the
// existing desktop peer: outgoing string frames count their trailing
// NUL byte in the wire length (the peer relies on the NUL to find the
// end of the string), while incoming frames do not — the receiver
// NUL-terminates locally after reading the declared length. This is
// an interoperability requirement, not a stylistic choice; both ends
// of an exchange must preserve it exactly.
package wire
