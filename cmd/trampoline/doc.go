// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Trampoline forwards its own invocation — arguments, allow-listed
// environment variables, and piped stdin — to the desktop server
// listening on 127.0.0.1:$DESKTOP_PORT, then relays the server's
// captured stdout and stderr to its own streams. A version-control
// tool can use it as a credential helper or askpass program while the
// actual handling happens in the GUI-owned process.
//
// Trampoline takes no flags of its own: every argument belongs to the
// forwarded request. Exit status is 0 on a complete round trip, 1 on
// any failure.
package main
