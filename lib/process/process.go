// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. The trampoline
// relays a server's captured stderr verbatim, so the one legitimate
// place for raw diagnostic output is the final error report in main()
// — centralized here so every binary fails the same way.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors from run(); it is the single diagnostic line a
// failed invocation produces.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
