// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package trampoline

import "fmt"

// ConfigError reports missing or malformed configuration discovered
// before any connection is attempted.
type ConfigError struct {
	// Variable is the environment variable at fault.
	Variable string

	// Reason describes what was wrong with it.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Variable, e.Reason)
}

// ConnectionError reports a failure to establish the loopback
// connection to the desktop server.
type ConnectionError struct {
	// Address is the loopback address that could not be reached.
	Address string

	// Err is the underlying dial error.
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Address, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// IOError reports a read or write failure on the socket or on a local
// standard stream after the connection was established. Step names the
// part of the exchange that failed, for the single diagnostic line the
// binary prints.
type IOError struct {
	// Step identifies the failing part of the exchange, e.g.
	// "sending argument count" or "reading stdout response".
	Step string

	// Err is the underlying I/O error.
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
