// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/desktopbridge/trampoline/lib/envfilter"
	"github.com/desktopbridge/trampoline/lib/process"
	"github.com/desktopbridge/trampoline/lib/stdinio"
	"github.com/desktopbridge/trampoline/lib/trampoline"
)

// logFileVariable optionally names a file for debug logging. Stdout
// and stderr belong to the relayed response, so the logger never
// writes to either; without this variable all logging is discarded.
const logFileVariable = "TRAMPOLINE_LOG_FILE"

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	logger, closeLogger := newLogger()
	defer closeLogger()

	port, err := trampoline.PortFromEnv(os.LookupEnv)
	if err != nil {
		return err
	}

	// A stdin that cannot be switched to non-blocking mode is treated
	// as absent, the same as an interactive terminal.
	stdin, err := stdinio.Nonblocking(os.Stdin)
	if err != nil {
		logger.Debug("stdin unavailable", "error", err)
		stdin = nil
	}

	filtered := envfilter.New(envfilter.DefaultAllowList).Apply(os.Environ())
	logger.Debug("invocation",
		"args", len(os.Args)-1,
		"env", len(filtered),
		"port", port,
	)

	return trampoline.Run(context.Background(), trampoline.SessionConfig{
		Port:   port,
		Args:   os.Args[1:],
		Env:    filtered,
		Stdin:  stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	})
}

// newLogger returns a debug logger writing to $TRAMPOLINE_LOG_FILE, or
// a discarding logger when the variable is unset or the file cannot be
// opened. A logging problem must never fail the invocation.
func newLogger() (*slog.Logger, func()) {
	path := os.Getenv(logFileVariable)
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}
	}
	logger := slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	return logger, func() { file.Close() }
}
