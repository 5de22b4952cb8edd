// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package trampoline

import (
	"strconv"
)

// PortVariable is the environment variable through which the desktop
// server hands its ephemeral listening port to the trampoline.
const PortVariable = "DESKTOP_PORT"

// PortFromEnv reads and validates the server port using lookup
// (typically os.LookupEnv). The port must be decimal text in the
// range 1–65535. Absence or a malformed value returns *ConfigError;
// no connection is attempted on a configuration failure.
func PortFromEnv(lookup func(string) (string, bool)) (uint16, error) {
	value, ok := lookup(PortVariable)
	if !ok || value == "" {
		return 0, &ConfigError{Variable: PortVariable, Reason: "is not set"}
	}
	port, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return 0, &ConfigError{
			Variable: PortVariable,
			Reason:   "is not a valid port number: " + strconv.Quote(value),
		}
	}
	if port == 0 {
		return 0, &ConfigError{Variable: PortVariable, Reason: "must not be zero"}
	}
	return uint16(port), nil
}
