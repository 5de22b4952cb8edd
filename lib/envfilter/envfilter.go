// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

// Package envfilter reduces a process environment to an explicit
// allow-list of variable names before the entries cross a process
// boundary. Matching is on the variable name only — an entry passes
// when its name is byte-for-byte equal to an allow-listed name and is
// immediately followed by '='. A name that merely has an allow-listed
// name as a prefix (DESKTOP_USERNAME_EXTRA vs DESKTOP_USERNAME) never
// matches.
package envfilter

import "strings"

// DefaultAllowList contains the environment variable names the desktop
// server sends or expects to receive. Callers that need a different
// set construct their own Filter; this slice is the fixed contract
// with the existing desktop peer.
var DefaultAllowList = []string{
	"DESKTOP_TRAMPOLINE_IDENTIFIER",
	"DESKTOP_TRAMPOLINE_TOKEN",
	"DESKTOP_USERNAME",
	"DESKTOP_ENDPOINT",
}

// Filter selects environment entries whose names appear in a fixed
// allow-list. The allow-list is copied at construction and never
// mutated afterwards, so a Filter is safe to share.
type Filter struct {
	names []string
}

// New returns a Filter for the given allow-listed names.
func New(names []string) *Filter {
	copied := make([]string, len(names))
	copy(copied, names)
	return &Filter{names: copied}
}

// Apply returns the ordered sub-sequence of environ entries whose name
// matches the allow-list. Original relative order is preserved and
// duplicate names, if the source environment carries any, all pass
// through. Apply never modifies environ; the returned slice shares the
// input's strings and is only as long-lived as one request.
func (f *Filter) Apply(environ []string) []string {
	var matched []string
	for _, entry := range environ {
		if f.matches(entry) {
			matched = append(matched, entry)
		}
	}
	return matched
}

// matches reports whether entry is "NAME=..." for an allow-listed NAME.
func (f *Filter) matches(entry string) bool {
	for _, name := range f.names {
		if len(entry) > len(name) && entry[len(name)] == '=' && strings.HasPrefix(entry, name) {
			return true
		}
	}
	return false
}
