// Copyright 2026 The Trampoline Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/desktopbridge/trampoline/lib/trampoline"
)

// ResponseSpec is one canned response.
type ResponseSpec struct {
	Stdout string `yaml:"stdout"`
	Stderr string `yaml:"stderr"`
}

// Rule maps an invocation to a canned response. Command matches the
// first forwarded argument; an empty Command matches an invocation
// with no arguments.
type Rule struct {
	Command      string `yaml:"command"`
	ResponseSpec `yaml:",inline"`
}

// Scenario is the mock server's response table: ordered rules with a
// fallback default.
type Scenario struct {
	Default ResponseSpec `yaml:"default"`
	Rules   []Rule       `yaml:"rules"`
}

// LoadScenario reads a scenario file. There are no fallback locations
// or discovery: the path comes from the --scenario flag only.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// Respond picks the response for a decoded request: first rule whose
// Command equals the first forwarded argument, else the default.
func (s *Scenario) Respond(request *trampoline.Request) *trampoline.Response {
	command := ""
	if len(request.Args) > 0 {
		command = request.Args[0]
	}
	for _, rule := range s.Rules {
		if rule.Command == command {
			return &trampoline.Response{Stdout: rule.Stdout, Stderr: rule.Stderr}
		}
	}
	return &trampoline.Response{Stdout: s.Default.Stdout, Stderr: s.Default.Stderr}
}
