// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	jsonv2 "github.com/go-json-experiment/json"
	"github.com/tailscale/hujson"
)

// globalConfig is the harness configuration shared by all subcommands.
// Values merge in increasing precedence:
// defaults, configuration files, environment, then flags.
type globalConfig struct {
	Debug    bool   `json:"debug"`
	TestsDir string `json:"testsDirectory"`
	Jobs     int    `json:"jobs"`
	RunLog   string `json:"runLog"`
	// RequiredEnv maps environment variable names to the values
	// they must hold before any test runs.
	// An empty value only requires the variable to be set.
	RequiredEnv map[string]string `json:"requiredEnvironment"`
}

func defaultGlobalConfig() *globalConfig {
	return &globalConfig{
		TestsDir: "tests",
	}
}

// configFilePaths returns the candidate configuration file paths
// in the order they are merged.
// If flagPath is not empty, it is the only candidate.
func configFilePaths(flagPath string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if flagPath != "" {
			yield(flagPath)
			return
		}
		if dir := configDir(); dir != "" {
			yield(filepath.Join(dir, "reprotest", "config.jwcc"))
		}
	}
}

func (g *globalConfig) mergeFiles(paths iter.Seq[string]) error {
	for path := range paths {
		huJSONData, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		jsonData, err := hujson.Standardize(huJSONData)
		if err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
		if err := jsonv2.Unmarshal(jsonData, g, jsonv2.RejectUnknownMembers(false)); err != nil {
			return fmt.Errorf("read %s: %v", path, err)
		}
	}
	return nil
}

func (g *globalConfig) mergeEnvironment() {
	if dir := os.Getenv("REPROTEST_TESTS_DIR"); dir != "" {
		g.TestsDir = dir
	}
	if path := os.Getenv("REPROTEST_RUN_LOG"); path != "" {
		g.RunLog = path
	}
}

// An environmentError reports an unsatisfied environment precondition,
// such as not running inside the expected toolchain shell.
type environmentError struct {
	name string
	want string
	got  string
	set  bool
}

func (e *environmentError) Error() string {
	switch {
	case !e.set && e.want == "":
		return fmt.Sprintf("environment precondition: %s is not set", e.name)
	case !e.set:
		return fmt.Sprintf("environment precondition: %s is not set (want %q)", e.name, e.want)
	default:
		return fmt.Sprintf("environment precondition: %s = %q; want %q", e.name, e.got, e.want)
	}
}

// checkEnvironment verifies every required environment variable.
// It runs before any test does,
// so a misconfigured shell fails the whole run up front
// instead of failing each test case in confusing ways.
func (g *globalConfig) checkEnvironment() error {
	for _, name := range slices.Sorted(maps.Keys(g.RequiredEnv)) {
		want := g.RequiredEnv[name]
		got, ok := os.LookupEnv(name)
		if !ok || (want != "" && got != want) {
			return &environmentError{name: name, want: want, got: got, set: ok}
		}
	}
	return nil
}

// parseEnvRequirement parses a NAME or NAME=VALUE requirement.
func parseEnvRequirement(s string) (name, value string, err error) {
	name, value, _ = strings.Cut(s, "=")
	if name == "" {
		return "", "", fmt.Errorf("parse environment requirement %q: empty variable name", s)
	}
	return name, value, nil
}
