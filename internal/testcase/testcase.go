// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

// Package testcase loads reproducibility test case descriptors
// from their on-disk directory convention.
package testcase

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	jsonv2 "github.com/go-json-experiment/json"
	"github.com/tailscale/hujson"
)

// DescriptorName is the name of the configuration file
// that marks a directory as a test case.
const DescriptorName = "test.json"

// A TestCase describes one build whose outputs are checked for reproducibility.
// A TestCase is immutable once loaded.
type TestCase struct {
	// Name identifies the test case. It is the base name of its directory.
	Name string
	// WorkDir is the directory that commands run in
	// and that output paths are resolved against.
	WorkDir string
	// Commands are the build commands, run in order.
	// Each command is a program followed by its arguments.
	Commands [][]string
	// Outputs are the paths of the artifacts under test, relative to WorkDir.
	Outputs []string
	// CleanPatterns are glob patterns of files to delete
	// from the top level of WorkDir between build rounds.
	CleanPatterns []string
}

// OutputPath returns the path of the i'th output resolved against WorkDir.
func (tc *TestCase) OutputPath(i int) string {
	return filepath.Join(tc.WorkDir, filepath.FromSlash(tc.Outputs[i]))
}

// descriptor is the schema of a [DescriptorName] file.
// Descriptors may contain comments and trailing commas;
// they are standardized with hujson before decoding.
type descriptor struct {
	Commands [][]string `json:"commands"`
	Outputs  []string   `json:"outputs"`
	// DucibleArgs is an older spelling of Outputs,
	// named for the normalizer arguments it turns into.
	DucibleArgs []string `json:"ducible_args"`
	Clean       []string `json:"clean"`
}

// A ConfigError reports a malformed test case descriptor.
// It is a fatal error for the one test case it names,
// and must not prevent other test cases from loading.
type ConfigError struct {
	// Dir is the test case directory whose descriptor is malformed.
	Dir string

	err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("load test case %s: %v", e.Dir, e.err)
}

func (e *ConfigError) Unwrap() error { return e.err }

// Load reads the descriptor inside dir and returns the test case it declares.
// If the descriptor file does not exist,
// Load returns an error that wraps [os.ErrNotExist];
// any other failure is a [*ConfigError].
func Load(dir string) (*TestCase, error) {
	data, err := os.ReadFile(filepath.Join(dir, DescriptorName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, &ConfigError{Dir: dir, err: err}
	}
	jsonData, err := hujson.Standardize(data)
	if err != nil {
		return nil, &ConfigError{Dir: dir, err: err}
	}
	d := new(descriptor)
	if err := jsonv2.Unmarshal(jsonData, d); err != nil {
		return nil, &ConfigError{Dir: dir, err: err}
	}
	tc, err := d.toTestCase(dir)
	if err != nil {
		return nil, &ConfigError{Dir: dir, err: err}
	}
	return tc, nil
}

func (d *descriptor) toTestCase(dir string) (*TestCase, error) {
	outputs := d.Outputs
	switch {
	case len(d.Outputs) > 0 && len(d.DucibleArgs) > 0:
		return nil, fmt.Errorf(`"outputs" and "ducible_args" are mutually exclusive`)
	case len(d.DucibleArgs) > 0:
		outputs = d.DucibleArgs
	case len(d.Outputs) == 0:
		return nil, fmt.Errorf(`missing required field "outputs"`)
	}
	if len(d.Commands) == 0 {
		return nil, fmt.Errorf(`missing required field "commands"`)
	}
	for i, command := range d.Commands {
		if len(command) == 0 {
			return nil, fmt.Errorf("command %d is empty", i+1)
		}
		for _, word := range command {
			if word == "" {
				return nil, fmt.Errorf("command %d contains an empty argument", i+1)
			}
		}
	}
	for i, out := range outputs {
		if out == "" {
			return nil, fmt.Errorf("output %d is empty", i+1)
		}
	}
	for _, pattern := range d.Clean {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid clean pattern %q", pattern)
		}
	}
	return &TestCase{
		Name:          filepath.Base(dir),
		WorkDir:       dir,
		Commands:      d.Commands,
		Outputs:       outputs,
		CleanPatterns: d.Clean,
	}, nil
}
