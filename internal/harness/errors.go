// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import (
	"fmt"
	"strings"
	"time"
)

// A CommandError reports a build command that exited unsuccessfully.
// No checksum comparison is attempted for the test case it names.
type CommandError struct {
	Test    string
	Command []string

	err error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("test %s: run %s: %v", e.Test, strings.Join(e.Command, " "), e.err)
}

func (e *CommandError) Unwrap() error { return e.err }

// A NormalizerError reports that the normalizer executable
// exited unsuccessfully or could not be started.
// The normalizer's health is a precondition of the harness,
// not part of what is under test.
type NormalizerError struct {
	Test       string
	Normalizer string

	err error
}

func (e *NormalizerError) Error() string {
	return fmt.Sprintf("test %s: normalize with %s: %v", e.Test, e.Normalizer, e.err)
}

func (e *NormalizerError) Unwrap() error { return e.err }

// A MissingOutputError reports that a declared output file
// did not exist when checksumming was attempted.
type MissingOutputError struct {
	Test   string
	Output string

	err error
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("test %s: expected output %s missing after build", e.Test, e.Output)
}

func (e *MissingOutputError) Unwrap() error { return e.err }

// A MismatchError reports that both rounds completed
// but produced differing digests for one or more outputs.
// Outputs holds every differing output path in declared order,
// not just the first.
type MismatchError struct {
	Test    string
	Outputs []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("test %s: outputs not reproducible: %s", e.Test, strings.Join(e.Outputs, ", "))
}

// A TimeoutError reports an external command
// that did not finish within the runner's per-command timeout.
type TimeoutError struct {
	Test    string
	Command []string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("test %s: run %s: timed out after %v", e.Test, strings.Join(e.Command, " "), e.Timeout)
}
