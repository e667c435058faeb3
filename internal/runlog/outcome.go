// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package runlog

import (
	"errors"
	"fmt"

	"reprotest.dev/pkg/internal/harness"
	"reprotest.dev/pkg/internal/testcase"
)

// Outcome is the recorded classification of one test case's result.
type Outcome int

//go:generate stringer -type=Outcome -output=outcome_string.go

const (
	Pass Outcome = iota
	Mismatch
	BuildFailure
	NormalizerFailure
	MissingOutput
	ConfigFailure
	Timeout
	RunError
)

// Classify maps a test case's error to its recorded outcome.
// A nil error is a [Pass];
// an error of no known kind is a [RunError].
func Classify(err error) Outcome {
	var (
		mismatch   *harness.MismatchError
		timeout    *harness.TimeoutError
		command    *harness.CommandError
		normalizer *harness.NormalizerError
		missing    *harness.MissingOutputError
		config     *testcase.ConfigError
	)
	switch {
	case err == nil:
		return Pass
	case errors.As(err, &mismatch):
		return Mismatch
	case errors.As(err, &timeout):
		return Timeout
	case errors.As(err, &command):
		return BuildFailure
	case errors.As(err, &normalizer):
		return NormalizerFailure
	case errors.As(err, &missing):
		return MissingOutput
	case errors.As(err, &config):
		return ConfigFailure
	default:
		return RunError
	}
}

// ParseOutcome is the inverse of [Outcome.String].
func ParseOutcome(s string) (Outcome, error) {
	for o := Pass; o <= RunError; o++ {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("parse outcome %q: unknown outcome", s)
}
