// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

// Package harness executes reproducibility test cases:
// it builds each test case twice, normalizes the declared outputs after
// each build, and compares the resulting digests between the two rounds.
package harness

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"reprotest.dev/pkg/internal/digest"
	"reprotest.dev/pkg/internal/testcase"
	"zombiezen.com/go/log"
	"zombiezen.com/go/nix"
)

// A Runner executes the two-round build cycle for individual test cases.
type Runner struct {
	// Normalizer is the path of the normalizer executable.
	// It should be absolute,
	// since it is invoked with a changed working directory.
	Normalizer string
	// Timeout bounds each external command invocation.
	// Zero means no timeout.
	Timeout time.Duration
	// Output receives the stdout and stderr of build commands
	// and the normalizer. If nil, their output is discarded.
	Output io.Writer
	// Chatty makes cleanup announce each deleted file on Output.
	Chatty bool
}

// Run executes the full two-round cycle for tc:
// build, normalize, checksum, and clean, twice,
// then compare the two rounds' digests output-by-output.
//
// On success the second round's outputs are cleaned up as well,
// leaving the work tree as Run found it.
// On mismatch the second round's artifacts are left on disk for inspection
// and the returned [*MismatchError] names every differing output.
func (r *Runner) Run(ctx context.Context, tc *testcase.TestCase) error {
	sums1, err := r.round(ctx, tc)
	if err != nil {
		return err
	}
	if err := r.clean(ctx, tc); err != nil {
		return err
	}
	sums2, err := r.round(ctx, tc)
	if err != nil {
		return err
	}

	// Outputs is the same static list in both rounds,
	// so comparing by index is always valid.
	var mismatched []string
	for i := range tc.Outputs {
		if !sums1[i].Equal(sums2[i]) {
			log.Debugf(ctx, "Digest of %s: %v (round 1) vs. %v (round 2)",
				tc.Outputs[i], sums1[i].SRI(), sums2[i].SRI())
			mismatched = append(mismatched, tc.Outputs[i])
		}
	}
	if len(mismatched) > 0 {
		return &MismatchError{Test: tc.Name, Outputs: mismatched}
	}
	return r.clean(ctx, tc)
}

// round performs one build-normalize-checksum cycle
// and returns one digest per declared output, in declared order.
func (r *Runner) round(ctx context.Context, tc *testcase.TestCase) ([]nix.Hash, error) {
	for _, command := range tc.Commands {
		if err := r.runCommand(ctx, tc, command); err != nil {
			return nil, buildError(tc, command, err)
		}
	}
	if err := r.normalize(ctx, tc); err != nil {
		return nil, err
	}

	sums := make([]nix.Hash, len(tc.Outputs))
	for i := range tc.Outputs {
		h, err := digest.File(tc.OutputPath(i))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, &MissingOutputError{Test: tc.Name, Output: tc.Outputs[i], err: err}
			}
			return nil, err
		}
		sums[i] = h
	}
	return sums, nil
}

// normalize invokes the normalizer once with the full output list,
// attempting to strip the known sources of nondeterminism in place.
func (r *Runner) normalize(ctx context.Context, tc *testcase.TestCase) error {
	command := append([]string{r.Normalizer}, tc.Outputs...)
	if err := r.runCommand(ctx, tc, command); err != nil {
		var timeout *TimeoutError
		if errors.As(err, &timeout) {
			return timeout
		}
		return &NormalizerError{Test: tc.Name, Normalizer: r.Normalizer, err: err}
	}
	return nil
}

// buildError classifies a failed build command,
// letting timeouts keep their own error kind.
func buildError(tc *testcase.TestCase, command []string, err error) error {
	var timeout *TimeoutError
	if errors.As(err, &timeout) {
		return timeout
	}
	return &CommandError{Test: tc.Name, Command: command, err: err}
}
