// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"reprotest.dev/pkg/internal/testcase"
	"zombiezen.com/go/log"
)

// waitDelay bounds how long a cancelled command's I/O pipes
// are allowed to stay open after the process is signalled.
const waitDelay = 10 * time.Second

// runCommand runs a single external command
// with the working directory set to the test case's directory,
// blocking until the command exits.
// A non-zero exit status is returned as an error.
// If the runner has a per-command timeout and the command overruns it,
// runCommand returns a [*TimeoutError].
func (r *Runner) runCommand(ctx context.Context, tc *testcase.TestCase, command []string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	c := exec.CommandContext(ctx, command[0], command[1:]...)
	c.Dir = tc.WorkDir
	c.Stdout = r.Output
	c.Stderr = r.Output
	c.WaitDelay = waitDelay
	setCancelFunc(c)

	log.Debugf(ctx, "Running %q in %s", command, tc.WorkDir)
	err := c.Run()
	if err != nil && r.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{Test: tc.Name, Command: command, Timeout: r.Timeout}
	}
	return err
}
