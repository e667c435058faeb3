// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import "os/exec"

func setCancelFunc(c *exec.Cmd) {
	// Default behavior of exec.CommandContext is fine, no-op.
}
