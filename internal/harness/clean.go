// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"reprotest.dev/pkg/internal/testcase"
	"zombiezen.com/go/log"
)

// clean deletes every file in the top level of the test case's directory
// that matches one of its cleanup patterns.
// Matching is not recursive: subdirectories are neither matched nor entered.
// Stale build products must be removed between rounds,
// otherwise they could mask or fake reproducibility.
func (r *Runner) clean(ctx context.Context, tc *testcase.TestCase) error {
	if len(tc.CleanPatterns) == 0 {
		return nil
	}
	entries, err := os.ReadDir(tc.WorkDir)
	if err != nil {
		return fmt.Errorf("test %s: clean: %w", tc.Name, err)
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		for _, pattern := range tc.CleanPatterns {
			// Patterns are validated at load time.
			ok, _ := doublestar.Match(pattern, ent.Name())
			if !ok {
				continue
			}
			path := filepath.Join(tc.WorkDir, ent.Name())
			log.Debugf(ctx, "Deleting %s", path)
			if r.Chatty && r.Output != nil {
				fmt.Fprintf(r.Output, "Deleting '%s'\n", ent.Name())
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("test %s: clean: %w", tc.Name, err)
			}
			break
		}
	}
	return nil
}
