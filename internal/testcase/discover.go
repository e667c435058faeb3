// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package testcase

import (
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
)

// Discover returns the sequence of test cases declared under root.
// Each immediate child directory of root that contains a descriptor file
// becomes one test case; child directories without one are skipped.
// A malformed descriptor yields a [*ConfigError] for that directory
// and the sequence continues.
//
// The sequence is lazy and restartable:
// ranging over it again rescans the directory.
// Test cases are yielded in name order,
// independent of filesystem enumeration order.
func Discover(root string) iter.Seq2[*TestCase, error] {
	return func(yield func(*TestCase, error) bool) {
		entries, err := os.ReadDir(root)
		if err != nil {
			yield(nil, fmt.Errorf("discover test cases: %w", err))
			return
		}
		// os.ReadDir sorts entries by name.
		for _, ent := range entries {
			if !ent.IsDir() {
				continue
			}
			tc, err := Load(filepath.Join(root, ent.Name()))
			if errors.Is(err, os.ErrNotExist) {
				// Not a test case (e.g. a scratch or helper directory).
				continue
			}
			if !yield(tc, err) {
				return
			}
		}
	}
}
