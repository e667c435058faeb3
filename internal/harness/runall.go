// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"reprotest.dev/pkg/internal/testcase"
	"zombiezen.com/go/log"
)

// A Harness discovers test cases and runs each of them through a [Runner].
type Harness struct {
	// Runner executes individual test cases.
	Runner *Runner
	// TestsDir is the root directory scanned for test cases.
	TestsDir string
	// Jobs is the number of test cases run concurrently.
	// Values less than 1 are treated as 1,
	// which preserves the strictly sequential reference behavior.
	// Rounds within a test case are never parallelized.
	Jobs int
	// Progress receives human-readable progress lines.
	// If nil, progress is not reported.
	// Writes are serialized, so Progress needs no locking of its own.
	Progress io.Writer

	progressMu sync.Mutex
}

// A Result is the outcome of one test case.
type Result struct {
	// Test is the test case's name.
	Test string
	// Err is nil if the test passed
	// and otherwise holds the failure, classified per the error kinds
	// in this package and [reprotest.dev/pkg/internal/testcase].
	Err error
	// Duration is how long the test case took,
	// including the analysis re-run on mismatch.
	Duration time.Duration
}

// RunAll discovers every test case under the harness's test directory
// and runs each through the two-round executor.
// A test case's failure never prevents the remaining test cases from running;
// every failure is reported in the returned results.
// On mismatch, and only on mismatch,
// the analyzer is invoked before moving on.
//
// Results are returned in test name order.
// The returned error is non-nil only when the run itself could not proceed
// (the test directory is unreadable or ctx was cancelled),
// never for individual test failures.
func (h *Harness) RunAll(ctx context.Context) ([]Result, error) {
	grp := new(errgroup.Group)
	grp.SetLimit(max(h.Jobs, 1))
	var mu sync.Mutex
	var results []Result

	var rootErr error
	for tc, err := range testcase.Discover(h.TestsDir) {
		if ctx.Err() != nil {
			break
		}
		if err != nil {
			var cfgError *testcase.ConfigError
			if !errors.As(err, &cfgError) {
				rootErr = err
				break
			}
			// A malformed descriptor fails its own test case only.
			log.Errorf(ctx, "%v", cfgError)
			mu.Lock()
			results = append(results, Result{Test: filepath.Base(cfgError.Dir), Err: cfgError})
			mu.Unlock()
			continue
		}
		h.printf("Running test %q...\n", tc.Name)
		grp.Go(func() error {
			start := time.Now()
			err := h.Runner.Run(ctx, tc)
			var mismatch *MismatchError
			if errors.As(err, &mismatch) {
				h.printf("Error: The following files are not reproducible:\n%s",
					formatOutputList(mismatch.Outputs))
				log.Infof(ctx, "Mismatch detected in %s, re-running test for analysis...", tc.Name)
				if analyzeErr := h.Runner.Analyze(ctx, tc); analyzeErr != nil {
					log.Warnf(ctx, "Analysis of %s failed: %v", tc.Name, analyzeErr)
				}
			}
			mu.Lock()
			results = append(results, Result{Test: tc.Name, Err: err, Duration: time.Since(start)})
			mu.Unlock()
			return nil
		})
	}
	grp.Wait()

	slices.SortFunc(results, func(a, b Result) int {
		return strings.Compare(a.Test, b.Test)
	})
	if rootErr != nil {
		return results, rootErr
	}
	return results, ctx.Err()
}

// CountFailures reports how many results are failures.
func CountFailures(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func (h *Harness) printf(format string, args ...any) {
	if h.Progress == nil {
		return
	}
	h.progressMu.Lock()
	defer h.progressMu.Unlock()
	fmt.Fprintf(h.Progress, format, args...)
}

func formatOutputList(outputs []string) string {
	sb := new(strings.Builder)
	for _, out := range outputs {
		sb.WriteString("  ")
		sb.WriteString(out)
		sb.WriteString("\n")
	}
	return sb.String()
}
