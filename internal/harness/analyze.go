// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package harness

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"reprotest.dev/pkg/internal/osutil"
	"reprotest.dev/pkg/internal/testcase"
	"zombiezen.com/go/log"
)

// AnalysisDirName is the name of the directory that [Runner.Analyze]
// creates inside a test case's working directory.
const AnalysisDirName = "analysis"

//go:embed inspect.sh
var inspectScript []byte

// Analyze re-executes tc's two-round cycle,
// copying every output into the test case's analysis directory
// both before and after normalization in each round,
// so a human can diff or hexdump them side by side.
// For an output named a.bin, the snapshots are
// a.bin.1.orig, a.bin.1.rewritten, a.bin.2.orig, and a.bin.2.rewritten.
//
// Analyze does not attempt to explain why outputs differ.
// It only arranges the evidence;
// a companion inspection script is dropped alongside the snapshots.
// The analysis directory is not cleared beforehand,
// so earlier snapshots survive until deleted manually.
func (r *Runner) Analyze(ctx context.Context, tc *testcase.TestCase) error {
	analysisDir := filepath.Join(tc.WorkDir, AnalysisDirName)
	if err := os.MkdirAll(analysisDir, 0o777); err != nil {
		return fmt.Errorf("analyze test %s: %w", tc.Name, err)
	}

	for round := 1; round <= 2; round++ {
		for _, command := range tc.Commands {
			if err := r.runCommand(ctx, tc, command); err != nil {
				return buildError(tc, command, err)
			}
		}
		if err := r.snapshot(tc, analysisDir, round, "orig"); err != nil {
			return err
		}
		if err := r.normalize(ctx, tc); err != nil {
			return err
		}
		if err := r.snapshot(tc, analysisDir, round, "rewritten"); err != nil {
			return err
		}
		if err := r.clean(ctx, tc); err != nil {
			return err
		}
	}

	scriptPath := filepath.Join(analysisDir, "inspect.sh")
	if err := osutil.WriteFilePerm(scriptPath, inspectScript, 0o755); err != nil {
		return fmt.Errorf("analyze test %s: %v", tc.Name, err)
	}
	log.Infof(ctx, "Analysis artifacts for %s collected in %s", tc.Name, analysisDir)
	return nil
}

// snapshot copies every output into the analysis directory,
// naming the copies so all snapshots of one output sort adjacently.
func (r *Runner) snapshot(tc *testcase.TestCase, analysisDir string, round int, suffix string) error {
	for i, out := range tc.Outputs {
		name := fmt.Sprintf("%s.%d.%s", filepath.Base(filepath.FromSlash(out)), round, suffix)
		if err := osutil.CopyFile(filepath.Join(analysisDir, name), tc.OutputPath(i)); err != nil {
			return fmt.Errorf("analyze test %s: %v", tc.Name, err)
		}
	}
	return nil
}
