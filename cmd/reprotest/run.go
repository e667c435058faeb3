// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"reprotest.dev/pkg/internal/harness"
	"reprotest.dev/pkg/internal/runlog"
	"zombiezen.com/go/log"
)

type runOptions struct {
	normalizer string
	testsDir   string
	jobs       int
	timeout    time.Duration
	runLog     string
	requireEnv map[string]string
}

func newRunCommand(g *globalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:                   "run [options] NORMALIZER",
		Short:                 "run the reproducibility test suite",
		DisableFlagsInUseLine: true,
		Args:                  cobra.ExactArgs(1),
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	opts := &runOptions{requireEnv: make(map[string]string)}
	c.Flags().StringVar(&opts.testsDir, "tests", "", "`dir`ectory containing the test case directories")
	c.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "number of test cases to run concurrently")
	c.Flags().DurationVar(&opts.timeout, "timeout", 0, "timeout for each build or normalizer command (0 means none)")
	c.Flags().StringVar(&opts.runLog, "log-db", "", "`path` to a database to record run results in")
	c.Flags().Var(envRequirementsFlag(opts.requireEnv), "require-env", "environment precondition in the form `NAME[=VALUE]` (repeatable)")
	c.RunE = func(cmd *cobra.Command, args []string) error {
		opts.normalizer = args[0]
		return runRun(cmd.Context(), g, opts)
	}
	return c
}

func runRun(ctx context.Context, g *globalConfig, opts *runOptions) error {
	if opts.testsDir != "" {
		g.TestsDir = opts.testsDir
	}
	if opts.jobs != 0 {
		g.Jobs = opts.jobs
	}
	if opts.runLog != "" {
		g.RunLog = opts.runLog
	}
	if len(opts.requireEnv) > 0 && g.RequiredEnv == nil {
		g.RequiredEnv = make(map[string]string)
	}
	maps.Copy(g.RequiredEnv, opts.requireEnv)

	if err := g.checkEnvironment(); err != nil {
		return err
	}
	// The normalizer runs with each test's working directory,
	// so its path must survive the directory change.
	normalizer, err := filepath.Abs(opts.normalizer)
	if err != nil {
		return err
	}

	h := &harness.Harness{
		Runner: &harness.Runner{
			Normalizer: normalizer,
			Timeout:    opts.timeout,
			Output:     os.Stdout,
			Chatty:     term.IsTerminal(int(os.Stdout.Fd())),
		},
		TestsDir: g.TestsDir,
		Jobs:     g.Jobs,
		Progress: os.Stdout,
	}

	var journal *runlog.Journal
	var runID uuid.UUID
	if g.RunLog != "" {
		journal, err = runlog.Open(g.RunLog)
		if err != nil {
			return err
		}
		defer func() {
			if err := journal.Close(); err != nil {
				log.Errorf(ctx, "Close run log: %v", err)
			}
		}()
		runID, err = uuid.NewRandom()
		if err != nil {
			return err
		}
		if err := journal.StartRun(ctx, runID, normalizer, time.Now()); err != nil {
			return err
		}
	}

	results, runErr := h.RunAll(ctx)

	if journal != nil {
		// Record what completed even when the run was interrupted.
		recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		for _, res := range results {
			if err := journal.RecordResult(recordCtx, runID, res); err != nil {
				log.Warnf(ctx, "%v", err)
			}
		}
		if err := journal.FinishRun(recordCtx, runID, time.Now(), harness.CountFailures(results)); err != nil {
			log.Warnf(ctx, "%v", err)
		}
	}

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("TEST FAILED: %v\n", res.Err)
		}
	}
	if runErr != nil {
		return runErr
	}
	if failed := harness.CountFailures(results); failed > 0 {
		return fmt.Errorf("%d test(s) failed", failed)
	}
	fmt.Println("All tests passed")
	return nil
}
