// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

// reprotest verifies that builds are reproducible:
// it builds each declared test case twice,
// runs a normalizer over the outputs of each build,
// and fails if the two builds' outputs are not byte-identical.
package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/spf13/cobra"
	"zombiezen.com/go/bass/sigterm"
	"zombiezen.com/go/log"
)

func main() {
	rootCommand := &cobra.Command{
		Use:           "reprotest",
		Short:         "reproducible build test harness",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	g := defaultGlobalConfig()
	configPath := rootCommand.PersistentFlags().String("config", "", "`path` to configuration file")
	showDebug := rootCommand.PersistentFlags().Bool("debug", false, "show debugging output")

	rootCommand.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := g.mergeFiles(configFilePaths(*configPath)); err != nil {
			return err
		}
		g.mergeEnvironment()
		initLogging(*showDebug || g.Debug)
		return nil
	}

	rootCommand.AddCommand(
		newRunCommand(g),
		newVersionCommand(),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), sigterm.Signals()...)
	err := rootCommand.ExecuteContext(ctx)
	cancel()
	if err != nil {
		initLogging(*showDebug)
		log.Errorf(context.Background(), "%v", err)
		os.Exit(1)
	}
}

var initLogOnce sync.Once

func initLogging(showDebug bool) {
	initLogOnce.Do(func() {
		minLogLevel := log.Info
		if showDebug {
			minLogLevel = log.Debug
		}
		log.SetDefault(&log.LevelFilter{
			Min:    minLogLevel,
			Output: log.New(os.Stderr, "reprotest: ", log.StdFlags, nil),
		})
	})
}
