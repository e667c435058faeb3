// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is the version string filled in by the linker (e.g. "1.2.3").
var version string

func newVersionCommand() *cobra.Command {
	c := &cobra.Command{
		Use:                   "version",
		Short:                 "show version information",
		DisableFlagsInUseLine: true,
		Args:                  cobra.NoArgs,
		SilenceErrors:         true,
		SilenceUsage:          true,
	}
	c.RunE = func(cmd *cobra.Command, args []string) error {
		fmt.Println(versionString())
		return nil
	}
	return c
}

func versionString() string {
	if version != "" {
		return "reprotest version " + version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return "reprotest version " + info.Main.Version
	}
	return "reprotest (version unknown)"
}
