// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEnvRequirementsFlag(t *testing.T) {
	f := make(envRequirementsFlag)
	for _, s := range []string{"VisualStudioVersion=14.0", "IN_BUILD_SHELL"} {
		if err := f.Set(s); err != nil {
			t.Fatalf("Set(%q): %v", s, err)
		}
	}
	want := envRequirementsFlag{
		"VisualStudioVersion": "14.0",
		"IN_BUILD_SHELL":      "",
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("requirements (-want +got):\n%s", diff)
	}
	if got, want := f.String(), "[IN_BUILD_SHELL,VisualStudioVersion=14.0]"; got != want {
		t.Errorf("String() = %q; want %q", got, want)
	}
	if err := f.Set("=bogus"); err == nil {
		t.Error("Set accepted an empty variable name")
	}
}
