// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package main

import (
	"maps"
	"slices"
	"strings"
)

// envRequirementsFlag is the implementation of [github.com/spf13/pflag.Value]
// that collects repeated NAME[=VALUE] environment requirements into a map.
type envRequirementsFlag map[string]string

func (f envRequirementsFlag) Type() string { return "stringArray" }

func (f envRequirementsFlag) String() string {
	parts := make([]string, 0, len(f))
	for _, name := range slices.Sorted(maps.Keys(f)) {
		if value := f[name]; value == "" {
			parts = append(parts, name)
		} else {
			parts = append(parts, name+"="+value)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (f envRequirementsFlag) Set(s string) error {
	name, value, err := parseEnvRequirement(s)
	if err != nil {
		return err
	}
	f[name] = value
	return nil
}
