// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package testcase

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeDescriptor(tb testing.TB, dir string, data string) string {
	tb.Helper()
	if err := os.MkdirAll(dir, 0o777); err != nil {
		tb.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DescriptorName), []byte(data), 0o666); err != nil {
		tb.Fatal(err)
	}
	return dir
}

func TestLoad(t *testing.T) {
	root := t.TempDir()

	t.Run("Valid", func(t *testing.T) {
		dir := writeDescriptor(t, filepath.Join(root, "exe"), `{
			"commands": [["cl", "/nologo", "main.c"]],
			"outputs": ["main.exe"],
			"clean": ["*.obj", "*.exe"]
		}`)
		got, err := Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		want := &TestCase{
			Name:          "exe",
			WorkDir:       dir,
			Commands:      [][]string{{"cl", "/nologo", "main.c"}},
			Outputs:       []string{"main.exe"},
			CleanPatterns: []string{"*.obj", "*.exe"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Load(%q) (-want +got):\n%s", dir, diff)
		}
	})

	t.Run("LegacyOutputsKey", func(t *testing.T) {
		dir := writeDescriptor(t, filepath.Join(root, "legacy"), `{
			"commands": [["make"]],
			"ducible_args": ["a.dll", "a.pdb"]
		}`)
		got, err := Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"a.dll", "a.pdb"}; !cmp.Equal(want, got.Outputs) {
			t.Errorf("Load(%q).Outputs = %q; want %q", dir, got.Outputs, want)
		}
	})

	t.Run("Comments", func(t *testing.T) {
		dir := writeDescriptor(t, filepath.Join(root, "comments"), `{
			// Build twice to exercise the incremental path.
			"commands": [["make"], ["make"]],
			"outputs": ["out.bin"],
		}`)
		got, err := Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		if len(got.Commands) != 2 {
			t.Errorf("Load(%q) has %d commands; want 2", dir, len(got.Commands))
		}
	})

	t.Run("MissingDescriptor", func(t *testing.T) {
		dir := filepath.Join(root, "scratch")
		if err := os.MkdirAll(dir, 0o777); err != nil {
			t.Fatal(err)
		}
		_, err := Load(dir)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Load(%q) error = %v; want wrapped os.ErrNotExist", dir, err)
		}
		var cfgError *ConfigError
		if errors.As(err, &cfgError) {
			t.Errorf("Load(%q) error = %v; a missing descriptor is not a configuration error", dir, err)
		}
	})

	badDescriptors := map[string]string{
		"BadSyntax":       `{"commands": [[`,
		"MissingCommands": `{"outputs": ["a.bin"]}`,
		"MissingOutputs":  `{"commands": [["make"]]}`,
		"EmptyCommand":    `{"commands": [[]], "outputs": ["a.bin"]}`,
		"BothOutputKeys":  `{"commands": [["make"]], "outputs": ["a"], "ducible_args": ["a"]}`,
		"BadCleanPattern": `{"commands": [["make"]], "outputs": ["a"], "clean": ["[unterminated"]}`,
	}
	for name, data := range badDescriptors {
		t.Run(name, func(t *testing.T) {
			dir := writeDescriptor(t, filepath.Join(root, "bad-"+name), data)
			_, err := Load(dir)
			var cfgError *ConfigError
			if !errors.As(err, &cfgError) {
				t.Fatalf("Load(%q) error = %v; want *ConfigError", dir, err)
			}
			if cfgError.Dir != dir {
				t.Errorf("ConfigError.Dir = %q; want %q", cfgError.Dir, dir)
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeDescriptor(t, filepath.Join(root, "zeta"), `{"commands": [["make"]], "outputs": ["z.bin"]}`)
	writeDescriptor(t, filepath.Join(root, "alpha"), `{"commands": [["make"]], "outputs": ["a.bin"]}`)
	writeDescriptor(t, filepath.Join(root, "broken"), `{"outputs": ["b.bin"]}`)
	if err := os.MkdirAll(filepath.Join(root, "helper"), 0o777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("not a test\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	collect := func() (names []string, errDirs []string) {
		t.Helper()
		for tc, err := range Discover(root) {
			if err != nil {
				var cfgError *ConfigError
				if !errors.As(err, &cfgError) {
					t.Fatalf("Discover yielded %v; want *ConfigError", err)
				}
				errDirs = append(errDirs, filepath.Base(cfgError.Dir))
				continue
			}
			names = append(names, tc.Name)
		}
		return
	}

	names, errDirs := collect()
	if want := []string{"alpha", "zeta"}; !cmp.Equal(want, names) {
		t.Errorf("discovered %q; want %q", names, want)
	}
	if want := []string{"broken"}; !cmp.Equal(want, errDirs) {
		t.Errorf("configuration errors for %q; want %q", errDirs, want)
	}

	// Rescanning yields the same sequence.
	names2, errDirs2 := collect()
	if !cmp.Equal(names, names2) || !cmp.Equal(errDirs, errDirs2) {
		t.Errorf("second scan = (%q, %q); want (%q, %q)", names2, errDirs2, names, errDirs)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nope")
	var got []error
	for tc, err := range Discover(root) {
		if tc != nil {
			t.Errorf("Discover yielded test case %q from a missing root", tc.Name)
		}
		got = append(got, err)
	}
	if len(got) != 1 || got[0] == nil {
		t.Errorf("Discover on missing root yielded %v; want a single error", got)
	}
}
