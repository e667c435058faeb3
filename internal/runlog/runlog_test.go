// Copyright 2025 The reprotest Authors
// SPDX-License-Identifier: MIT

package runlog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"reprotest.dev/pkg/internal/harness"
	"reprotest.dev/pkg/internal/testcase"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"Pass", nil, Pass},
		{"Mismatch", &harness.MismatchError{Test: "t", Outputs: []string{"a.bin"}}, Mismatch},
		{"BuildFailure", &harness.CommandError{Test: "t", Command: []string{"make"}}, BuildFailure},
		{"NormalizerFailure", &harness.NormalizerError{Test: "t", Normalizer: "ducible"}, NormalizerFailure},
		{"MissingOutput", &harness.MissingOutputError{Test: "t", Output: "a.bin"}, MissingOutput},
		{"ConfigFailure", &testcase.ConfigError{Dir: "tests/t"}, ConfigFailure},
		{"Timeout", &harness.TimeoutError{Test: "t", Command: []string{"make"}, Timeout: time.Minute}, Timeout},
		{"RunError", errors.New("disk on fire"), RunError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.want {
				t.Errorf("Classify(%v) = %v; want %v", test.err, got, test.want)
			}
		})
	}
}

func TestParseOutcome(t *testing.T) {
	for o := Pass; o <= RunError; o++ {
		got, err := ParseOutcome(o.String())
		if err != nil {
			t.Errorf("ParseOutcome(%q): %v", o.String(), err)
		} else if got != o {
			t.Errorf("ParseOutcome(%q) = %v; want %v", o.String(), got, o)
		}
	}
	if _, err := ParseOutcome("Bogus"); err == nil {
		t.Error("ParseOutcome accepted an unknown outcome")
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	journal, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			t.Error("Close:", err)
		}
	}()

	runID, err := uuid.NewRandom()
	if err != nil {
		t.Fatal(err)
	}
	started := time.Date(2025, time.March, 14, 9, 26, 53, 0, time.UTC)
	if err := journal.StartRun(ctx, runID, "/usr/local/bin/ducible", started); err != nil {
		t.Fatal(err)
	}

	in := []harness.Result{
		{Test: "exe", Err: nil, Duration: 1200 * time.Millisecond},
		{
			Test:     "dll",
			Err:      &harness.MismatchError{Test: "dll", Outputs: []string{"a.dll"}},
			Duration: 3400 * time.Millisecond,
		},
	}
	for _, res := range in {
		if err := journal.RecordResult(ctx, runID, res); err != nil {
			t.Fatal(err)
		}
	}
	if err := journal.FinishRun(ctx, runID, started.Add(5*time.Second), harness.CountFailures(in)); err != nil {
		t.Fatal(err)
	}

	got, err := journal.RunResults(ctx, runID)
	if err != nil {
		t.Fatal(err)
	}
	want := []RecordedResult{
		{
			Test:     "dll",
			Outcome:  Mismatch,
			Detail:   "test dll: outputs not reproducible: a.dll",
			Duration: 3400 * time.Millisecond,
		},
		{Test: "exe", Outcome: Pass, Duration: 1200 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RunResults (-want +got):\n%s", diff)
	}

	gotRuns, err := journal.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantRuns := []RecordedRun{{
		ID:         runID,
		Normalizer: "/usr/local/bin/ducible",
		Started:    started,
		Finished:   started.Add(5 * time.Second),
		Failed:     1,
	}}
	if diff := cmp.Diff(wantRuns, gotRuns); diff != "" {
		t.Errorf("Runs (-want +got):\n%s", diff)
	}

	// Results from an unknown run are empty, not an error.
	otherID, err := uuid.NewRandom()
	if err != nil {
		t.Fatal(err)
	}
	if got, err := journal.RunResults(ctx, otherID); err != nil {
		t.Error(err)
	} else if len(got) != 0 {
		t.Errorf("RunResults for an unrecorded run = %v; want none", got)
	}

	// A run that never finished reports a zero finish time and -1 failures.
	if err := journal.StartRun(ctx, otherID, "/usr/local/bin/ducible", started.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	gotRuns, err = journal.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotRuns) != 2 {
		t.Fatalf("Runs returned %d runs; want 2", len(gotRuns))
	}
	if unfinished := gotRuns[1]; unfinished.ID != otherID || !unfinished.Finished.IsZero() || unfinished.Failed != -1 {
		t.Errorf("unfinished run = %+v; want ID %v with zero finish time and Failed = -1", unfinished, otherID)
	}
}
