package main

import (
	"bytes"
	"os"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	return buf.String(), fnErr
}

// useFlags sets the global output flags and the given arena flags for the
// duration of a test.
func useFlags(t *testing.T, target *arenaFlags, flags arenaFlags, json bool) {
	t.Helper()
	saved := *target
	savedJSON, savedQuiet, savedVerbose := jsonOut, quiet, verbose

	*target = flags
	jsonOut, quiet, verbose = json, false, false

	t.Cleanup(func() {
		*target = saved
		jsonOut, quiet, verbose = savedJSON, savedQuiet, savedVerbose
	})
}

func defaults(capacity string) arenaFlags {
	return arenaFlags{capacity: capacity, fit: "best", coalesce: "none", backing: "heap"}
}
