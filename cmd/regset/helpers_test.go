package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/regset/internal/keywriter"
	"github.com/joshuapare/regset/internal/logger"
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

// runCLI executes the root command with args against an in-memory registry.
// HOME and the working directory point at an empty temp dir so no user
// config is picked up.
func runCLI(t *testing.T, mem *keywriter.Memory, args ...string) (string, error) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("USERPROFILE", dir)
	t.Chdir(dir)

	origRegistry := newRegistry
	newRegistry = func() keywriter.Registry { return mem }
	t.Cleanup(func() { newRegistry = origRegistry })

	origLogger := logger.L
	t.Cleanup(func() { logger.L = origLogger })

	return captureOutput(t, func() error {
		return run(context.Background(), args)
	})
}

// assertJSON checks that output is valid JSON and returns it decoded
func assertJSON(t *testing.T, output string) interface{} {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
	return result
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
