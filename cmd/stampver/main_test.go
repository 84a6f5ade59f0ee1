// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/stampver/lib/descriptor"
	"github.com/bureau-foundation/stampver/lib/stamp"
)

var testMacros = stamp.Macros{
	String: "WIDGET_VER_STR",
	Major:  "WIDGET_MAJOR",
	Minor:  "WIDGET_MINOR",
	Patch:  "WIDGET_PATCH",
}

const testHeader = `#ifndef Widget_Version_h
#define Widget_Version_h

#define WIDGET_VER_STR "v0.0.0"
#define WIDGET_MAJOR (0)
#define WIDGET_MINOR (0)
#define WIDGET_PATCH (0)

#endif
`

func writeHeader(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "Widget_Version.h")
	if err := os.WriteFile(path, []byte(testHeader), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApply_Update(t *testing.T) {
	t.Parallel()

	path := writeHeader(t)
	parsed := descriptor.Parse("v2.5.1")

	if err := apply(testLogger(), io.Discard, path, parsed, testMacros, false, false); err != nil {
		t.Fatalf("apply: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(content), `#define WIDGET_VER_STR "v2.5.1"`) {
		t.Errorf("header not stamped:\n%s", content)
	}
}

func TestApply_CheckCurrentExitsZero(t *testing.T) {
	t.Parallel()

	path := writeHeader(t)
	parsed := descriptor.Parse("v2.5.1")

	// Stamp first, then verify: a current header is a nil return.
	if err := apply(testLogger(), io.Discard, path, parsed, testMacros, false, false); err != nil {
		t.Fatalf("apply (update): %v", err)
	}
	if err := apply(testLogger(), io.Discard, path, parsed, testMacros, true, false); err != nil {
		t.Errorf("apply (check, current) = %v, want nil", err)
	}
}

func TestApply_CheckStaleExitsOne(t *testing.T) {
	t.Parallel()

	path := writeHeader(t)
	parsed := descriptor.Parse("v2.5.1")

	err := apply(testLogger(), io.Discard, path, parsed, testMacros, true, false)
	if err == nil {
		t.Fatal("apply (check, stale) = nil, want exit code 1")
	}
	coder, ok := err.(interface{ ExitCode() int })
	if !ok {
		t.Fatalf("apply (check, stale) = %v, want an ExitCode error", err)
	}
	if coder.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d, want 1", coder.ExitCode())
	}

	// Check never writes.
	content, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("ReadFile: %v", readErr)
	}
	if string(content) != testHeader {
		t.Errorf("check modified the header:\n%s", content)
	}
}

func TestApply_DryRunPrintsWithoutWriting(t *testing.T) {
	t.Parallel()

	path := writeHeader(t)
	parsed := descriptor.Parse("v2.5.1")
	var out bytes.Buffer

	if err := apply(testLogger(), &out, path, parsed, testMacros, false, true); err != nil {
		t.Fatalf("apply (dry-run): %v", err)
	}

	for _, line := range []string{
		`#define WIDGET_VER_STR "v2.5.1"`,
		`#define WIDGET_MAJOR (2)`,
		`#define WIDGET_MINOR (5)`,
		`#define WIDGET_PATCH (1)`,
	} {
		if !strings.Contains(out.String(), line) {
			t.Errorf("dry-run output missing %q:\n%s", line, out.String())
		}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(content) != testHeader {
		t.Errorf("dry-run modified the header:\n%s", content)
	}
}

func TestApply_MissingHeader(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing.h")
	parsed := descriptor.Parse("v1.0.0")

	for _, mode := range []struct {
		name          string
		check, dryRun bool
	}{
		{"update", false, false},
		{"check", true, false},
		{"dry-run", false, true},
	} {
		err := apply(testLogger(), io.Discard, path, parsed, testMacros, mode.check, mode.dryRun)
		if !errors.Is(err, stamp.ErrTargetMissing) {
			t.Errorf("apply (%s) error = %v, want ErrTargetMissing", mode.name, err)
		}
	}
}
