// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package logutil

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestFormattingHandlerRendersAttrsAndLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewHandler(buf, LineFormat{LevelString: true})
	l := slog.New(h)

	l.Info("a message", "key", "val with spaces")
	l.Warn("a warning")

	got := buf.String()
	if !strings.Contains(got, "INF a message (key=\"val with spaces\"") {
		t.Fatalf("unexpected info line: %q", got)
	}
	if !strings.Contains(got, "WRN a warning") {
		t.Fatalf("unexpected warning line: %q", got)
	}
}

func TestFuncNameToPkgStripsModulePrefix(t *testing.T) {
	got := funcNameToPkg("github.com/niart120/gen7-initseed-supporter/internal/builder.GenerateTable")
	if got != "builder" {
		t.Fatalf("got %q, want builder", got)
	}
}

func TestSetPackageLevelSuppressesBelowThreshold(t *testing.T) {
	buf := new(bytes.Buffer)
	h := NewHandler(buf, LineFormat{})
	l := slog.New(h)

	SetPackageLevel("logutil", slog.LevelWarn)
	defer SetPackageLevel("logutil", slog.LevelDebug-1) // restore an effectively-unset override

	l.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
