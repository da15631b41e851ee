// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package logutil

import (
	"log/slog"
	"os"
	"strings"
)

func init() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, DefaultLineFormat)))

	// G7TRACE=builder,searcher:debug lifts named packages to debug level
	// (or an explicit level after a colon) without touching call sites.
	for _, pkg := range strings.Split(os.Getenv("G7TRACE"), ",") {
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		level := slog.LevelDebug
		if cutPkg, levelStr, ok := strings.Cut(pkg, ":"); ok {
			pkg = cutPkg
			if err := level.UnmarshalText([]byte(levelStr)); err != nil {
				slog.Warn("bad level in G7TRACE", slog.String("pkg", pkg), slog.String("level", levelStr))
				continue
			}
		}
		SetPackageLevel(pkg, level)
	}
}
