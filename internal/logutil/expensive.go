// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package logutil

import "log/slog"

// Expensive defers fn until the log line it's attached to is actually
// emitted, for attribute values not worth computing (e.g. a coverage
// sweep's stats) when the surrounding level is disabled.
func Expensive(fn func() any) slog.LogValuer {
	return expensive{fn}
}

type expensive struct{ fn func() any }

func (e expensive) LogValue() slog.Value { return slog.AnyValue(e.fn()) }
