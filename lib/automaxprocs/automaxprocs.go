// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package automaxprocs sets GOMAXPROCS from the calling container's CPU
// quota on import. Both command entry points blank-import this so the
// errgroup.SetLimit(runtime.GOMAXPROCS(0)) calls throughout builder,
// sorter, searcher, and coverage size themselves to what's actually
// available rather than the host's full core count.
package automaxprocs

import (
	"go.uber.org/automaxprocs/maxprocs"
)

func init() {
	maxprocs.Set()
}
