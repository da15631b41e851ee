// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package coverage

import "github.com/niart120/gen7-initseed-supporter/internal/rtable"

// WriteMissingSeeds sweeps b and writes every unreachable seed to path as
// the sibling missing-seeds file for sourceHeader, back-referencing it via
// rtable.SourceChecksum.
func WriteMissingSeeds(path string, sourceHeader rtable.Header, b *Bitmap) error {
	var seeds []uint32
	err := Sweep(b, func(seed uint32) error {
		seeds = append(seeds, seed)
		return nil
	})
	if err != nil {
		return err
	}
	return rtable.SaveMissingSeeds(path, sourceHeader, seeds)
}
