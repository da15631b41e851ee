// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package seedhash

import (
	"github.com/niart120/gen7-initseed-supporter/internal/config"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// GenHashFromSeedX16 computes GenHashFromSeed for 16 seeds at once using
// the wide PRNG; lane j is bit-for-bit identical to GenHashFromSeed(seeds[j], consumption).
func GenHashFromSeedX16(seeds [sfmt.LaneWidth]uint32, consumption int32) [sfmt.LaneWidth]uint64 {
	e := sfmt.NewMulti(seeds)
	if consumption > 0 {
		e.Skip(int(consumption))
	}
	var needles [config.NeedleCount][sfmt.LaneWidth]uint64
	for i := 0; i < config.NeedleCount; i++ {
		needles[i] = e.NextU64X16()
	}

	var out [sfmt.LaneWidth]uint64
	for j := 0; j < sfmt.LaneWidth; j++ {
		var lane [config.NeedleCount]uint64
		for i := 0; i < config.NeedleCount; i++ {
			lane[i] = needles[i][j]
		}
		out[j] = GenHash(lane)
	}
	return out
}

// ReduceX16 applies Reduce to 16 hashes at the same column but each with
// its own table_id salt (the "multi table" variant used by the searcher to
// advance all sub-tables together during a search).
func ReduceX16(hashes [sfmt.LaneWidth]uint64, column uint32, tableIDs [sfmt.LaneWidth]uint32) [sfmt.LaneWidth]uint32 {
	var out [sfmt.LaneWidth]uint32
	for j := 0; j < sfmt.LaneWidth; j++ {
		out[j] = Reduce(hashes[j], column, tableIDs[j])
	}
	return out
}

// ReduceX16SameTable applies Reduce to 16 hashes at the same column and
// table_id — the variant used by the builder/chain engine when walking 16
// chains that all belong to the same sub-table.
func ReduceX16SameTable(hashes [sfmt.LaneWidth]uint64, column uint32, tableID uint32) [sfmt.LaneWidth]uint32 {
	var out [sfmt.LaneWidth]uint32
	for j := 0; j < sfmt.LaneWidth; j++ {
		out[j] = Reduce(hashes[j], column, tableID)
	}
	return out
}
