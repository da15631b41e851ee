// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package chain implements the forward chain walk and verification that
// make up a rainbow table's time/memory trade-off. Only the
// start and end of a walk are ever persisted; everything in between is
// reconstructed on demand.
package chain

import (
	"github.com/niart120/gen7-initseed-supporter/internal/seedhash"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// Entry is a persisted chain: the seed a walk started from and the seed it
// ended at after exactly the table's configured chain length.
type Entry struct {
	Start uint32
	End   uint32
}

// Compute walks t steps from startSeed: s <- reduce(gen_hash_from_seed(s,
// consumption), n, tableID) for n in [0, t). It returns the (start, end)
// pair that is all a table ever stores for this chain.
func Compute(startSeed uint32, consumption int32, tableID uint32, t int) Entry {
	s := startSeed
	for n := 0; n < t; n++ {
		h := seedhash.GenHashFromSeed(s, consumption)
		s = seedhash.Reduce(h, uint32(n), tableID)
	}
	return Entry{Start: startSeed, End: s}
}

// Verify walks from candidateStart through steps [0, column); if the hash
// produced at step column equals targetHash, candidateStart's walk really
// does pass through the seed that absorbed targetHash at that column, and
// the current seed (the recovered initial seed) is returned.
func Verify(candidateStart uint32, column uint32, targetHash uint64, consumption int32, tableID uint32) (seed uint32, ok bool) {
	s := candidateStart
	for n := uint32(0); n < column; n++ {
		h := seedhash.GenHashFromSeed(s, consumption)
		s = seedhash.Reduce(h, n, tableID)
	}
	if seedhash.GenHashFromSeed(s, consumption) == targetHash {
		return s, true
	}
	return 0, false
}

// ComputeX16 walks 16 chains at once using the wide PRNG and reduce; it is
// identical in result to 16 calls to Compute with the same consumption and
// tableID, at roughly 4x the throughput on wide SIMD.
func ComputeX16(starts [sfmt.LaneWidth]uint32, consumption int32, tableID uint32, t int) [sfmt.LaneWidth]Entry {
	s := starts
	for n := 0; n < t; n++ {
		h := seedhash.GenHashFromSeedX16(s, consumption)
		s = seedhash.ReduceX16SameTable(h, uint32(n), tableID)
	}
	var out [sfmt.LaneWidth]Entry
	for j := 0; j < sfmt.LaneWidth; j++ {
		out[j] = Entry{Start: starts[j], End: s[j]}
	}
	return out
}

// EndFromColumn reconstructs the end seed a chain would reach if hash were
// the value observed at step column: it folds hash back into the seed
// space at that column, then continues the ordinary walk through the
// remaining steps [column+1, chainLength). The
// searcher uses this to turn an observed hash into the same fingerprint
// space the sorted sub-table is keyed by, without ever materializing the
// seeds in between.
func EndFromColumn(hash uint64, column uint32, consumption int32, tableID uint32, chainLength int) uint32 {
	s := seedhash.Reduce(hash, column, tableID)
	for n := int(column) + 1; n < chainLength; n++ {
		h := seedhash.GenHashFromSeed(s, consumption)
		s = seedhash.Reduce(h, uint32(n), tableID)
	}
	return s
}

// EndFromColumnX16 is EndFromColumn for 16 sub-tables sharing one observed
// hash but each with its own table_id salt, advanced in lockstep — the
// multi-table column sweep the searcher runs when a rainbow table is split
// across up to 16 sub-tables.
func EndFromColumnX16(hash uint64, column uint32, consumption int32, tableIDs [sfmt.LaneWidth]uint32, chainLength int) [sfmt.LaneWidth]uint32 {
	var hashes [sfmt.LaneWidth]uint64
	for j := range hashes {
		hashes[j] = hash
	}
	s := seedhash.ReduceX16(hashes, column, tableIDs)
	for n := int(column) + 1; n < chainLength; n++ {
		h := seedhash.GenHashFromSeedX16(s, consumption)
		s = seedhash.ReduceX16(h, uint32(n), tableIDs)
	}
	return s
}

// EnumerateSeeds calls onStep once per walked step, including step 0 (the
// start) and step t (the end) — the scalar counterpart of
// EnumerateSeedsX16 for seed ranges that don't fill a full lane batch.
func EnumerateSeeds(startSeed uint32, consumption int32, tableID uint32, t int, onStep func(seed uint32)) {
	s := startSeed
	onStep(s)
	for n := 0; n < t; n++ {
		h := seedhash.GenHashFromSeed(s, consumption)
		s = seedhash.Reduce(h, uint32(n), tableID)
		onStep(s)
	}
}

// EnumerateSeedsX16 calls onStep once per walked step for 16 chains
// advancing in lockstep, including step 0 (the starts) and step t (the
// ends) — every seed a coverage sweep needs to mark.
func EnumerateSeedsX16(starts [sfmt.LaneWidth]uint32, consumption int32, tableID uint32, t int, onStep func(seeds [sfmt.LaneWidth]uint32)) {
	s := starts
	onStep(s)
	for n := 0; n < t; n++ {
		h := seedhash.GenHashFromSeedX16(s, consumption)
		s = seedhash.ReduceX16SameTable(h, uint32(n), tableID)
		onStep(s)
	}
}
