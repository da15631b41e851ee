// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package seedhash implements the needle-vector hash and the
// position-dependent reduction used to walk rainbow chains.
package seedhash

import (
	"github.com/niart120/gen7-initseed-supporter/internal/config"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// GenHash reduces each of eight needle values mod 17 and packs the digits
// into a single base-17 fingerprint: r = sum((n_i mod 17) * 17^(7-i)).
func GenHash(needles [config.NeedleCount]uint64) uint64 {
	var r uint64
	for _, n := range needles {
		r = r*config.NeedleStates + (n % config.NeedleStates)
	}
	return r
}

// GenHashFromSeed constructs an SFMT engine at seed, skips `consumption`
// outputs, reads eight outputs reduced mod 17, and packs them with GenHash.
// consumption is signed in the on-disk header; a negative value skips
// nothing, exactly like zero.
func GenHashFromSeed(seed uint32, consumption int32) uint64 {
	e := sfmt.New(seed)
	if consumption > 0 {
		e.Skip(int(consumption))
	}
	var needles [config.NeedleCount]uint64
	for i := range needles {
		needles[i] = e.NextU64()
	}
	return GenHash(needles)
}

// EndFingerprint is GenHashFromSeed(seed, consumption) mod 2^32 — the sort
// key a sub-table's chains are ordered by. Truncating to
// uint32 is exactly "mod 2^32" since GenHashFromSeed never produces a
// value needing more than 64 bits to represent, and mod 2^32 is just the
// low 32 bits of that.
func EndFingerprint(seed uint32, consumption int32) uint32 {
	return uint32(GenHashFromSeed(seed, consumption))
}

// salt derives the per-sub-table constant mixed into Reduce so that
// distinct table_ids behave as independent draws. Any full-avalanche
// constant suffices; the golden-ratio SplitMix64 multiplier is the
// conventional choice.
const saltMultiplier = 0x9e3779b97f4a7c15

func salt(tableID uint32) uint64 {
	return uint64(tableID) * saltMultiplier
}

// Reduce maps a chain hash back into the seed space at the given column,
// salted per table_id, via a SplitMix64-style avalanche mix.
func Reduce(hash uint64, column uint32, tableID uint32) uint32 {
	x := (hash ^ salt(tableID)) + uint64(column)
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	x = x ^ (x >> 31)
	return uint32(x)
}
