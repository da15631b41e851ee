// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package seedhash

import (
	"testing"

	"github.com/niart120/gen7-initseed-supporter/internal/config"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

func TestGenHashConcreteValues(t *testing.T) {
	var zeros [config.NeedleCount]uint64
	if got := GenHash(zeros); got != 0 {
		t.Fatalf("gen_hash(zeros) = %d, want 0", got)
	}

	var ones [config.NeedleCount]uint64
	for i := range ones {
		ones[i] = 1
	}
	want := uint64(0)
	pow := uint64(1)
	for i := 0; i < config.NeedleCount; i++ {
		want += pow
		pow *= config.NeedleStates
	}
	if want != 435984840 {
		t.Fatalf("self-check: sum of 17^k, k=0..7 = %d, want 435984840", want)
	}
	if got := GenHash(ones); got != want {
		t.Fatalf("gen_hash(ones) = %d, want %d", got, want)
	}
}

func TestGenHashFromSeedDeterministic(t *testing.T) {
	for _, seed := range []uint32{0, 1, 12345, 0xffffffff} {
		for _, c := range []int32{0, 1, 417} {
			a := GenHashFromSeed(seed, c)
			b := GenHashFromSeed(seed, c)
			if a != b {
				t.Fatalf("seed=%d consumption=%d: not deterministic (%d != %d)", seed, c, a, b)
			}
		}
	}
}

func TestReduceColumnDependence(t *testing.T) {
	const h = 0xDEADBEEFCAFEBABE
	if Reduce(h, 0, 0) == Reduce(h, 1, 0) {
		t.Fatal("reduce(h,0,0) == reduce(h,1,0), expected column-dependence")
	}
}

func TestReduceSaltIndependence(t *testing.T) {
	const h = 0x0102030405060708
	same := 0
	for c := uint32(0); c < 64; c++ {
		if Reduce(h, c, 1) == Reduce(h, c, 2) {
			same++
		}
	}
	if same > 2 {
		t.Fatalf("reduce collided across table_id 1 vs 2 in %d/64 columns, expected near-zero", same)
	}
}

func TestGenHashFromSeedX16MatchesScalar(t *testing.T) {
	var seeds [sfmt.LaneWidth]uint32
	for j := range seeds {
		seeds[j] = uint32(j)*104729 + 7
	}
	const consumption = 417
	got := GenHashFromSeedX16(seeds, consumption)
	for j, seed := range seeds {
		want := GenHashFromSeed(seed, consumption)
		if got[j] != want {
			t.Fatalf("lane %d: got %d want %d", j, got[j], want)
		}
	}
}

func TestReduceX16MatchesScalar(t *testing.T) {
	var hashes [sfmt.LaneWidth]uint64
	var tableIDs [sfmt.LaneWidth]uint32
	for j := range hashes {
		hashes[j] = uint64(j)*0x1000000001 + 99
		tableIDs[j] = uint32(j)
	}
	got := ReduceX16(hashes, 7, tableIDs)
	for j := range hashes {
		want := Reduce(hashes[j], 7, tableIDs[j])
		if got[j] != want {
			t.Fatalf("lane %d: got %d want %d", j, got[j], want)
		}
	}
}
