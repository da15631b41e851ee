// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package coverage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/rtable"
)

func TestMarkAndIsMarked(t *testing.T) {
	b := New(1 << 16)
	if b.IsMarked(42) {
		t.Fatal("seed should start unmarked")
	}
	b.Mark(42)
	if !b.IsMarked(42) {
		t.Fatal("seed should be marked after Mark")
	}
	if b.IsMarked(43) {
		t.Fatal("marking 42 should not mark 43")
	}
}

func TestMarkSubTableMarksEveryWalkedSeed(t *testing.T) {
	const consumption = int32(417)
	const tableID = 0
	const chainLen = 25
	b := NewFullSeedSpace() // walked seeds span the whole uint32 range

	starts := make([]uint32, 37) // deliberately unaligned to exercise the scalar tail
	for i := range starts {
		starts[i] = uint32(i)
	}
	if err := MarkSubTable(context.Background(), b, starts, consumption, tableID, chainLen, 4); err != nil {
		t.Fatal(err)
	}

	for _, start := range starts {
		var expectMarked []uint32
		chain.EnumerateSeeds(start, consumption, tableID, chainLen, func(seed uint32) {
			expectMarked = append(expectMarked, seed)
		})
		for _, seed := range expectMarked {
			if !b.IsMarked(seed) {
				t.Fatalf("seed %d on chain from %d was not marked", seed, start)
			}
		}
	}
}

func TestMeasureCountsMarkedBits(t *testing.T) {
	b := New(1024)
	for _, s := range []uint32{0, 1, 100, 1023} {
		b.Mark(s)
	}
	stats, err := Measure(context.Background(), b, 3)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Reachable != 4 {
		t.Fatalf("reachable = %d, want 4", stats.Reachable)
	}
	if stats.Total != 1024 {
		t.Fatalf("total = %d, want 1024", stats.Total)
	}
	wantFraction := 4.0 / 1024.0
	if stats.Fraction != wantFraction {
		t.Fatalf("fraction = %f, want %f", stats.Fraction, wantFraction)
	}
}

func TestSweepVisitsOnlyUnmarkedSeedsAscending(t *testing.T) {
	b := New(40)
	for _, s := range []uint32{3, 5, 39} {
		b.Mark(s)
	}
	var got []uint32
	if err := Sweep(b, func(seed uint32) error {
		got = append(got, seed)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 37 {
		t.Fatalf("got %d unreachable seeds, want 37", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("not ascending at %d: %d <= %d", i, got[i], got[i-1])
		}
	}
	for _, s := range got {
		if s == 3 || s == 5 || s == 39 {
			t.Fatalf("marked seed %d reported as unreachable", s)
		}
	}
}

func TestWriteMissingSeedsRoundTrip(t *testing.T) {
	b := New(30)
	for _, s := range []uint32{0, 2, 4} {
		b.Mark(s)
	}
	h := rtable.Header{
		Version: 1, Consumption: 417, ChainLength: 4096,
		ChainsPerTable: 1 << 10, NumTables: 4, Flags: rtable.FlagSorted, CreatedAt: 99,
	}
	path := filepath.Join(t.TempDir(), "417.g7ms")
	if err := WriteMissingSeeds(path, h, b); err != nil {
		t.Fatal(err)
	}

	mh, seeds, err := rtable.LoadMissingSeeds(path, h)
	if err != nil {
		t.Fatal(err)
	}
	if mh.MissingCount != 27 {
		t.Fatalf("missing count = %d, want 27", mh.MissingCount)
	}
	if len(seeds) != 27 {
		t.Fatalf("got %d seeds, want 27", len(seeds))
	}
}
