// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rtable

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/config"
)

func smallParams() config.Params {
	return config.Params{ChainLength: 50, ChainsPerTable: 20, NumTables: 2}
}

func buildSubTables(p config.Params) [][]chain.Entry {
	subTables := make([][]chain.Entry, p.NumTables)
	for t := range subTables {
		st := make([]chain.Entry, p.ChainsPerTable)
		for i := range st {
			st[i] = chain.Entry{Start: uint32(t*1000 + i), End: uint32(t*1000 + i + 1)}
		}
		subTables[t] = st
	}
	return subTables
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")

	if err := SaveSingleTable(path, 417, p, subTables, true, 1700000000); err != nil {
		t.Fatalf("save: %v", err)
	}

	h, loaded, err := LoadSingleTable(path, SearchValidation(417, p))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !h.Sorted() {
		t.Fatal("sorted flag not preserved")
	}
	if h.Consumption != 417 {
		t.Fatalf("consumption = %d, want 417", h.Consumption)
	}
	for t2 := range subTables {
		for i := range subTables[t2] {
			if loaded[t2][i] != subTables[t2][i] {
				t.Fatalf("entry [%d][%d]: got %+v want %+v", t2, i, loaded[t2][i], subTables[t2][i])
			}
		}
	}
}

func TestPeekHeaderMatchesLoad(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")
	if err := SaveSingleTable(path, 417, p, subTables, true, 123); err != nil {
		t.Fatal(err)
	}

	peeked, err := PeekHeader(path)
	if err != nil {
		t.Fatalf("PeekHeader: %v", err)
	}
	loaded, _, err := LoadSingleTable(path, SearchValidation(417, p))
	if err != nil {
		t.Fatal(err)
	}
	if peeked != loaded {
		t.Fatalf("PeekHeader = %+v, want %+v", peeked, loaded)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.g7rt")
	if err := os.WriteFile(path, []byte("GARBAGE\x00"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, err := LoadSingleTable(path, SearchValidation(417, smallParams()))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindInvalidMagic {
		t.Fatalf("got %v, want KindInvalidMagic", err)
	}
}

func TestLoadRejectsParameterMismatch(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")
	if err := SaveSingleTable(path, 477, p, subTables, true, 0); err != nil {
		t.Fatal(err)
	}

	_, _, err := LoadSingleTable(path, SearchValidation(417, p))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindParameterMismatch {
		t.Fatalf("got %v, want KindParameterMismatch", err)
	}
	if rerr.Field != "consumption" || rerr.Expected != int32(417) || rerr.Found != int32(477) {
		t.Fatalf("got field=%v expected=%v found=%v", rerr.Field, rerr.Expected, rerr.Found)
	}
}

func TestLoadRejectsUnsorted(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")
	if err := SaveSingleTable(path, 417, p, subTables, true, 0); err != nil {
		t.Fatal(err)
	}

	// Flip the sorted bit off directly on disk (flags is a single byte at
	// offset 28 given our flag values fit in the low byte).
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt([]byte{0}, 28); err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, _, err = LoadSingleTable(path, SearchValidation(417, p))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindNotSorted {
		t.Fatalf("got %v, want KindNotSorted", err)
	}
}

func TestLoadRejectsSizeMismatch(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")
	if err := SaveSingleTable(path, 417, p, subTables, true, 0); err != nil {
		t.Fatal(err)
	}
	if err := os.Truncate(path, 10); err != nil {
		t.Fatal(err)
	}

	_, _, err := LoadSingleTable(path, SearchValidation(417, p))
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindSizeMismatch {
		t.Fatalf("got %v, want KindSizeMismatch", err)
	}
}

func TestMmapMatchesLoad(t *testing.T) {
	p := smallParams()
	subTables := buildSubTables(p)
	path := filepath.Join(t.TempDir(), "417.g7rt")
	if err := SaveSingleTable(path, 417, p, subTables, true, 0); err != nil {
		t.Fatal(err)
	}

	view, err := MmapSingleTable(path, SearchValidation(417, p))
	if err != nil {
		t.Fatalf("mmap: %v", err)
	}
	defer view.Close()

	for t2 := range subTables {
		got := view.SubTable(t2)
		if len(got) != len(subTables[t2]) {
			t.Fatalf("sub-table %d: len %d, want %d", t2, len(got), len(subTables[t2]))
		}
		for i := range got {
			if got[i] != subTables[t2][i] {
				t.Fatalf("sub-table %d entry %d: got %+v want %+v", t2, i, got[i], subTables[t2][i])
			}
		}
	}
}

func TestMissingSeedsRoundTrip(t *testing.T) {
	p := smallParams()
	h := Header{Version: formatVersion, Consumption: 417, ChainLength: p.ChainLength, ChainsPerTable: p.ChainsPerTable, NumTables: p.NumTables, Flags: FlagSorted, CreatedAt: 42}
	seeds := []uint32{3, 9, 100, 1 << 20}
	path := filepath.Join(t.TempDir(), "417.g7ms")

	if err := SaveMissingSeeds(path, h, seeds); err != nil {
		t.Fatalf("save: %v", err)
	}
	mh, loaded, err := LoadMissingSeeds(path, h)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mh.MissingCount != uint64(len(seeds)) {
		t.Fatalf("missing count = %d, want %d", mh.MissingCount, len(seeds))
	}
	for i := range seeds {
		if loaded[i] != seeds[i] {
			t.Fatalf("seed %d: got %d want %d", i, loaded[i], seeds[i])
		}
	}
}

func TestMissingSeedsChecksumMismatch(t *testing.T) {
	p := smallParams()
	h := Header{Version: formatVersion, Consumption: 417, ChainLength: p.ChainLength, ChainsPerTable: p.ChainsPerTable, NumTables: p.NumTables, CreatedAt: 42}
	path := filepath.Join(t.TempDir(), "417.g7ms")
	if err := SaveMissingSeeds(path, h, []uint32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	other := h
	other.CreatedAt = 43
	_, _, err := LoadMissingSeeds(path, other)
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Kind != KindChecksumMismatch {
		t.Fatalf("got %v, want KindChecksumMismatch", err)
	}
}
