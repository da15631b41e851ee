// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package searcher inverts an observed hash against a sorted rainbow table
// by sweeping every column, reconstructing the fingerprint that column
// would have produced, and verifying any sub-table hit against the actual
// hash schedule.
package searcher

import (
	"context"
	"runtime"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/rtable"
	"github.com/niart120/gen7-initseed-supporter/internal/seedhash"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// Options configures Search.
type Options struct {
	// Workers bounds column-sweep concurrency. 0 = runtime.GOMAXPROCS(0).
	Workers int
}

// Match is one recovered seed together with the sub-table whose chain
// produced it.
type Match struct {
	TableID uint32
	Seed    uint32
}

func matchKey(m Match) uint64 {
	return uint64(m.TableID)<<32 | uint64(m.Seed)
}

// Search recovers every (table_id, seed) pair whose chain's observed hash
// equals targetHash by sweeping columns [chainLength-1, 0] across all of
// the table's sub-tables. For each column it reconstructs the end
// fingerprint that column would produce (chain.EndFromColumn/
// EndFromColumnX16), binary searches the matching sub-table (sorted
// ascending by end fingerprint) for that key, and verifies any hit by
// re-walking forward from its start seed (chain.Verify), which discards
// the false positives that a rainbow table's reduction collisions produce.
//
// The same (table_id, seed) pair can surface from more than one column;
// results are deduplicated and returned ordered by table_id then seed. An
// empty, nil-error result means the table genuinely has no chain covering
// targetHash; the coverage package is the tool for quantifying that risk
// ahead of time, not this function.
func Search(ctx context.Context, view *rtable.View, targetHash uint64, opts Options) ([]Match, error) {
	h := view.Header
	numTables := int(h.NumTables)
	chainLen := int(h.ChainLength)
	consumption := h.Consumption

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	found := xsync.NewMapOf[uint64, Match]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for col := chainLen - 1; col >= 0; col-- {
		col := col
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return searchColumn(view, targetHash, uint32(col), consumption, numTables, chainLen, found)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Match, 0, found.Size())
	found.Range(func(_ uint64, m Match) bool {
		out = append(out, m)
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].TableID != out[j].TableID {
			return out[i].TableID < out[j].TableID
		}
		return out[i].Seed < out[j].Seed
	})
	return out, nil
}

// searchColumn handles one column across every sub-table, batching up to
// sfmt.LaneWidth sub-tables per EndFromColumnX16 call.
func searchColumn(view *rtable.View, targetHash uint64, col uint32, consumption int32, numTables, chainLen int, found *xsync.MapOf[uint64, Match]) error {
	for batchStart := 0; batchStart < numTables; batchStart += sfmt.LaneWidth {
		batchEnd := batchStart + sfmt.LaneWidth
		if batchEnd > numTables {
			batchEnd = numTables
		}
		width := batchEnd - batchStart

		var tableIDs [sfmt.LaneWidth]uint32
		for j := 0; j < width; j++ {
			tableIDs[j] = uint32(batchStart + j)
		}
		for j := width; j < sfmt.LaneWidth; j++ {
			tableIDs[j] = tableIDs[0] // pad; lanes beyond width are discarded below
		}

		ends := chain.EndFromColumnX16(targetHash, col, consumption, tableIDs, chainLen)

		for j := 0; j < width; j++ {
			tableID := uint32(batchStart + j)
			subTable := view.SubTable(batchStart + j)
			key := seedhash.EndFingerprint(ends[j], consumption)

			for _, candidate := range candidatesWithFingerprint(subTable, key, consumption) {
				if seed, ok := chain.Verify(candidate.Start, col, targetHash, consumption, tableID); ok {
					m := Match{TableID: tableID, Seed: seed}
					found.Store(matchKey(m), m)
				}
			}
		}
	}
	return nil
}

// candidatesWithFingerprint binary searches a sub-table sorted ascending
// by end fingerprint for every entry whose fingerprint equals key; ties
// are possible since the fingerprint is a 32-bit truncation, so the result
// may hold more than one entry.
func candidatesWithFingerprint(subTable []chain.Entry, key uint32, consumption int32) []chain.Entry {
	lo := sort.Search(len(subTable), func(i int) bool {
		return seedhash.EndFingerprint(subTable[i].End, consumption) >= key
	})
	hi := lo
	for hi < len(subTable) && seedhash.EndFingerprint(subTable[hi].End, consumption) == key {
		hi++
	}
	return subTable[lo:hi]
}
