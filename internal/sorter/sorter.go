// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package sorter sorts one sub-table ascending by end-point fingerprint,
// decorate-sort-undecorate style, since the fingerprint is too expensive to
// recompute on every comparison during the sort itself.
package sorter

import (
	"context"
	"runtime"
	"sort"

	"github.com/greatroar/blobloom"
	"golang.org/x/sync/errgroup"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/seedhash"
)

type decorated struct {
	key   uint32
	entry chain.Entry
}

// Options configures SortSubTable.
type Options struct {
	Consumption int32
	Workers     int // 0 = runtime.GOMAXPROCS(0)
	// Dedup enables the optional end-point deduplication pass; the
	// cost/benefit threshold is left to the caller, off by default. A chain
	// surviving dedup keeps its original start.
	Dedup bool
}

func endFingerprint(e chain.Entry, consumption int32) uint32 {
	return seedhash.EndFingerprint(e.End, consumption)
}

// SortSubTable sorts entries ascending by end fingerprint, building
// (key, entry) pairs in parallel (the key computation dominates cost),
// sorting unstably, then writing entries back. When opts.Dedup is set,
// the sorted order lets the exact collision check run as a single linear
// scan (dedupSorted) — no probabilistic pre-filter needed there.
func SortSubTable(ctx context.Context, entries []chain.Entry, opts Options) ([]chain.Entry, error) {
	pairs := make([]decorated, len(entries))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(entries) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(entries) {
			hi = len(entries)
		}
		if lo >= hi {
			continue
		}
		lo, hi := lo, hi
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%4096 == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				pairs[i] = decorated{key: endFingerprint(entries[i], opts.Consumption), entry: entries[i]}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].key < pairs[j].key })

	if opts.Dedup {
		return dedupSorted(pairs), nil
	}
	out := make([]chain.Entry, len(pairs))
	for i, d := range pairs {
		out[i] = d.entry
	}
	return out, nil
}

// dedupSorted drops chains whose end fingerprint collides with the
// previous entry's, scanning linearly since pairs is already sorted by key.
func dedupSorted(pairs []decorated) []chain.Entry {
	out := make([]chain.Entry, 0, len(pairs))
	var prevKey uint32
	havePrev := false
	for _, d := range pairs {
		if havePrev && d.key == prevKey {
			continue
		}
		out = append(out, d.entry)
		prevKey = d.key
		havePrev = true
	}
	return out
}

// EstimateDuplicateRatio reports the fraction of entries whose end
// fingerprint a blobloom.Filter has already seen, used to decide whether
// the exact Options.Dedup pass is worth the extra sort-and-scan cost on a
// table this size, a decision left entirely to the caller. A cheap
// single pass over unsorted entries; false positives only ever inflate
// the estimate, they never hide a real collision from the caller's
// judgment the way a false negative would.
func EstimateDuplicateRatio(entries []chain.Entry, consumption int32) float64 {
	if len(entries) == 0 {
		return 0
	}
	filter := blobloom.NewOptimized(blobloom.Config{
		Capacity: uint64(len(entries)),
		FPRate:   0.01,
	})
	var probableDup int
	for _, e := range entries {
		h := uint64(endFingerprint(e, consumption))*0x9e3779b97f4a7c15 + 1
		if filter.Has(h) {
			probableDup++
		}
		filter.Add(h)
	}
	return float64(probableDup) / float64(len(entries))
}
