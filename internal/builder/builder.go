// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package builder generates one sub-table's worth of chains in parallel
// across a seed range. Generation is pure computation; only
// the eventual persist step (internal/rtable) can fail.
package builder

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// batchSize matches the wide PRNG lane count; chain generation runs at
// full throughput only on 16-seed-aligned batches.
const batchSize = sfmt.LaneWidth

// ProgressFunc is called as chains complete. It must return quickly; use
// Options.ProgressEvery / the internal rate limiter to avoid it being
// called once per chain on a fast table.
type ProgressFunc func(done, total uint64)

// Options configures one GenerateTable call.
type Options struct {
	// SeedStart, SeedEnd describe the half-open seed range [SeedStart,
	// SeedEnd) to generate chains for. Callers building a full sub-table
	// pass [0, ChainsPerTable) when seeds are taken in natural order, but
	// the range need not start at 0 (e.g. resuming a partial build).
	SeedStart, SeedEnd uint64
	Consumption        int32
	TableID            uint32
	ChainLength        int
	Workers            int // 0 = runtime.GOMAXPROCS(0)
	Progress           ProgressFunc
	// ProgressEvery bounds how often Progress is invoked, in wall-clock
	// terms, via a token-bucket limiter. Zero disables throttling (Progress
	// fires on every batch).
	ProgressEvery int
}

// GenerateTable partitions [SeedStart, SeedEnd) into 16-seed batches
// aligned to multiples of 16, runs compute_chains_x16 on each in parallel,
// and falls back to the scalar chain walk for the unaligned head/tail.
// The result is ordered ascending by start seed.
func GenerateTable(ctx context.Context, opts Options) ([]chain.Entry, error) {
	start, end := opts.SeedStart, opts.SeedEnd
	if end <= start {
		return nil, nil
	}
	total := end - start

	alignedStart := (start + batchSize - 1) / batchSize * batchSize
	alignedEnd := end / batchSize * batchSize
	if alignedStart > end {
		alignedStart = end
	}
	if alignedEnd < alignedStart {
		alignedEnd = alignedStart
	}

	out := make([]chain.Entry, total)
	writeAt := func(seed uint64, e chain.Entry) {
		out[seed-start] = e
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var limiter *rate.Limiter
	if opts.ProgressEvery > 0 && opts.Progress != nil {
		limiter = rate.NewLimiter(rate.Limit(10), 1) // ~10Hz ceiling
	}
	var done atomic.Uint64
	// reportMu serializes Progress calls so they arrive in order of done and
	// the last one reports total.
	var reportMu sync.Mutex
	report := func(n uint64) {
		if opts.Progress == nil {
			return
		}
		reportMu.Lock()
		defer reportMu.Unlock()
		d := done.Add(n)
		if limiter == nil || limiter.Allow() || d == total {
			opts.Progress(d, total)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Scalar head: seeds below the first aligned batch.
	for s := start; s < alignedStart; s++ {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := chain.Compute(uint32(s), opts.Consumption, opts.TableID, opts.ChainLength)
			writeAt(s, e)
			report(1)
			return nil
		})
	}

	// Wide middle: full 16-seed batches.
	for s := alignedStart; s < alignedEnd; s += batchSize {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var seeds [batchSize]uint32
			for j := 0; j < batchSize; j++ {
				seeds[j] = uint32(s) + uint32(j)
			}
			entries := chain.ComputeX16(seeds, opts.Consumption, opts.TableID, opts.ChainLength)
			for j, e := range entries {
				writeAt(s+uint64(j), e)
			}
			report(batchSize)
			return nil
		})
	}

	// Scalar tail: seeds at/after the last aligned batch boundary.
	for s := alignedEnd; s < end; s++ {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := chain.Compute(uint32(s), opts.Consumption, opts.TableID, opts.ChainLength)
			writeAt(s, e)
			report(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerateSubTables runs GenerateTable once per table_id in [0, numTables),
// each seeded over the same range with its own salt, and returns them in
// table_id order ready for internal/sorter and internal/rtable.
func GenerateSubTables(ctx context.Context, numTables uint32, base Options) ([][]chain.Entry, error) {
	result := make([][]chain.Entry, numTables)
	for t := uint32(0); t < numTables; t++ {
		opts := base
		opts.TableID = t
		entries, err := GenerateTable(ctx, opts)
		if err != nil {
			return nil, err
		}
		result[t] = entries
	}
	return result, nil
}
