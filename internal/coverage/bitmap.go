// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package coverage tracks which seeds in the 2^32 seed space a table
// actually reaches, so a build can quantify and, if needed, persist the
// seeds it missed.
package coverage

import (
	"context"
	"math/bits"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/sfmt"
)

// FullSeedSpaceBits is the size of the production coverage bitmap: one bit
// per possible uint32 seed.
const FullSeedSpaceBits uint64 = 1 << 32

// Bitmap is a concurrent-safe bit set, one bit per seed, marked via
// lock-free fetch-or so many workers can mark chains at once without
// contending on a mutex. A full FullSeedSpaceBits bitmap is 512 MiB;
// tests use a smaller size to keep fixtures cheap.
type Bitmap struct {
	words []uint32
	bits  uint64
}

// New allocates a bitmap covering [0, bits) seeds.
func New(bitCount uint64) *Bitmap {
	words := (bitCount + 31) / 32
	return &Bitmap{words: make([]uint32, words), bits: bitCount}
}

// NewFullSeedSpace allocates a production-sized bitmap over every uint32
// seed.
func NewFullSeedSpace() *Bitmap { return New(FullSeedSpaceBits) }

// Mark sets seed's bit via an atomic compare-and-swap retry loop (the
// stdlib's atomic.Uint32 gained an Or method only in Go 1.23; the loop
// below is the portable equivalent and reads identically under contention
// since a losing CAS just re-reads and retries).
func (b *Bitmap) Mark(seed uint32) {
	idx := seed / 32
	bit := uint32(1) << (seed % 32)
	for {
		old := atomic.LoadUint32(&b.words[idx])
		if old&bit != 0 {
			return
		}
		if atomic.CompareAndSwapUint32(&b.words[idx], old, old|bit) {
			return
		}
	}
}

// IsMarked reports whether seed has been marked reachable.
func (b *Bitmap) IsMarked(seed uint32) bool {
	idx := seed / 32
	bit := uint32(1) << (seed % 32)
	return atomic.LoadUint32(&b.words[idx])&bit != 0
}

// MarkSubTable marks every seed visited by every chain whose start seed is
// in starts: each
// chain's start, its internal walk, and its end, using 16-wide batches
// (chain.EnumerateSeedsX16) with a scalar fallback for a non-16-aligned
// tail, the same alignment strategy internal/builder uses.
func MarkSubTable(ctx context.Context, b *Bitmap, starts []uint32, consumption int32, tableID uint32, chainLen int, workers int) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	aligned := len(starts) / sfmt.LaneWidth * sfmt.LaneWidth
	for i := 0; i < aligned; i += sfmt.LaneWidth {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var batch [sfmt.LaneWidth]uint32
			copy(batch[:], starts[i:i+sfmt.LaneWidth])
			chain.EnumerateSeedsX16(batch, consumption, tableID, chainLen, func(seeds [sfmt.LaneWidth]uint32) {
				for _, s := range seeds {
					b.Mark(s)
				}
			})
			return nil
		})
	}
	for i := aligned; i < len(starts); i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			chain.EnumerateSeeds(starts[i], consumption, tableID, chainLen, b.Mark)
			return nil
		})
	}
	return g.Wait()
}

// Stats summarizes how much of the tracked seed space is reachable.
type Stats struct {
	Reachable uint64
	Total     uint64
	Fraction  float64
}

// Measure counts set bits in parallel across word chunks and returns the
// reachable fraction of the bitmap's tracked seed space.
func Measure(ctx context.Context, b *Bitmap, workers int) (Stats, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(b.words) {
		workers = len(b.words)
	}
	if workers < 1 {
		workers = 1
	}

	counts := make([]uint64, workers)
	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(b.words) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(b.words) {
			hi = len(b.words)
		}
		if lo >= hi {
			continue
		}
		w, lo, hi := w, lo, hi
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var sum uint64
			for i := lo; i < hi; i++ {
				sum += uint64(bits.OnesCount32(atomic.LoadUint32(&b.words[i])))
			}
			counts[w] = sum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var reachable uint64
	for _, c := range counts {
		reachable += c
	}
	return Stats{
		Reachable: reachable,
		Total:     b.bits,
		Fraction:  float64(reachable) / float64(b.bits),
	}, nil
}

// Sweep calls onUnreachable once per unmarked seed in ascending order,
// stopping immediately if it returns an error. Over a full
// FullSeedSpaceBits bitmap this visits up to 2^32 seeds; callers writing
// a missing-seeds file should expect this to dominate build time whenever
// coverage is imperfect.
func Sweep(b *Bitmap, onUnreachable func(seed uint32) error) error {
	for idx, word := range b.words {
		if word == 0xffffffff {
			continue
		}
		base := uint64(idx) * 32
		for bit := uint32(0); bit < 32; bit++ {
			seed := base + uint64(bit)
			if seed >= b.bits {
				return nil
			}
			if word&(1<<bit) != 0 {
				continue
			}
			if err := onUnreachable(uint32(seed)); err != nil {
				return err
			}
		}
	}
	return nil
}
