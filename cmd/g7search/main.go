// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command g7search inverts an observed needle vector against a built,
// sorted rainbow table and prints every initial seed it recovers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	_ "github.com/niart120/gen7-initseed-supporter/lib/automaxprocs"

	"github.com/niart120/gen7-initseed-supporter/internal/config"
	_ "github.com/niart120/gen7-initseed-supporter/internal/logutil"
	"github.com/niart120/gen7-initseed-supporter/internal/rtable"
	"github.com/niart120/gen7-initseed-supporter/internal/searcher"
	"github.com/niart120/gen7-initseed-supporter/internal/seedhash"
)

type cli struct {
	Table   string   `arg:"" help:"Path to a sorted .g7rt table file."`
	Needles []uint64 `arg:"" help:"Eight needle digits, each in [0, 16], in observation order."`
	Workers int      `help:"Worker count, 0 = all available cores."`
}

func (c *cli) Run() error {
	if len(c.Needles) != config.NeedleCount {
		return fmt.Errorf("expected %d needle digits, got %d", config.NeedleCount, len(c.Needles))
	}
	var needles [config.NeedleCount]uint64
	copy(needles[:], c.Needles)
	targetHash := seedhash.GenHash(needles)

	h, err := rtable.PeekHeader(c.Table)
	if err != nil {
		return fmt.Errorf("peek header: %w", err)
	}
	view, err := rtable.MmapSingleTable(c.Table, rtable.SearchValidation(h.Consumption, h.Params()))
	if err != nil {
		return fmt.Errorf("mmap table: %w", err)
	}
	defer view.Close()

	start := time.Now()
	seeds, err := searcher.Search(context.Background(), view, targetHash, searcher.Options{Workers: c.Workers})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	slog.Info("search complete", "candidates", len(seeds), "elapsed", time.Since(start))

	for _, m := range seeds {
		fmt.Printf("table=%d seed=%d\n", m.TableID, m.Seed)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("no seed recovered for the given needles")
	}
	return nil
}

func main() {
	var c cli
	kctx := kong.Parse(&c, kong.Name("g7search"), kong.Description("Recover an initial seed from an observed needle vector."))
	if err := kctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
