// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Command g7tablegen builds, sorts, and persists rainbow tables, and can
// sweep a built table's coverage and write its sibling missing-seeds file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	_ "github.com/niart120/gen7-initseed-supporter/lib/automaxprocs"

	"github.com/niart120/gen7-initseed-supporter/internal/builder"
	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/config"
	"github.com/niart120/gen7-initseed-supporter/internal/coverage"
	_ "github.com/niart120/gen7-initseed-supporter/internal/logutil"
	"github.com/niart120/gen7-initseed-supporter/internal/rtable"
	"github.com/niart120/gen7-initseed-supporter/internal/sorter"
)

type cli struct {
	Build    buildCmd    `cmd:"" help:"Generate, sort, and save a rainbow table for one consumption value."`
	Coverage coverageCmd `cmd:"" help:"Sweep a built table's reachable seeds and write its missing-seeds file."`
	Info     infoCmd     `cmd:"" help:"Print a table file's header without loading its sub-tables."`
}

type infoCmd struct {
	Table string `arg:"" help:"Path to a .g7rt table file."`
}

func (c *infoCmd) Run() error {
	h, err := rtable.PeekHeader(c.Table)
	if err != nil {
		return fmt.Errorf("peek header: %w", err)
	}
	s := h.Summary()
	fmt.Printf("version:          %d\n", s.Version)
	fmt.Printf("consumption:      %d\n", s.Consumption)
	fmt.Printf("chain_length:     %d\n", s.ChainLength)
	fmt.Printf("chains_per_table: %d\n", s.ChainsPerTable)
	fmt.Printf("num_tables:       %d\n", s.NumTables)
	fmt.Printf("sorted:           %t\n", s.Sorted)
	fmt.Printf("created_at:       %s\n", time.Unix(s.CreatedAtUnix, 0).UTC().Format(time.RFC3339))
	return nil
}

type buildCmd struct {
	Consumption    int32  `arg:"" help:"Needle skip count this table is pinned to."`
	OutDir         string `help:"Directory the table file is written into." default:"."`
	ChainLength    uint32 `help:"Chain length (t)." default:"4096"`
	ChainsPerTable uint32 `help:"Chains per sub-table (m)." default:"1048576"`
	NumTables      uint32 `help:"Number of sub-tables (T)." default:"16"`
	Dedup          bool   `help:"Drop chains that collide on end fingerprint after sorting."`
	Workers        int    `help:"Worker count, 0 = all available cores."`
}

func (c *buildCmd) Run() error {
	p := config.Params{ChainLength: c.ChainLength, ChainsPerTable: c.ChainsPerTable, NumTables: c.NumTables}
	if err := p.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()
	runID := uuid.New().String()
	log := slog.With("run_id", runID)
	log.Info("building table", "consumption", c.Consumption, "chain_length", p.ChainLength, "chains_per_table", p.ChainsPerTable, "num_tables", p.NumTables)

	base := builder.Options{
		SeedEnd:       uint64(p.ChainsPerTable),
		Consumption:   c.Consumption,
		ChainLength:   int(p.ChainLength),
		Workers:       c.Workers,
		ProgressEvery: 1,
		Progress: func(done, total uint64) {
			log.Debug("build progress", "done", done, "total", total)
		},
	}
	raw, err := builder.GenerateSubTables(ctx, p.NumTables, base)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	sorted := make([][]chain.Entry, len(raw))
	for i, subTable := range raw {
		s, err := sorter.SortSubTable(ctx, subTable, sorter.Options{Consumption: c.Consumption, Workers: c.Workers, Dedup: c.Dedup})
		if err != nil {
			return fmt.Errorf("sort sub-table %d: %w", i, err)
		}
		sorted[i] = s
	}

	path := filepath.Join(c.OutDir, fmt.Sprintf("%d.g7rt", c.Consumption))
	if err := rtable.SaveSingleTable(path, c.Consumption, p, sorted, true, time.Now().Unix()); err != nil {
		return fmt.Errorf("save: %w", err)
	}

	log.Info("table built", "path", path, "elapsed", time.Since(start))
	return nil
}

type coverageCmd struct {
	Table      string `arg:"" help:"Path to a .g7rt table file."`
	MissingOut string `help:"Path to write the sibling missing-seeds file; defaults alongside the table with a .g7ms extension."`
	Workers    int    `help:"Worker count, 0 = all available cores."`
}

func (c *coverageCmd) Run() error {
	ctx := context.Background()
	log := slog.With("run_id", uuid.New().String())

	h, err := rtable.PeekHeader(c.Table)
	if err != nil {
		return fmt.Errorf("peek header: %w", err)
	}
	_, subTables, err := rtable.LoadSingleTable(c.Table, rtable.RelaxedValidation(h.Consumption, h.Params()))
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	bitmap := coverage.NewFullSeedSpace()
	for tableID, subTable := range subTables {
		starts := make([]uint32, len(subTable))
		for i, e := range subTable {
			starts[i] = e.Start
		}
		log.Info("marking coverage", "table_id", tableID, "chains", len(starts))
		if err := coverage.MarkSubTable(ctx, bitmap, starts, h.Consumption, uint32(tableID), int(h.ChainLength), c.Workers); err != nil {
			return fmt.Errorf("mark sub-table %d: %w", tableID, err)
		}
	}

	stats, err := coverage.Measure(ctx, bitmap, c.Workers)
	if err != nil {
		return fmt.Errorf("measure: %w", err)
	}
	log.Info("coverage measured", "reachable", stats.Reachable, "total", stats.Total, "fraction", stats.Fraction)

	missingPath := c.MissingOut
	if missingPath == "" {
		ext := filepath.Ext(c.Table)
		missingPath = c.Table[:len(c.Table)-len(ext)] + ".g7ms"
	}
	if err := coverage.WriteMissingSeeds(missingPath, h, bitmap); err != nil {
		return fmt.Errorf("write missing seeds: %w", err)
	}
	log.Info("missing seeds written", "path", missingPath)
	return nil
}

func main() {
	var c cli
	ctx := kong.Parse(&c, kong.Name("g7tablegen"), kong.Description("Rainbow table builder for SFMT-19937 seed inversion."))
	if err := ctx.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
