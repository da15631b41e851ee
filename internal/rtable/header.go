// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

// Package rtable is the on-disk table format: the 64-byte self-describing
// header, the concatenated sorted sub-tables, save/load
// through normal buffered I/O, the read-only mmap view, and the sibling
// missing-seeds file.
package rtable

import (
	"encoding/binary"

	"github.com/niart120/gen7-initseed-supporter/internal/config"
)

const (
	headerSize = 64

	tableMagic   = "G7RBOW\x00\x00"
	missingMagic = "G7MISS\x00\x00"

	formatVersion = uint16(1)

	// FlagSorted is bit 0 of the header's flags field.
	FlagSorted uint32 = 1 << 0
)

// Header is the parsed 64-byte table header.
type Header struct {
	Version        uint16
	Consumption    int32
	ChainLength    uint32
	ChainsPerTable uint32
	NumTables      uint32
	Flags          uint32
	CreatedAt      int64
}

// Sorted reports whether the sorted flag is set.
func (h Header) Sorted() bool { return h.Flags&FlagSorted != 0 }

// Params extracts the table-shape parameters from the header.
func (h Header) Params() config.Params {
	return config.Params{ChainLength: h.ChainLength, ChainsPerTable: h.ChainsPerTable, NumTables: h.NumTables}
}

// dataSize is the number of sub-table payload bytes implied by the header.
func (h Header) dataSize() int64 {
	return int64(h.NumTables) * int64(h.ChainsPerTable) * int64(config.ChainEntrySize)
}

// fileSize is header_size + T*m*8.
func (h Header) fileSize() int64 {
	return headerSize + h.dataSize()
}

func encodeHeader(h Header) [headerSize]byte {
	var buf [headerSize]byte
	copy(buf[0:8], tableMagic)
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	// buf[10:12] reserved, left zero
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Consumption))
	binary.LittleEndian.PutUint32(buf[16:20], h.ChainLength)
	binary.LittleEndian.PutUint32(buf[20:24], h.ChainsPerTable)
	binary.LittleEndian.PutUint32(buf[24:28], h.NumTables)
	binary.LittleEndian.PutUint32(buf[28:32], h.Flags)
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.CreatedAt))
	// buf[40:64] reserved, left zero
	return buf
}

func decodeHeader(buf [headerSize]byte) (Header, error) {
	if string(buf[0:8]) != tableMagic {
		return Header{}, &Error{Kind: KindInvalidMagic}
	}
	version := binary.LittleEndian.Uint16(buf[8:10])
	if version != formatVersion {
		return Header{}, &Error{Kind: KindUnsupportedVersion}
	}
	return Header{
		Version:        version,
		Consumption:    int32(binary.LittleEndian.Uint32(buf[12:16])),
		ChainLength:    binary.LittleEndian.Uint32(buf[16:20]),
		ChainsPerTable: binary.LittleEndian.Uint32(buf[20:24]),
		NumTables:      binary.LittleEndian.Uint32(buf[24:28]),
		Flags:          binary.LittleEndian.Uint32(buf[28:32]),
		CreatedAt:      int64(binary.LittleEndian.Uint64(buf[32:40])),
	}, nil
}

// Validation selects which header checks load/mmap enforce beyond magic,
// version, and size (which are always checked). The searcher uses the
// strict default; a diagnostic or coverage-only reader that doesn't care
// whether the file happens to be sorted can relax RequireSorted.
type Validation struct {
	RequireSorted bool
	RequireParams bool
	Consumption   int32
	Params        config.Params
}

// SearchValidation is the strict validation the searcher requires: sorted
// flag set, and consumption/params matching the caller's expectation.
func SearchValidation(consumption int32, params config.Params) Validation {
	return Validation{RequireSorted: true, RequireParams: true, Consumption: consumption, Params: params}
}

// RelaxedValidation checks consumption/params but not sortedness — used by
// the coverage analyser and inspection tools that walk every chain
// regardless of sub-table ordering.
func RelaxedValidation(consumption int32, params config.Params) Validation {
	return Validation{RequireSorted: false, RequireParams: true, Consumption: consumption, Params: params}
}

func (v Validation) check(h Header) error {
	if v.RequireSorted && !h.Sorted() {
		return &Error{Kind: KindNotSorted}
	}
	if v.RequireParams {
		if h.Consumption != v.Consumption {
			return mismatch("consumption", v.Consumption, h.Consumption)
		}
		if h.ChainLength != v.Params.ChainLength {
			return mismatch("chain_length", v.Params.ChainLength, h.ChainLength)
		}
		if h.ChainsPerTable != v.Params.ChainsPerTable {
			return mismatch("chains_per_table", v.Params.ChainsPerTable, h.ChainsPerTable)
		}
		if h.NumTables != v.Params.NumTables {
			return mismatch("num_tables", v.Params.NumTables, h.NumTables)
		}
	}
	return nil
}

// HeaderSummary is a read-only snapshot of a loaded header, for CLI/
// diagnostic collaborators that want to print it without touching the
// mmap internals.
type HeaderSummary struct {
	Version        uint16
	Consumption    int32
	ChainLength    uint32
	ChainsPerTable uint32
	NumTables      uint32
	Sorted         bool
	CreatedAtUnix  int64
}

func (h Header) Summary() HeaderSummary {
	return HeaderSummary{
		Version:        h.Version,
		Consumption:    h.Consumption,
		ChainLength:    h.ChainLength,
		ChainsPerTable: h.ChainsPerTable,
		NumTables:      h.NumTables,
		Sorted:         h.Sorted(),
		CreatedAtUnix:  h.CreatedAt,
	}
}
