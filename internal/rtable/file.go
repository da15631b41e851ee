// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rtable

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/config"
)

// SaveSingleTable writes the header followed by T concatenated sub-tables
// to path, each entry as (u32 start, u32 end) little-endian.
// subTables[i] must have exactly p.ChainsPerTable entries.
func SaveSingleTable(path string, consumption int32, p config.Params, subTables [][]chain.Entry, sorted bool, createdAtUnix int64) error {
	if len(subTables) != int(p.NumTables) {
		return mismatch("num_tables", p.NumTables, len(subTables))
	}
	for _, st := range subTables {
		if len(st) != int(p.ChainsPerTable) {
			return mismatch("chains_per_table", p.ChainsPerTable, len(st))
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return ioErr(path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)

	var flags uint32
	if sorted {
		flags |= FlagSorted
	}
	h := Header{
		Version:        formatVersion,
		Consumption:    consumption,
		ChainLength:    p.ChainLength,
		ChainsPerTable: p.ChainsPerTable,
		NumTables:      p.NumTables,
		Flags:          flags,
		CreatedAt:      createdAtUnix,
	}
	hdr := encodeHeader(h)
	if _, err := w.Write(hdr[:]); err != nil {
		return ioErr(path, err)
	}

	var rec [8]byte
	for _, st := range subTables {
		for _, e := range st {
			binary.LittleEndian.PutUint32(rec[0:4], e.Start)
			binary.LittleEndian.PutUint32(rec[4:8], e.End)
			if _, err := w.Write(rec[:]); err != nil {
				return ioErr(path, err)
			}
		}
	}

	if err := w.Flush(); err != nil {
		return ioErr(path, err)
	}
	return f.Sync()
}

// PeekHeader reads and validates only the 64-byte header, for callers that
// need a table's parameters (to build a matching Validation, for example)
// before committing to a full LoadSingleTable or MmapSingleTable call.
func PeekHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, ioErr(path, err)
	}
	defer f.Close()

	var hbuf [headerSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil {
		return Header{}, ioErr(path, err)
	}
	return decodeHeader(hbuf)
}

// LoadSingleTable reads the header and all sub-tables into memory via
// ordinary buffered I/O (contrast MmapSingleTable, which maps read-only).
func LoadSingleTable(path string, v Validation) (Header, [][]chain.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, ioErr(path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Header{}, nil, ioErr(path, err)
	}

	// A file shorter than the header is not an I/O failure: the zero-padded
	// buffer is decoded, so it is rejected as bad magic or, if the magic and
	// version survive, as a size mismatch.
	var hbuf [headerSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Header{}, nil, ioErr(path, err)
	}
	h, err := decodeHeader(hbuf)
	if err != nil {
		return Header{}, nil, err
	}
	if fi.Size() != h.fileSize() {
		return Header{}, nil, &Error{Kind: KindSizeMismatch}
	}
	if err := v.check(h); err != nil {
		return Header{}, nil, err
	}

	r := bufio.NewReaderSize(f, 1<<20)
	subTables := make([][]chain.Entry, h.NumTables)
	var rec [8]byte
	for i := range subTables {
		st := make([]chain.Entry, h.ChainsPerTable)
		for j := range st {
			if _, err := io.ReadFull(r, rec[:]); err != nil {
				return Header{}, nil, ioErr(path, err)
			}
			st[j] = chain.Entry{
				Start: binary.LittleEndian.Uint32(rec[0:4]),
				End:   binary.LittleEndian.Uint32(rec[4:8]),
			}
		}
		subTables[i] = st
	}
	return h, subTables, nil
}
