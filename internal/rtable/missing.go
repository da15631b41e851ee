// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rtable

import (
	"bufio"
	"encoding/binary"
	"hash/fnv"
	"io"
	"os"
)

// MissingHeader is the 64-byte header of the sibling .g7ms file: the same
// shape parameters as its source table, the count of unreachable seeds,
// and a checksum binding it to one specific table header instance.
type MissingHeader struct {
	Version        uint16
	Consumption    int32
	ChainLength    uint32
	ChainsPerTable uint32
	NumTables      uint32
	MissingCount   uint64
	Checksum       uint64
}

// SourceChecksum computes the FNV-1a-style back-reference checksum over a
// source table header's (consumption, chain_length, chains_per_table,
// num_tables, created_at), used both when writing a missing-seeds file and
// when validating one against its source table on load.
func SourceChecksum(h Header) uint64 {
	var buf [24]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.Consumption))
	binary.LittleEndian.PutUint32(buf[4:8], h.ChainLength)
	binary.LittleEndian.PutUint32(buf[8:12], h.ChainsPerTable)
	binary.LittleEndian.PutUint32(buf[12:16], h.NumTables)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.CreatedAt))

	sum := fnv.New64a()
	sum.Write(buf[:])
	return sum.Sum64()
}

func encodeMissingHeader(h MissingHeader) [headerSize]byte {
	var buf [headerSize]byte
	copy(buf[0:8], missingMagic)
	binary.LittleEndian.PutUint16(buf[8:10], h.Version)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(h.Consumption))
	binary.LittleEndian.PutUint32(buf[16:20], h.ChainLength)
	binary.LittleEndian.PutUint32(buf[20:24], h.ChainsPerTable)
	binary.LittleEndian.PutUint32(buf[24:28], h.NumTables)
	binary.LittleEndian.PutUint64(buf[32:40], h.MissingCount)
	binary.LittleEndian.PutUint64(buf[40:48], h.Checksum)
	return buf
}

func decodeMissingHeader(buf [headerSize]byte) (MissingHeader, error) {
	if string(buf[0:8]) != missingMagic {
		return MissingHeader{}, &Error{Kind: KindInvalidMagic}
	}
	version := binary.LittleEndian.Uint16(buf[8:10])
	if version != formatVersion {
		return MissingHeader{}, &Error{Kind: KindUnsupportedVersion}
	}
	return MissingHeader{
		Version:        version,
		Consumption:    int32(binary.LittleEndian.Uint32(buf[12:16])),
		ChainLength:    binary.LittleEndian.Uint32(buf[16:20]),
		ChainsPerTable: binary.LittleEndian.Uint32(buf[20:24]),
		NumTables:      binary.LittleEndian.Uint32(buf[24:28]),
		MissingCount:   binary.LittleEndian.Uint64(buf[32:40]),
		Checksum:       binary.LittleEndian.Uint64(buf[40:48]),
	}, nil
}

// SaveMissingSeeds writes the sibling file for sourceHeader: its own
// 64-byte header plus the ascending list of unreachable seeds as
// little-endian uint32s.
func SaveMissingSeeds(path string, sourceHeader Header, seeds []uint32) error {
	f, err := os.Create(path)
	if err != nil {
		return ioErr(path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 1<<20)
	mh := MissingHeader{
		Version:        formatVersion,
		Consumption:    sourceHeader.Consumption,
		ChainLength:    sourceHeader.ChainLength,
		ChainsPerTable: sourceHeader.ChainsPerTable,
		NumTables:      sourceHeader.NumTables,
		MissingCount:   uint64(len(seeds)),
		Checksum:       SourceChecksum(sourceHeader),
	}
	hdr := encodeMissingHeader(mh)
	if _, err := w.Write(hdr[:]); err != nil {
		return ioErr(path, err)
	}

	var rec [4]byte
	for _, s := range seeds {
		binary.LittleEndian.PutUint32(rec[:], s)
		if _, err := w.Write(rec[:]); err != nil {
			return ioErr(path, err)
		}
	}
	if err := w.Flush(); err != nil {
		return ioErr(path, err)
	}
	return f.Sync()
}

// LoadMissingSeeds reads a sibling file and verifies its checksum against
// sourceHeader; a mismatch means the file does not back-reference this
// exact table instance (KindChecksumMismatch).
func LoadMissingSeeds(path string, sourceHeader Header) (MissingHeader, []uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return MissingHeader{}, nil, ioErr(path, err)
	}
	defer f.Close()

	var hbuf [headerSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil {
		return MissingHeader{}, nil, ioErr(path, err)
	}
	mh, err := decodeMissingHeader(hbuf)
	if err != nil {
		return MissingHeader{}, nil, err
	}
	if mh.Checksum != SourceChecksum(sourceHeader) {
		return MissingHeader{}, nil, &Error{Kind: KindChecksumMismatch}
	}

	r := bufio.NewReaderSize(f, 1<<20)
	seeds := make([]uint32, mh.MissingCount)
	var rec [4]byte
	for i := range seeds {
		if _, err := io.ReadFull(r, rec[:]); err != nil {
			return MissingHeader{}, nil, ioErr(path, err)
		}
		seeds[i] = binary.LittleEndian.Uint32(rec[:])
	}
	return mh, seeds, nil
}
