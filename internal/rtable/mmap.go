// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package rtable

import (
	"io"
	"os"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
	"github.com/niart120/gen7-initseed-supporter/internal/config"
)

// View is a read-only, shared mapping of a table file:
// the reader parses the header through normal buffered reads, then maps
// the whole file, header included, read-only. Its lifetime must exceed every searcher
// task that holds a SubTable slice from it; nothing ever mutates a View.
type View struct {
	Header  Header
	mapping platformMapping
	data    []byte
}

// MmapSingleTable validates the header then maps the file read-only.
func MmapSingleTable(path string, v Validation) (*View, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioErr(path, err)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, ioErr(path, err)
	}

	var hbuf [headerSize]byte
	if _, err := io.ReadFull(f, hbuf[:]); err != nil {
		return nil, ioErr(path, err)
	}
	h, err := decodeHeader(hbuf)
	if err != nil {
		return nil, err
	}
	if fi.Size() != h.fileSize() {
		return nil, &Error{Kind: KindSizeMismatch}
	}
	if err := v.check(h); err != nil {
		return nil, err
	}

	mapping, data, err := platformMap(f, fi.Size())
	if err != nil {
		return nil, err
	}
	return &View{Header: h, mapping: mapping, data: data}, nil
}

// Close unmaps the file. Callers must not retain any SubTable slice past
// Close.
func (v *View) Close() error {
	return v.mapping.close()
}

// SubTable returns a read-only, zero-copy view of sub-table i's m entries,
// sorted ascending by end fingerprint when Header.Sorted().
func (v *View) SubTable(i int) []chain.Entry {
	count := int64(v.Header.ChainsPerTable)
	offset := int64(headerSize) + int64(i)*count*int64(config.ChainEntrySize)
	return subTableView(v.data, offset, count)
}
