// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build !linux && !darwin

package rtable

import (
	"io"
	"os"
	"unsafe"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
)

// platformMapping on platforms without a wired mmap syscall falls back to
// a materialized owned copy, since a true zero-copy reinterpretation isn't
// available without the platform-specific syscall.
type platformMapping struct{}

func platformMap(f *os.File, size int64) (platformMapping, []byte, error) {
	buf := make([]byte, size)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return platformMapping{}, nil, ioErr(f.Name(), err)
	}
	if _, err := io.ReadFull(f, buf); err != nil {
		return platformMapping{}, nil, ioErr(f.Name(), err)
	}
	return platformMapping{}, buf, nil
}

func (platformMapping) close() error { return nil }

func subTableView(data []byte, offset, count int64) []chain.Entry {
	if count == 0 {
		return nil
	}
	ptr := (*chain.Entry)(unsafe.Pointer(&data[offset]))
	return unsafe.Slice(ptr, count)
}
