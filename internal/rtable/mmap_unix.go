// Copyright (C) 2026 The gen7-initseed-supporter Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

//go:build linux || darwin

package rtable

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/niart120/gen7-initseed-supporter/internal/chain"
)

// platformMapping is a read-only mmap of the whole file, kept alive only
// so close can unmap it.
type platformMapping struct {
	data []byte
}

func platformMap(f *os.File, size int64) (platformMapping, []byte, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return platformMapping{}, nil, ioErr(f.Name(), err)
	}
	return platformMapping{data: data}, data, nil
}

func (m platformMapping) close() error {
	if m.data == nil {
		return nil
	}
	return unix.Munmap(m.data)
}

// subTableView zero-copy reinterprets an 8-byte-per-record region of the
// mapped file as a slice of Entry: valid on little-endian hosts, which
// linux/amd64 and darwin/arm64 both are.
func subTableView(data []byte, offset, count int64) []chain.Entry {
	if count == 0 {
		return nil
	}
	ptr := (*chain.Entry)(unsafe.Pointer(&data[offset]))
	return unsafe.Slice(ptr, count)
}
