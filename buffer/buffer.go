// seehuhn.de/go/kern - generic trees and zlib streams
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package buffer provides the byte and bit level plumbing used by the
// DEFLATE and zlib codecs.
//
// A [Buffer] is a growable, byte-addressable output area which supports
// LZ77 style back-reference copies and Adler-32 checksums over arbitrary
// sub-ranges.  A [Reader] is a cursor which reads bits (least significant
// bit first, as in RFC 1951) and multi-byte integers in a selectable byte
// order from an underlying stream.  A [Writer] is the corresponding output
// cursor.
//
// Input is materialized lazily: a Reader only pulls bytes from the
// underlying io.Reader when a read actually needs them.
package buffer

import (
	"errors"
	"hash/adler32"
)

// Buffer is a growable byte buffer.  The zero value is an empty buffer
// ready to use.
type Buffer struct {
	data []byte
}

// New returns a Buffer with the given initial capacity.
func New(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// FromBytes returns a Buffer holding the given data.
// The buffer takes ownership of the slice.
func FromBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Bytes returns the contents of the buffer.  The slice is only valid until
// the next modification of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Reset discards the contents of the buffer but keeps the allocated
// storage.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// Write appends p to the buffer.  It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteByte appends a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	b.data = append(b.data, c)
	return nil
}

// Range returns the bytes in the half-open interval [start, end).
func (b *Buffer) Range(start, end int) ([]byte, error) {
	if start < 0 || end < start || end > len(b.data) {
		return nil, ErrRange
	}
	return b.data[start:end], nil
}

// Adler32 returns the Adler-32 checksum of the bytes in [start, end).
func (b *Buffer) Adler32(start, end int) (uint32, error) {
	p, err := b.Range(start, end)
	if err != nil {
		return 0, err
	}
	return adler32.Checksum(p), nil
}

// CopyBack appends length bytes which are copied from distance bytes
// before the current end of the buffer.  Source and destination may
// overlap; the result is the same as copying byte by byte, so that for
// example distance 1 replicates the last byte length times.
func (b *Buffer) CopyBack(distance, length int) error {
	if distance <= 0 || distance > len(b.data) {
		return ErrDistance
	}
	if length < 0 {
		return ErrRange
	}

	start := len(b.data) - distance
	for length > 0 {
		// Every pass copies at most distance bytes, so that the source
		// is fully written before it is read.
		n := min(length, distance)
		b.data = append(b.data, b.data[start:start+n]...)
		start += n
		length -= n
	}
	return nil
}

var (
	// ErrRange indicates an out-of-range position or length.
	ErrRange = errors.New("buffer: range out of bounds")

	// ErrDistance indicates a back-reference before the start of the buffer.
	ErrDistance = errors.New("buffer: back-reference distance out of range")

	// ErrUnaligned indicates a byte level read or write while the bit
	// cursor is not on a byte boundary.
	ErrUnaligned = errors.New("buffer: cursor not byte aligned")
)
