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

package buffer

import (
	"bufio"
	"io"
)

// Writer is a bit and byte cursor over an output stream.  It is the
// counterpart of [Reader].
//
// Writer errors are sticky: after the first failed write all further
// writes are no-ops and Flush returns the error.
type Writer struct {
	w     *bufio.Writer
	order ByteOrder
	err   error

	current   uint64 // pending bits, LSB first
	validBits uint

	count int64
}

// NewWriter returns a Writer which writes to w.
// Data is buffered until Flush is called.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// SetByteOrder changes the byte order used by the WriteUxx methods.
func (w *Writer) SetByteOrder(order ByteOrder) {
	w.order = order
}

// ByteOrder returns the current byte order.
func (w *Writer) ByteOrder() ByteOrder {
	return w.order
}

// Count returns the number of complete bytes written so far.
func (w *Writer) Count() int64 {
	return w.count
}

// Err returns the first error encountered while writing, if any.
func (w *Writer) Err() error {
	return w.err
}

// WriteBits writes the n least significant bits of x, 0 <= n <= 32,
// least significant bit first.
func (w *Writer) WriteBits(x uint32, n uint) {
	if n > 32 {
		panic("buffer: invalid bit count")
	}
	w.current |= uint64(x&uint32(1<<n-1)) << w.validBits
	w.validBits += n
	for w.validBits >= 8 {
		w.emit(byte(w.current))
		w.current >>= 8
		w.validBits -= 8
	}
}

// PadToByte fills the current byte with zero bits.
func (w *Writer) PadToByte() {
	if w.validBits > 0 {
		w.WriteBits(0, 8-w.validBits)
	}
}

func (w *Writer) emit(c byte) {
	if w.err != nil {
		return
	}
	w.err = w.w.WriteByte(c)
	if w.err == nil {
		w.count++
	}
}

// WriteU8 writes a single byte.  Any pending bits are padded first.
func (w *Writer) WriteU8(x uint8) {
	w.PadToByte()
	w.emit(x)
}

// WriteU16 writes a 16-bit integer in the current byte order.
func (w *Writer) WriteU16(x uint16) {
	w.PadToByte()
	if w.order == LittleEndian {
		w.emit(byte(x))
		w.emit(byte(x >> 8))
	} else {
		w.emit(byte(x >> 8))
		w.emit(byte(x))
	}
}

// WriteU32 writes a 32-bit integer in the current byte order.
func (w *Writer) WriteU32(x uint32) {
	w.PadToByte()
	if w.order == LittleEndian {
		w.emit(byte(x))
		w.emit(byte(x >> 8))
		w.emit(byte(x >> 16))
		w.emit(byte(x >> 24))
	} else {
		w.emit(byte(x >> 24))
		w.emit(byte(x >> 16))
		w.emit(byte(x >> 8))
		w.emit(byte(x))
	}
}

// Write implements the io.Writer interface.  Pending bits are padded
// before p is written.
func (w *Writer) Write(p []byte) (int, error) {
	w.PadToByte()
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(p)
	w.count += int64(n)
	w.err = err
	return n, err
}

// Flush pads the last byte and writes all buffered data to the underlying
// writer.
func (w *Writer) Flush() error {
	w.PadToByte()
	if w.err != nil {
		return w.err
	}
	w.err = w.w.Flush()
	return w.err
}
