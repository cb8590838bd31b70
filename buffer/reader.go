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

// ByteOrder selects how multi-byte integers are laid out.
type ByteOrder uint8

// These are the supported byte orders.
const (
	BigEndian ByteOrder = iota
	LittleEndian
)

func (o ByteOrder) String() string {
	if o == LittleEndian {
		return "little endian"
	}
	return "big endian"
}

// Reader is a bit and byte cursor over an input stream.
//
// Bits are delivered least significant bit first within each byte, which
// is the packing used by RFC 1951.  Multi-byte integers are read in the
// byte order set by SetByteOrder; the default is big endian.
type Reader struct {
	r     io.ByteReader
	order ByteOrder

	current   uint64 // unread bits, LSB first
	validBits uint   // number of valid bits in current

	pos int64 // number of bytes taken from r
}

// NewReader returns a Reader which reads from r.  If r does not implement
// io.ByteReader, it is wrapped in a bufio.Reader.
func NewReader(r io.Reader) *Reader {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Reader{r: br}
}

// BitPos returns the number of bits consumed so far.
func (r *Reader) BitPos() int64 {
	return r.pos*8 - int64(r.validBits)
}

// SetByteOrder changes the byte order used by the ReadUxx methods.
func (r *Reader) SetByteOrder(order ByteOrder) {
	r.order = order
}

// ByteOrder returns the current byte order.
func (r *Reader) ByteOrder() ByteOrder {
	return r.order
}

// Pos returns the number of bytes consumed from the underlying stream.
// Partially consumed bytes are counted as consumed.
func (r *Reader) Pos() int64 {
	return r.pos
}

func (r *Reader) fill(n uint) error {
	for r.validBits < n {
		c, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		r.pos++
		r.current |= uint64(c) << r.validBits
		r.validBits += 8
	}
	return nil
}

// ReadBit reads a single bit.
func (r *Reader) ReadBit() (uint32, error) {
	return r.ReadBits(1)
}

// ReadBits reads n bits, 0 <= n <= 32.  The first bit read ends up in the
// least significant position of the result.
func (r *Reader) ReadBits(n uint) (uint32, error) {
	if n > 32 {
		panic("buffer: invalid bit count")
	}
	if err := r.fill(n); err != nil {
		return 0, err
	}
	res := uint32(r.current & (1<<n - 1))
	r.current >>= n
	r.validBits -= n
	return res, nil
}

// PadToByte discards the bits remaining in the current byte, so that the
// next read starts on a byte boundary.
func (r *Reader) PadToByte() {
	drop := r.validBits % 8
	r.current >>= drop
	r.validBits -= drop
}

// ReadU8 reads a single byte.  The cursor must be byte aligned.
func (r *Reader) ReadU8() (uint8, error) {
	if r.validBits%8 != 0 {
		return 0, ErrUnaligned
	}
	x, err := r.ReadBits(8)
	return uint8(x), err
}

// ReadU16 reads a 16-bit integer in the current byte order.
func (r *Reader) ReadU16() (uint16, error) {
	var buf [2]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	if r.order == LittleEndian {
		return uint16(buf[0]) | uint16(buf[1])<<8, nil
	}
	return uint16(buf[0])<<8 | uint16(buf[1]), nil
}

// ReadU32 reads a 32-bit integer in the current byte order.
func (r *Reader) ReadU32() (uint32, error) {
	var buf [4]byte
	if err := r.ReadFull(buf[:]); err != nil {
		return 0, err
	}
	if r.order == LittleEndian {
		return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), nil
}

// ReadFull fills p with the next len(p) bytes.  The cursor must be byte
// aligned.
func (r *Reader) ReadFull(p []byte) error {
	if r.validBits%8 != 0 {
		return ErrUnaligned
	}
	for i := range p {
		if r.validBits > 0 {
			p[i] = byte(r.current)
			r.current >>= 8
			r.validBits -= 8
			continue
		}
		c, err := r.r.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		}
		r.pos++
		p[i] = c
	}
	return nil
}

// CopyTo copies n bytes from the input to w.  The cursor must be byte
// aligned.
func (r *Reader) CopyTo(w io.ByteWriter, n int) error {
	var buf [1]byte
	for range n {
		if err := r.ReadFull(buf[:]); err != nil {
			return err
		}
		if err := w.WriteByte(buf[0]); err != nil {
			return err
		}
	}
	return nil
}

// AtEOF reports whether the input is exhausted.  Buffered bits which have
// not been read yet count as available input.
func (r *Reader) AtEOF() bool {
	if r.validBits >= 8 {
		return false
	}
	err := r.fill(r.validBits + 8)
	return err != nil
}
