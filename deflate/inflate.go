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

// Package deflate implements the DEFLATE compressed data format described
// in RFC 1951.
//
// The decoder handles all three block types.  The encoder writes stored
// blocks at level 0 and a single fixed-Huffman block with LZ77 matching
// at levels 1 to 9.
//
// Neither direction is an incremental stream.  The decoder keeps the whole
// output in memory, since back references may reach any earlier byte of
// the [buffer.Buffer], and [NewReader] decodes the entire stream on the
// first Read.  At level 0 the encoder holds back at most one stored block;
// at levels 1 to 9 it buffers all input until Close.
package deflate

import (
	"fmt"
	"io"

	"seehuhn.de/go/kern/buffer"
	"seehuhn.de/go/kern/huffman"
)

// BlockInfo describes one decoded block.
type BlockInfo struct {
	Type  BlockType
	Final bool

	// InputPos is the offset of the byte holding the first header bit of
	// the block.
	InputPos int64

	// Output is the offset of the first byte of the block in the output
	// buffer, Size is the number of bytes the block produced.
	Output int
	Size   int
}

// Inflate decodes a DEFLATE stream from r and appends the decompressed
// data to dst.  Decoding stops after the final block; r is then positioned
// on the byte boundary following the compressed data.
//
// If an error occurs, dst contains all data decoded up to that point.
func Inflate(dst *buffer.Buffer, r *buffer.Reader) error {
	return InflateFunc(dst, r, nil)
}

// InflateFunc is like [Inflate], but calls onBlock after every decoded
// block.  onBlock may be nil.
func InflateFunc(dst *buffer.Buffer, r *buffer.Reader, onBlock func(BlockInfo)) error {
	saved := r.ByteOrder()
	r.SetByteOrder(buffer.LittleEndian)
	defer r.SetByteOrder(saved)

	d := &decoder{r: r, dst: dst, start: dst.Len()}
	for {
		info := BlockInfo{
			InputPos: r.BitPos() / 8,
			Output:   dst.Len(),
		}
		final, err := r.ReadBit()
		if err != nil {
			return d.fail(err)
		}
		bt, err := r.ReadBits(2)
		if err != nil {
			return d.fail(err)
		}
		info.Final = final == 1
		info.Type = BlockType(bt)

		switch info.Type {
		case Stored:
			err = d.stored()
		case FixedHuffman:
			lit, dist := fixedCodes()
			err = d.codes(lit, dist)
		case DynamicHuffman:
			var lit, dist *huffman.Tree
			lit, dist, err = d.dynamicHeader()
			if err == nil {
				err = d.codes(lit, dist)
			}
		default:
			err = ErrBlockType
		}
		if err != nil {
			return d.fail(err)
		}

		info.Size = dst.Len() - info.Output
		if onBlock != nil {
			onBlock(info)
		}
		if info.Final {
			r.PadToByte()
			return nil
		}
	}
}

type decoder struct {
	r     *buffer.Reader
	dst   *buffer.Buffer
	start int // output offset of the first byte of this stream
}

func (d *decoder) fail(err error) error {
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return &MalformedError{Pos: d.r.Pos(), Err: err}
}

func (d *decoder) stored() error {
	d.r.PadToByte()
	length, err := d.r.ReadU16()
	if err != nil {
		return err
	}
	check, err := d.r.ReadU16()
	if err != nil {
		return err
	}
	if length != ^check {
		return ErrLengthMismatch
	}
	return d.r.CopyTo(d.dst, int(length))
}

func (d *decoder) dynamicHeader() (*huffman.Tree, *huffman.Tree, error) {
	r := d.r
	x, err := r.ReadBits(14)
	if err != nil {
		return nil, nil, err
	}
	hlit := int(x&0x1f) + 257
	hdist := int(x>>5&0x1f) + 1
	hclen := int(x>>10) + 4
	if hlit > 286 || hdist > 30 {
		return nil, nil, ErrCodeLengths
	}

	var clLengths [numCodeLength]uint8
	for i := range hclen {
		l, err := r.ReadBits(3)
		if err != nil {
			return nil, nil, err
		}
		clLengths[codeLengthOrder[i]] = uint8(l)
	}
	clTree, err := huffman.New(clLengths[:])
	if err != nil {
		return nil, nil, fmt.Errorf("code length code: %w", err)
	}

	n := hlit + hdist
	lengths := make([]uint8, n)
	for i := 0; i < n; {
		sym, err := clTree.Decode(r)
		if err != nil {
			return nil, nil, err
		}
		if sym < 16 {
			lengths[i] = uint8(sym)
			i++
			continue
		}

		var repeat uint32
		var value uint8
		switch sym {
		case 16:
			if i == 0 {
				return nil, nil, ErrCodeLengths
			}
			repeat, err = r.ReadBits(2)
			repeat += 3
			value = lengths[i-1]
		case 17:
			repeat, err = r.ReadBits(3)
			repeat += 3
		default: // 18
			repeat, err = r.ReadBits(7)
			repeat += 11
		}
		if err != nil {
			return nil, nil, err
		}
		if i+int(repeat) > n {
			return nil, nil, ErrCodeLengths
		}
		for range repeat {
			lengths[i] = value
			i++
		}
	}

	if lengths[endOfBlock] == 0 {
		return nil, nil, ErrCodeLengths
	}
	lit, err := huffman.New(lengths[:hlit])
	if err != nil {
		return nil, nil, fmt.Errorf("literal/length code: %w", err)
	}
	dist, err := huffman.New(lengths[hlit:])
	if err != nil {
		return nil, nil, fmt.Errorf("distance code: %w", err)
	}
	return lit, dist, nil
}

// codes decodes the compressed data of a Huffman block, up to and
// including the end-of-block symbol.
func (d *decoder) codes(lit, dist *huffman.Tree) error {
	r := d.r
	for {
		sym, err := lit.Decode(r)
		if err != nil {
			return err
		}
		switch {
		case sym < endOfBlock:
			d.dst.WriteByte(byte(sym))
			continue
		case sym == endOfBlock:
			return nil
		}

		idx := sym - 257
		if idx >= len(lengthBase) {
			return ErrSymbol
		}
		extra, err := r.ReadBits(uint(lengthExtra[idx]))
		if err != nil {
			return err
		}
		length := int(lengthBase[idx]) + int(extra)

		dsym, err := dist.Decode(r)
		if err != nil {
			return err
		}
		if dsym >= len(distBase) {
			return ErrSymbol
		}
		extra, err = r.ReadBits(uint(distExtra[dsym]))
		if err != nil {
			return err
		}
		distance := int(distBase[dsym]) + int(extra)
		if distance > d.dst.Len()-d.start {
			return ErrDistance
		}
		if err := d.dst.CopyBack(distance, length); err != nil {
			return err
		}
	}
}

// NewReader returns a ReadCloser which decompresses the DEFLATE stream
// read from r.
//
// The whole stream is decoded on the first call to Read.  Decoded data is
// delivered before any decoding error is reported.
func NewReader(r io.Reader) io.ReadCloser {
	return &reader{in: buffer.NewReader(r)}
}

type reader struct {
	in   *buffer.Reader
	out  buffer.Buffer
	pos  int
	done bool
	err  error
}

func (r *reader) Read(p []byte) (int, error) {
	if !r.done {
		r.err = Inflate(&r.out, r.in)
		r.done = true
	}
	if r.pos < r.out.Len() {
		n := copy(p, r.out.Bytes()[r.pos:])
		r.pos += n
		return n, nil
	}
	if r.err != nil {
		return 0, r.err
	}
	return 0, io.EOF
}

// Close is a no-op.
func (r *reader) Close() error {
	return nil
}
