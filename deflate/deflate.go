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

package deflate

import (
	"errors"
	"io"

	"seehuhn.de/go/kern/buffer"
)

// Compression levels.  NoCompression writes stored blocks only; all other
// levels write one fixed-Huffman block and differ in how hard the encoder
// searches for matches.
const (
	NoCompression   = 0
	BestSpeed       = 1
	BestCompression = 9
	DefaultLevel    = NoCompression
)

// chainLength is the maximal number of hash chain entries inspected per
// position, by level.
var chainLength = [10]int{0, 4, 8, 16, 32, 64, 128, 256, 1024, 4096}

// Writer compresses data into DEFLATE format.
type Writer struct {
	w     *buffer.Writer
	owned bool
	level int

	pending []byte
	closed  bool
}

// NewWriter returns a Writer which writes compressed data to w at the given
// level.  The Writer must be closed to complete the stream.  Above level 0
// nothing is written before Close.
func NewWriter(w io.Writer, level int) (*Writer, error) {
	bw := buffer.NewWriter(w)
	bw.SetByteOrder(buffer.LittleEndian)
	dw, err := NewBitWriter(bw, level)
	if err != nil {
		return nil, err
	}
	dw.owned = true
	return dw, nil
}

// NewBitWriter returns a Writer which appends the compressed data to an
// existing bit stream.  The caller must switch bw to little endian byte
// order before writing, as required by RFC 1951.  Close does not flush bw.
func NewBitWriter(bw *buffer.Writer, level int) (*Writer, error) {
	if level < NoCompression || level > BestCompression {
		return nil, ErrLevel
	}
	return &Writer{w: bw, level: level}, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, ErrClosed
	}
	if w.level != NoCompression {
		w.pending = append(w.pending, p...)
		return len(p), w.w.Err()
	}

	// At most one block stays pending, so that Close can mark it as final.
	n := len(p)
	if len(w.pending)+len(p) <= MaxStoredBlock {
		w.pending = append(w.pending, p...)
		return n, w.w.Err()
	}
	if len(w.pending) > 0 {
		k := MaxStoredBlock - len(w.pending)
		w.pending = append(w.pending, p[:k]...)
		p = p[k:]
		w.writeStored(w.pending, false)
		w.pending = w.pending[:0]
	}
	for len(p) > MaxStoredBlock {
		w.writeStored(p[:MaxStoredBlock], false)
		p = p[MaxStoredBlock:]
	}
	w.pending = append(w.pending, p...)
	return n, w.w.Err()
}

// Close writes the final block.  If the Writer was created by NewWriter,
// all data is flushed to the underlying writer.  Close does not close the
// underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if w.level == NoCompression {
		w.writeStored(w.pending, true)
	} else {
		w.writeFixed(w.pending)
	}
	w.pending = nil

	if w.owned {
		return w.w.Flush()
	}
	return w.w.Err()
}

func (w *Writer) writeStored(data []byte, final bool) {
	bw := w.w
	bw.WriteBits(boolBit(final), 1)
	bw.WriteBits(uint32(Stored), 2)
	bw.PadToByte()
	n := uint16(len(data))
	bw.WriteU16(n)
	bw.WriteU16(^n)
	bw.Write(data)
}

func (w *Writer) writeFixed(data []byte) {
	lit, dist := fixedCodes()
	litCodes := lit.Codes()
	distCodes := dist.Codes()
	bw := w.w

	bw.WriteBits(1, 1)
	bw.WriteBits(uint32(FixedHuffman), 2)

	m := newMatcher(data, chainLength[w.level])
	for i := 0; i < len(data); {
		length, distance := m.find(i)
		if length < minMatch {
			c := litCodes[data[i]]
			bw.WriteBits(c.Reversed(), uint(c.Len))
			m.insert(i)
			i++
			continue
		}

		lc := lengthCode(length)
		c := litCodes[257+lc]
		bw.WriteBits(c.Reversed(), uint(c.Len))
		bw.WriteBits(uint32(length-int(lengthBase[lc])), uint(lengthExtra[lc]))

		dc := distCode(distance)
		c = distCodes[dc]
		bw.WriteBits(c.Reversed(), uint(c.Len))
		bw.WriteBits(uint32(distance-int(distBase[dc])), uint(distExtra[dc]))

		for k := range length {
			m.insert(i + k)
		}
		i += length
	}

	c := litCodes[endOfBlock]
	bw.WriteBits(c.Reversed(), uint(c.Len))
}

const hashBits = 15

// matcher finds LZ77 matches using hash chains over three-byte prefixes.
type matcher struct {
	data     []byte
	head     []int32
	prev     []int32
	maxChain int
}

func newMatcher(data []byte, maxChain int) *matcher {
	head := make([]int32, 1<<hashBits)
	for i := range head {
		head[i] = -1
	}
	return &matcher{
		data:     data,
		head:     head,
		prev:     make([]int32, len(data)),
		maxChain: maxChain,
	}
}

func hash3(b []byte) uint32 {
	x := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return (x * 2654435761) >> (32 - hashBits)
}

func (m *matcher) insert(i int) {
	if i+minMatch > len(m.data) {
		return
	}
	h := hash3(m.data[i:])
	m.prev[i] = m.head[h]
	m.head[h] = int32(i)
}

// find returns the longest match for the data at position i, or a length
// below minMatch if there is none.
func (m *matcher) find(i int) (length, distance int) {
	if i+minMatch > len(m.data) {
		return 0, 0
	}
	limit := min(maxMatch, len(m.data)-i)
	cand := m.head[hash3(m.data[i:])]
	for chain := m.maxChain; cand >= 0 && chain > 0; chain-- {
		d := i - int(cand)
		if d > WindowSize {
			break
		}
		a, b := m.data[cand:], m.data[i:]
		n := 0
		for n < limit && a[n] == b[n] {
			n++
		}
		if n > length {
			length, distance = n, d
			if n == limit {
				break
			}
		}
		cand = m.prev[cand]
	}
	return length, distance
}

func boolBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

var (
	// ErrLevel is returned by NewWriter for an invalid compression level.
	ErrLevel = errors.New("deflate: invalid compression level")

	// ErrClosed is returned when writing to a closed Writer.
	ErrClosed = errors.New("deflate: write to closed Writer")
)
