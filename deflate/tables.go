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
	"sync"

	"seehuhn.de/go/kern/huffman"
)

// BlockType is the two-bit BTYPE field of a block header.
type BlockType uint8

// These are the block types defined in RFC 1951, section 3.2.3.
const (
	Stored BlockType = iota
	FixedHuffman
	DynamicHuffman
	reservedBlockType
)

func (bt BlockType) String() string {
	switch bt {
	case Stored:
		return "stored"
	case FixedHuffman:
		return "fixed Huffman"
	case DynamicHuffman:
		return "dynamic Huffman"
	default:
		return "reserved"
	}
}

const (
	endOfBlock    = 256
	numLitLen     = 288 // including the two unused symbols 286 and 287
	numDist       = 32  // including the two unused symbols 30 and 31
	numCodeLength = 19

	// MaxStoredBlock is the largest payload the encoder puts into a single
	// stored block.
	MaxStoredBlock = 32767

	// WindowSize is the largest back-reference distance.
	WindowSize = 32768

	minMatch = 3
	maxMatch = 258
)

// lengthBase and lengthExtra describe the length codes 257..285.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtra = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase and distExtra describe the distance codes 0..29.
var distBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145,
	8193, 12289, 16385, 24577,
}

var distExtra = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the order in which the code length code lengths are
// transmitted in a dynamic block header.
var codeLengthOrder = [numCodeLength]uint8{
	16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15,
}

// fixedLitLenLengths returns the code lengths of the fixed literal/length
// code (RFC 1951, section 3.2.6).
func fixedLitLenLengths() []uint8 {
	lengths := make([]uint8, numLitLen)
	for i := range lengths {
		switch {
		case i < 144:
			lengths[i] = 8
		case i < 256:
			lengths[i] = 9
		case i < 280:
			lengths[i] = 7
		default:
			lengths[i] = 8
		}
	}
	return lengths
}

func fixedDistLengths() []uint8 {
	lengths := make([]uint8, numDist)
	for i := range lengths {
		lengths[i] = 5
	}
	return lengths
}

var fixedCodes = sync.OnceValues(func() (*huffman.Tree, *huffman.Tree) {
	lit, err := huffman.New(fixedLitLenLengths())
	if err != nil {
		panic(err)
	}
	dist, err := huffman.New(fixedDistLengths())
	if err != nil {
		panic(err)
	}
	return lit, dist
})

// lengthCode returns the index into lengthBase for a match length in
// 3..258.  Length 258 maps to code 285, not to 284 with extra bits 31.
func lengthCode(length int) int {
	i := len(lengthBase) - 1
	for int(lengthBase[i]) > length {
		i--
	}
	return i
}

// distCode returns the distance code for a distance in 1..32768.
func distCode(dist int) int {
	i := len(distBase) - 1
	for int(distBase[i]) > dist {
		i--
	}
	return i
}
