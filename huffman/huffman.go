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

// Package huffman implements canonical Huffman codes as used by DEFLATE
// (RFC 1951, section 3.2.2).
//
// A code is described by the code length of every symbol of the alphabet.
// Codes of the same length are consecutive integers in symbol order, and
// shorter codes numerically precede longer ones.  The decoder stores the
// code as a binary trie in a flat slice and walks it one bit at a time.
package huffman

import (
	"errors"
	"fmt"
)

// MaxBits is the longest supported code length.
const MaxBits = 16

// Code is the canonical code assigned to a symbol.  Bits holds the code
// with the first transmitted bit in the most significant of the Len
// low-order bits.  Symbols which do not occur have Len == 0.
type Code struct {
	Bits uint16
	Len  uint8
}

// Reversed returns the code bits in transmission order, for writers which
// emit the least significant bit first.
func (c Code) Reversed() uint32 {
	var res uint32
	x := uint32(c.Bits)
	for range c.Len {
		res = res<<1 | x&1
		x >>= 1
	}
	return res
}

// BitReader is the source of bits for [Tree.Decode].
type BitReader interface {
	ReadBit() (uint32, error)
}

// trieNode is an entry of the decoding trie.  Leaves hold a symbol,
// inner nodes the indices of their two children (0 means "not present",
// since index 0 is the root and can never be a child).
type trieNode struct {
	leaf   bool
	symbol uint16
	child  [2]int32
}

// Tree is a canonical Huffman code together with its decoding trie.
type Tree struct {
	codes []Code
	trie  []trieNode
}

// New constructs the canonical Huffman code for the given code lengths.
// lengths[i] is the code length of symbol i, 0 if the symbol is unused.
//
// The code must be complete, with two exceptions permitted by RFC 1951:
// an alphabet where no symbol is used, and an alphabet where a single
// symbol has a code of length 1.  Decoding the unused bit patterns of such
// codes fails with ErrInvalidCode.
func New(lengths []uint8) (*Tree, error) {
	var count [MaxBits + 1]int
	used := 0
	for sym, l := range lengths {
		if l > MaxBits {
			return nil, fmt.Errorf("symbol %d: %w", sym, ErrCodeLength)
		}
		if l > 0 {
			count[l]++
			used++
		}
	}

	// Check the Kraft sum before assigning anything.
	left := 1
	for l := 1; l <= MaxBits; l++ {
		left <<= 1
		left -= count[l]
		if left < 0 {
			return nil, ErrOversubscribed
		}
	}
	degenerate := used == 0 || (used == 1 && count[1] == 1)
	if left > 0 && !degenerate {
		return nil, ErrIncomplete
	}

	var next [MaxBits + 1]uint16
	code := uint16(0)
	for l := 1; l <= MaxBits; l++ {
		code = (code + uint16(count[l-1])) << 1
		next[l] = code
	}
	// count[0] counts nothing (unused symbols are skipped above), so the
	// recurrence starts from code 0 at length 1.

	t := &Tree{
		codes: make([]Code, len(lengths)),
		trie:  make([]trieNode, 1, 2*max(len(lengths), 1)-1),
	}
	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		c := Code{Bits: next[l], Len: l}
		next[l]++
		t.codes[sym] = c
		if err := t.insert(uint16(sym), c); err != nil {
			return nil, err
		}
	}

	if !degenerate {
		for i := range t.trie {
			n := &t.trie[i]
			if !n.leaf && (n.child[0] == 0 || n.child[1] == 0) {
				return nil, ErrIncomplete
			}
		}
	}
	return t, nil
}

// insert adds the path for one code to the trie, allocating inner nodes
// as needed.
func (t *Tree) insert(sym uint16, c Code) error {
	pos := int32(0)
	for i := int(c.Len) - 1; i >= 0; i-- {
		if t.trie[pos].leaf {
			return ErrOversubscribed
		}
		bit := (c.Bits >> i) & 1
		child := t.trie[pos].child[bit]
		if child == 0 {
			child = int32(len(t.trie))
			t.trie = append(t.trie, trieNode{})
			t.trie[pos].child[bit] = child
		}
		pos = child
	}
	n := &t.trie[pos]
	if n.leaf || n.child[0] != 0 || n.child[1] != 0 {
		return ErrOversubscribed
	}
	n.leaf = true
	n.symbol = sym
	return nil
}

// NumSymbols returns the size of the alphabet.
func (t *Tree) NumSymbols() int {
	return len(t.codes)
}

// Codes returns the code of every symbol.  The returned slice must not be
// modified.
func (t *Tree) Codes() []Code {
	return t.codes
}

// Decode reads one code from r and returns the corresponding symbol.
// Exactly as many bits are consumed as the code is long.
func (t *Tree) Decode(r BitReader) (int, error) {
	pos := int32(0)
	for !t.trie[pos].leaf {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		next := t.trie[pos].child[bit&1]
		if next == 0 {
			return 0, ErrInvalidCode
		}
		pos = next
	}
	return int(t.trie[pos].symbol), nil
}

var (
	// ErrCodeLength is returned by New if a code length exceeds MaxBits.
	ErrCodeLength = errors.New("huffman: code length too large")

	// ErrOversubscribed is returned by New if there are more codes of some
	// length than the code space allows.
	ErrOversubscribed = errors.New("huffman: over-subscribed code")

	// ErrIncomplete is returned by New if the code leaves unused bit
	// patterns.
	ErrIncomplete = errors.New("huffman: incomplete code")

	// ErrInvalidCode is returned by Decode when the input does not match
	// any code.
	ErrInvalidCode = errors.New("huffman: invalid code")
)
