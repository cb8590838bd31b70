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
	"strconv"
)

var (
	// ErrLengthMismatch indicates that the LEN and NLEN fields of a stored
	// block are not one's complements of each other.
	ErrLengthMismatch = errors.New("stored block length mismatch")

	// ErrBlockType indicates the reserved block type 3.
	ErrBlockType = errors.New("reserved block type")

	// ErrCodeLengths indicates an invalid code length sequence in the
	// header of a dynamic block.
	ErrCodeLengths = errors.New("invalid code lengths")

	// ErrSymbol indicates a literal/length or distance symbol which is
	// not allowed by RFC 1951.
	ErrSymbol = errors.New("invalid symbol")

	// ErrDistance indicates a back-reference before the start of the
	// output.
	ErrDistance = errors.New("back-reference too far")
)

// MalformedError indicates that the compressed data could not be decoded.
type MalformedError struct {
	Pos int64 // byte offset in the compressed input
	Err error
}

func (err *MalformedError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return "deflate: malformed data" + middle + " (near byte " + strconv.FormatInt(err.Pos, 10) + ")"
}

func (err *MalformedError) Unwrap() error {
	return err.Err
}
