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

// Package zlib implements the zlib data format described in RFC 1950.
//
// A zlib stream is a two byte header, optionally followed by a preset
// dictionary identifier, then DEFLATE compressed data, and finally the
// Adler-32 checksum of the uncompressed data.  The header and the checksum
// are big endian, the DEFLATE data uses the little endian conventions of
// RFC 1951.
//
// Like the underlying deflate package, the readers and writers here are
// not incremental: [NewReader] decodes the whole stream into memory on the
// first Read, and a compressing [Writer] above level 0 buffers its input
// until Close.
package zlib

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	methodDeflate = 8
	maxWindowInfo = 7 // 32K window
	cmfDefault    = maxWindowInfo<<4 | methodDeflate
)

// Header describes the fields of a zlib stream header.
type Header struct {
	Method     int  // compression method, always 8 (DEFLATE)
	WindowBits int  // base-two logarithm of the window size
	Level      int  // compression level hint, 0 (fastest) to 3 (best)
	HasDict    bool // whether a preset dictionary is required
	DictID     uint32
}

// flagLevel maps a DEFLATE compression level to the FLEVEL header field.
func flagLevel(level int) int {
	switch {
	case level <= 1:
		return 0
	case level <= 5:
		return 1
	case level == 6:
		return 2
	default:
		return 3
	}
}

// makeHeader returns the CMF and FLG bytes for the given FLEVEL, with the
// check bits set so that CMF*256 + FLG is a multiple of 31.
func makeHeader(flevel int) (cmf, flg byte) {
	cmf = cmfDefault
	flg = byte(flevel << 6)
	check := (31 - (int(cmf)<<8|int(flg))%31) % 31
	flg |= byte(check)
	return cmf, flg
}

var (
	// ErrMethod indicates a compression method other than DEFLATE.
	ErrMethod = errors.New("unsupported compression method")

	// ErrWindow indicates a window size larger than 32K.
	ErrWindow = errors.New("window size too large")

	// ErrHeaderCheck indicates that the FCHECK bits are wrong.
	ErrHeaderCheck = errors.New("header check bits mismatch")
)

// HeaderError indicates an invalid zlib header.
type HeaderError struct {
	CMF, FLG byte
	Err      error
}

func (err *HeaderError) Error() string {
	return fmt.Sprintf("zlib: invalid header %02x %02x: %v", err.CMF, err.FLG, err.Err)
}

func (err *HeaderError) Unwrap() error {
	return err.Err
}

// ChecksumError indicates that the Adler-32 checksum stored in the stream
// does not match the decompressed data.  The decompressed data is still
// delivered in full.
type ChecksumError struct {
	Want uint32 // checksum stored in the stream
	Got  uint32 // checksum of the decoded data
}

func (err *ChecksumError) Error() string {
	return "zlib: checksum mismatch (stored " + strconv.FormatUint(uint64(err.Want), 16) +
		", computed " + strconv.FormatUint(uint64(err.Got), 16) + ")"
}
