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

package zlib

import (
	"bytes"
	"io"

	"seehuhn.de/go/kern/buffer"
	"seehuhn.de/go/kern/deflate"
)

// ReadHeader reads and validates the zlib header, including the preset
// dictionary identifier if there is one.
func ReadHeader(r *buffer.Reader) (*Header, error) {
	r.SetByteOrder(buffer.BigEndian)
	cmf, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	flg, err := r.ReadU8()
	if err != nil {
		return nil, err
	}

	h := &Header{
		Method:     int(cmf & 0x0f),
		WindowBits: int(cmf>>4) + 8,
		Level:      int(flg >> 6),
		HasDict:    flg&0x20 != 0,
	}
	switch {
	case h.Method != methodDeflate:
		err = ErrMethod
	case cmf>>4 > maxWindowInfo:
		err = ErrWindow
	case (int(cmf)<<8|int(flg))%31 != 0:
		err = ErrHeaderCheck
	}
	if err != nil {
		return nil, &HeaderError{CMF: cmf, FLG: flg, Err: err}
	}

	if h.HasDict {
		// The dictionary itself is not available to us; back-references
		// into it are rejected by the DEFLATE decoder.
		h.DictID, err = r.ReadU32()
		if err != nil {
			return nil, err
		}
	}
	return h, nil
}

// DecompressTo decodes a complete zlib stream from r and appends the
// decompressed data to dst.  onBlock, if not nil, is called for every
// DEFLATE block.
//
// If the stored checksum does not match, a *ChecksumError is returned and
// dst still holds the complete decompressed data.
func DecompressTo(dst *buffer.Buffer, r *buffer.Reader, onBlock func(deflate.BlockInfo)) (*Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	start := dst.Len()
	err = deflate.InflateFunc(dst, r, onBlock)
	if err != nil {
		return h, err
	}

	r.SetByteOrder(buffer.BigEndian)
	want, err := r.ReadU32()
	if err != nil {
		return h, err
	}
	got, err := dst.Adler32(start, dst.Len())
	if err != nil {
		return h, err
	}
	if got != want {
		return h, &ChecksumError{Want: want, Got: got}
	}
	return h, nil
}

// Decompress decodes the zlib stream in data.  On error, the data decoded
// so far is returned together with the error.
func Decompress(data []byte) ([]byte, error) {
	out := buffer.New(2 * len(data))
	_, err := DecompressTo(out, buffer.NewReader(bytes.NewReader(data)), nil)
	return out.Bytes(), err
}

// NewReader returns a ReadCloser which decompresses the zlib stream read
// from r.  The stream is decoded on the first call to Read; all decoded
// data is returned before a decoding or checksum error is reported.
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
		_, r.err = DecompressTo(&r.out, r.in, nil)
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
