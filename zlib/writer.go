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
	"hash"
	"hash/adler32"
	"io"

	"seehuhn.de/go/kern/buffer"
	"seehuhn.de/go/kern/deflate"
)

// Options control the zlib writer.  The zero value selects stored
// (uncompressed) DEFLATE blocks.
type Options struct {
	// Level is the DEFLATE compression level, from deflate.NoCompression
	// to deflate.BestCompression.
	Level int
}

// Writer compresses data into zlib format.
type Writer struct {
	bw     *buffer.Writer
	dw     *deflate.Writer
	sum    hash.Hash32
	closed bool
}

// NewWriter returns a Writer which writes a zlib stream to w.  opt may be
// nil.  The header is written immediately; the Writer must be closed to
// complete the stream.
func NewWriter(w io.Writer, opt *Options) (*Writer, error) {
	if opt == nil {
		opt = &Options{}
	}

	bw := buffer.NewWriter(w)
	dw, err := deflate.NewBitWriter(bw, opt.Level)
	if err != nil {
		return nil, err
	}

	cmf, flg := makeHeader(flagLevel(opt.Level))
	bw.SetByteOrder(buffer.BigEndian)
	bw.WriteU8(cmf)
	bw.WriteU8(flg)
	bw.SetByteOrder(buffer.LittleEndian)

	return &Writer{
		bw:  bw,
		dw:  dw,
		sum: adler32.New(),
	}, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, deflate.ErrClosed
	}
	w.sum.Write(p)
	return w.dw.Write(p)
}

// Close completes the DEFLATE data, appends the checksum and flushes all
// data to the underlying writer.  It does not close the underlying writer.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.dw.Close(); err != nil {
		return err
	}
	w.bw.SetByteOrder(buffer.BigEndian)
	w.bw.WriteU32(w.sum.Sum32())
	return w.bw.Flush()
}

// Compress returns the zlib encoding of data.  opt may be nil.
func Compress(data []byte, opt *Options) ([]byte, error) {
	out := &bytes.Buffer{}
	w, err := NewWriter(out, opt)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
