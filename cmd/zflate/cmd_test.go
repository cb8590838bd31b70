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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seehuhn.de/go/kern/zlib"
)

func run(t *testing.T, stdin []byte, args ...string) ([]byte, error) {
	t.Helper()
	cmd := newRootCmd()
	out := &bytes.Buffer{}
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestCompressDecompressFiles(t *testing.T) {
	dir := t.TempDir()
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog\n"), 2000)
	plain := filepath.Join(dir, "plain.txt")
	packed := filepath.Join(dir, "plain.txt.z")
	unpacked := filepath.Join(dir, "unpacked.txt")
	require.NoError(t, os.WriteFile(plain, data, 0o644))

	_, err := run(t, nil, "compress", "-l", "6", plain, packed)
	require.NoError(t, err)
	enc, err := os.ReadFile(packed)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(data)/5)

	_, err = run(t, nil, "decompress", packed, unpacked)
	require.NoError(t, err)
	got, err := os.ReadFile(unpacked)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestStdio(t *testing.T) {
	data := []byte("hello, zflate")
	enc, err := run(t, data, "compress")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x78, 0x01}, enc[:2])

	out, err := run(t, enc, "decompress", "-")
	require.NoError(t, err)
	assert.Equal(t, data, out)
}

func TestLevelFromEnvironment(t *testing.T) {
	t.Setenv("ZFLATE_LEVEL", "9")
	enc, err := run(t, []byte("environment"), "compress")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x78, 0xda}, enc[:2])

	// the command line wins over the environment
	enc, err = run(t, []byte("environment"), "compress", "--level", "0")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x78, 0x01}, enc[:2])
}

func TestInfo(t *testing.T) {
	enc, err := zlib.Compress(make([]byte, 70000), nil)
	require.NoError(t, err)

	out, err := run(t, enc, "info")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "blocks:       3\n")
	assert.Contains(t, text, "output size:  70,000\n")
	assert.Contains(t, text, "checksum:     ok\n")
	assert.Equal(t, 3, bytes.Count(out, []byte("stored")))

	enc[len(enc)-1] ^= 1
	out, err = run(t, enc, "info")
	var ce *zlib.ChecksumError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, string(out), "checksum:     mismatch")
}

func TestBadArguments(t *testing.T) {
	_, err := run(t, nil, "compress", "-l", "12")
	assert.Error(t, err)

	_, err = run(t, nil, "--log-level", "chatty", "decompress")
	assert.Error(t, err)

	_, err = run(t, []byte{0x78, 0x02}, "decompress")
	assert.ErrorIs(t, err, zlib.ErrHeaderCheck)
}
