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

// Zflate compresses and decompresses zlib streams.
//
// Usage:
//
//	zflate compress [-l level] [in [out]]
//	zflate decompress [in [out]]
//	zflate info [in]
//
// Input defaults to standard input and output to standard output; "-"
// selects them explicitly.  Every flag can also be set through an
// environment variable with prefix ZFLATE_, for example ZFLATE_LEVEL=9.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zflate:", err)
		os.Exit(1)
	}
}
