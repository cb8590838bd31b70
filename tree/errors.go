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

package tree

import "errors"

var (
	// ErrInitial is returned by iterator operations which need a current
	// leaf, when the iterator is at the initial position.
	ErrInitial = errors.New("tree: iterator is at the initial position")

	// ErrAccess is returned when an iterator's access level does not
	// permit the operation.
	ErrAccess = errors.New("tree: operation not permitted for this iterator")

	// ErrClosed is returned by operations on a closed iterator, or on an
	// iterator of a cleared tree.
	ErrClosed = errors.New("tree: iterator is closed")

	// ErrLeafBusy is returned when removing a leaf which other iterators
	// are positioned on.
	ErrLeafBusy = errors.New("tree: leaf is in use by another iterator")

	// ErrIteratorsAlive is returned by Tree.Empty and Tree.Clear while
	// iterators are open.
	ErrIteratorsAlive = errors.New("tree: iterators still open")

	// ErrNoKeys is returned by keyed operations on a tree without keys.
	ErrNoKeys = errors.New("tree: tree has no keys")

	// ErrKeyed is returned by positional insertions into a keyed tree.
	ErrKeyed = errors.New("tree: positional insert into keyed tree")

	// ErrKeyRange is returned for keys outside the key domain: NaN scalar
	// keys, and spatial keys which are not finite or which are too far
	// from the existing leaves to be represented.
	ErrKeyRange = errors.New("tree: key out of range")
)

// ConfigError reports an invalid tree configuration.
type ConfigError struct {
	Reason string
}

func (err *ConfigError) Error() string {
	return "tree: invalid configuration: " + err.Reason
}
