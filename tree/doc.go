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

// Package tree implements a generic tree engine with three variants.
//
// Binary trees keep leaves ordered by a scalar key, or in insertion order
// for trees without keys, and can be kept height-balanced using AVL
// rotations.  Quadtrees and octtrees store leaves at 2D positions or 3D
// vertices, subdividing space into cubes whose side lengths are powers of
// two.  The root of a spatial tree grows automatically when a leaf is
// added outside the current extent.
//
// All variants share the same model: a tree consists of leaves, which
// carry user data of type V, and inner nodes, which carry user data of
// type N.  A [Config] describes the variant, the key type and the
// callbacks which maintain the user data.  In particular, the node update
// callback is called whenever a child of a node changes and can be used to
// keep aggregate information, such as leaf counts or bounding boxes, at
// the inner nodes.
//
// Trees are read and modified through an [Iterator].  Iterators come in
// three access levels: accessors can only read, mutators can also modify
// leaf data in place, and modifiers can add and remove leaves.
//
// Trees are not safe for concurrent use.
package tree
