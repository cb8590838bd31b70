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

import (
	"golang.org/x/exp/constraints"
	"seehuhn.de/go/geom/vec"
)

// KeyKind classifies the key types a tree can be indexed by.
type KeyKind uint8

// These are the supported key kinds.
const (
	KeyNone     KeyKind = iota // no keys, leaves are kept in insertion order
	KeyScalar                  // totally ordered scalar keys
	KeyPosition                // 2D positions, for quadtrees
	KeyVertex                  // 3D vertices, for octtrees
)

func (k KeyKind) String() string {
	switch k {
	case KeyNone:
		return "none"
	case KeyScalar:
		return "scalar"
	case KeyPosition:
		return "position"
	case KeyVertex:
		return "vertex"
	default:
		return "invalid"
	}
}

func (k KeyKind) dims() int {
	switch k {
	case KeyPosition:
		return 2
	case KeyVertex:
		return 3
	default:
		return 0
	}
}

// Keys is the set of primitives the tree engines use to handle keys of
// type K.
//
// Scalar keys need Less.  Spatial keys need Coords and FromCoords, which
// convert between keys and coordinate triples (unused axes are zero).
//
// Valid, if set, rejects keys outside the domain on which Less is a total
// order.  Operations on such keys fail with ErrKeyRange.
type Keys[K any] struct {
	Kind KeyKind

	Less  func(a, b K) bool
	Valid func(k K) bool

	Coords     func(k K) [3]float64
	FromCoords func(c [3]float64) K
}

func (ks *Keys[K]) valid(k K) bool {
	return ks.Valid == nil || ks.Valid(k)
}

func (ks *Keys[K]) equal(a, b K) bool {
	switch ks.Kind {
	case KeyScalar:
		return !ks.Less(a, b) && !ks.Less(b, a)
	case KeyPosition, KeyVertex:
		return ks.Coords(a) == ks.Coords(b)
	default:
		return false
	}
}

// Number is the set of types usable as scalar keys.
type Number interface {
	constraints.Integer | constraints.Float
}

// ScalarKeys returns the key primitives for a numeric key type.
// NaN is not a valid floating point key.
func ScalarKeys[T Number]() Keys[T] {
	return Keys[T]{
		Kind:  KeyScalar,
		Less:  func(a, b T) bool { return a < b },
		Valid: func(k T) bool { return k == k }, // false only for NaN
	}
}

// DoubleKeys returns the key primitives for float64 keys.
func DoubleKeys() Keys[float64] {
	return ScalarKeys[float64]()
}

// IntKeys returns the key primitives for int keys.
func IntKeys() Keys[int] {
	return ScalarKeys[int]()
}

// PositionKeys returns the key primitives for 2D positions, as used by
// quadtrees.
func PositionKeys() Keys[vec.Vec2] {
	return Keys[vec.Vec2]{
		Kind:       KeyPosition,
		Coords:     func(p vec.Vec2) [3]float64 { return [3]float64{p.X, p.Y, 0} },
		FromCoords: func(c [3]float64) vec.Vec2 { return vec.Vec2{X: c[0], Y: c[1]} },
	}
}

// Vertex is a point in 3D space.
type Vertex struct {
	X, Y, Z float64
}

// VertexKeys returns the key primitives for 3D vertices, as used by
// octtrees.
func VertexKeys() Keys[Vertex] {
	return Keys[Vertex]{
		Kind:       KeyVertex,
		Coords:     func(v Vertex) [3]float64 { return [3]float64{v.X, v.Y, v.Z} },
		FromCoords: func(c [3]float64) Vertex { return Vertex{X: c[0], Y: c[1], Z: c[2]} },
	}
}

// None is the key type of trees without keys.
type None struct{}

// NoKeys returns the key primitives for trees which keep their leaves in
// insertion order.
func NoKeys() Keys[None] {
	return Keys[None]{Kind: KeyNone}
}
