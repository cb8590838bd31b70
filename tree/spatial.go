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

import "math"

// Spatial trees subdivide space into cubes (squares for quadtrees) whose
// side lengths are powers of two.  A node with origin o and exponent e
// covers the half-open cube [o, o+2^(e+1)) on every axis; its child with
// index i covers the sub-cube whose origin is shifted by 2^e on every axis
// d with bit d of i set.
//
// Leaves are cells of side 2^leafExponent.  The key of a leaf is the
// origin of its cell.

// maxExponent bounds root growth well below the float64 overflow.
const maxExponent = 1000

func exp2(e int) float64 {
	return math.Ldexp(1, e)
}

func (t *Tree[K, V, N]) dims() int {
	return t.cfg.keys.Kind.dims()
}

// alignKey rounds the coordinates of key down to the leaf grid.
func (t *Tree[K, V, N]) alignKey(key K) (K, [3]float64, error) {
	c := t.cfg.keys.Coords(key)
	s := exp2(t.cfg.leafExponent)
	for d := range t.dims() {
		if math.IsNaN(c[d]) || math.IsInf(c[d], 0) {
			return key, c, ErrKeyRange
		}
		c[d] = math.Floor(c[d]/s) * s
	}
	return t.cfg.keys.FromCoords(c), c, nil
}

// alignOrigin rounds c down to multiples of 2^e.
func alignOrigin(c [3]float64, e, dims int) [3]float64 {
	s := exp2(e)
	var o [3]float64
	for d := range dims {
		o[d] = math.Floor(c[d]/s) * s
	}
	return o
}

func childIndex(origin [3]float64, e int, c [3]float64, dims int) int {
	half := exp2(e)
	i := 0
	for d := range dims {
		if c[d] >= origin[d]+half {
			i |= 1 << d
		}
	}
	return i
}

func childOrigin(origin [3]float64, e, i, dims int) [3]float64 {
	half := exp2(e)
	for d := range dims {
		if i&(1<<d) != 0 {
			origin[d] += half
		}
	}
	return origin
}

// growIndex returns the slot which the old root takes in a new root with
// child exponent e.
func (t *Tree[K, V, N]) growIndex(e int) int {
	k := t.cfg.variant.ChildrenPerNode()
	return ((e % k) + k) % k
}

func (t *Tree[K, V, N]) nodeContains(n int32, c [3]float64) bool {
	rec := &t.nodes[n]
	size := exp2(rec.exponent + 1)
	for d := range t.dims() {
		if c[d] < rec.origin[d] || c[d] >= rec.origin[d]+size {
			return false
		}
	}
	return true
}

// itemPoint returns a point which identifies the position of r inside
// its parent: the key of a leaf or the origin of a node.
func (t *Tree[K, V, N]) itemPoint(r ref) [3]float64 {
	if r.leaf {
		return t.cfg.keys.Coords(t.leaves[r.idx].key)
	}
	return t.nodes[r.idx].origin
}

// wrapRootLeaf replaces a leaf root by a node of the smallest size which
// holds the leaf.
func (t *Tree[K, V, N]) wrapRootLeaf() {
	old := t.rootRef()
	e := t.cfg.leafExponent
	i := t.growIndex(e)
	n := t.allocNode()
	origin := t.itemPoint(old)
	for d := range t.dims() {
		if i&(1<<d) != 0 {
			origin[d] -= exp2(e)
		}
	}
	t.nodes[n].origin = origin
	t.nodes[n].exponent = e
	t.setRoot(ref{idx: n})
	t.setChild(n, i, old)
	t.constructNode(n)
}

// growRoot adds new root nodes until the root contains c.
func (t *Tree[K, V, N]) growRoot(c [3]float64) error {
	dims := t.dims()
	if t.numChildren(t.root) == 0 {
		// an empty root left behind under RootNoLeaf
		e := t.nodes[t.root].exponent
		t.nodes[t.root].origin = alignOrigin(c, e+1, dims)
		return nil
	}
	for !t.nodeContains(t.root, c) {
		old := t.root
		e := t.nodes[old].exponent + 1
		if e > maxExponent {
			return ErrKeyRange
		}
		i := t.growIndex(e)
		n := t.allocNode()
		origin := t.nodes[old].origin
		for d := range dims {
			if i&(1<<d) != 0 {
				origin[d] -= exp2(e)
			}
		}
		t.nodes[n].origin = origin
		t.nodes[n].exponent = e
		t.setRoot(ref{idx: n})
		t.setChild(n, i, ref{idx: old})
		t.constructNode(n)
	}
	return nil
}

// split creates the node which separates the occupant of slot i of node p
// from a new leaf at c.  The new node is the smallest cube inside the slot
// in which the two fall into different children.
func (t *Tree[K, V, N]) split(p int32, i int, occupant ref, leaf int32, c [3]float64) {
	dims := t.dims()
	e := t.nodes[p].exponent - 1
	origin := childOrigin(t.nodes[p].origin, t.nodes[p].exponent, i, dims)
	occ := t.itemPoint(occupant)
	for {
		ia := childIndex(origin, e, c, dims)
		io := childIndex(origin, e, occ, dims)
		if ia != io {
			m := t.allocNode()
			t.nodes[m].origin = origin
			t.nodes[m].exponent = e
			t.setChild(p, i, ref{idx: m})
			t.setChild(m, io, occupant)
			t.setChild(m, ia, ref{idx: leaf, leaf: true})
			t.constructNode(m)
			return
		}
		origin = childOrigin(origin, e, ia, dims)
		e--
	}
}

// insertSpatial adds a leaf for key, unless a leaf for the same cell
// exists already.  It returns the leaf and whether it was created.  If
// hint is not null, the search for the place of the new leaf starts there.
func (t *Tree[K, V, N]) insertSpatial(hint int32, key K, content V) (int32, bool, error) {
	key, c, err := t.alignKey(key)
	if err != nil {
		return null, false, err
	}
	dims := t.dims()

	if t.root == null {
		leaf := t.allocLeaf(key, content)
		if t.cfg.flags&RootNoLeaf == 0 {
			t.setRoot(ref{idx: leaf, leaf: true})
			return leaf, true, nil
		}
		e := t.cfg.leafExponent
		n := t.allocNode()
		t.nodes[n].origin = alignOrigin(c, e+1, dims)
		t.nodes[n].exponent = e
		t.setRoot(ref{idx: n})
		t.setChild(n, childIndex(t.nodes[n].origin, e, c, dims), ref{idx: leaf, leaf: true})
		t.constructNode(n)
		return leaf, true, nil
	}

	if t.rootIsLeaf {
		if t.cfg.keys.Coords(t.leaves[t.root].key) == c {
			return t.root, false, nil
		}
		t.wrapRootLeaf()
	}

	start := t.root
	if hint != null {
		for p := t.leaves[hint].parent; p != null; p = t.nodes[p].parent {
			if t.nodeContains(p, c) {
				start = p
				break
			}
		}
	}
	if start == t.root && !t.nodeContains(start, c) {
		if err := t.growRoot(c); err != nil {
			return null, false, err
		}
		start = t.root
	}

	p := start
	for {
		i := childIndex(t.nodes[p].origin, t.nodes[p].exponent, c, dims)
		occupant := t.child(p, i)
		switch {
		case occupant.idx == null:
			leaf := t.allocLeaf(key, content)
			t.setChild(p, i, ref{idx: leaf, leaf: true})
			t.update(p, i)
			return leaf, true, nil
		case occupant.leaf:
			if t.cfg.keys.Coords(t.leaves[occupant.idx].key) == c {
				return occupant.idx, false, nil
			}
		case t.nodeContains(occupant.idx, c):
			p = occupant.idx
			continue
		}
		leaf := t.allocLeaf(key, content)
		t.split(p, i, occupant, leaf, c)
		t.update(p, i)
		return leaf, true, nil
	}
}

// removeSpatial removes a leaf and collapses the nodes above it which are
// left with fewer than two children.
func (t *Tree[K, V, N]) removeSpatial(leaf int32) {
	p := t.leaves[leaf].parent
	if p == null {
		t.freeLeaf(leaf)
		t.setRoot(noRef)
		return
	}
	slot := t.slotOf(p, ref{idx: leaf, leaf: true})
	t.setChild(p, slot, noRef)
	t.freeLeaf(leaf)

	keepRoot := t.cfg.flags&RootNoLeaf != 0
	for {
		g := t.nodes[p].parent
		switch t.numChildren(p) {
		case 0:
			if g == null {
				if keepRoot {
					t.update(p, slot)
					return
				}
				t.freeNode(p)
				t.setRoot(noRef)
				return
			}
			gslot := t.slotOf(g, ref{idx: p})
			t.setChild(g, gslot, noRef)
			t.freeNode(p)
			p, slot = g, gslot

		case 1:
			var only ref
			for i := range t.cfg.variant.ChildrenPerNode() {
				if c := t.child(p, i); c.idx != null {
					only = c
				}
			}
			if g == null {
				if keepRoot && only.leaf {
					t.update(p, slot)
					return
				}
				t.setRoot(only)
				t.freeNode(p)
				return
			}
			gslot := t.slotOf(g, ref{idx: p})
			t.setChild(g, gslot, only)
			t.freeNode(p)
			t.update(g, gslot)
			return

		default:
			t.update(p, slot)
			return
		}
	}
}

// locateSpatial returns the leaf for the cell containing key, or null.
func (t *Tree[K, V, N]) locateSpatial(hint int32, key K) int32 {
	_, c, err := t.alignKey(key)
	if err != nil || t.root == null {
		return null
	}
	if t.rootIsLeaf {
		if t.cfg.keys.Coords(t.leaves[t.root].key) == c {
			return t.root
		}
		return null
	}

	p := t.root
	if hint != null {
		for q := t.leaves[hint].parent; q != null; q = t.nodes[q].parent {
			if t.nodeContains(q, c) {
				p = q
				break
			}
		}
	}
	if !t.nodeContains(p, c) {
		return null
	}
	dims := t.dims()
	for {
		r := t.child(p, childIndex(t.nodes[p].origin, t.nodes[p].exponent, c, dims))
		switch {
		case r.idx == null:
			return null
		case r.leaf:
			if t.cfg.keys.Coords(t.leaves[r.idx].key) == c {
				return r.idx
			}
			return null
		case !t.nodeContains(r.idx, c):
			return null
		}
		p = r.idx
	}
}

// box is a half-open axis-aligned range [lo, hi).
type box struct {
	lo, hi [3]float64
}

func (b *box) containsPoint(c [3]float64, dims int) bool {
	for d := range dims {
		if c[d] < b.lo[d] || c[d] >= b.hi[d] {
			return false
		}
	}
	return true
}

// nodeMeets reports whether the cube of node n intersects the box.
func (t *Tree[K, V, N]) nodeMeets(n int32, b *box) bool {
	rec := &t.nodes[n]
	size := exp2(rec.exponent + 1)
	for d := range t.dims() {
		if rec.origin[d] >= b.hi[d] || rec.origin[d]+size <= b.lo[d] {
			return false
		}
	}
	return true
}
