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

// order selects where a new leaf goes relative to an existing one.
type order uint8

const (
	orderKey  order = iota // by comparing keys, equal keys go right
	orderPrev              // before the existing leaf
	orderNext              // after the existing leaf
)

// insertBinary adds a new leaf next to the leaf existing and returns the
// new leaf.  If existing is null, the tree must be empty and the new leaf
// becomes the root.
func (t *Tree[K, V, N]) insertBinary(existing int32, key K, content V, ord order) int32 {
	leaf := t.allocLeaf(key, content)
	if existing == null {
		t.setRoot(ref{idx: leaf, leaf: true})
		return leaf
	}

	left, right := existing, leaf
	switch ord {
	case orderPrev:
		left, right = leaf, existing
	case orderKey:
		if t.cfg.keys.Less(key, t.leaves[existing].key) {
			left, right = leaf, existing
		}
	}

	parent := t.leaves[existing].parent
	slot := -1
	if parent != null {
		slot = t.slotOf(parent, ref{idx: existing, leaf: true})
	}

	n := t.allocNode()
	t.nodes[n].key = t.leaves[right].key
	t.setChild(n, 0, ref{idx: left, leaf: true})
	t.setChild(n, 1, ref{idx: right, leaf: true})
	if parent == null {
		t.setRoot(ref{idx: n})
	} else {
		t.setChild(parent, slot, ref{idx: n})
	}
	t.constructNode(n)

	if parent != null {
		t.update(parent, slot)
		if t.cfg.flags&AVL != 0 {
			t.growAVL(parent, slot)
		}
	}
	return leaf
}

// removeBinary removes a leaf and splices its sibling into the place of
// the parent node.
func (t *Tree[K, V, N]) removeBinary(leaf int32) {
	p := t.leaves[leaf].parent
	if p == null {
		t.freeLeaf(leaf)
		t.setRoot(noRef)
		return
	}
	slot := t.slotOf(p, ref{idx: leaf, leaf: true})
	sibling := t.child(p, 1-slot)
	t.freeLeaf(leaf)

	g := t.nodes[p].parent
	if g == null {
		t.setRoot(sibling)
		t.freeNode(p)
		return
	}
	gslot := t.slotOf(g, ref{idx: p})
	t.setChild(g, gslot, sibling)
	t.freeNode(p)

	t.update(g, gslot)
	if t.cfg.flags&AVL != 0 {
		t.shrinkAVL(g, gslot)
	}
}

// bubbleBinary walks up from leaf towards the root and returns the lowest
// item whose key range contains key.
//
// The key range of an item is bounded by the separators of the nearest
// ancestors reached through a left and a right edge.  While walking up,
// the candidate keeps the bounds found so far; a violated bound rules out
// the whole chain below the ancestor which supplied it.
func (t *Tree[K, V, N]) bubbleBinary(leaf int32, key K) ref {
	less := t.cfg.keys.Less
	cand := ref{idx: leaf, leaf: true}
	hasLower, hasUpper := false, false
	cur := cand
	for {
		p := t.parentOf(cur)
		if p == null {
			return cand
		}
		sep := t.nodes[p].key
		if t.slotOf(p, cur) == 0 {
			if !hasUpper {
				hasUpper = true
				if !less(key, sep) {
					cand = ref{idx: p}
					hasLower, hasUpper = false, false
				}
			}
		} else if !hasLower {
			hasLower = true
			if less(key, sep) {
				cand = ref{idx: p}
				hasLower, hasUpper = false, false
			}
		}
		if hasLower && hasUpper {
			return cand
		}
		cur = ref{idx: p}
	}
}

// descendBinary returns the leaf below r whose key range contains key.
func (t *Tree[K, V, N]) descendBinary(r ref, key K) int32 {
	less := t.cfg.keys.Less
	for !r.leaf {
		if less(key, t.nodes[r.idx].key) {
			r = t.child(r.idx, 0)
		} else {
			r = t.child(r.idx, 1)
		}
	}
	return r.idx
}

// locateBinary returns the leaf whose key range contains key.  This is the
// leaf with the given key if there is one, and otherwise a neighbour of
// the place where such a leaf would be inserted.  If hint is not null, the
// search starts there.
func (t *Tree[K, V, N]) locateBinary(hint int32, key K) int32 {
	if t.root == null {
		return null
	}
	start := t.rootRef()
	if hint != null {
		start = t.bubbleBinary(hint, key)
	}
	return t.descendBinary(start, key)
}
