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

// Access is the set of operations an iterator may perform.
type Access uint8

// These are the access levels of iterators.  Each level includes the
// permissions of the previous ones.
const (
	Accessor Access = iota // read keys and data
	Mutator                // modify leaf data in place
	Modifier               // add and remove leaves
)

func (a Access) String() string {
	switch a {
	case Accessor:
		return "accessor"
	case Mutator:
		return "mutator"
	case Modifier:
		return "modifier"
	default:
		return "invalid"
	}
}

// Iterator is a cursor into a tree.  The cursor is either positioned on a
// leaf, or at the initial position before the first and after the last
// leaf.
//
// Any number of iterators can be open on a tree.  Iterators must be closed
// before the tree can be emptied or cleared.
type Iterator[K, V, N any] struct {
	t      *Tree[K, V, N]
	access Access
	leaf   int32
}

// Accessor returns a read-only iterator at the initial position.
func (t *Tree[K, V, N]) Accessor() *Iterator[K, V, N] {
	return t.newIterator(Accessor)
}

// Mutator returns an iterator which can modify leaf data.
func (t *Tree[K, V, N]) Mutator() *Iterator[K, V, N] {
	return t.newIterator(Mutator)
}

// Modifier returns an iterator which can add and remove leaves.
func (t *Tree[K, V, N]) Modifier() *Iterator[K, V, N] {
	return t.newIterator(Modifier)
}

func (t *Tree[K, V, N]) newIterator(a Access) *Iterator[K, V, N] {
	if t.cleared {
		return &Iterator[K, V, N]{access: a, leaf: null}
	}
	t.iterators++
	return &Iterator[K, V, N]{t: t, access: a, leaf: null}
}

// Close detaches the iterator from the tree.  Closing an iterator twice
// has no effect.
func (it *Iterator[K, V, N]) Close() {
	if it.t == nil {
		return
	}
	it.moveTo(null)
	it.t.iterators--
	it.t = nil
}

func (it *Iterator[K, V, N]) moveTo(leaf int32) {
	if it.leaf != null {
		it.t.leaves[it.leaf].attached--
	}
	it.leaf = leaf
	if leaf != null {
		it.t.leaves[leaf].attached++
	}
}

func (it *Iterator[K, V, N]) check(need Access, atLeaf bool) error {
	switch {
	case it.t == nil:
		return ErrClosed
	case it.access < need:
		return ErrAccess
	case atLeaf && it.leaf == null:
		return ErrInitial
	}
	return nil
}

// AtInitial reports whether the iterator is at the initial position.
func (it *Iterator[K, V, N]) AtInitial() bool {
	return it.leaf == null
}

// Reset moves the iterator to the initial position.
func (it *Iterator[K, V, N]) Reset() {
	if it.t != nil {
		it.moveTo(null)
	}
}

// Key returns the key of the current leaf.  At the initial position, the
// zero value is returned.
func (it *Iterator[K, V, N]) Key() K {
	if it.t == nil || it.leaf == null {
		var zero K
		return zero
	}
	return it.t.leaves[it.leaf].key
}

// Value returns the data of the current leaf.  At the initial position, the
// zero value is returned.
func (it *Iterator[K, V, N]) Value() V {
	if it.t == nil || it.leaf == null {
		var zero V
		return zero
	}
	return it.t.leaves[it.leaf].data
}

// Data returns a pointer to the data of the current leaf, for in-place
// modification.  It returns nil for accessors and at the initial
// position.  The pointer is valid until the tree structure changes; use
// UpdateLeaf to propagate the change to the node data.
func (it *Iterator[K, V, N]) Data() *V {
	if it.check(Mutator, true) != nil {
		return nil
	}
	return &it.t.leaves[it.leaf].data
}

// Next moves to the next leaf, or from the initial position to the first
// leaf.  It returns false, leaving the iterator at the initial position,
// when there are no more leaves.
func (it *Iterator[K, V, N]) Next() bool {
	return it.iterate(true, nil, nil)
}

// Prev moves to the previous leaf, or from the initial position to the
// last leaf.
func (it *Iterator[K, V, N]) Prev() bool {
	return it.iterate(false, nil, nil)
}

// NextIn is like Next, but only visits leaves with lo <= key < hi.  For
// spatial trees the bounds apply to every axis separately.  Trees without
// keys ignore the bounds.  Invalid scalar bounds, such as NaN, match no
// leaf.
func (it *Iterator[K, V, N]) NextIn(lo, hi K) bool {
	return it.iterate(true, &lo, &hi)
}

// PrevIn is like Prev, but only visits leaves with lo <= key < hi.
func (it *Iterator[K, V, N]) PrevIn(lo, hi K) bool {
	return it.iterate(false, &lo, &hi)
}

func (it *Iterator[K, V, N]) iterate(forward bool, lo, hi *K) bool {
	if it.t == nil {
		return false
	}
	t := it.t

	var next int32
	switch t.cfg.keys.Kind {
	case KeyScalar:
		if lo != nil && !(t.cfg.keys.valid(*lo) && t.cfg.keys.valid(*hi)) {
			next = null
			break
		}
		next = it.stepScalar(forward, lo, hi)
	case KeyPosition, KeyVertex:
		var b *box
		if lo != nil {
			b = &box{lo: t.cfg.keys.Coords(*lo), hi: t.cfg.keys.Coords(*hi)}
		}
		if it.leaf == null {
			next = t.edgeLeaf(t.rootRef(), forward, b)
		} else {
			next = t.stepLeaf(it.leaf, forward, b)
		}
	default:
		if it.leaf == null {
			next = t.edgeLeaf(t.rootRef(), forward, nil)
		} else {
			next = t.stepLeaf(it.leaf, forward, nil)
		}
	}
	it.moveTo(next)
	return next != null
}

// stepScalar finds the next leaf of a binary tree in key order, using the
// bounds to skip leaves outside the range.
func (it *Iterator[K, V, N]) stepScalar(forward bool, lo, hi *K) int32 {
	t := it.t
	less := t.cfg.keys.Less

	var next int32
	if it.leaf == null {
		next = t.edgeLeaf(t.rootRef(), forward, nil)
	} else {
		next = t.stepLeaf(it.leaf, forward, nil)
	}
	if next == null || lo == nil {
		return next
	}

	key := t.leaves[next].key
	if forward {
		if less(key, *lo) {
			// jump to the first leaf >= lo
			next = t.locateBinary(next, *lo)
			if less(t.leaves[next].key, *lo) {
				next = t.stepLeaf(next, true, nil)
			}
			if next == null {
				return null
			}
			key = t.leaves[next].key
		}
		if !less(key, *hi) {
			return null
		}
	} else {
		if !less(key, *hi) {
			// jump to the last leaf < hi
			next = t.locateBinary(next, *hi)
			if !less(t.leaves[next].key, *hi) {
				next = t.stepLeaf(next, false, nil)
			}
			if next == null {
				return null
			}
			key = t.leaves[next].key
		}
		if less(key, *lo) {
			return null
		}
	}
	return next
}

// LocateKey moves the iterator to the leaf with the given key and returns
// true.  If there is no such leaf, the iterator moves to the initial
// position and false is returned.  For spatial trees the key is first
// aligned to the leaf grid.
//
// If assumeNearby is set, the search starts at the current leaf instead of
// the root, which is faster if the key is close to the current position.
func (it *Iterator[K, V, N]) LocateKey(key K, assumeNearby bool) bool {
	if it.t == nil || it.t.cfg.keys.Kind == KeyNone {
		return false
	}
	hint := null
	if assumeNearby {
		hint = it.leaf
	}
	l := it.t.locateExact(hint, key)
	it.moveTo(l)
	return l != null
}

func (t *Tree[K, V, N]) locateExact(hint int32, key K) int32 {
	if t.cfg.variant == Binary {
		if !t.cfg.keys.valid(key) {
			return null
		}
		l := t.locateBinary(hint, key)
		if l == null || !t.cfg.keys.equal(t.leaves[l].key, key) {
			return null
		}
		return l
	}
	return t.locateSpatial(hint, key)
}

// AddNext inserts a new leaf after the current leaf of a tree without keys
// and moves the iterator to it.  At the initial position, the leaf is
// inserted at the front.
func (it *Iterator[K, V, N]) AddNext(content V) error {
	return it.addPositional(content, true)
}

// AddPrev inserts a new leaf before the current leaf of a tree without
// keys and moves the iterator to it.  At the initial position, the leaf is
// appended at the back.
func (it *Iterator[K, V, N]) AddPrev(content V) error {
	return it.addPositional(content, false)
}

func (it *Iterator[K, V, N]) addPositional(content V, after bool) error {
	if err := it.check(Modifier, false); err != nil {
		return err
	}
	t := it.t
	if t.cfg.keys.Kind != KeyNone {
		return ErrKeyed
	}

	existing := it.leaf
	var ord order
	switch {
	case existing == null && after:
		existing = t.edgeLeaf(t.rootRef(), true, nil)
		ord = orderPrev
	case existing == null:
		existing = t.edgeLeaf(t.rootRef(), false, nil)
		ord = orderNext
	case after:
		ord = orderNext
	default:
		ord = orderPrev
	}
	var key K
	leaf := t.insertBinary(existing, key, content, ord)
	it.moveTo(leaf)
	return nil
}

// AddKeyed inserts a leaf with the given key and moves the iterator to it.
// If a leaf with this key exists already, the iterator moves there and, if
// replace is set, its data is destroyed and replaced.  The first result
// reports whether a new leaf was created.  Keys outside the key domain,
// such as NaN, give ErrKeyRange and leave the tree unchanged.
func (it *Iterator[K, V, N]) AddKeyed(key K, content V, replace bool) (bool, error) {
	if err := it.check(Modifier, false); err != nil {
		return false, err
	}
	t := it.t

	var leaf int32
	created := false
	switch t.cfg.keys.Kind {
	case KeyNone:
		return false, ErrNoKeys
	case KeyScalar:
		if !t.cfg.keys.valid(key) {
			return false, ErrKeyRange
		}
		near := t.locateBinary(it.leaf, key)
		if near != null && t.cfg.keys.equal(t.leaves[near].key, key) {
			leaf = near
		} else {
			leaf = t.insertBinary(near, key, content, orderKey)
			created = true
		}
	default:
		var err error
		leaf, created, err = t.insertSpatial(it.leaf, key, content)
		if err != nil {
			return false, err
		}
	}

	if !created && replace {
		t.replaceLeafData(leaf, content)
		t.leafChanged(leaf)
	}
	it.moveTo(leaf)
	return created, nil
}

// RemoveCurrent removes the current leaf and moves the iterator to the
// initial position.  It fails with ErrLeafBusy if another iterator is
// positioned on the same leaf.
func (it *Iterator[K, V, N]) RemoveCurrent() error {
	if err := it.check(Modifier, true); err != nil {
		return err
	}
	t := it.t
	if t.leaves[it.leaf].attached > 1 {
		return ErrLeafBusy
	}
	leaf := it.leaf
	it.moveTo(null)
	if t.cfg.variant == Binary {
		t.removeBinary(leaf)
	} else {
		t.removeSpatial(leaf)
	}
	return nil
}

// UpdateLeaf propagates a change of the current leaf's data to the nodes
// above it, using the node update callback.
func (it *Iterator[K, V, N]) UpdateLeaf() error {
	if err := it.check(Mutator, true); err != nil {
		return err
	}
	it.t.leafChanged(it.leaf)
	return nil
}

// BubbleToken calls fn for the parent of the current leaf and then for its
// ancestors, as long as fn returns true.  The second argument of fn is the
// child slot through which the node was reached.
func (it *Iterator[K, V, N]) BubbleToken(fn func(n Node[K, V, N], child int) bool) error {
	if err := it.check(Accessor, true); err != nil {
		return err
	}
	t := it.t
	p := t.leaves[it.leaf].parent
	if p == null {
		return nil
	}
	t.bubble(p, t.slotOf(p, ref{idx: it.leaf, leaf: true}), fn)
	return nil
}
