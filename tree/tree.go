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

import "iter"

// AllChildren is passed to node update callbacks when more than one child
// slot may have changed.
const AllChildren = -1

const null int32 = -1

type nodeRec[K, N any] struct {
	parent   int32
	children [8]int32
	leafMask uint8
	balance  int8

	// key is the separator of a binary node: all keys in the right
	// subtree are >= key, all keys in the left subtree are < key.
	key K

	// origin and exponent describe the cube of a spatial node, which has
	// side length 2^(exponent+1).  Each child covers a cube of side
	// 2^exponent.
	origin   [3]float64
	exponent int

	data N
}

type leafRec[K, V any] struct {
	parent   int32
	key      K
	data     V
	attached int32
}

// ref identifies a tree item.  A ref with idx == null is an empty slot.
type ref struct {
	idx  int32
	leaf bool
}

var noRef = ref{idx: null}

// Tree is a generic tree of leaves with keys of type K and data of type V.
// Inner nodes carry user data of type N, which can be used to cache
// aggregate information about the leaves below a node.
//
// Leaves and nodes are stored in arenas and referenced by index, so the
// tree contains no pointers between its items.
type Tree[K, V, N any] struct {
	cfg *Config[K, V, N]

	nodes      []nodeRec[K, N]
	leaves     []leafRec[K, V]
	freeNodes  []int32
	freeLeaves []int32

	root       int32
	rootIsLeaf bool
	count      int

	iterators int
	userData  any
	cleared   bool
}

// New creates an empty tree using the given configuration.  The
// configuration is locked and retained until the tree is cleared.
func New[K, V, N any](cfg *Config[K, V, N]) *Tree[K, V, N] {
	cfg.locked = true
	cfg.Retain()
	t := &Tree[K, V, N]{
		cfg:  cfg,
		root: null,
	}
	if cfg.constructTree != nil {
		t.userData = cfg.constructTree()
	}
	return t
}

// Config returns the configuration of the tree.
func (t *Tree[K, V, N]) Config() *Config[K, V, N] {
	return t.cfg
}

// UserData returns the data created by the tree construct callback.
func (t *Tree[K, V, N]) UserData() any {
	return t.userData
}

// Len returns the number of leaves in the tree.
func (t *Tree[K, V, N]) Len() int {
	return t.count
}

// Depth returns the maximal number of edges between the root and a leaf.
func (t *Tree[K, V, N]) Depth() int {
	if t.root == null || t.rootIsLeaf {
		return 0
	}
	var depth func(n int32) int
	depth = func(n int32) int {
		d := 0
		for i := range t.cfg.variant.ChildrenPerNode() {
			c := t.child(n, i)
			switch {
			case c.idx == null:
			case c.leaf:
				d = max(d, 1)
			default:
				d = max(d, depth(c.idx)+1)
			}
		}
		return d
	}
	return depth(t.root)
}

// Root returns the root node, if the root of the tree is an inner node.
func (t *Tree[K, V, N]) Root() (Node[K, V, N], bool) {
	if t.root == null || t.rootIsLeaf {
		return Node[K, V, N]{}, false
	}
	return Node[K, V, N]{t: t, id: t.root}, true
}

// All iterates over all leaves of the tree, in key order for binary trees
// and in depth first child order for spatial trees.  The tree must not be
// modified during iteration.
func (t *Tree[K, V, N]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for l := t.edgeLeaf(t.rootRef(), true, nil); l != null; l = t.stepLeaf(l, true, nil) {
			if !yield(t.leaves[l].key, t.leaves[l].data) {
				return
			}
		}
	}
}

// Lookup returns the data of the leaf with the given key.
func (t *Tree[K, V, N]) Lookup(key K) (V, bool) {
	var zero V
	if t.cfg.keys.Kind == KeyNone {
		return zero, false
	}
	l := t.locateExact(null, key)
	if l == null {
		return zero, false
	}
	return t.leaves[l].data, true
}

// Empty removes all leaves and nodes from the tree.  The destruct callbacks
// are called for all items.
func (t *Tree[K, V, N]) Empty() error {
	if t.iterators > 0 {
		return ErrIteratorsAlive
	}
	if t.root != null {
		t.destroy(t.rootRef())
	}
	t.nodes = t.nodes[:0]
	t.leaves = t.leaves[:0]
	t.freeNodes = t.freeNodes[:0]
	t.freeLeaves = t.freeLeaves[:0]
	t.root = null
	t.rootIsLeaf = false
	t.count = 0
	return nil
}

// Clear empties the tree, destroys the tree user data and releases the
// configuration.  The tree must not be used afterwards.
func (t *Tree[K, V, N]) Clear() error {
	if t.cleared {
		return nil
	}
	if err := t.Empty(); err != nil {
		return err
	}
	if t.cfg.destructTree != nil {
		t.cfg.destructTree(t.userData)
	}
	t.userData = nil
	t.cfg.Release()
	t.cleared = true
	return nil
}

func (t *Tree[K, V, N]) destroy(r ref) {
	if r.leaf {
		if t.cfg.destructLeaf != nil {
			t.cfg.destructLeaf(t.leaves[r.idx].key, t.leaves[r.idx].data)
		}
		return
	}
	for i := range t.cfg.variant.ChildrenPerNode() {
		if c := t.child(r.idx, i); c.idx != null {
			t.destroy(c)
		}
	}
	if t.cfg.destructNode != nil {
		t.cfg.destructNode(t.nodes[r.idx].data)
	}
}

func (t *Tree[K, V, N]) rootRef() ref {
	return ref{idx: t.root, leaf: t.rootIsLeaf}
}

func (t *Tree[K, V, N]) setRoot(r ref) {
	t.root = r.idx
	t.rootIsLeaf = r.leaf
	if r.idx != null {
		t.setParent(r, null)
	}
}

func (t *Tree[K, V, N]) allocNode() int32 {
	var n int32
	if k := len(t.freeNodes); k > 0 {
		n = t.freeNodes[k-1]
		t.freeNodes = t.freeNodes[:k-1]
	} else {
		n = int32(len(t.nodes))
		t.nodes = append(t.nodes, nodeRec[K, N]{})
	}
	rec := &t.nodes[n]
	*rec = nodeRec[K, N]{parent: null}
	for i := range rec.children {
		rec.children[i] = null
	}
	return n
}

// freeNode releases a node record.  The children must have been moved
// elsewhere before.
func (t *Tree[K, V, N]) freeNode(n int32) {
	if t.cfg.destructNode != nil {
		t.cfg.destructNode(t.nodes[n].data)
	}
	t.nodes[n] = nodeRec[K, N]{parent: null}
	t.freeNodes = append(t.freeNodes, n)
}

// constructNode initialises the user data of a node whose children are
// in place.
func (t *Tree[K, V, N]) constructNode(n int32) {
	if t.cfg.constructNode != nil {
		t.nodes[n].data = t.cfg.constructNode(Node[K, V, N]{t: t, id: n})
	}
}

func (t *Tree[K, V, N]) allocLeaf(key K, content V) int32 {
	data := content
	if t.cfg.constructLeaf != nil {
		data = t.cfg.constructLeaf(key, content)
	}
	var l int32
	if k := len(t.freeLeaves); k > 0 {
		l = t.freeLeaves[k-1]
		t.freeLeaves = t.freeLeaves[:k-1]
	} else {
		l = int32(len(t.leaves))
		t.leaves = append(t.leaves, leafRec[K, V]{})
	}
	t.leaves[l] = leafRec[K, V]{parent: null, key: key, data: data}
	t.count++
	return l
}

func (t *Tree[K, V, N]) freeLeaf(l int32) {
	if t.cfg.destructLeaf != nil {
		t.cfg.destructLeaf(t.leaves[l].key, t.leaves[l].data)
	}
	t.leaves[l] = leafRec[K, V]{parent: null}
	t.freeLeaves = append(t.freeLeaves, l)
	t.count--
}

// replaceLeafData destroys the data of leaf l and constructs new data from
// content.
func (t *Tree[K, V, N]) replaceLeafData(l int32, content V) {
	rec := &t.leaves[l]
	if t.cfg.destructLeaf != nil {
		t.cfg.destructLeaf(rec.key, rec.data)
	}
	if t.cfg.constructLeaf != nil {
		content = t.cfg.constructLeaf(rec.key, content)
	}
	rec.data = content
}

func (t *Tree[K, V, N]) parentOf(r ref) int32 {
	if r.leaf {
		return t.leaves[r.idx].parent
	}
	return t.nodes[r.idx].parent
}

func (t *Tree[K, V, N]) setParent(r ref, p int32) {
	if r.leaf {
		t.leaves[r.idx].parent = p
	} else {
		t.nodes[r.idx].parent = p
	}
}

func (t *Tree[K, V, N]) child(n int32, i int) ref {
	rec := &t.nodes[n]
	return ref{idx: rec.children[i], leaf: rec.leafMask&(1<<i) != 0}
}

// setChild stores r in slot i of node n and makes n the parent of r.
func (t *Tree[K, V, N]) setChild(n int32, i int, r ref) {
	rec := &t.nodes[n]
	rec.children[i] = r.idx
	if r.leaf {
		rec.leafMask |= 1 << i
	} else {
		rec.leafMask &^= 1 << i
	}
	if r.idx != null {
		t.setParent(r, n)
	}
}

// slotOf returns the child index of r in its parent node p.
func (t *Tree[K, V, N]) slotOf(p int32, r ref) int {
	rec := &t.nodes[p]
	for i := range t.cfg.variant.ChildrenPerNode() {
		if rec.children[i] == r.idx && (rec.leafMask&(1<<i) != 0) == r.leaf {
			return i
		}
	}
	panic("tree: item not found in parent")
}

// replaceItem puts r where old used to be.
func (t *Tree[K, V, N]) replaceItem(old, r ref) {
	p := t.parentOf(old)
	if p == null {
		t.setRoot(r)
		return
	}
	t.setChild(p, t.slotOf(p, old), r)
}

func (t *Tree[K, V, N]) numChildren(n int32) int {
	k := 0
	for i := range t.cfg.variant.ChildrenPerNode() {
		if t.nodes[n].children[i] != null {
			k++
		}
	}
	return k
}

// bubble calls fn for node n and its ancestors, as long as fn returns
// true.  child is the slot of n which changed.
func (t *Tree[K, V, N]) bubble(n int32, child int, fn func(Node[K, V, N], int) bool) {
	if fn == nil {
		return
	}
	for n != null {
		if !fn(Node[K, V, N]{t: t, id: n}, child) {
			return
		}
		p := t.nodes[n].parent
		if p != null {
			child = t.slotOf(p, ref{idx: n})
		}
		n = p
	}
}

func (t *Tree[K, V, N]) update(n int32, child int) {
	t.bubble(n, child, t.cfg.updateNode)
}

// refresh recomputes the user data of a single node after its children
// were rearranged.
func (t *Tree[K, V, N]) refresh(n int32) {
	if t.cfg.updateNode != nil {
		t.cfg.updateNode(Node[K, V, N]{t: t, id: n}, AllChildren)
	}
}

// leafChanged bubbles an update starting at the parent of leaf l.
func (t *Tree[K, V, N]) leafChanged(l int32) {
	p := t.leaves[l].parent
	if p == null {
		return
	}
	t.update(p, t.slotOf(p, ref{idx: l, leaf: true}))
}

// edgeLeaf returns the first (forward) or last leaf below r which is
// accepted by f.
func (t *Tree[K, V, N]) edgeLeaf(r ref, forward bool, f *box) int32 {
	if r.idx == null {
		return null
	}
	if r.leaf {
		if f != nil && !f.containsPoint(t.cfg.keys.Coords(t.leaves[r.idx].key), t.dims()) {
			return null
		}
		return r.idx
	}
	if f != nil && !t.nodeMeets(r.idx, f) {
		return null
	}
	k := t.cfg.variant.ChildrenPerNode()
	for j := range k {
		i := j
		if !forward {
			i = k - 1 - j
		}
		if l := t.edgeLeaf(t.child(r.idx, i), forward, f); l != null {
			return l
		}
	}
	return null
}

// stepLeaf returns the leaf after (forward) or before leaf l which is
// accepted by f.
func (t *Tree[K, V, N]) stepLeaf(l int32, forward bool, f *box) int32 {
	cur := ref{idx: l, leaf: true}
	k := t.cfg.variant.ChildrenPerNode()
	for {
		p := t.parentOf(cur)
		if p == null {
			return null
		}
		i := t.slotOf(p, cur)
		for {
			if forward {
				i++
			} else {
				i--
			}
			if i < 0 || i >= k {
				break
			}
			if res := t.edgeLeaf(t.child(p, i), forward, f); res != null {
				return res
			}
		}
		cur = ref{idx: p}
	}
}

// Node gives callbacks access to an inner node of a tree.  A Node is only
// valid until the tree is next modified.
type Node[K, V, N any] struct {
	t  *Tree[K, V, N]
	id int32
}

// Data returns a pointer to the user data of the node.
func (n Node[K, V, N]) Data() *N {
	return &n.t.nodes[n.id].data
}

// Key returns the separator key of a binary node.  For spatial nodes it
// returns the origin of the node's cube.
func (n Node[K, V, N]) Key() K {
	if n.t.cfg.variant != Binary {
		return n.t.cfg.keys.FromCoords(n.t.nodes[n.id].origin)
	}
	return n.t.nodes[n.id].key
}

// Exponent returns the child exponent of a spatial node: each child covers
// a cube of side 2^Exponent.
func (n Node[K, V, N]) Exponent() int {
	return n.t.nodes[n.id].exponent
}

// Balance returns the AVL balance of a binary node, the height of the right
// subtree minus the height of the left subtree.
func (n Node[K, V, N]) Balance() int {
	return int(n.t.nodes[n.id].balance)
}

// NumSlots returns the number of child slots.
func (n Node[K, V, N]) NumSlots() int {
	return n.t.cfg.variant.ChildrenPerNode()
}

// IsLeaf reports whether child slot i holds a leaf.
func (n Node[K, V, N]) IsLeaf(i int) bool {
	return n.t.child(n.id, i).leaf
}

// Leaf returns the key and data of the leaf in slot i.  The final result is
// false if the slot does not hold a leaf.
func (n Node[K, V, N]) Leaf(i int) (K, *V, bool) {
	c := n.t.child(n.id, i)
	if c.idx == null || !c.leaf {
		var zero K
		return zero, nil, false
	}
	rec := &n.t.leaves[c.idx]
	return rec.key, &rec.data, true
}

// Child returns the inner node in slot i.  The second result is false if
// the slot does not hold a node.
func (n Node[K, V, N]) Child(i int) (Node[K, V, N], bool) {
	c := n.t.child(n.id, i)
	if c.idx == null || c.leaf {
		return Node[K, V, N]{}, false
	}
	return Node[K, V, N]{t: n.t, id: c.idx}, true
}

// Parent returns the parent of the node.  The second result is false for
// the root.
func (n Node[K, V, N]) Parent() (Node[K, V, N], bool) {
	p := n.t.nodes[n.id].parent
	if p == null {
		return Node[K, V, N]{}, false
	}
	return Node[K, V, N]{t: n.t, id: p}, true
}
