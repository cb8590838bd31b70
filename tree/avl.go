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

// The balance of a node is the height of its right subtree minus the
// height of its left subtree.

// growAVL is called after the subtree in slot of node n has grown by one
// level.
func (t *Tree[K, V, N]) growAVL(n int32, slot int) {
	for n != null {
		if slot == 0 {
			t.nodes[n].balance--
		} else {
			t.nodes[n].balance++
		}
		switch t.nodes[n].balance {
		case 0:
			return
		case -1, 1:
			p := t.nodes[n].parent
			if p != null {
				slot = t.slotOf(p, ref{idx: n})
			}
			n = p
		default:
			// After an insertion, a rotation restores the previous
			// height of the subtree.
			t.rebalance(n)
			return
		}
	}
}

// shrinkAVL is called after the subtree in slot of node n has lost one
// level.
func (t *Tree[K, V, N]) shrinkAVL(n int32, slot int) {
	for n != null {
		if slot == 0 {
			t.nodes[n].balance++
		} else {
			t.nodes[n].balance--
		}
		switch t.nodes[n].balance {
		case -1, 1:
			return
		case 0:
			// height of n decreased
		default:
			heavy := t.child(n, 0)
			if t.nodes[n].balance > 0 {
				heavy = t.child(n, 1)
			}
			heavyBalance := t.nodes[heavy.idx].balance
			n = t.rebalance(n)
			if heavyBalance == 0 {
				// the single rotation kept the height
				return
			}
		}
		p := t.nodes[n].parent
		if p != null {
			slot = t.slotOf(p, ref{idx: n})
		}
		n = p
	}
}

// rebalance performs the rotations for a node with balance +2 or -2 and
// returns the new root of the subtree.
func (t *Tree[K, V, N]) rebalance(n int32) int32 {
	if t.nodes[n].balance > 0 {
		r := t.child(n, 1).idx
		if t.nodes[r].balance < 0 {
			t.rotateRight(r)
		}
		return t.rotateLeft(n)
	}
	l := t.child(n, 0).idx
	if t.nodes[l].balance > 0 {
		t.rotateLeft(l)
	}
	return t.rotateRight(n)
}

// rotateLeft lifts the right child of x into the place of x and returns
// it.  The balance updates hold for arbitrary balances of x and of the
// right child, including the balanced children which a split can hand
// into a double rotation.
func (t *Tree[K, V, N]) rotateLeft(x int32) int32 {
	y := t.child(x, 1).idx
	inner := t.child(y, 0)

	t.replaceItem(ref{idx: x}, ref{idx: y})
	t.setChild(x, 1, inner)
	t.setChild(y, 0, ref{idx: x})

	xb := t.nodes[x].balance - 1 - max(t.nodes[y].balance, 0)
	yb := t.nodes[y].balance - 1 + min(xb, 0)
	t.nodes[x].balance = xb
	t.nodes[y].balance = yb

	t.refresh(x)
	t.refresh(y)
	return y
}

// rotateRight is the mirror image of rotateLeft.
func (t *Tree[K, V, N]) rotateRight(x int32) int32 {
	y := t.child(x, 0).idx
	inner := t.child(y, 1)

	t.replaceItem(ref{idx: x}, ref{idx: y})
	t.setChild(x, 0, inner)
	t.setChild(y, 1, ref{idx: x})

	xb := t.nodes[x].balance + 1 - min(t.nodes[y].balance, 0)
	yb := t.nodes[y].balance + 1 + max(xb, 0)
	t.nodes[x].balance = xb
	t.nodes[y].balance = yb

	t.refresh(x)
	t.refresh(y)
	return y
}
