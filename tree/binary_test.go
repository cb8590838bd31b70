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
	"math"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// checkBinary verifies the structure of an int-keyed binary tree: parent
// links, separator keys, leaf count and, for AVL trees, the balances.
func checkBinary[V, N any](t *testing.T, tr *Tree[int, V, N]) {
	t.Helper()

	if tr.root == null {
		if tr.Len() != 0 {
			t.Fatalf("empty tree has Len %d", tr.Len())
		}
		return
	}
	if tr.parentOf(tr.rootRef()) != null {
		t.Fatal("root has a parent")
	}

	avl := tr.cfg.flags&AVL != 0
	count := 0
	// walk returns the height of the subtree and checks that all keys lie
	// in [lo, hi).
	var walk func(r ref, lo, hi int) int
	walk = func(r ref, lo, hi int) int {
		if r.leaf {
			count++
			if k := tr.leaves[r.idx].key; k < lo || k >= hi {
				t.Fatalf("leaf key %d outside [%d, %d)", k, lo, hi)
			}
			return 0
		}
		sep := tr.nodes[r.idx].key
		var h [2]int
		for i := range 2 {
			c := tr.child(r.idx, i)
			if c.idx == null {
				t.Fatal("binary node with empty slot")
			}
			if tr.parentOf(c) != r.idx {
				t.Fatal("wrong parent link")
			}
			if i == 0 {
				h[i] = walk(c, lo, min(hi, sep))
			} else {
				h[i] = walk(c, max(lo, sep), hi)
			}
		}
		if avl {
			bal := h[1] - h[0]
			if bal < -1 || bal > 1 {
				t.Fatalf("node out of balance: %d", bal)
			}
			if bal != int(tr.nodes[r.idx].balance) {
				t.Fatalf("stored balance %d, actual %d", tr.nodes[r.idx].balance, bal)
			}
		}
		return max(h[0], h[1]) + 1
	}
	walk(tr.rootRef(), math.MinInt, math.MaxInt)

	if count != tr.Len() {
		t.Fatalf("found %d leaves, Len is %d", count, tr.Len())
	}
}

func keysOf[V, N any](tr *Tree[int, V, N]) []int {
	var res []int
	for k := range tr.All() {
		res = append(res, k)
	}
	return res
}

func newIntTree(t *testing.T, flags Flags) *Tree[int, string, int] {
	t.Helper()
	cfg, err := NewConfig[int, string, int](Binary, IntKeys(), flags)
	if err != nil {
		t.Fatal(err)
	}
	return New(cfg)
}

func TestAVLScenario(t *testing.T) {
	tr := newIntTree(t, AVL)
	it := tr.Modifier()
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9} {
		created, err := it.AddKeyed(k, "", false)
		if err != nil {
			t.Fatal(err)
		}
		if !created {
			t.Errorf("key %d not created", k)
		}
		checkBinary(t, tr)
	}
	it.Close()

	if diff := cmp.Diff([]int{1, 3, 4, 5, 7, 8, 9}, keysOf(tr)); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if d := tr.Depth(); d > 4 {
		t.Errorf("depth %d > 4", d)
	}
}

func TestRandomInsertRemove(t *testing.T) {
	for _, flags := range []Flags{0, AVL} {
		rng := rand.New(rand.NewSource(int64(flags) + 1))
		tr := newIntTree(t, flags)
		it := tr.Modifier()

		present := map[int]bool{}
		for range 1000 {
			k := rng.Intn(600)
			created, err := it.AddKeyed(k, "", false)
			if err != nil {
				t.Fatal(err)
			}
			if created == present[k] {
				t.Fatalf("key %d: created=%t, present=%t", k, created, present[k])
			}
			present[k] = true
			if it.Key() != k {
				t.Fatalf("iterator at %d after inserting %d", it.Key(), k)
			}
			checkBinary(t, tr)
		}

		var want []int
		for k := range present {
			want = append(want, k)
		}
		slices.Sort(want)
		if diff := cmp.Diff(want, keysOf(tr)); diff != "" {
			t.Fatalf("keys (-want +got):\n%s", diff)
		}
		if flags&AVL != 0 {
			// AVL trees have height < 1.45 log2(n+2)
			bound := int(1.45*math.Log2(float64(len(want)+2))) + 1
			if d := tr.Depth(); d > bound {
				t.Errorf("depth %d exceeds AVL bound %d", d, bound)
			}
		}

		rng.Shuffle(len(want), func(i, j int) { want[i], want[j] = want[j], want[i] })
		for i, k := range want {
			if !it.LocateKey(k, i%2 == 0) {
				t.Fatalf("key %d not found", k)
			}
			if err := it.RemoveCurrent(); err != nil {
				t.Fatal(err)
			}
			if it.LocateKey(k, false) {
				t.Fatalf("key %d found after removal", k)
			}
			checkBinary(t, tr)
		}
		if tr.root != null || tr.Len() != 0 {
			t.Errorf("tree not empty after removing all keys")
		}
		it.Close()
	}
}

func TestInterleavedInsertRemove(t *testing.T) {
	for _, flags := range []Flags{0, AVL} {
		rng := rand.New(rand.NewSource(int64(flags) + 5))
		tr := newIntTree(t, flags)
		it := tr.Modifier()

		present := map[int]bool{}
		for step := range 3000 {
			k := rng.Intn(300)
			if rng.Intn(3) == 0 {
				found := it.LocateKey(k, step%2 == 0)
				if found != present[k] {
					t.Fatalf("step %d: LocateKey(%d) = %t, present=%t", step, k, found, present[k])
				}
				if found {
					if err := it.RemoveCurrent(); err != nil {
						t.Fatal(err)
					}
					delete(present, k)
				}
			} else {
				created, err := it.AddKeyed(k, "", false)
				if err != nil {
					t.Fatal(err)
				}
				if created == present[k] {
					t.Fatalf("step %d: key %d created=%t, present=%t", step, k, created, present[k])
				}
				present[k] = true
			}
			checkBinary(t, tr)
			if tr.Len() != len(present) {
				t.Fatalf("step %d: Len %d, want %d", step, tr.Len(), len(present))
			}
		}

		var want []int
		for k := range present {
			want = append(want, k)
		}
		slices.Sort(want)
		if diff := cmp.Diff(want, keysOf(tr)); diff != "" {
			t.Errorf("keys (-want +got):\n%s", diff)
		}
		it.Close()
	}
}

func TestBubbleLocate(t *testing.T) {
	tr := newIntTree(t, AVL)
	it := tr.Modifier()
	for k := 0; k < 200; k += 2 {
		it.AddKeyed(k, "", false)
	}
	it.Close()

	// start the search from every leaf, for present and absent keys
	for from := 0; from < 200; from += 2 {
		hint := tr.locateBinary(null, from)
		for k := -3; k < 203; k++ {
			got := tr.locateBinary(hint, k)
			want := tr.locateBinary(null, k)
			if got != want {
				t.Fatalf("from %d, key %d: got leaf %d, want %d",
					from, k, tr.leaves[got].key, tr.leaves[want].key)
			}
		}
	}
}

func TestAVLRotations(t *testing.T) {
	// ascending, descending and zig-zag insertion orders exercise all
	// four rotation cases
	orders := map[string][]int{
		"ascending":  {1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15},
		"descending": {15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1},
		"zigzag":     {10, 2, 8, 4, 6, 5, 7, 3, 9, 1, 11, 15, 12, 14, 13},
	}
	for name, keys := range orders {
		t.Run(name, func(t *testing.T) {
			tr := newIntTree(t, AVL)
			it := tr.Modifier()
			defer it.Close()
			for _, k := range keys {
				it.AddKeyed(k, "", false)
				checkBinary(t, tr)
			}
			if d := tr.Depth(); d > 5 {
				t.Errorf("depth %d for 15 leaves", d)
			}
			for _, k := range keys[:10] {
				it.LocateKey(k, false)
				if err := it.RemoveCurrent(); err != nil {
					t.Fatal(err)
				}
				checkBinary(t, tr)
			}
		})
	}
}

func TestKeylessOrder(t *testing.T) {
	cfg, err := NewConfig[None, string, struct{}](Binary, NoKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}
	tr := New(cfg)
	it := tr.Modifier()

	values := func() []string {
		var res []string
		for _, v := range tr.All() {
			res = append(res, v)
		}
		return res
	}

	steps := []struct {
		op   string
		v    string
		want []string
	}{
		{"next", "a", []string{"a"}},
		{"next", "b", []string{"a", "b"}},
		{"prev", "c", []string{"a", "c", "b"}},
		{"reset-next", "d", []string{"d", "a", "c", "b"}},
		{"reset-prev", "e", []string{"d", "a", "c", "b", "e"}},
		{"prev", "f", []string{"d", "a", "c", "b", "f", "e"}},
	}
	for _, s := range steps {
		switch s.op {
		case "next":
			err = it.AddNext(s.v)
		case "prev":
			err = it.AddPrev(s.v)
		case "reset-next":
			it.Reset()
			err = it.AddNext(s.v)
		case "reset-prev":
			it.Reset()
			err = it.AddPrev(s.v)
		}
		if err != nil {
			t.Fatal(err)
		}
		if it.Value() != s.v {
			t.Errorf("iterator at %q after adding %q", it.Value(), s.v)
		}
		if diff := cmp.Diff(s.want, values()); diff != "" {
			t.Errorf("after %s %q (-want +got):\n%s", s.op, s.v, diff)
		}
	}

	if it.LocateKey(None{}, false) {
		t.Error("LocateKey succeeded on a tree without keys")
	}
	if _, err := it.AddKeyed(None{}, "x", false); err != ErrNoKeys {
		t.Errorf("AddKeyed: got %v, want %v", err, ErrNoKeys)
	}

	it.Reset()
	var got []string
	for it.Prev() {
		got = append(got, it.Value())
	}
	if diff := cmp.Diff([]string{"e", "f", "b", "c", "a", "d"}, got); diff != "" {
		t.Errorf("backward (-want +got):\n%s", diff)
	}
	it.Close()
}

func TestKeyedRejectsPositional(t *testing.T) {
	tr := newIntTree(t, 0)
	it := tr.Modifier()
	defer it.Close()
	if err := it.AddNext("x"); err != ErrKeyed {
		t.Errorf("AddNext: got %v, want %v", err, ErrKeyed)
	}
	if err := it.AddPrev("x"); err != ErrKeyed {
		t.Errorf("AddPrev: got %v, want %v", err, ErrKeyed)
	}
}

func TestDoubleKeys(t *testing.T) {
	cfg, err := NewConfig[float64, int, struct{}](Binary, DoubleKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}
	tr := New(cfg)
	it := tr.Modifier()
	defer it.Close()

	keys := []float64{0.5, -1.25, 3, 2.75, 1e-9, -1e9}
	for i, k := range keys {
		it.AddKeyed(k, i, false)
	}
	var got []float64
	for k := range tr.All() {
		got = append(got, k)
	}
	want := slices.Clone(keys)
	slices.Sort(want)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	if v, ok := tr.Lookup(2.75); !ok || v != 3 {
		t.Errorf("Lookup(2.75) = %d, %t", v, ok)
	}
	if _, ok := tr.Lookup(2.7); ok {
		t.Error("Lookup(2.7) succeeded")
	}
}

func TestNaNKeys(t *testing.T) {
	cfg, err := NewConfig[float64, string, struct{}](Binary, DoubleKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}
	tr := New(cfg)
	it := tr.Modifier()
	defer it.Close()
	it.AddKeyed(1, "one", false)
	it.AddKeyed(2, "two", false)

	nan := math.NaN()
	for _, replace := range []bool{false, true} {
		created, err := it.AddKeyed(nan, "nan", replace)
		if created || err != ErrKeyRange {
			t.Errorf("AddKeyed(NaN, replace=%t) = %t, %v", replace, created, err)
		}
	}
	if tr.Len() != 2 {
		t.Errorf("Len %d after NaN inserts, want 2", tr.Len())
	}
	for k, want := range map[float64]string{1: "one", 2: "two"} {
		if v, ok := tr.Lookup(k); !ok || v != want {
			t.Errorf("Lookup(%g) = %q, %t", k, v, ok)
		}
	}

	if _, ok := tr.Lookup(nan); ok {
		t.Error("Lookup(NaN) succeeded")
	}
	it.LocateKey(1, false)
	if it.LocateKey(nan, true) {
		t.Error("LocateKey(NaN) succeeded")
	}
	if !it.AtInitial() {
		t.Error("failed LocateKey did not reset the iterator")
	}
	for _, b := range [][2]float64{{nan, 10}, {0, nan}, {nan, nan}} {
		it.Reset()
		if it.NextIn(b[0], b[1]) {
			t.Errorf("NextIn(%g, %g) found key %g", b[0], b[1], it.Key())
		}
		it.Reset()
		if it.PrevIn(b[0], b[1]) {
			t.Errorf("PrevIn(%g, %g) found key %g", b[0], b[1], it.Key())
		}
	}

	// the tree stays usable for ordinary keys
	for _, k := range []float64{0.5, 1.5, 3} {
		it.AddKeyed(k, "", false)
	}
	var got []float64
	for k := range tr.All() {
		got = append(got, k)
	}
	if diff := cmp.Diff([]float64{0.5, 1, 1.5, 2, 3}, got); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
}
