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
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"seehuhn.de/go/geom/vec"
)

func TestConfigValidation(t *testing.T) {
	var cerr *ConfigError

	_, err := NewConfig[int, int, int](Binary, IntKeys(), AVL)
	if err != nil {
		t.Errorf("binary AVL: %v", err)
	}
	_, err = NewConfig[None, int, int](Binary, NoKeys(), 0)
	if err != nil {
		t.Errorf("binary without keys: %v", err)
	}
	_, err = NewConfig[int, int, int](Quad, IntKeys(), 0)
	if !errors.As(err, &cerr) {
		t.Errorf("quadtree with int keys: got %v", err)
	}
	_, err = NewConfig[int, int, int](Binary, IntKeys(), RootNoLeaf)
	if !errors.As(err, &cerr) {
		t.Errorf("binary with RootNoLeaf: got %v", err)
	}
	_, err = NewConfig[vec.Vec2, int, int](Quad, PositionKeys(), AVL)
	if !errors.As(err, &cerr) {
		t.Errorf("AVL quadtree: got %v", err)
	}
	_, err = NewConfig[vec.Vec2, int, int](Oct, PositionKeys(), 0)
	if !errors.As(err, &cerr) {
		t.Errorf("octtree with 2D keys: got %v", err)
	}
	_, err = NewConfig[vec.Vec2, int, int](Binary, PositionKeys(), 0)
	if !errors.As(err, &cerr) {
		t.Errorf("binary tree with 2D keys: got %v", err)
	}
	_, err = NewConfig[Vertex, int, int](Oct, VertexKeys(), RootNoLeaf)
	if err != nil {
		t.Errorf("octtree: %v", err)
	}
	_, err = NewConfig[int, int, int](Binary, Keys[int]{Kind: KeyScalar}, 0)
	if !errors.As(err, &cerr) {
		t.Errorf("scalar keys without Less: got %v", err)
	}
}

func TestConfigLock(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	cfg, err := NewConfig[vec.Vec2, int, int](Quad, PositionKeys(), 0)
	if err != nil {
		t.Fatal(err)
	}
	cfg.SetLeafExponent(3)
	if len(hook.AllEntries()) != 0 {
		t.Errorf("unexpected warning before first use: %v", hook.LastEntry())
	}

	tr := New(cfg)
	if !cfg.Locked() || cfg.Refs() != 1 {
		t.Errorf("locked=%t, refs=%d after New", cfg.Locked(), cfg.Refs())
	}

	cfg.SetLeafExponent(1)
	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("no warning for modified configuration: %v", entry)
	}
	if entry.Data["setter"] != "SetLeafExponent" {
		t.Errorf("warning names setter %v", entry.Data["setter"])
	}
	if cfg.leafExponent != 1 {
		t.Error("setter did not take effect")
	}

	if err := tr.Clear(); err != nil {
		t.Fatal(err)
	}
	if cfg.Refs() != 0 {
		t.Errorf("refs=%d after Clear", cfg.Refs())
	}
}

func TestLifecycleCallbacks(t *testing.T) {
	cfg, err := NewConfig[int, string, int](Binary, IntKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}

	treeDestroyed := false
	cfg.SetTreeCallbacks(
		func() any { return "tree data" },
		func(data any) { treeDestroyed = data == "tree data" },
	)
	var destroyed []string
	cfg.SetLeafCallbacks(
		func(key int, content string) string { return content + "!" },
		func(key int, data string) { destroyed = append(destroyed, data) },
	)
	nodes := 0
	cfg.SetNodeCallbacks(
		func(n Node[int, string, int]) int { nodes++; return 0 },
		func(int) { nodes-- },
		nil,
	)

	tr := New(cfg)
	if tr.UserData() != "tree data" {
		t.Errorf("tree data %v", tr.UserData())
	}
	it := tr.Modifier()
	for i, s := range []string{"a", "b", "c", "d"} {
		it.AddKeyed(i, s, false)
	}
	if it.Value() != "d!" {
		t.Errorf("constructed data %q", it.Value())
	}
	if nodes != 3 {
		t.Errorf("%d nodes for 4 leaves", nodes)
	}

	created, _ := it.AddKeyed(1, "x", true)
	if created {
		t.Error("replace created a leaf")
	}
	if diff := cmp.Diff([]string{"b!"}, destroyed); diff != "" {
		t.Errorf("destroyed (-want +got):\n%s", diff)
	}
	if v, _ := tr.Lookup(1); v != "x!" {
		t.Errorf("replaced data %q", v)
	}

	if err := tr.Clear(); !errors.Is(err, ErrIteratorsAlive) {
		t.Errorf("Clear with open iterator: %v", err)
	}
	it.Close()
	if err := tr.Clear(); err != nil {
		t.Fatal(err)
	}
	slices.Sort(destroyed)
	if diff := cmp.Diff([]string{"a!", "b!", "c!", "d!", "x!"}, destroyed); diff != "" {
		t.Errorf("destroyed (-want +got):\n%s", diff)
	}
	if nodes != 0 {
		t.Errorf("%d nodes not destroyed", nodes)
	}
	if !treeDestroyed {
		t.Error("tree data not destroyed")
	}

	it = tr.Modifier()
	if _, err := it.AddKeyed(1, "y", false); err != ErrClosed {
		t.Errorf("AddKeyed on cleared tree: %v", err)
	}
}

// countLeaves computes the number of leaves below n from the children.
func countLeaves[K any](n Node[K, string, int]) int {
	s := 0
	for i := range n.NumSlots() {
		if _, _, ok := n.Leaf(i); ok {
			s++
		} else if c, ok := n.Child(i); ok {
			s += *c.Data()
		}
	}
	return s
}

// verifyCounts checks the cached leaf counts of all nodes below n.
func verifyCounts[K any](t *testing.T, n Node[K, string, int]) int {
	t.Helper()
	s := 0
	for i := range n.NumSlots() {
		if _, _, ok := n.Leaf(i); ok {
			s++
		} else if c, ok := n.Child(i); ok {
			s += verifyCounts(t, c)
		}
	}
	if *n.Data() != s {
		t.Fatalf("node caches %d leaves, has %d", *n.Data(), s)
	}
	return s
}

func setCounting[K any](cfg *Config[K, string, int]) {
	cfg.SetNodeCallbacks(
		countLeaves[K],
		nil,
		func(n Node[K, string, int], child int) bool {
			*n.Data() = countLeaves(n)
			return true
		},
	)
}

func TestUpdateBubbling(t *testing.T) {
	cfg, err := NewConfig[int, string, int](Binary, IntKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}
	setCounting(cfg)
	tr := New(cfg)
	it := tr.Modifier()
	defer it.Close()

	rng := rand.New(rand.NewSource(5))
	for range 2000 {
		k := rng.Intn(300)
		if it.LocateKey(k, true) && rng.Intn(2) == 0 {
			if err := it.RemoveCurrent(); err != nil {
				t.Fatal(err)
			}
		} else {
			it.AddKeyed(k, "", false)
		}
		if root, ok := tr.Root(); ok {
			if n := verifyCounts(t, root); n != tr.Len() {
				t.Fatalf("root counts %d leaves, Len is %d", n, tr.Len())
			}
		}
	}
}

func TestUpdateBubblingSpatial(t *testing.T) {
	cfg, err := NewConfig[vec.Vec2, string, int](Quad, PositionKeys(), RootNoLeaf)
	if err != nil {
		t.Fatal(err)
	}
	setCounting(cfg)
	tr := New(cfg)
	it := tr.Modifier()
	defer it.Close()

	rng := rand.New(rand.NewSource(6))
	for range 1000 {
		p := vec.Vec2{X: float64(rng.Intn(64) - 32), Y: float64(rng.Intn(64) - 32)}
		if it.LocateKey(p, true) && rng.Intn(3) == 0 {
			if err := it.RemoveCurrent(); err != nil {
				t.Fatal(err)
			}
		} else {
			it.AddKeyed(p, "", false)
		}
		root, ok := tr.Root()
		if !ok {
			t.Fatal("no root node")
		}
		if n := verifyCounts(t, root); n != tr.Len() {
			t.Fatalf("root counts %d leaves, Len is %d", n, tr.Len())
		}
	}
}

func TestUpdateLeafAndBubbleToken(t *testing.T) {
	cfg, err := NewConfig[int, int, int](Binary, IntKeys(), AVL)
	if err != nil {
		t.Fatal(err)
	}
	sum := func(n Node[int, int, int]) int {
		s := 0
		for i := range n.NumSlots() {
			if _, v, ok := n.Leaf(i); ok {
				s += *v
			} else if c, ok := n.Child(i); ok {
				s += *c.Data()
			}
		}
		return s
	}
	cfg.SetNodeCallbacks(sum, nil, func(n Node[int, int, int], child int) bool {
		old := *n.Data()
		*n.Data() = sum(n)
		return *n.Data() != old
	})
	tr := New(cfg)
	it := tr.Modifier()
	defer it.Close()
	for k := range 20 {
		it.AddKeyed(k, k, false)
	}
	root, _ := tr.Root()
	if *root.Data() != 190 {
		t.Fatalf("sum %d, want 190", *root.Data())
	}

	mut := tr.Mutator()
	defer mut.Close()
	mut.LocateKey(7, false)
	*mut.Data() = 107
	if err := mut.UpdateLeaf(); err != nil {
		t.Fatal(err)
	}
	root, _ = tr.Root()
	if *root.Data() != 290 {
		t.Errorf("sum %d after update, want 290", *root.Data())
	}

	acc := tr.Accessor()
	defer acc.Close()
	if acc.Data() != nil {
		t.Error("accessor returned a data pointer")
	}
	if err := acc.UpdateLeaf(); err != ErrAccess {
		t.Errorf("UpdateLeaf on accessor: %v", err)
	}
	if err := acc.BubbleToken(nil); err != ErrInitial {
		t.Errorf("BubbleToken at initial position: %v", err)
	}

	acc.LocateKey(3, false)
	levels := 0
	err = acc.BubbleToken(func(n Node[int, int, int], child int) bool {
		levels++
		if _, ok := n.Parent(); !ok {
			return false
		}
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	if levels == 0 || levels > tr.Depth() {
		t.Errorf("bubbled through %d levels, depth %d", levels, tr.Depth())
	}
}

func TestIteratorDirections(t *testing.T) {
	tr := newIntTree(t, AVL)
	it := tr.Modifier()
	defer it.Close()
	rng := rand.New(rand.NewSource(7))
	for range 100 {
		it.AddKeyed(rng.Intn(1000), "", false)
	}

	it.Reset()
	var fwd, back []int
	for it.Next() {
		fwd = append(fwd, it.Key())
	}
	if !it.AtInitial() {
		t.Error("exhausted iterator not at initial position")
	}
	for it.Prev() {
		back = append(back, it.Key())
	}
	slices.Reverse(back)
	if diff := cmp.Diff(fwd, back); diff != "" {
		t.Errorf("backward is not the reverse (-fwd +back):\n%s", diff)
	}
	if !slices.IsSorted(fwd) || len(fwd) != tr.Len() {
		t.Errorf("forward iteration not sorted or incomplete")
	}
}

// checkDirections walks the whole tree forwards and then backwards from the
// end and compares the two sequences.
func checkDirections[K comparable, V, N any](t *testing.T, tr *Tree[K, V, N]) []K {
	t.Helper()
	it := tr.Accessor()
	defer it.Close()

	var fwd, back []K
	for it.Next() {
		fwd = append(fwd, it.Key())
	}
	if !it.AtInitial() {
		t.Error("exhausted iterator not at initial position")
	}
	for it.Prev() {
		back = append(back, it.Key())
	}
	slices.Reverse(back)
	if diff := cmp.Diff(fwd, back); diff != "" {
		t.Errorf("backward is not the reverse (-fwd +back):\n%s", diff)
	}
	if len(fwd) != tr.Len() {
		t.Errorf("visited %d leaves, Len is %d", len(fwd), tr.Len())
	}
	seen := make(map[K]bool, len(fwd))
	for _, k := range fwd {
		if seen[k] {
			t.Errorf("key %v visited twice", k)
		}
		seen[k] = true
	}
	return fwd
}

func TestIteratorDirectionsSpatial(t *testing.T) {
	t.Run("quad", func(t *testing.T) {
		for _, flags := range []Flags{0, RootNoLeaf} {
			tr := newQuadTree(t, flags, -1)
			it := tr.Modifier()
			rng := rand.New(rand.NewSource(8))
			for i := range 300 {
				p := vec.Vec2{X: rng.NormFloat64() * 30, Y: rng.NormFloat64() * 30}
				it.AddKeyed(p, i, false)
				if i%50 == 0 {
					checkDirections(t, tr)
				}
			}
			keys := checkDirections(t, tr)
			for _, k := range keys[:len(keys)/2] {
				it.LocateKey(k, false)
				if err := it.RemoveCurrent(); err != nil {
					t.Fatal(err)
				}
			}
			checkDirections(t, tr)
			it.Close()
		}
	})
	t.Run("oct", func(t *testing.T) {
		cfg, err := NewConfig[Vertex, int, int](Oct, VertexKeys(), 0)
		if err != nil {
			t.Fatal(err)
		}
		tr := New(cfg)
		it := tr.Modifier()
		defer it.Close()
		rng := rand.New(rand.NewSource(9))
		for i := range 300 {
			v := Vertex{X: rng.Float64() * 64, Y: rng.Float64() * 64, Z: rng.Float64() * 64}
			it.AddKeyed(v, i, false)
		}
		keys := checkDirections(t, tr)
		for i := 0; i < len(keys); i += 2 {
			it.LocateKey(keys[i], false)
			if err := it.RemoveCurrent(); err != nil {
				t.Fatal(err)
			}
		}
		checkDirections(t, tr)
	})
}

func TestIteratorRange(t *testing.T) {
	tr := newIntTree(t, 0)
	it := tr.Modifier()
	defer it.Close()
	for k := 0; k < 100; k += 3 {
		it.AddKeyed(k, "", false)
	}

	cases := []struct{ lo, hi int }{
		{10, 20}, {9, 21}, {-5, 5}, {95, 200}, {40, 40}, {41, 42},
	}
	for _, c := range cases {
		var want []int
		for k := 0; k < 100; k += 3 {
			if k >= c.lo && k < c.hi {
				want = append(want, k)
			}
		}

		var got []int
		it.Reset()
		for it.NextIn(c.lo, c.hi) {
			got = append(got, it.Key())
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("NextIn(%d, %d) (-want +got):\n%s", c.lo, c.hi, diff)
		}

		// starting from a leaf outside the range
		it.LocateKey(0, false)
		got = got[:0]
		for it.NextIn(c.lo, c.hi) {
			got = append(got, it.Key())
		}
		if c.lo > 0 && !cmp.Equal(want, got) && !(len(want) == 0 && len(got) == 0) {
			t.Errorf("NextIn(%d, %d) from 0: got %v, want %v", c.lo, c.hi, got, want)
		}

		got = got[:0]
		for it.PrevIn(c.lo, c.hi) {
			got = append(got, it.Key())
		}
		slices.Reverse(got)
		if !cmp.Equal(want, got) && !(len(want) == 0 && len(got) == 0) {
			t.Errorf("PrevIn(%d, %d): got %v, want %v", c.lo, c.hi, got, want)
		}
	}
}

func TestIteratorErrors(t *testing.T) {
	tr := newIntTree(t, 0)

	acc := tr.Accessor()
	if _, err := acc.AddKeyed(1, "", false); err != ErrAccess {
		t.Errorf("AddKeyed on accessor: %v", err)
	}
	acc.Close()
	acc.Close()
	if acc.Next() {
		t.Error("closed iterator moved")
	}

	a := tr.Modifier()
	defer a.Close()
	if err := a.RemoveCurrent(); err != ErrInitial {
		t.Errorf("RemoveCurrent at initial position: %v", err)
	}
	a.AddKeyed(1, "one", false)
	a.AddKeyed(2, "two", false)

	b := tr.Modifier()
	b.LocateKey(2, false)
	if err := a.RemoveCurrent(); err != ErrLeafBusy {
		t.Errorf("RemoveCurrent on shared leaf: %v", err)
	}
	b.Close()
	if err := a.RemoveCurrent(); err != nil {
		t.Errorf("RemoveCurrent: %v", err)
	}
	if !a.AtInitial() {
		t.Error("iterator not reset after removal")
	}
	if a.LocateKey(2, false) {
		t.Error("removed key found")
	}
	if !a.LocateKey(1, true) || a.Value() != "one" {
		t.Error("remaining key not found")
	}

	if err := tr.Empty(); err != ErrIteratorsAlive {
		t.Errorf("Empty with open iterator: %v", err)
	}
}
