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
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "tree.Config")

// Variant selects the tree engine.
type Variant uint8

// These are the available tree variants.
const (
	Binary Variant = iota // ordered binary tree, optionally AVL balanced
	Quad                  // 2D spatial tree with 4 children per node
	Oct                   // 3D spatial tree with 8 children per node
)

func (v Variant) String() string {
	switch v {
	case Binary:
		return "binary"
	case Quad:
		return "quadtree"
	case Oct:
		return "octtree"
	default:
		return "invalid"
	}
}

// ChildrenPerNode returns the number of child slots of an inner node.
func (v Variant) ChildrenPerNode() int {
	switch v {
	case Quad:
		return 4
	case Oct:
		return 8
	default:
		return 2
	}
}

// Flags modify the behaviour of a tree.
type Flags uint8

const (
	// AVL keeps a binary tree height-balanced.
	AVL Flags = 1 << iota

	// RootNoLeaf keeps the root of a spatial tree an inner node, even when
	// the tree holds a single leaf or none.
	RootNoLeaf
)

// Config describes how trees are built: the variant, the key type and the
// callbacks for user data attached to the tree, its leaves and nodes.
//
// A Config can be shared by many trees.  Once the first tree has been
// created from it, the configuration is locked.  Later modifications still
// take effect for all trees using the configuration, but are logged as a
// warning.
type Config[K, V, N any] struct {
	variant Variant
	flags   Flags
	keys    Keys[K]

	leafExponent int

	constructTree func() any
	destructTree  func(data any)
	constructLeaf func(key K, content V) V
	destructLeaf  func(key K, data V)
	constructNode func(n Node[K, V, N]) N
	destructNode  func(data N)
	updateNode    func(n Node[K, V, N], child int) bool

	refs   int
	locked bool
}

// NewConfig returns a new configuration.  The key kind must match the
// variant: binary trees use scalar keys or no keys, quadtrees use
// positions and octtrees use vertices.
func NewConfig[K, V, N any](variant Variant, keys Keys[K], flags Flags) (*Config[K, V, N], error) {
	switch variant {
	case Binary:
		if keys.Kind != KeyScalar && keys.Kind != KeyNone {
			return nil, &ConfigError{Reason: "binary trees need scalar keys or no keys"}
		}
		if flags&RootNoLeaf != 0 {
			return nil, &ConfigError{Reason: "RootNoLeaf applies to spatial trees only"}
		}
	case Quad:
		if keys.Kind != KeyPosition {
			return nil, &ConfigError{Reason: "quadtrees need position keys"}
		}
	case Oct:
		if keys.Kind != KeyVertex {
			return nil, &ConfigError{Reason: "octtrees need vertex keys"}
		}
	default:
		return nil, &ConfigError{Reason: "unknown variant " + variant.String()}
	}
	if flags&AVL != 0 && variant != Binary {
		return nil, &ConfigError{Reason: "AVL applies to binary trees only"}
	}
	if flags&^(AVL|RootNoLeaf) != 0 {
		return nil, &ConfigError{Reason: "unknown flags"}
	}
	switch keys.Kind {
	case KeyScalar:
		if keys.Less == nil {
			return nil, &ConfigError{Reason: "scalar keys need a Less function"}
		}
	case KeyPosition, KeyVertex:
		if keys.Coords == nil || keys.FromCoords == nil {
			return nil, &ConfigError{Reason: "spatial keys need Coords and FromCoords"}
		}
	}

	return &Config[K, V, N]{
		variant: variant,
		flags:   flags,
		keys:    keys,
	}, nil
}

// Variant returns the tree variant of the configuration.
func (c *Config[K, V, N]) Variant() Variant {
	return c.variant
}

// Flags returns the flags of the configuration.
func (c *Config[K, V, N]) Flags() Flags {
	return c.flags
}

// Locked reports whether a tree has been created from the configuration.
func (c *Config[K, V, N]) Locked() bool {
	return c.locked
}

func (c *Config[K, V, N]) checkMutable(setter string) {
	if c.locked {
		log.WithField("setter", setter).Warn("configuration modified after first use")
	}
}

// SetTreeCallbacks sets the functions which create and destroy the user
// data attached to each tree.
func (c *Config[K, V, N]) SetTreeCallbacks(construct func() any, destruct func(data any)) {
	c.checkMutable("SetTreeCallbacks")
	c.constructTree = construct
	c.destructTree = destruct
}

// SetLeafCallbacks sets the functions which turn the content passed to an
// insertion into the data stored in a leaf, and which release leaf data.
// Without a construct function, the content is stored unchanged.
func (c *Config[K, V, N]) SetLeafCallbacks(construct func(key K, content V) V, destruct func(key K, data V)) {
	c.checkMutable("SetLeafCallbacks")
	c.constructLeaf = construct
	c.destructLeaf = destruct
}

// SetNodeCallbacks sets the functions which manage the user data of inner
// nodes.
//
// construct is called when a node has been created and its children are in
// place.  update is called whenever a child of the node changed; child is
// the index of the changed slot or AllChildren.  If update returns true,
// the change is propagated to the parent node.
func (c *Config[K, V, N]) SetNodeCallbacks(construct func(n Node[K, V, N]) N, destruct func(data N), update func(n Node[K, V, N], child int) bool) {
	c.checkMutable("SetNodeCallbacks")
	c.constructNode = construct
	c.destructNode = destruct
	c.updateNode = update
}

// SetLeafExponent sets the size of the smallest spatial cell to 2^e.
// Keys are aligned to this grid by rounding each coordinate down.  The
// default exponent is 0.
func (c *Config[K, V, N]) SetLeafExponent(e int) {
	c.checkMutable("SetLeafExponent")
	if c.variant == Binary {
		log.WithField("exponent", e).Warn("leaf exponent ignored for binary trees")
		return
	}
	c.leafExponent = e
}

// Retain registers an additional user of the configuration.
func (c *Config[K, V, N]) Retain() {
	c.refs++
}

// Release drops a reference obtained from Retain or from creating a tree.
func (c *Config[K, V, N]) Release() {
	if c.refs <= 0 {
		log.Warn("configuration released too often")
		return
	}
	c.refs--
}

// Refs returns the number of live references to the configuration.
func (c *Config[K, V, N]) Refs() int {
	return c.refs
}
