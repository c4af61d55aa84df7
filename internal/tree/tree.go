// Package tree implements a generic tree of stable-ID nodes with
// non-destructive removal, reparenting and breadth-first traversal, the
// structure that backs the signature (§4.3) as an ordered forest of folders
// and generators.
package tree

import (
	"github.com/homotopy-io/homotopy-go/internal/idx"
)

// Node is a stable, opaque identifier for a position in a Tree.
type Node idx.Index

type nodeData[T any] struct {
	data     T
	parent   Node
	hasRoot  bool // false only for the synthetic root sentinel's own parent
	children []Node
	removed  bool
}

// Tree is a forest-shaped container: every non-root node has exactly one
// parent, reachable through Ancestors; disconnected subtrees remain
// addressable (their data intact) until Compact is called.
type Tree[T any] struct {
	nodes *idx.Vec[nodeData[T]]
	root  Node
}

// New returns a Tree whose root node carries rootData.
func New[T any](rootData T) *Tree[T] {
	nodes := idx.New[nodeData[T]]()
	root := Node(nodes.Push(nodeData[T]{data: rootData}))
	return &Tree[T]{nodes: nodes, root: root}
}

// Root returns the tree's root node.
func (t *Tree[T]) Root() Node {
	return t.root
}

// Get returns the data stored at n and whether n exists. A removed node keeps
// its data, readable through Get, until Compact runs.
func (t *Tree[T]) Get(n Node) (T, bool) {
	nd, ok := t.nodes.Get(idx.Index(n))
	if !ok {
		var zero T
		return zero, false
	}
	return nd.data, true
}

// Set overwrites the data stored at an existing, live node.
func (t *Tree[T]) Set(n Node, data T) {
	nd := t.nodes.At(idx.Index(n))
	nd.data = data
	t.nodes.Set(idx.Index(n), nd)
}

// Parent returns n's parent, or (zero, false) for the root or a node that no
// longer exists.
func (t *Tree[T]) Parent(n Node) (Node, bool) {
	nd, ok := t.nodes.Get(idx.Index(n))
	if !ok || nd.removed || !nd.hasRoot {
		return Node(0), false
	}
	return nd.parent, true
}

// Children returns n's children in order.
func (t *Tree[T]) Children(n Node) []Node {
	nd, ok := t.nodes.Get(idx.Index(n))
	if !ok {
		return nil
	}
	out := make([]Node, len(nd.children))
	copy(out, nd.children)
	return out
}

// PushUnder creates a new node carrying data as the last child of parent,
// and returns its Node. It panics if parent does not exist.
func (t *Tree[T]) PushUnder(parent Node, data T) Node {
	if _, ok := t.nodes.Get(idx.Index(parent)); !ok {
		panic("tree: PushUnder on non-existent parent")
	}
	child := Node(t.nodes.Push(nodeData[T]{data: data, parent: parent, hasRoot: true}))
	pd := t.nodes.At(idx.Index(parent))
	pd.children = append(pd.children, child)
	t.nodes.Set(idx.Index(parent), pd)
	return child
}

// Remove disconnects the subtree rooted at n from the rest of the tree. The
// data of n and its descendants is left untouched until Compact runs; it is a
// no-op on the root.
func (t *Tree[T]) Remove(n Node) {
	if n == t.root {
		return
	}
	nd, ok := t.nodes.Get(idx.Index(n))
	if !ok || nd.removed {
		return
	}
	if nd.hasRoot {
		t.detachFromParent(n, nd.parent)
	}
	nd.removed = true
	nd.hasRoot = false
	t.nodes.Set(idx.Index(n), nd)
}

func (t *Tree[T]) detachFromParent(n, parent Node) {
	pd, ok := t.nodes.Get(idx.Index(parent))
	if !ok {
		return
	}
	out := pd.children[:0:0]
	for _, c := range pd.children {
		if c != n {
			out = append(out, c)
		}
	}
	pd.children = out
	t.nodes.Set(idx.Index(parent), pd)
}

// ReparentUnder moves n (and its subtree) to become the last child of
// newParent. Panics if n is the root, or if newParent is a descendant of n
// (which would introduce a cycle).
func (t *Tree[T]) ReparentUnder(n, newParent Node) {
	t.reparentAt(n, newParent, func([]Node) int { return -1 })
}

// ReparentBeforeSibling moves n to become the sibling immediately preceding
// successor, under successor's current parent. It is a no-op if successor has
// no parent (i.e. is the root) or equals n.
func (t *Tree[T]) ReparentBeforeSibling(n, successor Node) {
	if n == t.root || n == successor {
		return
	}
	parent, ok := t.Parent(successor)
	if !ok {
		return
	}
	t.reparentAt(n, parent, func(siblings []Node) int {
		for i, s := range siblings {
			if s == successor {
				return i
			}
		}
		return -1
	})
}

func (t *Tree[T]) reparentAt(n, newParent Node, index func([]Node) int) {
	if n == t.root {
		panic("tree: cannot reparent the root")
	}
	for a := range t.Ancestors(newParent) {
		if a == n {
			panic("tree: reparenting would introduce a cycle")
		}
	}
	nd, ok := t.nodes.Get(idx.Index(n))
	if !ok {
		return
	}
	if nd.hasRoot {
		t.detachFromParent(n, nd.parent)
	}
	nd.parent = newParent
	nd.hasRoot = true
	t.nodes.Set(idx.Index(n), nd)

	pd := t.nodes.At(idx.Index(newParent))
	at := index(pd.children)
	if at < 0 || at > len(pd.children) {
		pd.children = append(pd.children, n)
	} else {
		pd.children = append(pd.children, Node(0))
		copy(pd.children[at+1:], pd.children[at:])
		pd.children[at] = n
	}
	t.nodes.Set(idx.Index(newParent), pd)
}

// Ancestors yields n, then its parent, then its parent's parent, and so on up
// to (and including) the root.
func (t *Tree[T]) Ancestors(n Node) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		cur, ok := n, true
		for ok {
			if !yield(cur) {
				return
			}
			cur, ok = t.Parent(cur)
		}
	}
}

// Descendants yields n and all of its descendants in breadth-first order.
func (t *Tree[T]) Descendants(n Node) func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		queue := []Node{n}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if !yield(cur) {
				return
			}
			queue = append(queue, t.Children(cur)...)
		}
	}
}

// All yields every live (node, data) pair reachable from the root in
// breadth-first order.
func (t *Tree[T]) All(yield func(Node, T) bool) {
	for n := range t.Descendants(t.root) {
		data, ok := t.Get(n)
		if !ok {
			continue
		}
		if !yield(n, data) {
			return
		}
	}
}

// Compact prunes every disconnected (removed) subtree, reclaiming the
// storage backing the tree's node vector. Live node identities are not
// preserved across Compact: use the returned remapping to translate old
// Nodes into new ones.
func (t *Tree[T]) Compact() map[Node]Node {
	remap := make(map[Node]Node)
	fresh := idx.New[nodeData[T]]()
	newRoot := Node(fresh.Push(nodeData[T]{data: t.nodes.At(idx.Index(t.root)).data}))
	remap[t.root] = newRoot

	queue := []Node{t.root}
	for len(queue) > 0 {
		old := queue[0]
		queue = queue[1:]
		newSelf := remap[old]
		for _, oldChild := range t.Children(old) {
			nd, ok := t.nodes.Get(idx.Index(oldChild))
			if !ok || nd.removed {
				continue
			}
			newChild := Node(fresh.Push(nodeData[T]{data: nd.data, parent: newSelf, hasRoot: true}))
			sd := fresh.At(idx.Index(newSelf))
			sd.children = append(sd.children, newChild)
			fresh.Set(idx.Index(newSelf), sd)
			remap[oldChild] = newChild
			queue = append(queue, oldChild)
		}
	}

	t.nodes = fresh
	t.root = newRoot
	return remap
}
