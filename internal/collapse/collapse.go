// Package collapse implements §4.6's quotienting of a 0-scaffold by its
// collapsible edges: identity 0-rewrites whose neighbourhood is locally
// consistent on both sides, so that merging their endpoints loses no
// information. Grounded on homotopy-core/src/collapse.rs's notion of
// collapsibility, generalized here to the concrete scaffold.Scaffold type
// this module uses throughout instead of petgraph's generic graph traits.
package collapse

import (
	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/scaffold"
)

// Collapsible reports whether edge ei of s is a candidate for collapse: its
// rewrite must be the identity 0-rewrite, every other edge into its source
// must have a same-labelled counterpart into its target, and every edge out
// of its target must have a same-labelled counterpart out of its source
// (§4.6's neighbourhood consistency check).
func Collapsible(s *scaffold.Scaffold, ei int) bool {
	e := s.Edges[ei]
	if e.Rewrite == nil || !e.Rewrite.IsIdentity() {
		return false
	}
	if e.From == e.To {
		return false
	}

	incomingU := incoming(s, e.From)
	incomingV := incoming(s, e.To)
	for _, pe := range incomingU {
		if pe == ei {
			continue
		}
		p := s.Edges[pe].From
		if !hasMatchingEdge(s, incomingV, p, s.Edges[pe].Rewrite) {
			return false
		}
	}

	outgoingU := s.EdgesFrom(e.From)
	outgoingV := s.EdgesFrom(e.To)
	for _, qe := range outgoingV {
		q := s.Edges[qe].To
		if !hasMatchingEdgeFrom(s, outgoingU, q, s.Edges[qe].Rewrite) {
			return false
		}
	}
	return true
}

func incoming(s *scaffold.Scaffold, n int) []int {
	var out []int
	for i, e := range s.Edges {
		if e.To == n {
			out = append(out, i)
		}
	}
	return out
}

func hasMatchingEdge(s *scaffold.Scaffold, candidates []int, from int, label diagram.Rewrite) bool {
	for _, ei := range candidates {
		e := s.Edges[ei]
		if e.From == from && rewritesLabelEqual(e.Rewrite, label) {
			return true
		}
	}
	return false
}

func hasMatchingEdgeFrom(s *scaffold.Scaffold, candidates []int, to int, label diagram.Rewrite) bool {
	for _, ei := range candidates {
		e := s.Edges[ei]
		if e.To == to && rewritesLabelEqual(e.Rewrite, label) {
			return true
		}
	}
	return false
}

// rewritesLabelEqual compares two rewrites by interned identity via
// diagram.RewritesEqual; every rewrite value in this module is hash-consed,
// so structurally equal rewrites compare equal.
func rewritesLabelEqual(a, b diagram.Rewrite) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return diagram.RewritesEqual(a, b)
}

// Merge runs collapse's fixpoint loop over s without building the quotient
// scaffold, returning just the resulting union-find. Contraction's base case
// (§4.7 step 1) reuses this directly: "union across every identity 0-rewrite
// whose neighborhood satisfies the local label-consistent check" is exactly
// this package's collapsibility criterion.
func Merge(s *scaffold.Scaffold) *UnionFind {
	uf := NewUnionFind(len(s.Nodes))
	for {
		changed := false
		for ei := range s.Edges {
			if !Collapsible(s, ei) {
				continue
			}
			if uf.Union(s.Edges[ei].From, s.Edges[ei].To) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return uf
}

// Quotient collapses s by repeatedly merging every collapsible edge's
// endpoints until no more merges apply, then builds the quotiented scaffold:
// one node per class (keeping the lowest-indexed member's diagram and key as
// its representative weight) and one deduplicated edge per pair of classes
// still connected in the original graph (§4.6).
func Quotient(s *scaffold.Scaffold) (*scaffold.Scaffold, *UnionFind) {
	uf := Merge(s)
	classes := uf.Classes(len(s.Nodes))
	classOf := make(map[int]int, len(s.Nodes))
	out := scaffold.New()
	for ci, members := range classes {
		rep := members[0]
		out.AddNode(scaffold.Node{Key: s.Nodes[rep].Key, Diagram: s.Nodes[rep].Diagram})
		for _, m := range members {
			classOf[m] = ci
		}
	}

	seen := make(map[[2]int]bool)
	for _, e := range s.Edges {
		fc, tc := classOf[e.From], classOf[e.To]
		if fc == tc {
			continue
		}
		key := [2]int{fc, tc}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.AddEdge(scaffold.Edge{Kind: e.Kind, From: fc, To: tc, Rewrite: e.Rewrite})
	}

	return out, uf
}
