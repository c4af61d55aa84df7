// Package deltagraph builds the Δ graph of §4.7 step 2 and computes a
// colimit ordering of its nodes via strongly-connected-component
// condensation (§4.7 step 3-4), grounded on homotopy-core/src/contraction.rs
// and reusing this module's own Tarjan implementation (graph/topo) rather
// than re-deriving SCC from scratch.
package deltagraph

import (
	"fmt"
	"iter"
	"slices"
	"sort"

	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/graph"
	"github.com/homotopy-io/homotopy-go/graph/topo"
)

// EdgeKind distinguishes the two kinds of Δ edge: the succession order
// within one input node's singular heights, and the span order connecting
// singular levels related by a singular-slice edge of the exploded scaffold.
type EdgeKind int

const (
	Succession EdgeKind = iota
	Span
)

// Edge is a directed Δ arc. Span edges are added in both directions (the
// relation is symmetric). The Kind tag records which relation produced the
// arc; the SCC condensation and internal/contraction do not read it.
type Edge struct {
	From, To int
	Kind     EdgeKind
}

// Graph is the Δ graph: nodes are indices 0..N-1 into the caller's list of
// exploded singular levels; Bias supplies the tie-break input bias for each
// node (§4.7's "bias encodes the user's preferred ordering").
type Graph struct {
	N     int
	Bias  []int
	edges []Edge
}

// New returns an empty Δ graph over n nodes with the given per-node bias
// (len(bias) must equal n).
func New(n int, bias []int) *Graph {
	return &Graph{N: n, Bias: bias}
}

// AddEdge adds a directed arc.
func (g *Graph) AddEdge(from, to int, kind EdgeKind) {
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind})
}

// AddSpan adds both directions of a symmetric span relation between a and b.
func (g *Graph) AddSpan(a, b int) {
	g.AddEdge(a, b, Span)
	g.AddEdge(b, a, Span)
}

// graph.EnumerableGraph adapter methods, letting Graph plug directly into
// the generic Tarjan implementation.

func (g *Graph) EdgesFrom(n int) ([]Edge, bool) {
	if n < 0 || n >= g.N {
		return nil, false
	}
	var out []Edge
	for _, e := range g.edges {
		if e.From == n {
			out = append(out, e)
		}
	}
	return out, true
}

func (g *Graph) Nodes(e Edge) (from, to int) { return e.From, e.To }
func (g *Graph) CmpNode(a, b int) int        { return a - b }
func (g *Graph) AllNodes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < g.N; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

var _ graph.EnumerableGraph[int, Edge] = (*Graph)(nil)

// ErrAmbiguous's companion: Colimit reports this condition via herr.ErrAmbiguous.

// Colimit computes the colimit order of g: its strongly-connected components,
// sorted by priority (length of the longest incoming path in the
// condensation) with ties broken by the minimum bias inside each component
// (§4.7 step 3-4). It fails herr.ErrAmbiguous if two components still tie
// after the bias tie-break.
func Colimit(g *Graph) ([][]int, error) {
	sccs := topo.TarjanSCC[int, Edge](g)
	// TarjanSCC yields components in reverse topological order; flip to get
	// a source-first order suitable for the longest-path DP below.
	slices.Reverse(sccs)

	compOf := make(map[int]int, g.N)
	for ci, scc := range sccs {
		for _, n := range scc {
			compOf[n] = ci
		}
	}

	incoming := make([][]int, len(sccs))
	seenEdge := make(map[[2]int]bool)
	for _, e := range g.edges {
		fc, tc := compOf[e.From], compOf[e.To]
		if fc == tc {
			continue
		}
		key := [2]int{fc, tc}
		if seenEdge[key] {
			continue
		}
		seenEdge[key] = true
		incoming[tc] = append(incoming[tc], fc)
	}

	priority := make([]int, len(sccs))
	for ci := range sccs {
		best := 0
		for _, fc := range incoming[ci] {
			if priority[fc]+1 > best {
				best = priority[fc] + 1
			}
		}
		priority[ci] = best
	}

	minBias := make([]int, len(sccs))
	for ci, scc := range sccs {
		b := g.Bias[scc[0]]
		for _, n := range scc[1:] {
			if g.Bias[n] < b {
				b = g.Bias[n]
			}
		}
		minBias[ci] = b
	}

	order := make([]int, len(sccs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if priority[a] != priority[b] {
			return priority[a] < priority[b]
		}
		return minBias[a] < minBias[b]
	})

	for i := 1; i < len(order); i++ {
		a, b := order[i-1], order[i]
		if priority[a] == priority[b] && minBias[a] == minBias[b] {
			return nil, fmt.Errorf("deltagraph: components %v and %v tie on priority and bias: %w", sccs[a], sccs[b], herr.ErrAmbiguous)
		}
	}

	result := make([][]int, len(order))
	for i, ci := range order {
		result[i] = sccs[ci]
	}
	return result, nil
}
