// Package scaffold implements the weighted diagram/rewrite graph of §4.5 and
// its explosion into one dimension lower, the mechanism every subsystem in
// §4.6-§4.7 builds on to turn an n-dimensional question into an
// (n-1)-dimensional one over a larger graph. Grounded on
// homotopy-core/src/scaffold.rs, generalized from petgraph's trait-indexed
// graphs to a concrete adjacency-list Scaffold since this module's graphs are
// always built, exploded and consumed whole rather than mutated in place.
package scaffold

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Key is a node's coordinate path into the original, un-exploded input: one
// index per dimension stripped away by successive explosions. Collapse's
// subproblem tree and contraction's Δ graph are both organized around
// prefixes of this path.
type Key []int

// With returns a new Key with i appended, leaving the receiver untouched.
func (k Key) With(i int) Key {
	out := make(Key, len(k)+1)
	copy(out, k)
	out[len(k)] = i
	return out
}

// Node is a scaffold vertex: a diagram tagged with its coordinate key.
type Node struct {
	Key     Key
	Diagram diagram.Diagram
}

// EdgeKind distinguishes the three kinds of edge explosion produces (§4.5).
type EdgeKind int

const (
	// Internal connects a regular slice to an adjacent singular slice of the
	// same original node, carrying that cospan's forward or backward leg.
	Internal EdgeKind = iota
	// External reflects an untouched (identity) part of an input edge's
	// monotone map between two regular levels.
	External
	// Flange connects a regular level bordering a cone to the single regular
	// level on the other side of that cone.
	Flange
	// SingularSlice connects a singular level inside a cone to the cone's
	// single target singular level, carrying the cone's slice rewrite.
	SingularSlice
)

func (k EdgeKind) String() string {
	switch k {
	case Internal:
		return "internal"
	case External:
		return "external"
	case Flange:
		return "flange"
	case SingularSlice:
		return "singular-slice"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// Edge is a scaffold arc: from one node to another, carrying a rewrite and a
// kind tag that lets callers distinguish the structural role of the arc.
type Edge struct {
	Kind     EdgeKind
	From, To int
	Rewrite  diagram.Rewrite
}

// Scaffold is a directed graph of diagrams (nodes) and rewrites (edges)
// (§4.5). Node and edge indices are stable for the lifetime of the value;
// Scaffold is built up-front and never mutated after Explode runs.
type Scaffold struct {
	Nodes []Node
	Edges []Edge

	adjFrom map[int][]int // lazily built: node index -> edge indices
}

// New returns an empty scaffold.
func New() *Scaffold {
	return &Scaffold{}
}

// AddNode appends n and returns its index.
func (s *Scaffold) AddNode(n Node) int {
	s.Nodes = append(s.Nodes, n)
	s.adjFrom = nil
	return len(s.Nodes) - 1
}

// AddEdge appends e and returns its index.
func (s *Scaffold) AddEdge(e Edge) int {
	s.Edges = append(s.Edges, e)
	s.adjFrom = nil
	return len(s.Edges) - 1
}

// EdgesFrom returns the indices of every edge whose From is n.
func (s *Scaffold) EdgesFrom(n int) []int {
	if s.adjFrom == nil {
		s.adjFrom = make(map[int][]int, len(s.Nodes))
		for i, e := range s.Edges {
			s.adjFrom[e.From] = append(s.adjFrom[e.From], i)
		}
	}
	return s.adjFrom[n]
}

// ExplosionOutput is the exploded scaffold plus the three maps §4.5 requires:
// which exploded nodes/edges an original node/edge gave rise to.
type ExplosionOutput struct {
	Scaffold    *Scaffold
	NodeToNodes [][]int
	NodeToEdges [][]int
	EdgeToEdges [][]int
}

// Explode reduces s (a scaffold of n-diagrams, n>=1) to a scaffold of
// (n-1)-diagrams, per §4.5: one new node per interior slice of each node of
// s, internal edges threading each node's own cospans, and external edges
// reflecting the monotone structure of each original edge's rewrite.
func Explode(s *Scaffold) (*ExplosionOutput, error) {
	out := &Scaffold{}
	nodeToNodes := make([][]int, len(s.Nodes))
	nodeToEdges := make([][]int, len(s.Nodes))
	edgeToEdges := make([][]int, len(s.Edges))

	for ni, n := range s.Nodes {
		dn, ok := n.Diagram.(diagram.DiagramN)
		if !ok {
			return nil, fmt.Errorf("explode: node %d has dimension 0, nothing to explode: %w", ni, herr.ErrInvalid)
		}
		var slices []diagram.Diagram
		for sl := range dn.Slices() {
			slices = append(slices, sl)
		}
		ids := make([]int, len(slices))
		for i, sl := range slices {
			ids[i] = out.AddNode(Node{Key: n.Key.With(i), Diagram: sl})
		}
		nodeToNodes[ni] = ids

		cospans := dn.Cospans()
		for h, cs := range cospans {
			regBefore := ids[2*h]
			sing := ids[2*h+1]
			regAfter := ids[2*h+2]
			e1 := out.AddEdge(Edge{Kind: Internal, From: regBefore, To: sing, Rewrite: cs.Forward})
			e2 := out.AddEdge(Edge{Kind: Internal, From: regAfter, To: sing, Rewrite: cs.Backward})
			nodeToEdges[ni] = append(nodeToEdges[ni], e1, e2)
		}
	}

	for ei, e := range s.Edges {
		rn, ok := e.Rewrite.(diagram.RewriteN)
		if !ok {
			if e.Rewrite == nil || e.Rewrite.IsIdentity() {
				// A dimension-0 or identity edge induces no sub-structure; skip.
				continue
			}
			return nil, fmt.Errorf("explode: edge %d has dimension 0, nothing to explode: %w", ei, herr.ErrInvalid)
		}
		fromIDs, toIDs := nodeToNodes[e.From], nodeToNodes[e.To]
		uRegularSize := (len(fromIDs) - 1) / 2
		touched := make(map[int]bool, uRegularSize+1)

		offset := 0
		for _, c := range rn.Cones() {
			targetIndex := c.Index + offset
			before := out.AddEdge(Edge{Kind: Flange, From: fromIDs[2*c.Index], To: toIDs[2*targetIndex], Rewrite: diagram.Identity(rn.Dimension() - 1)})
			after := out.AddEdge(Edge{Kind: Flange, From: fromIDs[2*(c.Index+c.Len())], To: toIDs[2*(targetIndex+1)], Rewrite: diagram.Identity(rn.Dimension() - 1)})
			edgeIDs := []int{before, after}
			for i := c.Index; i <= c.Index+c.Len(); i++ {
				touched[i] = true
			}
			for i := 0; i < c.Len(); i++ {
				h := c.Index + i
				eid := out.AddEdge(Edge{Kind: SingularSlice, From: fromIDs[2*h+1], To: toIDs[2*targetIndex+1], Rewrite: rn.Slice(h)})
				edgeIDs = append(edgeIDs, eid)
			}
			edgeToEdges[ei] = append(edgeToEdges[ei], edgeIDs...)
			offset += 1 - c.Len()
		}
		for i := 0; i <= uRegularSize; i++ {
			if touched[i] {
				continue
			}
			j := rn.RegularImage(i)
			eid := out.AddEdge(Edge{Kind: External, From: fromIDs[2*i], To: toIDs[2*j], Rewrite: diagram.Identity(rn.Dimension() - 1)})
			edgeToEdges[ei] = append(edgeToEdges[ei], eid)
		}
	}

	return &ExplosionOutput{Scaffold: out, NodeToNodes: nodeToNodes, NodeToEdges: nodeToEdges, EdgeToEdges: edgeToEdges}, nil
}
