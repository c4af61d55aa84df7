// Package contraction implements §4.7's colimit algorithm, the hard
// subsystem every rewrite ultimately reduces to: the base case contracts a
// 0-scaffold by identity-edge union-find, the recursive case explodes one
// dimension down, orders the result by strongly-connected-component
// priority, and assembles the colimit diagram from the pieces. Grounded on
// homotopy-core/src/contraction.rs, built on top of internal/scaffold,
// internal/collapse and internal/deltagraph rather than re-deriving any of
// their graph algorithms.
package contraction

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/collapse"
	"github.com/homotopy-io/homotopy-go/internal/deltagraph"
	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/internal/scaffold"
)

// Span is the input to Contract: a scaffold whose nodes are all diagrams of
// the same dimension, plus a per-node bias used to break ordering ties
// (§4.7's "bias encodes the user's preferred ordering").
type Span struct {
	Scaffold *scaffold.Scaffold
	Bias     []int
}

// Result is the colimit diagram plus one leg (rewrite) per input node,
// witnessing how that node includes into the colimit.
type Result struct {
	Colimit diagram.Diagram
	Legs    []diagram.Rewrite
}

// Contract computes the colimit of s, dispatching to the base case (§4.7
// step "n=0") or the recursive case (§4.7 steps 2-6) by the dimension of its
// nodes.
func Contract(s *Span) (*Result, error) {
	if len(s.Scaffold.Nodes) == 0 {
		return nil, fmt.Errorf("contraction: empty span: %w", herr.ErrInvalid)
	}
	if len(s.Bias) != len(s.Scaffold.Nodes) {
		return nil, fmt.Errorf("contraction: bias length %d does not match %d nodes: %w", len(s.Bias), len(s.Scaffold.Nodes), herr.ErrInvalid)
	}
	dim := s.Scaffold.Nodes[0].Diagram.Dimension()
	for i, n := range s.Scaffold.Nodes {
		if n.Diagram.Dimension() != dim {
			return nil, fmt.Errorf("contraction: node %d has dimension %d, expected %d: %w", i, n.Diagram.Dimension(), dim, herr.ErrDimension)
		}
	}
	if dim == 0 {
		return contractBase(s)
	}
	return contractRecursive(s)
}

// contractBase implements §4.7's n=0 base case. Identity edges merge nodes
// that are already the same point (collapse.Merge, reused directly); every
// remaining edge is a genuine 0-rewrite from one point-generator to another,
// so the quotient classes form a DAG under those edges. The colimit exists
// iff that DAG has exactly one sink class (a point nothing rewrites further
// away from); legs are built directly from each node's own generator to the
// sink's, which is valid regardless of path length since a Rewrite0 carries
// nothing but the (source, target) generator pair.
func contractBase(s *Span) (*Result, error) {
	sc := s.Scaffold
	uf := collapse.Merge(sc)

	gens := make([]generator.Generator, len(sc.Nodes))
	for i, n := range sc.Nodes {
		d0, ok := n.Diagram.(diagram.Diagram0)
		if !ok {
			return nil, fmt.Errorf("contraction: base case node %d is not a 0-diagram: %w", i, herr.ErrDimension)
		}
		gens[i] = d0.Generator()
	}

	classes := uf.Classes(len(sc.Nodes))
	classOf := make(map[int]int, len(sc.Nodes))
	for ci, members := range classes {
		for _, m := range members {
			classOf[m] = ci
		}
	}

	labelOf := make(map[[2]int]diagram.Rewrite)
	outDegree := make(map[int]bool, len(classes))
	reachesFrom := make(map[int]map[int]bool, len(classes))
	for _, e := range sc.Edges {
		fc, tc := classOf[uf.Find(e.From)], classOf[uf.Find(e.To)]
		if fc == tc {
			continue
		}
		key := [2]int{fc, tc}
		if prev, ok := labelOf[key]; ok && !diagram.RewritesEqual(prev, e.Rewrite) {
			return nil, fmt.Errorf("contraction: classes %d and %d have two distinct edge labels: %w", fc, tc, herr.ErrInvalid)
		}
		labelOf[key] = e.Rewrite
		outDegree[fc] = true
		if reachesFrom[fc] == nil {
			reachesFrom[fc] = make(map[int]bool)
		}
		reachesFrom[fc][tc] = true
	}

	var sinks []int
	for ci := range classes {
		if !outDegree[ci] {
			sinks = append(sinks, ci)
		}
	}
	if len(sinks) != 1 {
		return nil, fmt.Errorf("contraction: span has %d sink points, expected exactly 1 for a well-defined colimit: %w", len(sinks), herr.ErrInvalid)
	}
	topClass := sinks[0]

	// Every class must reach the sink (transitive closure via repeated
	// relaxation); otherwise the span splits into disconnected pieces with
	// no shared colimit.
	reaches := make(map[int]bool, len(classes))
	reaches[topClass] = true
	for changed := true; changed; {
		changed = false
		for ci := range classes {
			if reaches[ci] {
				continue
			}
			for to := range reachesFrom[ci] {
				if reaches[to] {
					reaches[ci] = true
					changed = true
					break
				}
			}
		}
	}
	for ci := range classes {
		if !reaches[ci] {
			return nil, fmt.Errorf("contraction: class %d cannot reach the sink point, span has no shared colimit: %w", ci, herr.ErrIncompatible)
		}
	}

	topGen := gens[classes[topClass][0]]
	legs := make([]diagram.Rewrite, len(sc.Nodes))
	for i, g := range gens {
		if classOf[uf.Find(i)] == topClass {
			legs[i] = diagram.IdentityRewrite0()
			continue
		}
		r, err := diagram.NewRewrite0(g, topGen, false)
		if err != nil {
			return nil, fmt.Errorf("contraction: leg for node %d: %w", i, err)
		}
		legs[i] = r
	}

	return &Result{Colimit: diagram.FromGeneratorZero(topGen), Legs: legs}, nil
}

// deltaNode identifies one singular height of one input node, both before
// and after explosion.
type deltaNode struct {
	inputNode  int
	height     int // index into the input node's singular heights
	explodedID int // index into the exploded scaffold
}

// contractRecursive implements §4.7 steps 2-6: explode one dimension down,
// build the Δ graph of singular levels, order it by SCC colimit priority,
// solve one (n-1)-dimensional subproblem per component, and assemble the
// legs and colimit from the subproblems' own legs.
//
// A single input node and a two-node span joined by exactly one rewrite are
// recognized up front as the trivial special cases they are (nothing to
// contract; the coequalizer of one arrow), sparing the general pipeline
// below the pointless work of exploding and re-discovering a single
// trivial component.
func contractRecursive(s *Span) (*Result, error) {
	sc := s.Scaffold

	if len(sc.Nodes) == 1 {
		dim := sc.Nodes[0].Diagram.Dimension()
		return &Result{
			Colimit: sc.Nodes[0].Diagram,
			Legs:    []diagram.Rewrite{diagram.Identity(dim)},
		}, nil
	}
	if len(sc.Nodes) == 2 && len(sc.Edges) == 1 {
		e := sc.Edges[0]
		legs := make([]diagram.Rewrite, len(sc.Nodes))
		legs[e.From] = e.Rewrite
		legs[e.To] = diagram.Identity(sc.Nodes[e.To].Diagram.Dimension())
		return &Result{Colimit: sc.Nodes[e.To].Diagram, Legs: legs}, nil
	}

	exploded, err := scaffold.Explode(sc)
	if err != nil {
		return nil, fmt.Errorf("contraction: explode: %w", err)
	}

	var deltaNodes []deltaNode
	explodedToDelta := make(map[int]int)
	for ni, ids := range exploded.NodeToNodes {
		h := 0
		for i, eid := range ids {
			if i%2 == 0 {
				continue // regular level, not a Δ node
			}
			explodedToDelta[eid] = len(deltaNodes)
			deltaNodes = append(deltaNodes, deltaNode{inputNode: ni, height: h, explodedID: eid})
			h++
		}
	}

	bias := make([]int, len(deltaNodes))
	for i, dn := range deltaNodes {
		bias[i] = s.Bias[dn.inputNode]
	}
	dg := deltagraph.New(len(deltaNodes), bias)

	for _, ids := range exploded.NodeToNodes {
		var heights []int
		for i := range ids {
			if i%2 == 1 {
				heights = append(heights, explodedToDelta[ids[i]])
			}
		}
		for i := 0; i+1 < len(heights); i++ {
			dg.AddEdge(heights[i], heights[i+1], deltagraph.Succession)
		}
	}

	for _, e := range exploded.Scaffold.Edges {
		if e.Kind != scaffold.SingularSlice {
			continue
		}
		from, fromOK := explodedToDelta[e.From]
		to, toOK := explodedToDelta[e.To]
		if fromOK && toOK {
			dg.AddSpan(from, to)
		}
	}

	order, err := deltagraph.Colimit(dg)
	if err != nil {
		return nil, fmt.Errorf("contraction: colimit order: %w", err)
	}

	deltaIndexOf := make(map[[2]int]int, len(deltaNodes))
	for di, dn := range deltaNodes {
		deltaIndexOf[[2]int{dn.inputNode, dn.height}] = di
	}

	dim := sc.Nodes[0].Diagram.Dimension()
	outCospans := make([]diagram.Cospan, len(order))
	legByDelta := make([]diagram.Rewrite, len(deltaNodes))
	targetOf := make([]int, len(deltaNodes))
	var firstColimit diagram.Diagram
	var firstForwardLeg diagram.Rewrite

	for j, members := range order {
		cr, err := contractComponent(sc, exploded, deltaNodes, members, s)
		if err != nil {
			return nil, fmt.Errorf("contraction: component %d: %w", j, err)
		}
		outCospans[j] = cr.cospan
		for _, di := range members {
			legByDelta[di] = cr.legs[di]
			targetOf[di] = j
		}
		if j == 0 {
			firstColimit = cr.colimit
			firstForwardLeg = cr.forwardLeg
		}
	}

	source, err := diagram.RewriteBackward(firstColimit, firstForwardLeg)
	if err != nil {
		return nil, fmt.Errorf("contraction: recovering colimit source: %w", err)
	}
	colimit := diagram.NewDiagramN(source, outCospans)

	legs := make([]diagram.Rewrite, len(sc.Nodes))
	for ni, n := range sc.Nodes {
		dn, ok := n.Diagram.(diagram.DiagramN)
		if !ok {
			return nil, fmt.Errorf("contraction: node %d is not an n-diagram: %w", ni, herr.ErrDimension)
		}
		nodeCospans := dn.Cospans()
		var cones []diagram.Cone
		for h := 0; h < len(nodeCospans); {
			di, ok := deltaIndexOf[[2]int{ni, h}]
			if !ok {
				return nil, fmt.Errorf("contraction: node %d height %d was not exploded into Δ: %w", ni, h, herr.ErrInvalid)
			}
			j := targetOf[di]
			start := h
			slices := []diagram.Rewrite{legByDelta[di]}
			h++
			for h < len(nodeCospans) {
				di2, ok := deltaIndexOf[[2]int{ni, h}]
				if !ok || targetOf[di2] != j {
					break
				}
				slices = append(slices, legByDelta[di2])
				h++
			}
			cones = append(cones, diagram.Cone{
				Index:  start,
				Source: append([]diagram.Cospan(nil), nodeCospans[start:h]...),
				Target: outCospans[j],
				Slices: slices,
			})
		}
		r, err := diagram.NewRewriteN(dim, cones)
		if err != nil {
			return nil, fmt.Errorf("contraction: leg for node %d: %w", ni, err)
		}
		legs[ni] = r
	}

	return &Result{Colimit: colimit, Legs: legs}, nil
}

// componentResult is one Δ-colimit component's contribution: the cospan it
// contributes to the assembled colimit, the per-member legs consumed as
// cone slices one level up, and the subproblem's own colimit/forward leg
// (the first component's of these recovers the overall colimit's source,
// mirroring contraction.rs's `first.colimit.rewrite_backward(&first.legs[s])`).
type componentResult struct {
	cospan     diagram.Cospan
	legs       map[int]diagram.Rewrite // delta index -> leg
	colimit    diagram.Diagram
	forwardLeg diagram.Rewrite
}

// contractComponent solves the (n-1)-dimensional subproblem for one Δ-colimit
// component: the span of its member singular levels, plus every member's own
// adjacent regular levels (deduplicated, so two members that are successive
// heights of the same input node share their one common regular boundary)
// and the spans between members that put them in this component to begin
// with. Grounded on contraction.rs's collapse_recursive, scoped from its full
// reverse-reachability closure down to each member's immediate regular
// neighbourhood - sufficient here since "every source (resp. target) of
// subdiagrams within an SCC are equal by globularity" (the original's own
// justification), so any one boundary regular level not shared by another
// member is as good a colimit leg as any other.
func contractComponent(sc *scaffold.Scaffold, exploded *scaffold.ExplosionOutput, deltaNodes []deltaNode, members []int, s *Span) (*componentResult, error) {
	type memberInfo struct {
		idx                     int
		fwd, bwd                diagram.Rewrite
		regBeforeID, regAfterID int
	}

	sub := scaffold.New()
	var bias []int
	memberIdx := make(map[int]int, len(members))
	infos := make([]memberInfo, 0, len(members))

	for _, di := range members {
		dn := deltaNodes[di]
		idx := sub.AddNode(scaffold.Node{Diagram: exploded.Scaffold.Nodes[dn.explodedID].Diagram})
		memberIdx[dn.explodedID] = idx
		bias = append(bias, s.Bias[dn.inputNode])

		dn2, ok := sc.Nodes[dn.inputNode].Diagram.(diagram.DiagramN)
		if !ok {
			return nil, fmt.Errorf("contraction: component member from a 0-dimensional input node: %w", herr.ErrDimension)
		}
		cs := dn2.Cospans()[dn.height]
		ids := exploded.NodeToNodes[dn.inputNode]
		infos = append(infos, memberInfo{
			idx: idx, fwd: cs.Forward, bwd: cs.Backward,
			regBeforeID: ids[2*dn.height], regAfterID: ids[2*dn.height+2],
		})
	}

	beforeIDs := make(map[int]bool, len(infos))
	afterIDs := make(map[int]bool, len(infos))
	for _, mi := range infos {
		beforeIDs[mi.regBeforeID] = true
		afterIDs[mi.regAfterID] = true
	}
	sourceRegID, targetRegID := -1, -1
	for _, mi := range infos {
		if sourceRegID == -1 && !afterIDs[mi.regBeforeID] {
			sourceRegID = mi.regBeforeID
		}
		if targetRegID == -1 && !beforeIDs[mi.regAfterID] {
			targetRegID = mi.regAfterID
		}
	}
	if sourceRegID == -1 || targetRegID == -1 {
		return nil, fmt.Errorf("contraction: component %v has no outer regular boundary: %w", members, herr.ErrInvalid)
	}

	regIdx := make(map[int]int)
	regFor := func(explodedID int) int {
		if idx, ok := regIdx[explodedID]; ok {
			return idx
		}
		idx := sub.AddNode(scaffold.Node{Diagram: exploded.Scaffold.Nodes[explodedID].Diagram})
		regIdx[explodedID] = idx
		bias = append(bias, 0)
		return idx
	}

	for _, mi := range infos {
		rb := regFor(mi.regBeforeID)
		ra := regFor(mi.regAfterID)
		sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: rb, To: mi.idx, Rewrite: mi.fwd})
		sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: ra, To: mi.idx, Rewrite: mi.bwd})
	}
	for _, e := range exploded.Scaffold.Edges {
		if e.Kind != scaffold.SingularSlice {
			continue
		}
		fi, fok := memberIdx[e.From]
		ti, tok := memberIdx[e.To]
		if fok && tok {
			sub.AddEdge(scaffold.Edge{Kind: scaffold.SingularSlice, From: fi, To: ti, Rewrite: e.Rewrite})
		}
	}

	sourceIdx, targetIdx := regFor(sourceRegID), regFor(targetRegID)

	res, err := Contract(&Span{Scaffold: sub, Bias: bias})
	if err != nil {
		return nil, fmt.Errorf("subproblem for delta nodes %v: %w", members, err)
	}

	legs := make(map[int]diagram.Rewrite, len(members))
	for _, di := range members {
		legs[di] = res.Legs[memberIdx[deltaNodes[di].explodedID]]
	}

	return &componentResult{
		cospan:     diagram.Cospan{Forward: res.Legs[sourceIdx], Backward: res.Legs[targetIdx]},
		legs:       legs,
		colimit:    res.Colimit,
		forwardLeg: res.Legs[sourceIdx],
	}, nil
}

// Bias is §6's bias parameter for the top-level contract operation: which of
// the two merged singular heights is favored when the Δ-colimit ordering
// would otherwise tie (mirrors contraction.rs's Bias).
type Bias int

const (
	NoBias Bias = iota
	Higher
	Lower
)

// ContractHeight implements §6's core op
// contract(diagram, boundary_path, interior_path, height, bias, signature):
// merging the adjacent singular heights height, height+1 of d into one.
//
// boundary_path and interior_path must both be empty. Nesting a contraction
// inside a boundary or an interior slice needs attach's generic
// boundary-path rewrap (never retrieved into this port, see embed.go's
// Attach) composed with the recursive per-height pivot logic that
// contraction.rs's own contract_in_path leaves as a literal todo!() for
// every nonempty interior path; rather than guess at either, a nonempty
// path is reported as herr.ErrInvalid.
func ContractHeight(d diagram.DiagramN, boundaryPath []diagram.Boundary, interiorPath []diagram.Height, height int, bias Bias) (diagram.DiagramN, diagram.Rewrite, error) {
	if len(boundaryPath) > 0 || len(interiorPath) > 0 {
		return diagram.DiagramN{}, nil, fmt.Errorf("contraction: nonempty boundary/interior path is not implemented by this port: %w", herr.ErrInvalid)
	}

	r, err := contractAdjacent(d, height, bias)
	if err != nil {
		return diagram.DiagramN{}, nil, err
	}
	out, err := d.RewriteForward(r)
	if err != nil {
		return diagram.DiagramN{}, nil, fmt.Errorf("contraction: applying contraction: %w", err)
	}
	return out, r, nil
}

// contractAdjacent implements contraction.rs's contract_base: merge the
// singular heights height, height+1 of d via the classic 5-node span
// (regular, singular, regular, singular, regular), reusing the general
// colimit machinery above instead of hand-rolling the 2-member merge.
func contractAdjacent(d diagram.DiagramN, height int, bias Bias) (diagram.RewriteN, error) {
	cospans := d.Cospans()
	if height < 0 || height+1 >= len(cospans) {
		return diagram.RewriteN{}, fmt.Errorf("contraction: cannot merge heights %d and %d of a %d-cospan diagram: %w", height, height+1, len(cospans), herr.ErrInvalid)
	}
	cospan0, cospan1 := cospans[height], cospans[height+1]

	r0, err := d.Slice(diagram.SliceIndex{Height: diagram.RegularHeight(height)})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: regular slice %d: %w", height, err)
	}
	s0, err := d.Slice(diagram.SliceIndex{Height: diagram.SingularHeight(height)})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: singular slice %d: %w", height, err)
	}
	r1, err := d.Slice(diagram.SliceIndex{Height: diagram.RegularHeight(height + 1)})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: regular slice %d: %w", height+1, err)
	}
	s1, err := d.Slice(diagram.SliceIndex{Height: diagram.SingularHeight(height + 1)})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: singular slice %d: %w", height+1, err)
	}
	r2, err := d.Slice(diagram.SliceIndex{Height: diagram.RegularHeight(height + 2)})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: regular slice %d: %w", height+2, err)
	}

	bias0, bias1 := 0, 0
	switch bias {
	case Higher:
		bias0, bias1 = 1, 0
	case Lower:
		bias0, bias1 = 0, 1
	}

	sub := scaffold.New()
	r0Idx := sub.AddNode(scaffold.Node{Diagram: r0})
	s0Idx := sub.AddNode(scaffold.Node{Diagram: s0})
	r1Idx := sub.AddNode(scaffold.Node{Diagram: r1})
	s1Idx := sub.AddNode(scaffold.Node{Diagram: s1})
	r2Idx := sub.AddNode(scaffold.Node{Diagram: r2})
	sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: r0Idx, To: s0Idx, Rewrite: cospan0.Forward})
	sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: r1Idx, To: s0Idx, Rewrite: cospan0.Backward})
	sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: r1Idx, To: s1Idx, Rewrite: cospan1.Forward})
	sub.AddEdge(scaffold.Edge{Kind: scaffold.Internal, From: r2Idx, To: s1Idx, Rewrite: cospan1.Backward})

	result, err := Contract(&Span{Scaffold: sub, Bias: []int{0, bias0, 0, bias1, 0}})
	if err != nil {
		return diagram.RewriteN{}, fmt.Errorf("contraction: merging heights %d,%d: %w", height, height+1, err)
	}

	cone := diagram.Cone{
		Index:  height,
		Source: []diagram.Cospan{cospan0, cospan1},
		Target: diagram.Cospan{Forward: result.Legs[r0Idx], Backward: result.Legs[r2Idx]},
		Slices: []diagram.Rewrite{result.Legs[s0Idx], result.Legs[s1Idx]},
	}
	return diagram.NewRewriteN(d.Dimension(), []diagram.Cone{cone})
}
