// Package normalize implements §4.9's singular and full normalization:
// stripping every singular height whose cospan is degenerate (forward and
// backward both identity), recursively over dimension, producing a
// Degeneracy witness alongside the normal form. Grounded on
// homotopy-core/src/normalization.rs's Degeneracy/SinkArrow machinery,
// scoped down from its thread-local (diagram, sink) memoization to a
// single-pass per-call cache, documented where it departs.
package normalize

import (
	"github.com/homotopy-io/homotopy-go/internal/diagram"
)

// Degeneracy is the non-globular witness map from a diagram to its singular
// normal form: either the identity, or a list of removed ("trivial")
// singular heights plus the recursive degeneracy of each kept singular
// slice's own content (§4.9).
type Degeneracy struct {
	identity bool
	trivial  []int
	slices   []*Degeneracy
}

// Identity returns the identity degeneracy (no heights removed).
func Identity() *Degeneracy {
	return &Degeneracy{identity: true}
}

// New builds a Degeneracy from its removed-heights list and per-kept-slice
// sub-degeneracies, collapsing to Identity when trivial is empty and every
// slice is itself identity (mirrors Degeneracy::new in the original source).
func New(trivial []int, slices []*Degeneracy) *Degeneracy {
	if len(trivial) == 0 {
		allIdentity := true
		for _, s := range slices {
			if !s.IsIdentity() {
				allIdentity = false
				break
			}
		}
		if allIdentity {
			return Identity()
		}
	}
	return &Degeneracy{trivial: trivial, slices: slices}
}

// IsIdentity reports whether d removes nothing at any depth.
func (d *Degeneracy) IsIdentity() bool {
	return d == nil || d.identity
}

// Trivial returns the ascending singular heights d removes at this level.
func (d *Degeneracy) Trivial() []int {
	if d == nil {
		return nil
	}
	return d.trivial
}

// cache memoizes Singular by diagram identity within one normalization run,
// standing in for the original's thread-local (diagram, sink) cache: this
// module's diagrams are hash-consed, so a diagram's value alone (without a
// "sink" of converging arrows) is already a stable, collision-free cache key
// for the single-pass traversal Singular performs.
type cache struct {
	m map[diagram.Diagram]singularResult
}

type singularResult struct {
	degeneracy *Degeneracy
	normal     diagram.Diagram
}

func newCache() *cache { return &cache{m: make(map[diagram.Diagram]singularResult)} }

// Singular computes §4.9's singular normalization of d: every singular
// height whose cospan is degenerate is removed, together with the recursive
// normalization of every surviving singular slice's own content.
func Singular(d diagram.Diagram) (*Degeneracy, diagram.Diagram) {
	return singularCached(d, newCache())
}

func singularCached(d diagram.Diagram, c *cache) (*Degeneracy, diagram.Diagram) {
	if r, ok := c.m[d]; ok {
		return r.degeneracy, r.normal
	}
	deg, normal := singularStep(d, c)
	c.m[d] = singularResult{degeneracy: deg, normal: normal}
	return deg, normal
}

func singularStep(d diagram.Diagram, c *cache) (*Degeneracy, diagram.Diagram) {
	dn, ok := d.(diagram.DiagramN)
	if !ok {
		return Identity(), d
	}

	cospans := dn.Cospans()
	var trivial []int
	var kept []diagram.Cospan
	var slices []*Degeneracy
	for h, cs := range cospans {
		if cs.IsIdentity() {
			trivial = append(trivial, h)
			continue
		}
		singular, err := dn.Slice(diagram.SliceIndex{Height: diagram.SingularHeight(h)})
		if err != nil {
			// A malformed cospan at this height: keep it untouched rather
			// than fail normalization, which only ever simplifies.
			kept = append(kept, cs)
			slices = append(slices, Identity())
			continue
		}
		sub, _ := singularCached(singular, c)
		kept = append(kept, cs)
		slices = append(slices, sub)
	}

	if len(trivial) == 0 {
		allIdentity := true
		for _, s := range slices {
			if !s.IsIdentity() {
				allIdentity = false
				break
			}
		}
		if allIdentity {
			return Identity(), d
		}
	}

	normal := diagram.NewDiagramN(dn.Source(), kept)
	return New(trivial, slices), normal
}

// Full is §4.9's "full" mode: it applies Full to d's source boundary, then
// runs Singular on d with that normalized source and d's own cospans. No
// regular slice other than the source is normalized, and the normal forms of
// the singular slices are not substituted into the result.
func Full(d diagram.Diagram) (*Degeneracy, diagram.Diagram) {
	dn, ok := d.(diagram.DiagramN)
	if !ok {
		return Identity(), d
	}
	_, normalizedSource := Full(dn.Source())
	deg, normalSingular := Singular(diagram.NewDiagramN(normalizedSource, dn.Cospans()))
	return deg, normalSingular
}
