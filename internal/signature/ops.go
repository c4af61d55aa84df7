package signature

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Theorem introduces a fresh generator g with d's own source/target (so d
// witnesses that g is inhabited), plus a second "proof" generator one
// dimension higher whose source is g's own singleton diagram and whose
// target is d itself (§4.11). It returns g's defining diagram (identical in
// shape to d) and the proof generator's defining diagram.
func (s *Signature) Theorem(name string, d diagram.DiagramN) (generator.Generator, diagram.DiagramN, generator.Generator, diagram.DiagramN, error) {
	g, gDiagram, err := s.CreateN(name, d.Source(), d.Target())
	if err != nil {
		return generator.Generator{}, diagram.DiagramN{}, generator.Generator{}, diagram.DiagramN{}, fmt.Errorf("theorem: %w", err)
	}
	proof, proofDiagram, err := s.CreateN(name+"-proof", gDiagram, d)
	if err != nil {
		return generator.Generator{}, diagram.DiagramN{}, generator.Generator{}, diagram.DiagramN{}, fmt.Errorf("theorem: proof cell: %w", err)
	}
	return g, gDiagram, proof, proofDiagram, nil
}

// Suspend builds a new signature with two freshly-allocated 0-generators,
// south and north, in which every 0-generator of the receiver is replaced by
// a 1-generator from south to north (§4.11). A generator of dimension k >= 1
// is not carried over: its source and target would be the k-fold
// diagram.IdentityDiagram chains over south and over north, which do not
// share a boundary, so CreateN rejects them and the generator is left out of
// the result.
func (s *Signature) Suspend() *Signature {
	out := New()
	south := out.CreateZero("south")
	north := out.CreateZero("north")
	southDiagram := diagram.Diagram(diagram.FromGeneratorZero(south))
	northDiagram := diagram.Diagram(diagram.FromGeneratorZero(north))

	for info := range s.IterGenerators() {
		source := identityChain(southDiagram, info.Generator.Dimension)
		target := identityChain(northDiagram, info.Generator.Dimension)
		out.CreateN(info.Name, source, target)
	}
	return out
}

func identityChain(base diagram.Diagram, dim int) diagram.Diagram {
	d := base
	for i := 0; i < dim; i++ {
		d = diagram.IdentityDiagram(d)
	}
	return d
}

// Invert produces the reverse of d: its cospans in reverse order, each with
// forward and backward swapped, and its source set to d's former target
// (§4.11). It fails with herr.ErrNotInvertible if any generator occurring in
// d is not marked invertible, and herr.ErrUnknownGenerator if one is not
// found in the signature at all.
func (s *Signature) Invert(d diagram.Diagram) (diagram.Diagram, error) {
	for g := range diagram.Generators(d) {
		if g.Dimension == 0 {
			// 0-generators are objects, not cells with a direction to
			// reverse; they are trivially their own inverse.
			continue
		}
		info, ok := s.Info(g.ID)
		if !ok {
			return nil, fmt.Errorf("invert: generator %d: %w", g.ID, herr.ErrUnknownGenerator)
		}
		if !info.Invertible {
			return nil, fmt.Errorf("invert: generator %d (%s) is not marked invertible: %w", g.ID, info.Name, herr.ErrNotInvertible)
		}
	}
	return invertDiagram(d), nil
}

func invertDiagram(d diagram.Diagram) diagram.Diagram {
	dn, ok := d.(diagram.DiagramN)
	if !ok {
		return d
	}
	cospans := dn.Cospans()
	n := len(cospans)
	reversed := make([]diagram.Cospan, n)
	for i, cs := range cospans {
		reversed[n-1-i] = diagram.Cospan{Forward: cs.Backward, Backward: cs.Forward}
	}
	return diagram.NewDiagramN(dn.Target(), reversed)
}
