package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Embedding is a sequence of regular-height offsets, one per dimension,
// locating a sub-diagram embedding (§4.4's "Embeddings and attachment").
type Embedding []int

// pad shifts r by embedding, pushing r "one level deeper" into an ambient
// diagram at the given regular-height offsets. Grounded verbatim on
// GenericRewrite::pad / GenericCone::pad in the original source.
func pad(r Rewrite, embedding Embedding) Rewrite {
	if len(embedding) == 0 {
		return r
	}
	rn, ok := r.(RewriteN)
	if !ok {
		return r
	}
	cones := make([]Cone, len(rn.Cones()))
	for i, c := range rn.Cones() {
		cones[i] = padCone(c, embedding)
	}
	return newRewriteNUnsafe(rn.Dimension(), cones)
}

func padCone(c Cone, embedding Embedding) Cone {
	offset, rest := embedding[0], embedding[1:]
	source := make([]Cospan, len(c.Source))
	for i, cs := range c.Source {
		source[i] = padCospan(cs, rest)
	}
	slices := make([]Rewrite, len(c.Slices))
	for i, s := range c.Slices {
		slices[i] = pad(s, rest)
	}
	return Cone{
		Index:  c.Index + offset,
		Source: source,
		Target: padCospan(c.Target, rest),
		Slices: slices,
	}
}

func padCospan(cs Cospan, embedding Embedding) Cospan {
	return Cospan{Forward: pad(cs.Forward, embedding), Backward: pad(cs.Backward, embedding)}
}

// Embeddings yields every embedding of e into d: a sequence of regular-height
// offsets produced by scanning d's regular slices step by step and matching
// e's source recursively, as described in §4.4. At the innermost dimension
// (e.Dimension() == d.Dimension()) a candidate offset is accepted only if d's
// regular slice there equals e's source and d's cospans from that offset on
// equal e's cospans one for one, compared as they are (no padding is applied).
func Embeddings(d, e Diagram) func(yield func(Embedding) bool) {
	return func(yield func(Embedding) bool) {
		embedRec(d, e, nil, yield)
	}
}

func embedRec(d, e Diagram, prefix Embedding, yield func(Embedding) bool) bool {
	if d.Dimension() == 0 || e.Dimension() == 0 {
		if diagramsEqual(d, e) {
			return yield(append(Embedding(nil), prefix...))
		}
		return true
	}
	dn := d.(DiagramN)
	if e.Dimension() == d.Dimension() {
		en := e.(DiagramN)
		for j := 0; j <= dn.Size(); j++ {
			slice, err := dn.regularSlice(j)
			if err != nil {
				continue
			}
			if !diagramsEqual(slice, en.Source()) {
				continue
			}
			if cospanRunMatches(dn.Cospans(), j, en.Cospans()) {
				if !yield(append(append(Embedding(nil), prefix...), j)) {
					return false
				}
			}
		}
		return true
	}
	for j := 0; j <= dn.Size(); j++ {
		slice, err := dn.regularSlice(j)
		if err != nil {
			continue
		}
		if !embedRec(slice, e, append(prefix, j), yield) {
			return false
		}
	}
	return true
}

func cospanRunMatches(cospans []Cospan, start int, want []Cospan) bool {
	if start+len(want) > len(cospans) {
		return false
	}
	for i, w := range want {
		if !cospansEqual(cospans[start+i], w) {
			return false
		}
	}
	return true
}

// Attach prepends or appends e's cospans to d's cospans at the chosen
// boundary, at the given embedding offset (§4.4, §4.11). e must have the same
// dimension as d. The embedding must address a region of the chosen boundary
// slice matching e's opposite face (e's source, for a target attach; e's
// target, for a source attach), found the way Embeddings finds it;
// otherwise Attach fails herr.ErrIncompatible.
//
// This implementation handles a single-level embedding ([]int of length 1)
// fully, which is what every scenario in §8 exercises (an n-generator
// attached at a regular height of an (n-1)-dimensional boundary slice).
// Deeper embeddings would additionally need to propagate the splice through
// the intermediate dimensions' own rewrites; attach.rs, which has that logic,
// was not part of the retrieved source, so deeper embeddings are reported as
// herr.ErrInvalid rather than silently mishandled (see DESIGN.md).
func Attach(d DiagramN, e DiagramN, boundary Boundary, embedding Embedding) (DiagramN, error) {
	if e.Dimension() != d.Dimension() {
		return DiagramN{}, fmt.Errorf("attach: dimension mismatch (%d vs %d): %w", d.Dimension(), e.Dimension(), herr.ErrDimension)
	}
	if len(embedding) > 1 {
		return DiagramN{}, fmt.Errorf("attach: embeddings deeper than one level are not supported: %w", herr.ErrInvalid)
	}

	offset := 0
	if len(embedding) == 1 {
		offset = embedding[0]
	}

	switch boundary {
	case TargetBoundary:
		face := e.Source()
		boundarySlice := d.target()
		if err := verifyAttachFace(boundarySlice, face, offset); err != nil {
			return DiagramN{}, err
		}
		padded := make([]Cospan, len(e.Cospans()))
		for i, cs := range e.Cospans() {
			padded[i] = padCospan(cs, embedding)
		}
		out := append(append([]Cospan{}, d.Cospans()...), padded...)
		return newDiagramNUnsafe(d.Source(), out), nil

	case SourceBoundary:
		face := e.target()
		boundarySlice, ok := d.Source().(DiagramN)
		if !ok {
			return DiagramN{}, fmt.Errorf("attach: source boundary has dimension 0: %w", herr.ErrIncompatible)
		}
		if err := verifyAttachFace(boundarySlice, face, offset); err != nil {
			return DiagramN{}, err
		}
		faceSize := faceSizeOf(face)
		replacement := cospansOf(e.Source())
		newSourceCospans := make([]Cospan, 0, len(boundarySlice.Cospans())-faceSize+len(replacement))
		newSourceCospans = append(newSourceCospans, boundarySlice.Cospans()[:offset]...)
		newSourceCospans = append(newSourceCospans, replacement...)
		newSourceCospans = append(newSourceCospans, boundarySlice.Cospans()[offset+faceSize:]...)
		newSource := newDiagramNUnsafe(boundarySlice.Source(), newSourceCospans)

		padded := make([]Cospan, len(e.Cospans()))
		for i, cs := range e.Cospans() {
			padded[i] = padCospan(cs, embedding)
		}
		out := append(append([]Cospan{}, padded...), d.Cospans()...)
		return newDiagramNUnsafe(Diagram(newSource), out), nil

	default:
		return DiagramN{}, fmt.Errorf("attach: boundary must be source or target: %w", herr.ErrInvalid)
	}
}

func faceSizeOf(d Diagram) int {
	if dn, ok := d.(DiagramN); ok {
		return dn.Size()
	}
	return 0
}

func cospansOf(d Diagram) []Cospan {
	if dn, ok := d.(DiagramN); ok {
		return dn.Cospans()
	}
	return nil
}

// verifyAttachFace checks that boundarySlice's cospans, starting at regular
// height offset, run-match face's cospans exactly (the "identity-compatible
// region" precondition of §4.11's Attach, specialized to a single-level
// embedding).
func verifyAttachFace(boundarySlice Diagram, face Diagram, offset int) error {
	bn, ok := boundarySlice.(DiagramN)
	if !ok {
		if diagramsEqual(boundarySlice, face) {
			return nil
		}
		return fmt.Errorf("attach: boundary region does not match attached diagram's face: %w", herr.ErrIncompatible)
	}
	slice, err := bn.regularSlice(offset)
	if err != nil {
		return fmt.Errorf("attach: embedding height out of range: %w", herr.ErrIncompatible)
	}
	fn, ok := face.(DiagramN)
	if !ok {
		if diagramsEqual(slice, face) {
			return nil
		}
		return fmt.Errorf("attach: embedding region does not match attached diagram's face: %w", herr.ErrIncompatible)
	}
	if !diagramsEqual(slice, fn.Source()) {
		return fmt.Errorf("attach: embedding region does not match attached diagram's face: %w", herr.ErrIncompatible)
	}
	if !cospanRunMatches(bn.Cospans(), offset, fn.Cospans()) {
		return fmt.Errorf("attach: embedding region does not match attached diagram's face: %w", herr.ErrIncompatible)
	}
	return nil
}
