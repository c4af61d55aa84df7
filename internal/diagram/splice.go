package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// rewriteForward applies rewrite forward to diagram d, per §4.4's
// "Application of a rewrite to a diagram".
func rewriteForward(d Diagram, r Rewrite) (Diagram, error) {
	switch dv := d.(type) {
	case Diagram0:
		r0, ok := r.(Rewrite0)
		if !ok {
			return nil, fmt.Errorf("rewrite_forward: dimension 0 vs %d: %w", r.Dimension(), herr.ErrDimension)
		}
		if r0.IsIdentity() {
			return d, nil
		}
		source, target, _ := r0.Endpoints()
		if !dv.Generator().Equal(source) {
			return nil, fmt.Errorf("rewrite_forward: generator does not match rewrite source: %w", herr.ErrIncompatible)
		}
		return FromGeneratorZero(target), nil
	case DiagramN:
		rn, ok := r.(RewriteN)
		if !ok {
			return nil, fmt.Errorf("rewrite_forward: dimension %d vs 0: %w", dv.Dimension(), herr.ErrDimension)
		}
		return spliceForward(dv, rn)
	}
	return nil, fmt.Errorf("rewrite_forward: unknown diagram kind: %w", herr.ErrInvalid)
}

// rewriteBackward applies rewrite backward to diagram d: the inverse splice.
func rewriteBackward(d Diagram, r Rewrite) (Diagram, error) {
	switch dv := d.(type) {
	case Diagram0:
		r0, ok := r.(Rewrite0)
		if !ok {
			return nil, fmt.Errorf("rewrite_backward: dimension 0 vs %d: %w", r.Dimension(), herr.ErrDimension)
		}
		if r0.IsIdentity() {
			return d, nil
		}
		source, target, _ := r0.Endpoints()
		if !dv.Generator().Equal(target) {
			return nil, fmt.Errorf("rewrite_backward: generator does not match rewrite target: %w", herr.ErrIncompatible)
		}
		return FromGeneratorZero(source), nil
	case DiagramN:
		rn, ok := r.(RewriteN)
		if !ok {
			return nil, fmt.Errorf("rewrite_backward: dimension %d vs 0: %w", dv.Dimension(), herr.ErrDimension)
		}
		return spliceBackward(dv, rn)
	}
	return nil, fmt.Errorf("rewrite_backward: unknown diagram kind: %w", herr.ErrInvalid)
}

// RewriteForward is the public form of rewrite_forward (Diagram API entry).
func RewriteForward(d Diagram, r Rewrite) (Diagram, error) {
	return rewriteForward(d, r)
}

// RewriteBackward is the public form of rewrite_backward.
func RewriteBackward(d Diagram, r Rewrite) (Diagram, error) {
	return rewriteBackward(d, r)
}

// spliceForward replaces, for each cone of r in order, the contiguous run of
// d's cospans it names with the cone's single target cospan.
func spliceForward(d DiagramN, r RewriteN) (DiagramN, error) {
	if d.Dimension() != r.Dimension() {
		return DiagramN{}, fmt.Errorf("splice: diagram dimension %d vs rewrite dimension %d: %w", d.Dimension(), r.Dimension(), herr.ErrDimension)
	}
	cospans := append([]Cospan(nil), d.Cospans()...)
	offset := 0
	for _, c := range r.Cones() {
		start := c.Index + offset
		end := start + c.Len()
		if start < 0 || end > len(cospans) {
			return DiagramN{}, fmt.Errorf("splice: cone run [%d,%d) out of range (diagram has %d cospans): %w", start, end, len(cospans), herr.ErrIncompatible)
		}
		for i, want := range c.Source {
			if !cospansEqual(cospans[start+i], want) {
				return DiagramN{}, fmt.Errorf("splice: source cospan %d does not match at height %d: %w", i, start+i, herr.ErrIncompatible)
			}
		}
		replaced := make([]Cospan, 0, len(cospans)-c.Len()+1)
		replaced = append(replaced, cospans[:start]...)
		replaced = append(replaced, c.Target)
		replaced = append(replaced, cospans[end:]...)
		cospans = replaced
		offset += 1 - c.Len()
	}
	return newDiagramNUnsafe(d.Source(), cospans), nil
}

// spliceBackward is the inverse splice: each cone's target cospan occurrence
// is replaced by its source run. Cones are expanded in order, so every
// earlier cone is already back at its source length and a cone's target
// cospan sits at its own source Index.
func spliceBackward(d DiagramN, r RewriteN) (DiagramN, error) {
	if d.Dimension() != r.Dimension() {
		return DiagramN{}, fmt.Errorf("splice: diagram dimension %d vs rewrite dimension %d: %w", d.Dimension(), r.Dimension(), herr.ErrDimension)
	}
	cospans := append([]Cospan(nil), d.Cospans()...)
	for _, c := range r.Cones() {
		pos := c.Index
		if pos < 0 || pos >= len(cospans) {
			return DiagramN{}, fmt.Errorf("splice: target height %d out of range (diagram has %d cospans): %w", pos, len(cospans), herr.ErrIncompatible)
		}
		if !cospansEqual(cospans[pos], c.Target) {
			return DiagramN{}, fmt.Errorf("splice: target cospan does not match at height %d: %w", pos, herr.ErrIncompatible)
		}
		replaced := make([]Cospan, 0, len(cospans)-1+c.Len())
		replaced = append(replaced, cospans[:pos]...)
		replaced = append(replaced, c.Source...)
		replaced = append(replaced, cospans[pos+1:]...)
		cospans = replaced
	}
	return newDiagramNUnsafe(d.Source(), cospans), nil
}
