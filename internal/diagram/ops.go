package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Behead truncates d's cospans after the given regular height, keeping d's
// source unchanged (§4.11).
func Behead(d DiagramN, height int) (DiagramN, error) {
	cospans := d.Cospans()
	if height < 0 || height > len(cospans) {
		return DiagramN{}, fmt.Errorf("behead: regular height %d out of range [0,%d]: %w", height, len(cospans), herr.ErrInvalid)
	}
	return NewDiagramN(d.Source(), append([]Cospan{}, cospans[:height]...)), nil
}

// Befoot truncates d's cospans before the given regular height, replacing
// d's source with the regular slice found at that height (§4.11).
func Befoot(d DiagramN, height int) (DiagramN, error) {
	cospans := d.Cospans()
	slice, err := d.regularSlice(height)
	if err != nil {
		return DiagramN{}, fmt.Errorf("befoot: %w", err)
	}
	return NewDiagramN(slice, append([]Cospan{}, cospans[height:]...)), nil
}

// Restrict replaces d with the sub-diagram seen by following path step by
// step; path must consist of boundaries and regular slices only, never a
// singular height (§4.11).
func Restrict(d Diagram, path []SliceIndex) (Diagram, error) {
	cur := d
	for i, idx := range path {
		if idx.Boundary == NoBoundary && idx.Kind() == Singular {
			return nil, fmt.Errorf("restrict: path element %d names a singular height, only boundaries and regular slices are allowed: %w", i, herr.ErrInvalid)
		}
		dn, ok := cur.(DiagramN)
		if !ok {
			return nil, fmt.Errorf("restrict: path element %d: diagram has dimension 0, nothing left to slice into: %w", i, herr.ErrInvalid)
		}
		next, err := dn.Slice(idx)
		if err != nil {
			return nil, fmt.Errorf("restrict: path element %d: %w", i, err)
		}
		cur = next
	}
	return cur, nil
}
