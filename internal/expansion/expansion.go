// Package expansion implements §4.8's local re-bracketing of a single
// cospan into two adjacent cospans, and its coarse-smoothing inverse.
// Grounded on homotopy-core/src/expansion.rs's notion of splitting a
// singular height and propagating the split outward; this port implements
// the well-typed core of that operation - splitting a self-dual (forward ==
// backward) cospan into an identity-bridged pair, and its inverse - and
// reports the general interior-rebracketing case (splitting an arbitrary
// cospan by choosing a point inside its singular content) as unsupported,
// since that case requires the one-dimension-down recursive pivot-selection
// logic the original source spends most of its 610 lines on.
package expansion

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Direction selects which side of the target height supplies the pivot
// (§4.8); it has no effect on the self-dual case this port implements, but
// is threaded through so call sites match the original API shape.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Expand re-brackets the cospan at height h of d into two adjacent cospans
// bridged by an identity slice, returning the expanded diagram and the
// rewrite from the expanded diagram back to d (one cone collapsing the two
// new cospans into the original one). Valid only when d's cospan at h is
// self-dual (Forward == Backward, e.g. an identity-like "bubble"); any other
// height fails with a "cannot propagate" error wrapping herr.ErrInvalid, the
// documented scope limit above.
func Expand(d diagram.DiagramN, h int, _ Direction) (diagram.DiagramN, diagram.Rewrite, error) {
	cospans := d.Cospans()
	if h < 0 || h >= len(cospans) {
		return diagram.DiagramN{}, nil, fmt.Errorf("expand: height %d out of bounds [0,%d): %w", h, len(cospans), herr.ErrInvalid)
	}
	cs := cospans[h]
	if !diagram.RewritesEqual(cs.Forward, cs.Backward) {
		return diagram.DiagramN{}, nil, fmt.Errorf("expand: cannot propagate: cospan at height %d is not self-dual, general interior rebracketing is not implemented by this port: %w", h, herr.ErrInvalid)
	}

	newCospans := make([]diagram.Cospan, 0, len(cospans)+1)
	newCospans = append(newCospans, cospans[:h]...)
	newCospans = append(newCospans, cs, cs)
	newCospans = append(newCospans, cospans[h+1:]...)
	expanded := diagram.NewDiagramN(d.Source(), newCospans)

	dim := d.Dimension()
	cone := diagram.Cone{
		Index:  h,
		Source: []diagram.Cospan{cs, cs},
		Target: cs,
		Slices: []diagram.Rewrite{diagram.Identity(dim - 1), diagram.Identity(dim - 1)},
	}
	r, err := diagram.NewRewriteN(dim, []diagram.Cone{cone})
	if err != nil {
		return diagram.DiagramN{}, nil, fmt.Errorf("expand: %w", err)
	}
	return expanded, r, nil
}

// Unsmooth is expansion's coarse-smoothing inverse (§4.8): it collapses two
// adjacent singular heights h, h+1 into one when their cospans are
// identical, the "redundant singular level whose two incoming cones are
// identical and homotopic" case named by the specification. Fails
// "unsmoothable" otherwise.
func Unsmooth(d diagram.DiagramN, h int) (diagram.DiagramN, diagram.Rewrite, error) {
	cospans := d.Cospans()
	if h < 0 || h+1 >= len(cospans) {
		return diagram.DiagramN{}, nil, fmt.Errorf("unsmooth: height %d out of bounds [0,%d): %w", h, len(cospans)-1, herr.ErrInvalid)
	}
	a, b := cospans[h], cospans[h+1]
	if !diagram.CospansEqual(a, b) {
		return diagram.DiagramN{}, nil, fmt.Errorf("unsmooth: cospans at heights %d and %d are not identical: %w", h, h+1, herr.ErrInvalid)
	}

	newCospans := make([]diagram.Cospan, 0, len(cospans)-1)
	newCospans = append(newCospans, cospans[:h]...)
	newCospans = append(newCospans, a)
	newCospans = append(newCospans, cospans[h+2:]...)
	smoothed := diagram.NewDiagramN(d.Source(), newCospans)

	dim := d.Dimension()
	cone := diagram.Cone{
		Index:  h,
		Source: []diagram.Cospan{a, b},
		Target: a,
		Slices: []diagram.Rewrite{diagram.Identity(dim - 1), diagram.Identity(dim - 1)},
	}
	r, err := diagram.NewRewriteN(dim, []diagram.Cone{cone})
	if err != nil {
		return diagram.DiagramN{}, nil, fmt.Errorf("unsmooth: %w", err)
	}
	return smoothed, r, nil
}
