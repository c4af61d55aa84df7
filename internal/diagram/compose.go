package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Compose computes compose(f, g) as defined by §4.4: walking f's and g's
// cones in height order, merging overlaps by composing slices and shifting
// non-overlapping cones by the running height offset. Ported directly from
// RewriteN::compose in the original source, which is the one place this
// system's index arithmetic is genuinely delicate.
func Compose(f, g Rewrite) (Rewrite, error) {
	if f.Dimension() != g.Dimension() {
		return nil, fmt.Errorf("compose: dimensions %d and %d: %w", f.Dimension(), g.Dimension(), herr.ErrDimension)
	}
	if f.Dimension() == 0 {
		return composeRewrite0(f.(Rewrite0), g.(Rewrite0))
	}
	return composeRewriteN(f.(RewriteN), g.(RewriteN))
}

func composeRewrite0(f, g Rewrite0) (Rewrite, error) {
	if g.IsIdentity() {
		return f, nil
	}
	if f.IsIdentity() {
		return g, nil
	}
	_, fTarget, _ := f.Endpoints()
	gSource, _, _ := g.Endpoints()
	if !fTarget.Equal(gSource) {
		return nil, fmt.Errorf("compose: Rewrite0 endpoints do not meet: %w", herr.ErrIncompatible)
	}
	fSource, _, _ := f.Endpoints()
	_, gTarget, _ := g.Endpoints()
	return NewRewrite0(fSource, gTarget, g.Framed())
}

func composeRewriteN(f, g RewriteN) (Rewrite, error) {
	dim := f.Dimension()

	fCones := reverseCones(f.Cones())
	gCones := reverseCones(g.Cones())
	var cones []Cone

	var offset, delayedOffset int

	for len(fCones) > 0 || len(gCones) > 0 {
		switch {
		case len(fCones) == 0:
			gc := popBack(&gCones)
			gc.Index += offset
			offset += delayedOffset
			delayedOffset = 0
			cones = append(cones, gc)

		case len(gCones) == 0:
			fc := popBack(&fCones)
			cones = append(cones, fc)

		default:
			fc := fCones[len(fCones)-1]
			gc := gCones[len(gCones)-1]
			index := fc.Index - gc.Index - offset

			switch {
			case index >= gc.Len():
				gc2 := popBack(&gCones)
				gc2.Index += offset
				cones = append(cones, gc2)
				offset += delayedOffset
				delayedOffset = 0
				// f_cone stays for the next round; nothing popped from fCones.

			case index < 0:
				fc2 := popBack(&fCones)
				cones = append(cones, fc2)
				offset -= 1 - fc2.Len()

			default:
				fc2 := popBack(&fCones)
				merged, err := mergeCones(fc2, gc, index)
				if err != nil {
					return nil, err
				}
				delayedOffset -= 1 - fc2.Len()
				gCones[len(gCones)-1] = merged
			}
		}
	}

	return newRewriteNUnsafe(dim, cones), nil
}

func reverseCones(cs []Cone) []Cone {
	out := make([]Cone, len(cs))
	for i, c := range cs {
		out[len(cs)-1-i] = c
	}
	return out
}

// popBack removes and returns the last element of *s (the cones slices are
// treated as stacks, mirroring the Vec::pop usage in the original source).
func popBack(s *[]Cone) Cone {
	n := len(*s)
	c := (*s)[n-1]
	*s = (*s)[:n-1]
	return c
}

// mergeCones absorbs fc into gc at the given overlap index, composing the
// overlapping slice and splicing fc's source run and slices into gc's.
func mergeCones(fc, gc Cone, index int) (Cone, error) {
	if !cospansEqual(fc.Target, gc.Source[index]) {
		return Cone{}, fmt.Errorf("compose: incompatible cospans at overlap: %w", herr.ErrIncompatible)
	}

	source := make([]Cospan, 0, len(gc.Source)-1+len(fc.Source))
	source = append(source, gc.Source[:index]...)
	source = append(source, fc.Source...)
	source = append(source, gc.Source[index+1:]...)

	gSlice := gc.Slices[index]
	slices := make([]Rewrite, 0, len(gc.Slices)-1+len(fc.Slices))
	slices = append(slices, gc.Slices[:index]...)
	for _, fSlice := range fc.Slices {
		composed, err := Compose(fSlice, gSlice)
		if err != nil {
			return Cone{}, err
		}
		slices = append(slices, composed)
	}
	slices = append(slices, gc.Slices[index+1:]...)

	return Cone{
		Index:  gc.Index,
		Source: source,
		Target: gc.Target,
		Slices: slices,
	}, nil
}
