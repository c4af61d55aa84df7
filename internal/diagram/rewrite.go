package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/hashcons"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Rewrite is the sum type Rewrite0 | RewriteN of §3.
type Rewrite interface {
	fmt.Stringer
	// Dimension returns the rewrite's dimension.
	Dimension() int
	// IsIdentity reports whether this rewrite is the identity rewrite of
	// its dimension.
	IsIdentity() bool
	handleEqual(Rewrite) bool
	isRewrite()
}

// Cospan is a pair of parallel rewrites sharing a middle (singular) slice
// (§3).
type Cospan struct {
	Forward  Rewrite
	Backward Rewrite
}

// IsIdentity reports whether both legs of the cospan are identities.
func (c Cospan) IsIdentity() bool {
	return c.Forward.IsIdentity() && c.Backward.IsIdentity()
}

// Cone is a unit of a RewriteN: a contiguous run of source cospans collapsed
// into one target cospan via a sequence of (n-1)-dimensional slices (§3).
type Cone struct {
	// Index is the position in the source's cospans where this cone's run
	// starts; its position in the target is Index shifted by 1-Len() for
	// every earlier cone.
	Index int
	// Source is the run of source cospans this cone collapses.
	Source []Cospan
	// Target is the single cospan the source run collapses to.
	Target Cospan
	// Slices has one entry per source cospan.
	Slices []Rewrite
}

// Len is the number of source cospans this cone covers ("m" in §4.4).
func (c Cone) Len() int {
	return len(c.Source)
}

// IsIdentityCone reports whether c is the canonical "identity cone" excluded
// from a RewriteN's representation: length 1, source == target, identity
// slice (§3).
func (c Cone) IsIdentityCone() bool {
	return len(c.Source) == 1 &&
		len(c.Slices) == 1 &&
		c.Slices[0].IsIdentity() &&
		cospansEqual(c.Source[0], c.Target)
}

// rewrite0Data is the payload of a Rewrite0: either the identity (hasMapping
// == false) or a pair (source, target) of generators with an orientation
// label (SPEC_FULL supplement 2).
type rewrite0Data struct {
	hasMapping bool
	source     generator.Generator
	target     generator.Generator
	framed     bool
}

// Rewrite0 is a 0-dimensional rewrite: identity, or a pair of generators
// (§3).
type Rewrite0 struct {
	handle hashcons.Handle[rewrite0Data]
}

func (Rewrite0) isRewrite() {}

// Dimension always returns 0.
func (Rewrite0) Dimension() int { return 0 }

// IsIdentity reports whether r carries no (source, target) mapping.
func (r Rewrite0) IsIdentity() bool {
	return !r.handle.Value().hasMapping
}

// Endpoints returns the (source, target) generator pair, and false if r is
// the identity rewrite.
func (r Rewrite0) Endpoints() (source, target generator.Generator, ok bool) {
	d := r.handle.Value()
	return d.source, d.target, d.hasMapping
}

// Framed reports the orientation/framing label carried by a non-identity
// Rewrite0 (SPEC_FULL supplement 2); it is meaningless on the identity.
func (r Rewrite0) Framed() bool {
	return r.handle.Value().framed
}

func (r Rewrite0) String() string {
	d := r.handle.Value()
	if !d.hasMapping {
		return "Rewrite0(identity)"
	}
	return fmt.Sprintf("Rewrite0(%d -> %d)", d.source.ID, d.target.ID)
}

func (r Rewrite0) handleEqual(other Rewrite) bool {
	o, ok := other.(Rewrite0)
	return ok && r.handle == o.handle
}

// IdentityRewrite0 returns the identity rewrite of dimension 0.
func IdentityRewrite0() Rewrite0 {
	return Rewrite0{handle: rewrite0Table.Intern(rewrite0Data{})}
}

// NewRewrite0 builds a non-identity Rewrite0 from source to target, failing
// with herr.ErrDimension unless source.Dimension <= target.Dimension (§3).
func NewRewrite0(source, target generator.Generator, framed bool) (Rewrite0, error) {
	if source.Dimension > target.Dimension {
		return Rewrite0{}, fmt.Errorf("source dimension %d exceeds target dimension %d: %w", source.Dimension, target.Dimension, herr.ErrDimension)
	}
	return Rewrite0{handle: rewrite0Table.Intern(rewrite0Data{
		hasMapping: true,
		source:     source,
		target:     target,
		framed:     framed,
	})}, nil
}

type rewriteNData struct {
	dimension int
	cones     []Cone
}

// RewriteN is an n-dimensional rewrite, n >= 1: an ordered sequence of cones
// (§3).
type RewriteN struct {
	handle hashcons.Handle[rewriteNData]
}

func (RewriteN) isRewrite() {}

// Dimension returns the rewrite's dimension.
func (r RewriteN) Dimension() int { return r.handle.Value().dimension }

// IsIdentity reports whether r has zero cones (§3).
func (r RewriteN) IsIdentity() bool {
	return len(r.handle.Value().cones) == 0
}

// Cones returns r's ordered cone sequence, excluding any canonical identity
// cones that were filtered out at construction time.
func (r RewriteN) Cones() []Cone {
	return r.handle.Value().cones
}

func (r RewriteN) String() string {
	return fmt.Sprintf("RewriteN(dim=%d, cones=%d)", r.Dimension(), len(r.Cones()))
}

func (r RewriteN) handleEqual(other Rewrite) bool {
	o, ok := other.(RewriteN)
	return ok && r.handle == o.handle
}

// IdentityRewriteN returns the identity rewrite of the given dimension
// (dim must be >= 1; use IdentityRewrite0 for dimension 0).
func IdentityRewriteN(dim int) RewriteN {
	return newRewriteNUnsafe(dim, nil)
}

// Identity returns the identity rewrite of the given dimension, dispatching
// to Rewrite0 or RewriteN as appropriate (the Rewrite API's `identity(dim)`).
func Identity(dim int) Rewrite {
	if dim == 0 {
		return IdentityRewrite0()
	}
	return IdentityRewriteN(dim)
}

func newRewriteNUnsafe(dim int, cones []Cone) RewriteN {
	filtered := make([]Cone, 0, len(cones))
	for _, c := range cones {
		if !c.IsIdentityCone() {
			filtered = append(filtered, c)
		}
	}
	return RewriteN{handle: rewriteNTable.Intern(rewriteNData{dimension: dim, cones: filtered})}
}

// NewRewriteN validates and interns a RewriteN from its dimension and cones,
// running the commutation check of §4.4.
func NewRewriteN(dim int, cones []Cone) (RewriteN, error) {
	for i, c := range cones {
		if err := checkCone(dim, c); err != nil {
			return RewriteN{}, fmt.Errorf("cone %d: %w", i, err)
		}
	}
	return newRewriteNUnsafe(dim, cones), nil
}

// coneOverGenerator builds the single top-dimensional cone rewrite that
// witnesses `generator` as the defining generator whose source/target is
// `base` (used by FromGenerator and by a generator's own defining diagram,
// §3's "distinguished single top-dimensional cone").
func coneOverGenerator(g generator.Generator, base Diagram) Rewrite {
	if base.Dimension() == 0 {
		b0 := base.(Diagram0)
		r0, err := NewRewrite0(b0.Generator(), g, false)
		if err != nil {
			panic("diagram: coneOverGenerator: " + err.Error())
		}
		return r0
	}
	bn := base.(DiagramN)
	var slices []Rewrite
	i := 0
	for s := range bn.Slices() {
		if i%2 == 1 {
			slices = append(slices, coneOverGenerator(g, s))
		}
		i++
	}
	cone := Cone{
		Index:  0,
		Source: append([]Cospan(nil), bn.Cospans()...),
		Target: Cospan{Forward: coneOverGenerator(g, bn.Source()), Backward: coneOverGenerator(g, bn.target())},
		Slices: slices,
	}
	return newRewriteNUnsafe(bn.Dimension(), []Cone{cone})
}

func identitySlices(cospans []Cospan) []Rewrite {
	out := make([]Rewrite, len(cospans))
	for i := range cospans {
		out[i] = Identity(cospans[i].Forward.Dimension())
	}
	return out
}

// Slice returns the rewrite of dimension n-1 describing how the singular
// slice at height h of r's source diagram is rewritten: the slice of the
// unique cone covering h, or identity if none covers it (§4.4's
// "Slice of a rewrite").
func (r RewriteN) Slice(h int) Rewrite {
	for _, c := range r.Cones() {
		if c.Index <= h && h < c.Index+c.Len() {
			return c.Slices[h-c.Index]
		}
	}
	return Identity(r.Dimension() - 1)
}

// ConeOverTarget returns the unique cone whose image covers target height h,
// or (Cone{}, false) if h is not covered by any cone (i.e. h is an
// untouched, shifted target height). Grounded on rewrite.rs's
// cone_over_target.
func (r RewriteN) ConeOverTarget(h int) (Cone, bool) {
	offset := 0
	for _, c := range r.Cones() {
		target := c.Index + offset
		if target == h {
			return c, true
		}
		offset += 1 - c.Len()
	}
	return Cone{}, false
}

// SingularImage returns the target height that source singular height i maps
// to under r's induced monotone map (§4.4's "Monotone view").
func (r RewriteN) SingularImage(i int) int {
	offset := 0
	for _, c := range r.Cones() {
		if i < c.Index {
			return i + offset
		}
		if i < c.Index+c.Len() {
			return c.Index + offset
		}
		offset += 1 - c.Len()
	}
	return i + offset
}

// SingularPreimage returns the contiguous range of source singular heights
// mapping to target height j.
func (r RewriteN) SingularPreimage(j int) (lo, hi int) {
	offset := 0
	for _, c := range r.Cones() {
		adjusted := j - offset
		switch {
		case adjusted < c.Index:
			return adjusted, adjusted + 1
		case adjusted == c.Index:
			return c.Index, c.Index + c.Len()
		default:
			offset += 1 - c.Len()
		}
	}
	adjusted := j - offset
	return adjusted, adjusted + 1
}

// RegularImage returns the target regular height that source regular height
// i maps to. A height strictly inside a cone's run maps to the regular height
// just below that cone's target.
func (r RewriteN) RegularImage(i int) int {
	offset := 0
	for _, c := range r.Cones() {
		if i <= c.Index {
			return i + offset
		}
		if i < c.Index+c.Len() {
			return c.Index + offset
		}
		offset += 1 - c.Len()
	}
	return i + offset
}

// RegularPreimage returns the range of source regular heights mapping to
// target regular height j.
func (r RewriteN) RegularPreimage(j int) (lo, hi int) {
	offset := 0
	cones := r.Cones()
	for ci, c := range cones {
		start := j + offset
		switch {
		case c.Index > j || (c.Len() > 0 && c.Index == j):
			return start, start + 1
		case c.Index == j && c.Len() == 0:
			length := 0
			for _, c2 := range cones[ci:] {
				if c2.Index == j && c2.Len() == 0 {
					length++
				} else {
					break
				}
			}
			return start, start + length + 1
		case c.Index < j && j < c.Index+c.Len():
			start = c.Index + offset
			return start, start
		default:
			offset += 1 - c.Len()
		}
	}
	start := j + offset
	return start, start + 1
}

// Targets returns the target index each cone of r maps onto, in order
// (RewriteN API entry `targets()`).
func (r RewriteN) Targets() []int {
	offset := 0
	out := make([]int, 0, len(r.Cones()))
	for _, c := range r.Cones() {
		out = append(out, c.Index+offset)
		offset += 1 - c.Len()
	}
	return out
}

// checkCone validates the commutation squares of §4.4 for a single cone of
// the given ambient rewrite dimension.
func checkCone(dim int, c Cone) error {
	m := c.Len()
	if len(c.Slices) != m {
		return fmt.Errorf("cone has %d source cospans but %d slices: %w", m, len(c.Slices), herr.ErrIncompatible)
	}
	if m == 0 {
		if !cospansEqual(Cospan{Forward: c.Target.Forward}, Cospan{Forward: c.Target.Backward}) {
			return fmt.Errorf("length-0 cone requires forward == backward: %w", herr.ErrIncompatible)
		}
		return nil
	}
	if !rewritesEqual(compose2(c.Source[0].Forward, c.Slices[0]), c.Target.Forward) {
		return fmt.Errorf("left square does not commute: %w", herr.ErrIncompatible)
	}
	for i := 0; i < m-1; i++ {
		lhs := compose2(c.Source[i].Backward, c.Slices[i])
		rhs := compose2(c.Source[i+1].Forward, c.Slices[i+1])
		if !rewritesEqual(lhs, rhs) {
			return fmt.Errorf("middle square %d does not commute: %w", i, herr.ErrIncompatible)
		}
	}
	if !rewritesEqual(compose2(c.Source[m-1].Backward, c.Slices[m-1]), c.Target.Backward) {
		return fmt.Errorf("right square does not commute: %w", herr.ErrIncompatible)
	}
	return nil
}

// compose2 composes two rewrites, returning nil on any composition error so
// commutation checks can still compare (nil never equals a real rewrite, so a
// malformed cone simply fails equality, which is the desired
// "non-commutative" verdict rather than a panic).
func compose2(f, g Rewrite) Rewrite {
	r, err := Compose(f, g)
	if err != nil {
		return nil
	}
	return r
}

// checkRewriteWellFormed verifies the commutation squares of every cone in r
// (§7's "cone non-commutative at a named square").
func checkRewriteWellFormed(r Rewrite, mode Mode) error {
	rn, ok := r.(RewriteN)
	if !ok {
		return nil
	}
	var reasons []herr.Reason
	for i, c := range rn.Cones() {
		if err := checkCone(rn.Dimension(), c); err != nil {
			reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cone %d", i), Detail: err.Error()})
		}
		if mode == Deep {
			for j, s := range c.Slices {
				if err := checkRewriteWellFormed(s, mode); err != nil {
					reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cone %d slice %d", i, j), Detail: err.Error()})
				}
			}
		}
	}
	return herr.NewMalformed(reasons)
}
