// Package diagram implements the core data model of n-diagrams and
// n-rewrites (§3, §4.4) and the operations of §4.4 and §4.11: slicing,
// splicing (rewrite application), composition, embeddings and attachment.
// Grounded on homotopy-core/src/diagram.rs and homotopy-core/src/rewrite.rs.
package diagram

import (
	"fmt"

	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/hashcons"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

// Diagram is the sum type Diagram0 | DiagramN of §3. Both implementations
// are small structs wrapping a hash-consed handle, so Diagram values are
// directly comparable with == and compare equal iff structurally equal,
// per the hash-cons invariant.
type Diagram interface {
	fmt.Stringer
	// Dimension returns the diagram's dimension (0 for Diagram0).
	Dimension() int
	// handleEqual is the sum-type-aware equality used by diagramsEqual.
	handleEqual(Diagram) bool
	isDiagram()
}

// Diagram0 is a single generator of dimension 0 (§3).
type Diagram0 struct {
	handle hashcons.Handle[generator.Generator]
}

func (Diagram0) isDiagram() {}

// Dimension always returns 0 for Diagram0.
func (Diagram0) Dimension() int { return 0 }

// Generator returns the single generator this diagram consists of.
func (d Diagram0) Generator() generator.Generator { return d.handle.Value() }

func (d Diagram0) String() string {
	return fmt.Sprintf("Diagram0(%d)", d.handle.Value().ID)
}

func (d Diagram0) handleEqual(other Diagram) bool {
	o, ok := other.(Diagram0)
	return ok && d.handle == o.handle
}

// FromGeneratorZero interns g as a 0-diagram.
func FromGeneratorZero(g generator.Generator) Diagram0 {
	return Diagram0{handle: diagram0Table.Intern(g)}
}

type diagramNData struct {
	source  Diagram
	cospans []Cospan
}

// DiagramN is an n-diagram, n >= 1: a source (n-1)-diagram plus an ordered
// sequence of cospans (§3).
type DiagramN struct {
	handle hashcons.Handle[diagramNData]
}

func (DiagramN) isDiagram() {}

// Dimension returns source.Dimension() + 1.
func (d DiagramN) Dimension() int {
	return d.handle.Value().source.Dimension() + 1
}

// Source returns the diagram's (n-1)-dimensional source boundary.
func (d DiagramN) Source() Diagram {
	return d.handle.Value().source
}

// Cospans returns the diagram's ordered cospan sequence. The returned slice
// must not be mutated by callers.
func (d DiagramN) Cospans() []Cospan {
	return d.handle.Value().cospans
}

// Size returns the number of cospans (k in §3).
func (d DiagramN) Size() int {
	return len(d.Cospans())
}

func (d DiagramN) String() string {
	return fmt.Sprintf("DiagramN(dim=%d, size=%d)", d.Dimension(), d.Size())
}

func (d DiagramN) handleEqual(other Diagram) bool {
	o, ok := other.(DiagramN)
	return ok && d.handle == o.handle
}

// newDiagramNUnsafe interns (source, cospans) without re-checking
// well-formedness; internal algorithms that have already established the
// invariants (splice, compose, contraction, ...) use this directly, mirroring
// DiagramN::new_unsafe in the original source.
func newDiagramNUnsafe(source Diagram, cospans []Cospan) DiagramN {
	cs := make([]Cospan, len(cospans))
	copy(cs, cospans)
	return DiagramN{handle: diagramNTable.Intern(diagramNData{source: source, cospans: cs})}
}

// NewDiagramN builds an n-diagram directly from a source and cospan sequence
// without re-deriving them from a generator, for algorithms (normalization,
// expansion, contraction's assembly step) that construct diagrams structurally
// rather than through FromGenerator/splice. Callers are responsible for the
// result satisfying §3/§4.4's invariants; CheckWellFormed can verify it.
func NewDiagramN(source Diagram, cospans []Cospan) DiagramN {
	return newDiagramNUnsafe(source, cospans)
}

// FromGenerator builds the defining n-diagram of a fresh n-generator from its
// parallel (n-1)-diagram source/target (§4.3's create_n, and the DiagramN API
// entry `from_generator`).
func FromGenerator(g generator.Generator, source, target Diagram) (DiagramN, error) {
	if source.Dimension() != target.Dimension() {
		return DiagramN{}, fmt.Errorf("source/target dimension mismatch: %w", herr.ErrDimension)
	}
	if g.Dimension != source.Dimension()+1 {
		return DiagramN{}, fmt.Errorf("generator dimension %d incompatible with boundary dimension %d: %w", g.Dimension, source.Dimension(), herr.ErrDimension)
	}
	if sn, sok := source.(DiagramN); sok {
		tn, tok := target.(DiagramN)
		if !tok || !diagramsEqual(sn.Source(), tn.Source()) || !diagramsEqual(sn.target(), tn.target()) {
			return DiagramN{}, fmt.Errorf("source and target are not globular: %w", herr.ErrIncompatible)
		}
	}

	cospan := Cospan{
		Forward:  coneOverGenerator(g, source),
		Backward: coneOverGenerator(g, target),
	}
	return newDiagramNUnsafe(source, []Cospan{cospan}), nil
}

// IdentityDiagram returns the (dim+1)-diagram with zero cospans whose source
// is d (the DiagramN.identity API entry). Named apart from the Rewrite
// identity constructor of the same name in rewrite.go.
func IdentityDiagram(d Diagram) DiagramN {
	return newDiagramNUnsafe(d, nil)
}

// target computes d's target boundary by applying every cospan's
// forward-then-backward to the source, as specified by §4.4's Slices.
func (d DiagramN) target() Diagram {
	slice := d.Source()
	for _, cs := range d.Cospans() {
		var err error
		slice, err = rewriteForward(slice, cs.Forward)
		if err != nil {
			panic("diagram: malformed diagram has an inapplicable forward rewrite: " + err.Error())
		}
		slice, err = rewriteBackward(slice, cs.Backward)
		if err != nil {
			panic("diagram: malformed diagram has an inapplicable backward rewrite: " + err.Error())
		}
	}
	return slice
}

// Target is the exported form of target, part of the public Diagram API.
func (d DiagramN) Target() Diagram {
	return d.target()
}

// SliceIndex names one of the enumerated slice indices of §4.4: source
// boundary, an interior regular or singular height, or target boundary.
type SliceIndex struct {
	// Boundary is SourceBoundary or TargetBoundary for a boundary slice,
	// or NoBoundary for an interior slice (in which case Height is used).
	Boundary Boundary
	Height   Height
}

// Boundary distinguishes the two ends of a diagram.
type Boundary int

const (
	NoBoundary Boundary = iota
	SourceBoundary
	TargetBoundary
)

// HeightKind distinguishes a regular height (between cospans) from a
// singular height (at a cospan's midpoint).
type HeightKind int

const (
	Regular HeightKind = iota
	Singular
)

// Height is an interior slice position: a regular or singular index into a
// diagram's cospan sequence.
type Height struct {
	Kind  HeightKind
	Index int
}

func RegularHeight(i int) Height  { return Height{Kind: Regular, Index: i} }
func SingularHeight(i int) Height { return Height{Kind: Singular, Index: i} }

// Slice returns the (n-1)-diagram found at the given slice index (§4.4's
// Slices section).
func (d DiagramN) Slice(idx SliceIndex) (Diagram, error) {
	switch idx.Boundary {
	case SourceBoundary:
		return d.Source(), nil
	case TargetBoundary:
		return d.target(), nil
	}
	switch idx.Kind() {
	case Regular:
		return d.regularSlice(idx.Height.Index)
	case Singular:
		return d.singularSlice(idx.Height.Index)
	}
	return nil, fmt.Errorf("slice: unknown height kind: %w", herr.ErrInvalid)
}

// Kind reports whether idx names a regular or singular height; callers must
// not call it on a boundary SliceIndex.
func (idx SliceIndex) Kind() HeightKind {
	return idx.Height.Kind
}

func (d DiagramN) regularSlice(j int) (Diagram, error) {
	cospans := d.Cospans()
	if j < 0 || j > len(cospans) {
		return nil, fmt.Errorf("regular height %d out of range [0,%d]: %w", j, len(cospans), herr.ErrInvalid)
	}
	slice := d.Source()
	for i := 0; i < j; i++ {
		var err error
		slice, err = rewriteForward(slice, cospans[i].Forward)
		if err != nil {
			return nil, err
		}
		slice, err = rewriteBackward(slice, cospans[i].Backward)
		if err != nil {
			return nil, err
		}
	}
	return slice, nil
}

func (d DiagramN) singularSlice(j int) (Diagram, error) {
	cospans := d.Cospans()
	if j < 0 || j >= len(cospans) {
		return nil, fmt.Errorf("singular height %d out of range [0,%d): %w", j, len(cospans), herr.ErrInvalid)
	}
	reg, err := d.regularSlice(j)
	if err != nil {
		return nil, err
	}
	return rewriteForward(reg, cospans[j].Forward)
}

// Slices returns every interior slice of d (regular 0, singular 0, regular 1,
// ..., regular k) in height order without re-applying rewrites quadratically:
// it threads the current slice forward exactly as §4.4 requires of an
// "iter slices" producer.
func (d DiagramN) Slices() func(yield func(Diagram) bool) {
	return func(yield func(Diagram) bool) {
		slice := d.Source()
		cospans := d.Cospans()
		if !yield(slice) {
			return
		}
		for _, cs := range cospans {
			singular, err := rewriteForward(slice, cs.Forward)
			if err != nil {
				return
			}
			if !yield(singular) {
				return
			}
			regular, err := rewriteBackward(singular, cs.Backward)
			if err != nil {
				return
			}
			slice = regular
			if !yield(slice) {
				return
			}
		}
	}
}

// MaxGenerator returns the highest-dimension generator mentioned anywhere in
// d, breaking ties with generator.Generator.Less (SPEC_FULL supplement 1,
// grounded on util::first_max_generator).
func MaxGenerator(d Diagram) (generator.Generator, bool) {
	var gs []generator.Generator
	for g := range Generators(d) {
		gs = append(gs, g)
	}
	return generator.FirstMaxGenerator(gs)
}

// Generators returns every generator mentioned by d (SPEC_FULL supplement 1;
// Diagram API entry `generators()`).
func Generators(d Diagram) func(yield func(generator.Generator) bool) {
	return func(yield func(generator.Generator) bool) {
		visited := make(map[Diagram]bool)
		var walk func(Diagram) bool
		walk = func(d Diagram) bool {
			if visited[d] {
				return true
			}
			visited[d] = true
			switch v := d.(type) {
			case Diagram0:
				return yield(v.Generator())
			case DiagramN:
				for s := range v.Slices() {
					if !walk(s) {
						return false
					}
				}
				return true
			}
			return true
		}
		walk(d)
	}
}

// Mode selects how deeply check_well_formed recurses (§4.10's Shallow/Deep
// distinction, reused here for §4.4's invariant checks).
type Mode int

const (
	Shallow Mode = iota
	Deep
)

// CheckWellFormed verifies the invariants of §3/§4.4 for d, collecting every
// violation instead of stopping at the first (§7).
func CheckWellFormed(d Diagram, mode Mode) error {
	switch v := d.(type) {
	case Diagram0:
		return nil
	case DiagramN:
		return checkDiagramNWellFormed(v, mode)
	}
	return nil
}

func checkDiagramNWellFormed(d DiagramN, mode Mode) error {
	var reasons []herr.Reason
	slice := d.Source()

	if mode == Deep {
		if err := CheckWellFormed(slice, mode); err != nil {
			reasons = append(reasons, herr.Reason{Where: "source boundary", Detail: err.Error()})
		}
	}

	for i, cs := range d.Cospans() {
		if mode == Deep {
			if err := checkRewriteWellFormed(cs.Forward, mode); err != nil {
				reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cospan %d forward", i), Detail: err.Error()})
			}
			if err := checkRewriteWellFormed(cs.Backward, mode); err != nil {
				reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cospan %d backward", i), Detail: err.Error()})
			}
		}

		singular, err := rewriteForward(slice, cs.Forward)
		if err != nil {
			reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cospan %d forward", i), Detail: "does not apply to the current regular slice: " + err.Error()})
			break
		}
		regular, err := rewriteBackward(singular, cs.Backward)
		if err != nil {
			reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("cospan %d backward", i), Detail: "does not apply to the singular slice: " + err.Error()})
			break
		}
		if mode == Deep {
			if err := CheckWellFormed(singular, mode); err != nil {
				reasons = append(reasons, herr.Reason{Where: fmt.Sprintf("singular height %d", i), Detail: err.Error()})
			}
		}
		slice = regular
	}

	return herr.NewMalformed(reasons)
}
