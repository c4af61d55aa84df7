// Package generator defines the identity of a generator: the atomic,
// user-named cell of a signature that diagrams are built from (§3).
package generator

import "fmt"

// Orientation distinguishes a generator from its homotopy or inverse. Two
// generators with the same ID share semantics; Orientation is the other half
// of a generator's identity.
type Orientation int

const (
	Zero Orientation = iota
	Positive
	Negative
)

func (o Orientation) String() string {
	switch o {
	case Zero:
		return "zero"
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
}

// Inverse returns the orientation obtained by flipping positive/negative;
// Zero is its own inverse.
func (o Orientation) Inverse() Orientation {
	switch o {
	case Positive:
		return Negative
	case Negative:
		return Positive
	default:
		return Zero
	}
}

// ID is a signature-assigned identity shared by a generator and its
// homotopies/inverses. Dimension is a function of ID within a given
// signature, not carried here.
type ID uint64

// Generator is the triple (id, dimension, orientation) from §3. Identity is
// by (ID, Orientation); Dimension is informational and must agree with the
// signature's own record of ID's dimension.
type Generator struct {
	ID          ID
	Dimension   int
	Orientation Orientation
}

// Equal reports whether two generators have the same identity, i.e. the same
// ID and Orientation. It deliberately ignores Dimension, matching the
// invariant that identity is by (id, orientation).
func (g Generator) Equal(other Generator) bool {
	return g.ID == other.ID && g.Orientation == other.Orientation
}

// Less provides a fixed total order on generators, used to break ties when
// picking a "first max generator" (§ SPEC_FULL, max_generator).
func (g Generator) Less(other Generator) bool {
	if g.Dimension != other.Dimension {
		return g.Dimension < other.Dimension
	}
	if g.ID != other.ID {
		return g.ID < other.ID
	}
	return g.Orientation < other.Orientation
}

// Inverse returns the generator that is this generator's orientation-flipped
// counterpart.
func (g Generator) Inverse() Generator {
	return Generator{ID: g.ID, Dimension: g.Dimension, Orientation: g.Orientation.Inverse()}
}

// FirstMaxGenerator returns the highest-dimension generator among gs,
// breaking ties with Generator.Less, or false if gs is empty. Grounded on
// util::first_max_generator in the original source.
func FirstMaxGenerator(gs []Generator) (Generator, bool) {
	var best Generator
	found := false
	for _, g := range gs {
		if !found || best.Less(g) {
			best = g
			found = true
		}
	}
	return best, found
}
