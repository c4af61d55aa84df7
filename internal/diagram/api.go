package diagram

// This file collects thin method wrappers matching §6's Diagram/Rewrite API
// surface, so callers outside this package see the same vocabulary as the
// specification (`rewrite_forward`, `check_well_formed`, `cones`, ...)
// instead of having to know which free function implements each.

// RewriteForward applies r forward to d (must have dimension d.Dimension()).
func (d DiagramN) RewriteForward(r Rewrite) (DiagramN, error) {
	out, err := rewriteForward(d, r)
	if err != nil {
		return DiagramN{}, err
	}
	return out.(DiagramN), nil
}

// RewriteBackward applies r backward to d.
func (d DiagramN) RewriteBackward(r Rewrite) (DiagramN, error) {
	out, err := rewriteBackward(d, r)
	if err != nil {
		return DiagramN{}, err
	}
	return out.(DiagramN), nil
}

// CheckWellFormed is the DiagramN method form of CheckWellFormed.
func (d DiagramN) CheckWellFormed(mode Mode) error {
	return checkDiagramNWellFormed(d, mode)
}

// CheckWellFormed is the Rewrite method form, implemented for both Rewrite0
// and RewriteN (Rewrite0 has no internal structure to violate).
func (r Rewrite0) CheckWellFormed(Mode) error { return nil }

func (r RewriteN) CheckWellFormed(mode Mode) error {
	return checkRewriteWellFormed(r, mode)
}

// Compose is the method form of Compose for Rewrite0/RewriteN, matching the
// Rewrite API's `compose(other)`.
func (r Rewrite0) Compose(other Rewrite) (Rewrite, error) { return Compose(r, other) }
func (r RewriteN) Compose(other Rewrite) (Rewrite, error) { return Compose(r, other) }

// RewritesEqual reports whether a and b are the same rewrite, comparing the
// interned handles structurally rather than any printed form (Rewrite's
// String() is a debugging label, not a canonical form - RewriteN's omits
// cone content and Rewrite0's omits framing, so callers outside this package
// that need real equality must use this instead of comparing String()).
func RewritesEqual(a, b Rewrite) bool { return rewritesEqual(a, b) }

// CospansEqual is the Cospan form of RewritesEqual.
func CospansEqual(a, b Cospan) bool { return cospansEqual(a, b) }
