// Package herr defines the error kinds shared by every core operation (§7).
// Core operations return a tagged result; callers should compare with
// errors.Is against the sentinels below rather than switching on strings.
package herr

import (
	"errors"
	"fmt"
)

// Sentinel error kinds, one per §7 entry. Wrap with fmt.Errorf("...: %w", Err...)
// to add operation-specific context while keeping errors.Is working.
var (
	// ErrDimension: operand dimensions disagree.
	ErrDimension = errors.New("dimension mismatch")
	// ErrIncompatible: structural mismatch at a boundary or cone.
	ErrIncompatible = errors.New("incompatible")
	// ErrInvalid: preconditions violated (out-of-range height, empty
	// diagram where nonempty required, etc).
	ErrInvalid = errors.New("invalid")
	// ErrAmbiguous: a choice is forced with no basis (typically contraction).
	ErrAmbiguous = errors.New("ambiguous")
	// ErrIllTyped: typecheck failed.
	ErrIllTyped = errors.New("ill-typed")
	// ErrUnknownGenerator: signature missing a referenced generator.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrNotInvertible: invert applied to a diagram containing a
	// non-invertible generator.
	ErrNotInvertible = errors.New("not invertible")
)

// Reason names one concrete defect found by a well-formedness check.
type Reason struct {
	// Where is a human-readable location, e.g. "cospan 3 forward" or
	// "cone 1 square 2".
	Where string
	// Detail explains the defect, e.g. "slice-of mismatch" or
	// "forward != backward".
	Detail string
}

func (r Reason) String() string {
	return fmt.Sprintf("%s: %s", r.Where, r.Detail)
}

// Malformed is the structured result of a check_well_formed call that
// collects every defect instead of stopping at the first (§7).
type Malformed struct {
	Reasons []Reason
}

func (m *Malformed) Error() string {
	if len(m.Reasons) == 1 {
		return "malformed: " + m.Reasons[0].String()
	}
	return fmt.Sprintf("malformed: %d reasons (first: %s)", len(m.Reasons), m.Reasons[0].String())
}

// Unwrap allows errors.Is(err, ErrInvalid)-style checks against a *Malformed
// (malformed diagrams are always also "invalid" in the §7 error-kind sense).
func (m *Malformed) Unwrap() error {
	return ErrInvalid
}

// NewMalformed builds a *Malformed from a non-empty reason list, or returns
// nil if reasons is empty (the well-formed case).
func NewMalformed(reasons []Reason) error {
	if len(reasons) == 0 {
		return nil
	}
	return &Malformed{Reasons: reasons}
}
