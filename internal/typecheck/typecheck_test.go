package typecheck

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
	"github.com/homotopy-io/homotopy-go/internal/signature"
)

func TestTypecheckAcceptsWellTypedDiagram(t *testing.T) {
	c := qt.New(t)
	sig := signature.New()
	x := sig.CreateZero("x")
	xd := diagram.FromGeneratorZero(x)
	_, f, err := sig.CreateN("f", xd, xd)
	c.Assert(err, qt.IsNil)

	c.Assert(Typecheck(f, sig, Shallow), qt.IsNil)
	c.Assert(Typecheck(f, sig, Deep), qt.IsNil)
}

func TestTypecheckRejectsUnknownGenerator(t *testing.T) {
	c := qt.New(t)
	sig := signature.New()
	stray := diagram.FromGeneratorZero(generator.Generator{ID: 9999, Dimension: 0, Orientation: generator.Zero})

	err := Typecheck(stray, sig, Shallow)
	c.Assert(err, qt.ErrorIs, herr.ErrUnknownGenerator)
}

func TestTypecheckRejectsDiagramRetargetedToWrongGenerator(t *testing.T) {
	c := qt.New(t)
	sig := signature.New()
	x := sig.CreateZero("x")
	y := sig.CreateZero("y")
	xd := diagram.FromGeneratorZero(x)
	yd := diagram.FromGeneratorZero(y)
	// f is registered in the signature as x -> x, but we typecheck a
	// hand-built x -> y diagram claiming to use f's generator: the shapes
	// disagree once both sides are exploded and quotiented by collapse.
	g, _, err := sig.CreateN("f", xd, xd)
	c.Assert(err, qt.IsNil)

	mismatched, err := diagram.FromGenerator(g, xd, yd)
	c.Assert(err, qt.IsNil)

	err = Typecheck(mismatched, sig, Shallow)
	c.Assert(err, qt.ErrorIs, herr.ErrIllTyped)
}
