package expansion

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/herr"
)

func gen(id generator.ID, dim int) generator.Generator {
	return generator.Generator{ID: id, Dimension: dim, Orientation: generator.Positive}
}

func selfDualDiagram() diagram.DiagramN {
	x := diagram.FromGeneratorZero(gen(1, 0))
	return diagram.NewDiagramN(x, []diagram.Cospan{{Forward: diagram.Identity(0), Backward: diagram.Identity(0)}})
}

func TestExpandSplitsSelfDualCospan(t *testing.T) {
	c := qt.New(t)
	d := selfDualDiagram()

	expanded, r, err := Expand(d, 0, Forward)
	c.Assert(err, qt.IsNil)
	c.Assert(expanded.Size(), qt.Equals, 2)
	c.Assert(r.Dimension(), qt.Equals, 1)
	c.Assert(r.IsIdentity(), qt.IsFalse)
}

func TestExpandRejectsNonSelfDualCospan(t *testing.T) {
	c := qt.New(t)
	x := diagram.FromGeneratorZero(gen(1, 0))
	y := diagram.FromGeneratorZero(gen(2, 0))
	f, err := diagram.FromGenerator(gen(10, 1), x, y)
	c.Assert(err, qt.IsNil)

	_, _, err = Expand(f, 0, Forward)
	c.Assert(err, qt.ErrorIs, herr.ErrInvalid)
}

func TestExpandRejectsOutOfBounds(t *testing.T) {
	c := qt.New(t)
	d := selfDualDiagram()

	_, _, err := Expand(d, 5, Forward)
	c.Assert(err, qt.ErrorIs, herr.ErrInvalid)
}

func TestUnsmoothIsExpandsInverse(t *testing.T) {
	c := qt.New(t)
	d := selfDualDiagram()
	expanded, _, err := Expand(d, 0, Forward)
	c.Assert(err, qt.IsNil)

	smoothed, r, err := Unsmooth(expanded, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(smoothed.Size(), qt.Equals, 1)
	c.Assert(r.Dimension(), qt.Equals, 1)
}

func TestUnsmoothRejectsDistinctCospans(t *testing.T) {
	c := qt.New(t)
	x := diagram.FromGeneratorZero(gen(1, 0))
	f, err := diagram.FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	g, err := diagram.FromGenerator(gen(11, 1), x, x)
	c.Assert(err, qt.IsNil)
	fg, err := diagram.Attach(f, g, diagram.TargetBoundary, nil)
	c.Assert(err, qt.IsNil)

	_, _, err = Unsmooth(fg, 0)
	c.Assert(err, qt.ErrorIs, herr.ErrInvalid)
}
