package diagram

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

func twoCospanDiagram(c *qt.C) (x Diagram0, combined DiagramN, fd, gd DiagramN) {
	x = FromGeneratorZero(gen(1, 0))
	var err error
	fd, err = FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	gd, err = FromGenerator(gen(11, 1), x, x)
	c.Assert(err, qt.IsNil)
	combined = NewDiagramN(x, []Cospan{fd.Cospans()[0], gd.Cospans()[0]})
	return
}

func TestBeheadKeepsCospansUpToHeight(t *testing.T) {
	c := qt.New(t)
	_, combined, fd, _ := twoCospanDiagram(c)

	beheaded, err := Behead(combined, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(diagramsEqual(beheaded, fd), qt.IsTrue)
}

func TestBeheadRejectsOutOfRangeHeight(t *testing.T) {
	c := qt.New(t)
	_, combined, _, _ := twoCospanDiagram(c)

	_, err := Behead(combined, 5)
	c.Assert(err, qt.ErrorIs, herr.ErrInvalid)
}

func TestBefootKeepsCospansFromHeight(t *testing.T) {
	c := qt.New(t)
	_, combined, _, gd := twoCospanDiagram(c)

	befooted, err := Befoot(combined, 1)
	c.Assert(err, qt.IsNil)
	c.Assert(diagramsEqual(befooted, gd), qt.IsTrue)
}

func TestRestrictFollowsBoundariesAndRegularSlices(t *testing.T) {
	c := qt.New(t)
	x, combined, _, _ := twoCospanDiagram(c)

	got, err := Restrict(combined, []SliceIndex{{Boundary: SourceBoundary}})
	c.Assert(err, qt.IsNil)
	c.Assert(diagramsEqual(got, x), qt.IsTrue)

	got, err = Restrict(combined, []SliceIndex{{Height: RegularHeight(1)}})
	c.Assert(err, qt.IsNil)
	c.Assert(diagramsEqual(got, x), qt.IsTrue)
}

func TestRestrictRejectsSingularHeight(t *testing.T) {
	c := qt.New(t)
	_, combined, _, _ := twoCospanDiagram(c)

	_, err := Restrict(combined, []SliceIndex{{Height: SingularHeight(0)}})
	c.Assert(err, qt.ErrorIs, herr.ErrInvalid)
}
