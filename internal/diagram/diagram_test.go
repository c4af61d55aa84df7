package diagram

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/generator"
)

func gen(id generator.ID, dim int) generator.Generator {
	return generator.Generator{ID: id, Dimension: dim, Orientation: generator.Positive}
}

func TestFromGeneratorZeroAndEquality(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	x2 := FromGeneratorZero(gen(1, 0))
	y := FromGeneratorZero(gen(2, 0))

	c.Assert(x.Dimension(), qt.Equals, 0)
	c.Assert(diagramsEqual(x, x2), qt.IsTrue)
	c.Assert(diagramsEqual(x, y), qt.IsFalse)
}

func TestFromGeneratorAndSlices(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	c.Assert(f.Dimension(), qt.Equals, 1)
	c.Assert(f.Size(), qt.Equals, 1)
	c.Assert(diagramsEqual(f.Source(), x), qt.IsTrue)
	c.Assert(diagramsEqual(f.Target(), x), qt.IsTrue)
	c.Assert(CheckWellFormed(f, Deep), qt.IsNil)

	var slices []Diagram
	for s := range f.Slices() {
		slices = append(slices, s)
	}
	c.Assert(slices, qt.HasLen, 3)
	c.Assert(diagramsEqual(slices[0], x), qt.IsTrue)
	c.Assert(diagramsEqual(slices[2], x), qt.IsTrue)
}

func TestFromGeneratorRejectsNonGlobularBoundaries(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	y := FromGeneratorZero(gen(2, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	g, err := FromGenerator(gen(11, 1), y, y)
	c.Assert(err, qt.IsNil)

	_, err = FromGenerator(gen(20, 2), f, g)
	c.Assert(err, qt.ErrorMatches, ".*not globular.*")
}

func TestIdentityIsSizeZero(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	idX := IdentityDiagram(x)
	c.Assert(idX.Size(), qt.Equals, 0)
	c.Assert(diagramsEqual(idX.Source(), x), qt.IsTrue)
	c.Assert(diagramsEqual(idX.Target(), x), qt.IsTrue)
}

func TestComposeIdentityLawsRewrite0(t *testing.T) {
	c := qt.New(t)
	a, b := gen(1, 0), gen(2, 0)
	r, err := NewRewrite0(a, b, false)
	c.Assert(err, qt.IsNil)

	left, err := Compose(Identity(0), r)
	c.Assert(err, qt.IsNil)
	c.Assert(rewritesEqual(left, r), qt.IsTrue)

	right, err := Compose(r, Identity(0))
	c.Assert(err, qt.IsNil)
	c.Assert(rewritesEqual(right, r), qt.IsTrue)
}

func TestComposeIdentityLawsRewriteN(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	r := coneOverGenerator(gen(20, 2), f)

	left, err := Compose(Identity(1), r)
	c.Assert(err, qt.IsNil)
	c.Assert(rewritesEqual(left, r), qt.IsTrue)

	right, err := Compose(r, Identity(1))
	c.Assert(err, qt.IsNil)
	c.Assert(rewritesEqual(right, r), qt.IsTrue)
}

func TestSpliceRoundTrip(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	r := coneOverGenerator(gen(20, 2), f)
	forwarded, err := f.RewriteForward(r)
	c.Assert(err, qt.IsNil)

	back, err := forwarded.RewriteBackward(r)
	c.Assert(err, qt.IsNil)
	c.Assert(diagramsEqual(back, f), qt.IsTrue)
}

// buildAssociator reproduces the associator-of-a-monoid scenario: a single
// object x, a binary generator f : x -> x treated as two composable copies,
// and a generator m witnessing f.f -> f. Attaching m twice, left- and
// right-associated, exercises Attach's region-matching logic over a
// genuinely non-trivial embedding.
func buildAssociator(c *qt.C) (ff, m DiagramN) {
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	ff, err = Attach(f, f, TargetBoundary, nil)
	c.Assert(err, qt.IsNil)
	c.Assert(ff.Size(), qt.Equals, 2)
	c.Assert(diagramsEqual(ff.Source(), x), qt.IsTrue)
	c.Assert(diagramsEqual(ff.Target(), x), qt.IsTrue)

	m, err = FromGenerator(gen(20, 2), ff, f)
	c.Assert(err, qt.IsNil)
	c.Assert(m.Size(), qt.Equals, 1)
	return ff, m
}

func TestAssociatorOfAMonoid(t *testing.T) {
	c := qt.New(t)
	_, m := buildAssociator(c)

	left, err := Attach(m, m, SourceBoundary, Embedding{0})
	c.Assert(err, qt.IsNil)
	c.Assert(left.Size(), qt.Equals, 2)
	c.Assert(CheckWellFormed(left, Deep), qt.IsNil)

	right, err := Attach(m, m, SourceBoundary, Embedding{1})
	c.Assert(err, qt.IsNil)
	c.Assert(right.Size(), qt.Equals, 2)
	c.Assert(CheckWellFormed(right, Deep), qt.IsNil)

	leftSource, ok := left.Source().(DiagramN)
	c.Assert(ok, qt.IsTrue)
	c.Assert(leftSource.Size(), qt.Equals, 3)
	rightSource, ok := right.Source().(DiagramN)
	c.Assert(ok, qt.IsTrue)
	c.Assert(rightSource.Size(), qt.Equals, 3)
}

func TestAttachRejectsDimensionMismatch(t *testing.T) {
	c := qt.New(t)
	_, m := buildAssociator(c)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	_, err = Attach(f, m, TargetBoundary, nil)
	c.Assert(err, qt.ErrorMatches, ".*dimension mismatch.*")
}

func TestAttachRejectsMismatchedRegion(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	y := FromGeneratorZero(gen(2, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	g, err := FromGenerator(gen(11, 1), y, y)
	c.Assert(err, qt.IsNil)

	_, err = Attach(f, g, TargetBoundary, nil)
	c.Assert(err, qt.IsNotNil)
}

func TestEmbeddingsFindsBothOccurrences(t *testing.T) {
	c := qt.New(t)
	ff, _ := buildAssociator(c)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	var found []Embedding
	for e := range Embeddings(ff, f) {
		found = append(found, append(Embedding(nil), e...))
	}
	c.Assert(found, qt.HasLen, 2)
	c.Assert(found[0], qt.DeepEquals, Embedding{0})
	c.Assert(found[1], qt.DeepEquals, Embedding{1})
}

func TestMaxGeneratorAndGenerators(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	f, err := FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)
	m, err := FromGenerator(gen(20, 2), f, f)
	c.Assert(err, qt.IsNil)

	best, ok := MaxGenerator(m)
	c.Assert(ok, qt.IsTrue)
	c.Assert(best.ID, qt.Equals, generator.ID(20))

	seen := map[generator.ID]bool{}
	for g := range Generators(m) {
		seen[g.ID] = true
	}
	c.Assert(seen[1], qt.IsTrue)
	c.Assert(seen[10], qt.IsTrue)
	c.Assert(seen[20], qt.IsTrue)
}

func TestCheckWellFormedReportsInapplicableBackward(t *testing.T) {
	c := qt.New(t)
	x := FromGeneratorZero(gen(1, 0))
	y := FromGeneratorZero(gen(2, 0))
	z := FromGeneratorZero(gen(3, 0))
	badCospan := Cospan{
		Forward:  mustRewrite0(c, x.Generator(), y.Generator()),
		Backward: mustRewrite0(c, z.Generator(), x.Generator()), // backward's target is x, but the singular slice is y
	}
	broken := newDiagramNUnsafe(x, []Cospan{badCospan})

	err := CheckWellFormed(broken, Deep)
	c.Assert(err, qt.IsNotNil)
	c.Assert(err, qt.ErrorMatches, ".*does not apply.*")
}

func mustRewrite0(c *qt.C, source, target generator.Generator) Rewrite0 {
	r, err := NewRewrite0(source, target, false)
	c.Assert(err, qt.IsNil)
	return r
}
