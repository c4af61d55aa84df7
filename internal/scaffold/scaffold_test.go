package scaffold

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
)

func gen(id generator.ID, dim int) generator.Generator {
	return generator.Generator{ID: id, Dimension: dim, Orientation: generator.Positive}
}

func TestExplodeSingleNode(t *testing.T) {
	c := qt.New(t)
	x := diagram.FromGeneratorZero(gen(1, 0))
	f, err := diagram.FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	s := New()
	s.AddNode(Node{Key: Key{}, Diagram: f})

	out, err := Explode(s)
	c.Assert(err, qt.IsNil)
	c.Assert(out.Scaffold.Nodes, qt.HasLen, 3)
	c.Assert(out.Scaffold.Edges, qt.HasLen, 2)
	c.Assert(out.NodeToNodes[0], qt.HasLen, 3)
	for _, e := range out.Scaffold.Edges {
		c.Assert(e.Kind, qt.Equals, Internal)
	}
}

func TestExplodeRejectsDimensionZeroNode(t *testing.T) {
	c := qt.New(t)
	x := diagram.FromGeneratorZero(gen(1, 0))
	s := New()
	s.AddNode(Node{Key: Key{}, Diagram: x})

	_, err := Explode(s)
	c.Assert(err, qt.IsNotNil)
}

func TestExplodeExternalEdgeIdentity(t *testing.T) {
	c := qt.New(t)
	x := diagram.FromGeneratorZero(gen(1, 0))
	f, err := diagram.FromGenerator(gen(10, 1), x, x)
	c.Assert(err, qt.IsNil)

	s := New()
	u := s.AddNode(Node{Key: Key{}, Diagram: f})
	v := s.AddNode(Node{Key: Key{1}, Diagram: f})
	s.AddEdge(Edge{Kind: External, From: u, To: v, Rewrite: diagram.Identity(1)})

	out, err := Explode(s)
	c.Assert(err, qt.IsNil)
	// f has 2 regular heights (0,1); the identity rewrite touches no cones,
	// so both become sparse identity edges between corresponding regulars.
	var externals int
	for _, e := range out.Scaffold.Edges {
		if e.Kind == External {
			externals++
		}
	}
	c.Assert(externals, qt.Equals, 2)
}
