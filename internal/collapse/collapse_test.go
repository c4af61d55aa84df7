package collapse

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/scaffold"
)

func gen(id generator.ID) generator.Generator {
	return generator.Generator{ID: id, Dimension: 0, Orientation: generator.Positive}
}

func TestUnionFindBasics(t *testing.T) {
	c := qt.New(t)
	uf := NewUnionFind(4)
	c.Assert(uf.Same(0, 1), qt.IsFalse)
	c.Assert(uf.Union(0, 1), qt.IsTrue)
	c.Assert(uf.Same(0, 1), qt.IsTrue)
	c.Assert(uf.Union(0, 1), qt.IsFalse)
	c.Assert(uf.Classes(4), qt.HasLen, 3)
}

func TestCollapsibleRejectsNonIdentity(t *testing.T) {
	c := qt.New(t)
	s := scaffold.New()
	u := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	v := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(2))})
	r, err := diagram.NewRewrite0(gen(1), gen(2), false)
	c.Assert(err, qt.IsNil)
	s.AddEdge(scaffold.Edge{From: u, To: v, Rewrite: r})

	c.Assert(Collapsible(s, 0), qt.IsFalse)
}

func TestCollapsibleAcceptsIsolatedIdentityEdge(t *testing.T) {
	c := qt.New(t)
	s := scaffold.New()
	u := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	v := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	s.AddEdge(scaffold.Edge{From: u, To: v, Rewrite: diagram.Identity(0)})

	c.Assert(Collapsible(s, 0), qt.IsTrue)
}

func TestQuotientMergesCollapsibleEndpoints(t *testing.T) {
	c := qt.New(t)
	s := scaffold.New()
	u := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	v := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	s.AddEdge(scaffold.Edge{From: u, To: v, Rewrite: diagram.Identity(0)})

	quotient, uf := Quotient(s)
	c.Assert(uf.Same(u, v), qt.IsTrue)
	c.Assert(quotient.Nodes, qt.HasLen, 1)
	c.Assert(quotient.Edges, qt.HasLen, 0)
}

func TestQuotientPreservesNonCollapsibleEdges(t *testing.T) {
	c := qt.New(t)
	s := scaffold.New()
	u := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(1))})
	v := s.AddNode(scaffold.Node{Diagram: diagram.FromGeneratorZero(gen(2))})
	r, err := diagram.NewRewrite0(gen(1), gen(2), false)
	c.Assert(err, qt.IsNil)
	s.AddEdge(scaffold.Edge{From: u, To: v, Rewrite: r})

	quotient, _ := Quotient(s)
	c.Assert(quotient.Nodes, qt.HasLen, 2)
	c.Assert(quotient.Edges, qt.HasLen, 1)
}
