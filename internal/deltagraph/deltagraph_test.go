package deltagraph

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/homotopy-io/homotopy-go/internal/herr"
)

func TestColimitLinearChain(t *testing.T) {
	c := qt.New(t)
	g := New(3, []int{0, 0, 0})
	g.AddEdge(0, 1, Succession)
	g.AddEdge(1, 2, Succession)

	order, err := Colimit(g)
	c.Assert(err, qt.IsNil)
	c.Assert(order, qt.DeepEquals, [][]int{{0}, {1}, {2}})
}

func TestColimitMergesSpanIntoOneComponent(t *testing.T) {
	c := qt.New(t)
	g := New(2, []int{0, 0})
	g.AddSpan(0, 1)

	order, err := Colimit(g)
	c.Assert(err, qt.IsNil)
	c.Assert(order, qt.HasLen, 1)
	c.Assert(order[0], qt.HasLen, 2)
}

func TestColimitBiasBreaksTies(t *testing.T) {
	c := qt.New(t)
	// Two independent, unconnected nodes: both have priority 0, so the
	// lower-bias node must sort first.
	g := New(2, []int{5, 1})

	order, err := Colimit(g)
	c.Assert(err, qt.IsNil)
	c.Assert(order, qt.DeepEquals, [][]int{{1}, {0}})
}

func TestColimitAmbiguousOnUnresolvedTie(t *testing.T) {
	c := qt.New(t)
	g := New(2, []int{3, 3})

	_, err := Colimit(g)
	c.Assert(err, qt.ErrorMatches, ".*tie.*")
	c.Assert(err, qt.ErrorIs, herr.ErrAmbiguous)
}
