package idx

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestPushGet(t *testing.T) {
	c := qt.New(t)
	v := New[string]()
	i0 := v.Push("a")
	i1 := v.Push("b")

	c.Assert(i0, qt.Equals, Index(0))
	c.Assert(i1, qt.Equals, Index(1))
	c.Assert(v.Len(), qt.Equals, 2)

	got, ok := v.Get(i0)
	c.Assert(ok, qt.IsTrue)
	c.Assert(got, qt.Equals, "a")

	_, ok = v.Get(Index(5))
	c.Assert(ok, qt.IsFalse)
}

func TestMapPreservesOrder(t *testing.T) {
	c := qt.New(t)
	v := New[int]()
	v.Push(1)
	v.Push(2)
	v.Push(3)

	doubled := Map(v, func(n int) int { return n * 2 })
	var got []int
	doubled.Values(func(n int) bool {
		got = append(got, n)
		return true
	})
	c.Assert(got, qt.DeepEquals, []int{2, 4, 6})
}

func TestCloneIndependent(t *testing.T) {
	c := qt.New(t)
	v := New[int]()
	v.Push(1)
	clone := v.Clone()
	clone.Set(0, 99)

	c.Assert(v.At(0), qt.Equals, 1)
	c.Assert(clone.At(0), qt.Equals, 99)
}
