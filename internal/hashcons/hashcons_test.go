package hashcons

import (
	"hash/maphash"
	"runtime"
	"testing"

	qt "github.com/frankban/quicktest"
)

type pointHasher struct{}

type point struct{ x, y int }

func (pointHasher) Hash(h *maphash.Hash, p point) {
	maphash.WriteComparable(h, p)
}

func (pointHasher) Equal(a, b point) bool {
	return a == b
}

func TestInternReturnsEqualHandlesForEqualValues(t *testing.T) {
	c := qt.New(t)
	table := NewTable[point, pointHasher](pointHasher{})

	h1 := table.Intern(point{1, 2})
	h2 := table.Intern(point{1, 2})
	h3 := table.Intern(point{3, 4})

	c.Assert(h1 == h2, qt.IsTrue)
	c.Assert(h1 == h3, qt.IsFalse)
	c.Assert(h1.Value(), qt.Equals, point{1, 2})
}

func TestCollectToFitDropsUnreferenced(t *testing.T) {
	c := qt.New(t)
	table := NewTable[point, pointHasher](pointHasher{})

	func() {
		table.Intern(point{5, 6})
	}()

	runtime.GC()
	table.CollectToFit()
	c.Assert(table.Len(), qt.Equals, 0)

	kept := table.Intern(point{7, 8})
	runtime.GC()
	table.CollectToFit()
	c.Assert(table.Len(), qt.Equals, 1)
	c.Assert(kept.Value(), qt.Equals, point{7, 8})
}
