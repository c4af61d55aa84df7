package collapse

// UnionFind is a standard disjoint-set structure over node indices 0..n-1,
// used both to compute collapse's quotient (§4.6) and, identically, as the
// base case of contraction (§4.7 step 1).
type UnionFind struct {
	parent []int
	rank   []int
}

// NewUnionFind returns a union-find over n singleton classes.
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// Find returns the representative of x's class, path-compressing along the
// way.
func (uf *UnionFind) Find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges x's and y's classes, returning true if they were previously
// distinct.
func (uf *UnionFind) Union(x, y int) bool {
	rx, ry := uf.Find(x), uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Same reports whether x and y are in the same class.
func (uf *UnionFind) Same(x, y int) bool {
	return uf.Find(x) == uf.Find(y)
}

// Classes groups every index 0..n-1 by representative, returning the classes
// in order of first appearance.
func (uf *UnionFind) Classes(n int) [][]int {
	order := make([]int, 0, n)
	byRep := make(map[int][]int, n)
	for i := 0; i < n; i++ {
		r := uf.Find(i)
		if _, ok := byRep[r]; !ok {
			order = append(order, r)
		}
		byRep[r] = append(byRep[r], i)
	}
	out := make([][]int, len(order))
	for i, r := range order {
		out[i] = byRep[r]
	}
	return out
}
