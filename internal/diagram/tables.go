package diagram

import (
	"hash/maphash"

	"github.com/homotopy-io/homotopy-go/internal/generator"
	"github.com/homotopy-io/homotopy-go/internal/hashcons"
)

// Process-wide interning tables, one per kind of immutable value, following
// §4.2 and §9's note that a reimplementation may use a shared-ownership
// smart pointer with weak entries in place of the source's thread-local
// consign tables; here "process-wide" plays the role of "thread-local"
// since the concurrency model (§5) is single-threaded by contract.
var (
	diagram0Table = hashcons.NewTable[generator.Generator, diagram0Hasher](diagram0Hasher{})
	diagramNTable = hashcons.NewTable[diagramNData, diagramNHasher](diagramNHasher{})
	rewrite0Table = hashcons.NewTable[rewrite0Data, rewrite0Hasher](rewrite0Hasher{})
	rewriteNTable = hashcons.NewTable[rewriteNData, rewriteNHasher](rewriteNHasher{})
)

// CollectGarbage compacts every interning table, reclaiming diagrams and
// rewrites no longer reachable from any handle the caller still holds (§4.2).
func CollectGarbage() {
	diagram0Table.CollectToFit()
	diagramNTable.CollectToFit()
	rewrite0Table.CollectToFit()
	rewriteNTable.CollectToFit()
}

type diagram0Hasher struct{}

func (diagram0Hasher) Hash(h *maphash.Hash, g generator.Generator) {
	maphash.WriteComparable(h, g)
}

func (diagram0Hasher) Equal(a, b generator.Generator) bool {
	return a == b
}

type diagramNHasher struct{}

func (diagramNHasher) Hash(h *maphash.Hash, d diagramNData) {
	writeDiagram(h, d.source)
	maphash.WriteComparable(h, len(d.cospans))
	for _, cs := range d.cospans {
		writeCospan(h, cs)
	}
}

func (diagramNHasher) Equal(a, b diagramNData) bool {
	if !diagramsEqual(a.source, b.source) {
		return false
	}
	if len(a.cospans) != len(b.cospans) {
		return false
	}
	for i := range a.cospans {
		if !cospansEqual(a.cospans[i], b.cospans[i]) {
			return false
		}
	}
	return true
}

type rewrite0Hasher struct{}

func (rewrite0Hasher) Hash(h *maphash.Hash, d rewrite0Data) {
	maphash.WriteComparable(h, d)
}

func (rewrite0Hasher) Equal(a, b rewrite0Data) bool {
	return a == b
}

type rewriteNHasher struct{}

func (rewriteNHasher) Hash(h *maphash.Hash, d rewriteNData) {
	maphash.WriteComparable(h, d.dimension)
	maphash.WriteComparable(h, len(d.cones))
	for _, cn := range d.cones {
		writeCone(h, cn)
	}
}

func (rewriteNHasher) Equal(a, b rewriteNData) bool {
	if a.dimension != b.dimension || len(a.cones) != len(b.cones) {
		return false
	}
	for i := range a.cones {
		if !conesEqual(a.cones[i], b.cones[i]) {
			return false
		}
	}
	return true
}

// writeDiagram/writeRewrite/writeCospan/writeCone write a short hash
// contribution for a value that may itself contain interned handles,
// avoiding re-hashing whole subtrees (mirrors anyunique.Handle.WriteHash in
// the teacher).
func writeDiagram(h *maphash.Hash, d Diagram) {
	switch v := d.(type) {
	case Diagram0:
		maphash.WriteComparable(h, 0)
		maphash.WriteComparable(h, v.handle)
	case DiagramN:
		maphash.WriteComparable(h, 1)
		maphash.WriteComparable(h, v.handle)
	default:
		maphash.WriteComparable(h, -1)
	}
}

func writeRewrite(h *maphash.Hash, r Rewrite) {
	switch v := r.(type) {
	case Rewrite0:
		maphash.WriteComparable(h, 0)
		maphash.WriteComparable(h, v.handle)
	case RewriteN:
		maphash.WriteComparable(h, 1)
		maphash.WriteComparable(h, v.handle)
	default:
		maphash.WriteComparable(h, -1)
	}
}

func writeCospan(h *maphash.Hash, cs Cospan) {
	writeRewrite(h, cs.Forward)
	writeRewrite(h, cs.Backward)
}

func writeCone(h *maphash.Hash, cn Cone) {
	maphash.WriteComparable(h, cn.Index)
	maphash.WriteComparable(h, len(cn.Source))
	for _, cs := range cn.Source {
		writeCospan(h, cs)
	}
	writeCospan(h, cn.Target)
	maphash.WriteComparable(h, len(cn.Slices))
	for _, s := range cn.Slices {
		writeRewrite(h, s)
	}
}

func diagramsEqual(a, b Diagram) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.handleEqual(b)
}

func rewritesEqual(a, b Rewrite) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.handleEqual(b)
}

func cospansEqual(a, b Cospan) bool {
	return rewritesEqual(a.Forward, b.Forward) && rewritesEqual(a.Backward, b.Backward)
}

func conesEqual(a, b Cone) bool {
	if a.Index != b.Index || len(a.Source) != len(b.Source) || len(a.Slices) != len(b.Slices) {
		return false
	}
	for i := range a.Source {
		if !cospansEqual(a.Source[i], b.Source[i]) {
			return false
		}
	}
	for i := range a.Slices {
		if !rewritesEqual(a.Slices[i], b.Slices[i]) {
			return false
		}
	}
	return cospansEqual(a.Target, b.Target)
}
