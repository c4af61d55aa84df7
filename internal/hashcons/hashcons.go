// Package hashcons implements structural interning ("hash-consing"): a
// process-wide table mapping a value's structural hash to a live handle, so
// that structurally equal values compare pointer-equal after interning (§4.2,
// invariant 3 of §3). It is grounded directly on the teacher's own
// anyunique.Set, generalized from a single global cache to one table per
// interned kind, each owned by the package that uses it. Package diagram
// keeps four (Diagram0, DiagramN, Rewrite0, RewriteN); cones and cospans are
// plain values inside those and have no table of their own.
package hashcons

import (
	"hash/maphash"
	"sync"
	"weak"
)

// Hasher defines the structural hash and equivalence relation a Table uses to
// canonicalize values of type T. Hash and Equal must agree: equal values must
// hash identically.
type Hasher[T any] interface {
	Hash(*maphash.Hash, T)
	Equal(a, b T) bool
}

// Table holds the set of canonical values of type T currently interned.
// Entries are weakly held so that collect_garbage() (CollectToFit) can
// reclaim values no longer referenced anywhere else in the process.
type Table[T any, H Hasher[T]] struct {
	mu      sync.Mutex
	h       H
	seed    maphash.Seed
	entries map[uint64][]weak.Pointer[cell[T]]
}

type cell[T any] struct {
	value T
	hash  uint64
}

// Handle is a canonicalized reference to a T. Two Handles obtained from the
// same Table compare equal (==) if and only if the underlying values are
// equivalent under the Table's Hasher.
type Handle[T any] struct {
	c *cell[T]
}

// NewTable creates an empty interning table using h as the hash/equality
// source.
func NewTable[T any, H Hasher[T]](h H) *Table[T, H] {
	return &Table[T, H]{
		h:       h,
		seed:    maphash.MakeSeed(),
		entries: make(map[uint64][]weak.Pointer[cell[T]]),
	}
}

// Value returns the canonical T held by h.
func (h Handle[T]) Value() T {
	return h.c.value
}

// Intern returns a Handle such that Handle.Value() is structurally equal to
// v. Calling Intern twice with equivalent values returns handles that compare
// equal; see Handle's doc comment.
func (t *Table[T, H]) Intern(v T) Handle[T] {
	hash := t.hashOf(v)

	t.mu.Lock()
	defer t.mu.Unlock()

	bucket := t.entries[hash]
	firstEmpty := -1
	for i, wp := range bucket {
		if c := wp.Value(); c != nil {
			if t.h.Equal(v, c.value) {
				return Handle[T]{c}
			}
		} else if firstEmpty == -1 {
			firstEmpty = i
		}
	}

	c := &cell[T]{value: v, hash: hash}
	entry := weak.Make(c)
	if firstEmpty != -1 {
		bucket[firstEmpty] = entry
	} else {
		bucket = append(bucket, entry)
	}
	t.entries[hash] = bucket
	return Handle[T]{c}
}

func (t *Table[T, H]) hashOf(v T) uint64 {
	var hasher maphash.Hash
	hasher.SetSeed(t.seed)
	t.h.Hash(&hasher, v)
	return hasher.Sum64()
}

// CollectToFit compacts every bucket, dropping entries whose weak reference
// has already been reclaimed by the garbage collector. It does not force a
// GC cycle; call runtime.GC() first if a precise count is required.
func (t *Table[T, H]) CollectToFit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for hash, bucket := range t.entries {
		out := bucket[:0]
		for _, wp := range bucket {
			if wp.Value() != nil {
				out = append(out, wp)
			}
		}
		if len(out) == 0 {
			delete(t.entries, hash)
		} else {
			t.entries[hash] = out
		}
	}
}

// Len reports the number of live entries across all buckets. Intended for
// tests and diagnostics, not for hot paths.
func (t *Table[T, H]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, bucket := range t.entries {
		for _, wp := range bucket {
			if wp.Value() != nil {
				n++
			}
		}
	}
	return n
}
