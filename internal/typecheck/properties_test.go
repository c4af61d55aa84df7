package typecheck

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/homotopy-io/homotopy-go/internal/diagram"
	"github.com/homotopy-io/homotopy-go/internal/normalize"
	"github.com/homotopy-io/homotopy-go/internal/signature"
)

// TestPropertyTypecheckStableUnderNormalization checks §8 universal
// invariant 8 ("typecheck(d, Sigma, Deep) iff typecheck(normalize(d), Sigma,
// Deep)") over chains of a single 1-generator composed with itself a random
// number of times.
func TestPropertyTypecheckStableUnderNormalization(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sig := signature.New()
		x := sig.CreateZero("x")
		xd := diagram.FromGeneratorZero(x)
		_, f, err := sig.CreateN("f", xd, xd)
		if err != nil {
			t.Fatal(err)
		}

		n := rapid.IntRange(1, 4).Draw(t, "n")
		chain := f
		for i := 1; i < n; i++ {
			next, err := diagram.Attach(chain, f, diagram.TargetBoundary, nil)
			if err != nil {
				t.Fatalf("attach %d: %v", i, err)
			}
			chain = next
		}

		errBefore := Typecheck(chain, sig, Deep)
		_, normal := normalize.Full(chain)
		errAfter := Typecheck(normal, sig, Deep)

		if (errBefore == nil) != (errAfter == nil) {
			t.Fatalf("typecheck verdict changed under normalization for n=%d: before=%v after=%v", n, errBefore, errAfter)
		}
	})
}
