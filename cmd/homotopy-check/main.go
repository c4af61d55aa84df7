// Command homotopy-check is a batch driver for verifying persisted
// n-diagrams (§6). It is a thin CLI boundary around the core engine and
// carries none of the engine's own invariants.
package main

import (
	"os"

	"github.com/homotopy-io/homotopy-go/cmd/homotopy-check/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
