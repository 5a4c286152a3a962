// Package typst documents the contract a real Typst PageCompiler backend
// must satisfy; it is not wired into internal/compiler.Registry by
// default since no Typst toolchain is vendored here; internal/actor
// registers a Compiler only when actor.Config.TypstPath is set.
package typst

import (
	"context"
	"fmt"

	"github.com/tola-rs/tola/internal/compiler"
)

// Compiler is an unimplemented PageCompiler placeholder: it documents the
// seam a real Typst-invoking backend would fill (shelling out to a typst
// binary, or binding to a Typst-in-Go port, neither of which this pack
// carries a dependency for).
type Compiler struct {
	// BinaryPath, if set, is the path to an external `typst` executable
	// a future implementation would invoke. Left unused by this stub.
	BinaryPath string
}

// New returns a Typst compiler stub.
func New(binaryPath string) *Compiler {
	return &Compiler{BinaryPath: binaryPath}
}

// Compile always fails: wiring an external Typst toolchain is outside
// this repository's scope.
func (c *Compiler) Compile(ctx context.Context, in compiler.Input) (compiler.Output, error) {
	return compiler.Output{}, fmt.Errorf("typst compiler not implemented: no toolchain configured for %s", in.Source)
}
