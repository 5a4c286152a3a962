// Package compiler defines the external page-compiler collaborator seam:
// spec.md treats "compile source -> HTML + metadata + accessed
// dependencies" as out of scope, owned by a Typst or Markdown backend.
// This package is that seam plus the Markdown implementation
// (internal/compiler/markdown) that exercises it end to end.
package compiler

import (
	"context"

	"github.com/tola-rs/tola/internal/core"
)

// Input is what the scheduler hands a PageCompiler for one source file.
type Input struct {
	Source  core.SourcePath
	Content []byte
	// Packages this compile should have access to, keyed by package name
	// ("@tola/site", "@tola/pages", "@tola/current"). A compiler records
	// which of these it actually reads in Output.AccessedPackages so
	// internal/core can derive the page's Kind.
	Packages map[string]any
}

// Output is one source file's compile result.
type Output struct {
	HTML             []byte
	Title            string
	Headings         []HeadingOut
	Links            []core.Permalink // outgoing links discovered in the body, for page.LinkGraph
	Dependencies     []core.SourcePath // other files this compile read (partials, includes, data files)
	AccessedPackages map[string]bool
	CustomPermalink  string
	Draft            bool
}

// HeadingOut is a heading discovered in the compiled body.
type HeadingOut struct {
	Level int
	Text  string
	ID    string
}

// PageCompiler compiles one content file into HTML plus metadata. A
// concrete implementation is chosen per core.ContentKind.
type PageCompiler interface {
	Compile(ctx context.Context, in Input) (Output, error)
}

// Registry dispatches to the right PageCompiler by content kind.
type Registry struct {
	byKind map[core.ContentKind]PageCompiler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byKind: make(map[core.ContentKind]PageCompiler)}
}

// Register installs compiler as the collaborator for kind.
func (r *Registry) Register(kind core.ContentKind, compiler PageCompiler) {
	r.byKind[kind] = compiler
}

// For returns the registered compiler for kind, or nil if none is
// registered (e.g. a Typst source file in a build with no Typst backend
// configured).
func (r *Registry) For(kind core.ContentKind) (PageCompiler, bool) {
	c, ok := r.byKind[kind]
	return c, ok
}
