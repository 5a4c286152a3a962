// Package page holds the compiled page-metadata store: the Stored record,
// the outgoing/incoming link graph, and page-kind derivation.
package page

import "github.com/tola-rs/tola/internal/core"

// Kind re-exports core.PageKind under the page package for callers that
// otherwise only import page.
type Kind = core.PageKind

const (
	Direct    = core.PageDirect
	Iterative = core.PageIterative
)
