// Package vdom implements the three-phase virtual DOM: Raw (freshly
// parsed, no stable identity), Indexed (StableIDs assigned, ready to
// diff), and Processed (sanitized/rendered, ready to serve). The diff
// algorithm aligns two Indexed trees by StableID and produces an
// anchor-based patch list a browser client can apply without a full
// re-render.
package vdom

import (
	"bytes"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StableID identifies a node across rebuilds by structural position
// (depth-first document order within its source file), not by content.
// Content changes don't change identity; reordering a subtree does.
type StableID uint64

// NodeKind distinguishes element, text, and comment nodes.
type NodeKind int

const (
	KindElement NodeKind = iota
	KindText
	KindComment
)

// Node is the shared tree shape for all three phases. Which fields are
// meaningful depends on the phase: Raw leaves ID at zero; Indexed sets
// ID but not Rendered; Processed sets Rendered.
type Node struct {
	ID       StableID
	Kind     NodeKind
	Tag      string // element tag name, e.g. "div"; empty for text/comment
	Attrs    map[string]string
	Text     string // text content for KindText/KindComment
	Children []*Node
	Rendered []byte // Processed-phase only: sanitized rendered bytes
}

// RawDocument is freshly parsed markup with no stable identity assigned.
type RawDocument struct {
	Root *Node
}

// IndexedDocument has StableIDs assigned in depth-first document order
// and is ready to diff against a prior IndexedDocument.
type IndexedDocument struct {
	Root    *Node
	NextID  StableID // allocator high-water mark, persisted for stability across restarts
	Source  string   // the source path this document was compiled from
}

// ProcessedDocument is sanitized and has rendered bytes cached per node,
// ready to serve or to diff for the next rebuild.
type ProcessedDocument struct {
	Root *Node
	HTML []byte
}

// AssignStableIDs walks raw in depth-first document order, assigning each
// node a StableID starting at startID (inclusive). It returns the Indexed
// document, whose NextID field holds the next unused ID, so callers can
// persist the allocator state across restarts.
func AssignStableIDs(raw *RawDocument, startID StableID) *IndexedDocument {
	next := startID
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		n.ID = next
		next++
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(raw.Root)
	return &IndexedDocument{Root: raw.Root, NextID: next}
}

// Clone returns a deep copy of n, used before mutating a tree in place
// (e.g. re-keying during a permalink change) so the cached prior version
// stays intact for diffing.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{
		ID:   n.ID,
		Kind: n.Kind,
		Tag:  n.Tag,
		Text: n.Text,
	}
	if n.Attrs != nil {
		cp.Attrs = make(map[string]string, len(n.Attrs))
		for k, v := range n.Attrs {
			cp.Attrs[k] = v
		}
	}
	if n.Rendered != nil {
		cp.Rendered = append([]byte(nil), n.Rendered...)
	}
	for _, c := range n.Children {
		cp.Children = append(cp.Children, c.Clone())
	}
	return cp
}

// RenderSubtree serializes n and its descendants back to an HTML
// fragment, used to fill an Insert/Replace patch op's payload: the
// client applies these bytes directly, so they need to be real markup,
// not whatever happens to be cached on the node from a prior phase.
func RenderSubtree(n *Node) []byte {
	if n == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, toHTMLNode(n)); err != nil {
		return nil
	}
	return buf.Bytes()
}

func toHTMLNode(n *Node) *html.Node {
	switch n.Kind {
	case KindText:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case KindComment:
		return &html.Node{Type: html.CommentNode, Data: n.Text}
	default:
		attrs := make([]html.Attribute, 0, len(n.Attrs))
		for k, v := range n.Attrs {
			attrs = append(attrs, html.Attribute{Key: k, Val: v})
		}
		out := &html.Node{Type: html.ElementNode, Data: n.Tag, DataAtom: atom.Lookup([]byte(n.Tag)), Attr: attrs}
		for _, c := range n.Children {
			out.AppendChild(toHTMLNode(c))
		}
		return out
	}
}

// ByID indexes a tree's nodes by StableID for O(1) alignment lookups
// during diff.
func ByID(root *Node) map[StableID]*Node {
	out := make(map[StableID]*Node)
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil {
			return
		}
		out[n.ID] = n
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return out
}
