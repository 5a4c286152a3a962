package vdom

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// gobNode mirrors Node with only the fields worth persisting; Rendered
// bytes are kept since the Processed phase is what actually gets cached
// and diffed against on the next rebuild.
type gobNode struct {
	ID       StableID
	Kind     NodeKind
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*gobNode
	Rendered []byte
}

func toGob(n *Node) *gobNode {
	if n == nil {
		return nil
	}
	g := &gobNode{ID: n.ID, Kind: n.Kind, Tag: n.Tag, Attrs: n.Attrs, Text: n.Text, Rendered: n.Rendered}
	for _, c := range n.Children {
		g.Children = append(g.Children, toGob(c))
	}
	return g
}

func fromGob(g *gobNode) *Node {
	if g == nil {
		return nil
	}
	n := &Node{ID: g.ID, Kind: g.Kind, Tag: g.Tag, Attrs: g.Attrs, Text: g.Text, Rendered: g.Rendered}
	for _, c := range g.Children {
		n.Children = append(n.Children, fromGob(c))
	}
	return n
}

type gobDocument struct {
	Root   *gobNode
	NextID StableID
	Source string
}

// Marshal encodes doc as a gob-encoded byte slice suitable for writing to
// a ".vdom" cache file.
func Marshal(doc *IndexedDocument) ([]byte, error) {
	var buf bytes.Buffer
	g := gobDocument{Root: toGob(doc.Root), NextID: doc.NextID, Source: doc.Source}
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, fmt.Errorf("marshal vdom document: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes the bytes produced by Marshal back into an
// IndexedDocument.
func Unmarshal(data []byte) (*IndexedDocument, error) {
	var g gobDocument
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return nil, fmt.Errorf("unmarshal vdom document: %w", err)
	}
	return &IndexedDocument{Root: fromGob(g.Root), NextID: g.NextID, Source: g.Source}, nil
}
