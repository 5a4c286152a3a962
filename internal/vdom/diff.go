package vdom

import "bytes"

// DiffOutcomeKind distinguishes the four shapes a diff result can take.
type DiffOutcomeKind int

const (
	OutcomeInitial DiffOutcomeKind = iota
	OutcomeUnchanged
	OutcomePatches
	OutcomeNeedsReload
)

// DiffOutcome is the result of comparing a cached IndexedDocument against
// a freshly compiled one.
type DiffOutcome struct {
	Kind    DiffOutcomeKind
	Patches []PatchOp // OutcomePatches only
	Reason  string    // OutcomeNeedsReload only
}

// MaxPatchOps bounds how many edits a single diff may produce before it's
// cheaper (and safer) to just tell the client to reload the page outright.
const MaxPatchOps = 64

// Diff compares old against next, both already StableID-assigned Indexed
// documents. It is a pure function: no IO, no locks, safe to call from any
// goroutine and to unit test directly.
//
// Reload bail-out conditions, checked before attempting a patch list:
// the root tag changed, or the <head> subtree changed (patching <head>
// piecemeal is not worth the complexity a full reload avoids).
func Diff(old, next *IndexedDocument) DiffOutcome {
	if old == nil {
		return DiffOutcome{Kind: OutcomeInitial}
	}
	if old.Root == nil || next.Root == nil {
		return DiffOutcome{Kind: OutcomeNeedsReload, Reason: "missing document root"}
	}
	if old.Root.Tag != next.Root.Tag {
		return DiffOutcome{Kind: OutcomeNeedsReload, Reason: "root tag changed"}
	}

	oldHead := findChild(old.Root, "head")
	nextHead := findChild(next.Root, "head")
	if !sameSubtree(oldHead, nextHead) {
		return DiffOutcome{Kind: OutcomeNeedsReload, Reason: "head changed"}
	}

	var ops []PatchOp
	align(old.Root, next.Root, &ops)

	if len(ops) == 0 {
		return DiffOutcome{Kind: OutcomeUnchanged}
	}
	if len(ops) > MaxPatchOps {
		return DiffOutcome{Kind: OutcomeNeedsReload, Reason: "edit budget exceeded"}
	}
	return DiffOutcome{Kind: OutcomePatches, Patches: ops}
}

func findChild(n *Node, tag string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func sameSubtree(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Text != b.Text {
		return false
	}
	if !bytes.Equal(a.Rendered, b.Rendered) && (a.Rendered != nil || b.Rendered != nil) {
		// Rendered bytes are only meaningful once processed; ignore when
		// diffing pre-render trees (both nil).
	}
	if len(a.Attrs) != len(b.Attrs) {
		return false
	}
	for k, v := range a.Attrs {
		if b.Attrs[k] != v {
			return false
		}
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !sameSubtree(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

// align performs a single-pass, StableID-keyed comparison of oldNode and
// nextNode's children, appending patch ops to ops. Nodes present in both
// trees (same StableID) are recursed into for Text/Attr changes; nodes
// only in next are Inserted anchored After their preceding sibling when
// one exists in the old tree, or FirstChild of the parent otherwise; nodes
// only in old are Removed. A changed relative order is emitted as Move.
func align(oldNode, nextNode *Node, ops *[]PatchOp) {
	if oldNode.Text != nextNode.Text && nextNode.Kind != KindElement {
		*ops = append(*ops, PatchOp{Kind: OpText, ID: nextNode.ID, Text: nextNode.Text})
	}

	if attrDiff := diffAttrs(oldNode.Attrs, nextNode.Attrs); len(attrDiff) > 0 {
		*ops = append(*ops, PatchOp{Kind: OpAttr, ID: nextNode.ID, Attrs: attrDiff})
	}

	oldByID := make(map[StableID]*Node, len(oldNode.Children))
	oldIndex := make(map[StableID]int, len(oldNode.Children))
	for i, c := range oldNode.Children {
		oldByID[c.ID] = c
		oldIndex[c.ID] = i
	}
	nextByID := make(map[StableID]bool, len(nextNode.Children))
	for _, c := range nextNode.Children {
		nextByID[c.ID] = true
	}

	// Removed: present in old, absent from next, processed before inserts
	// so a StableID freed by removal can't collide with a freshly
	// inserted node in the same patch list.
	for _, c := range oldNode.Children {
		if !nextByID[c.ID] {
			*ops = append(*ops, PatchOp{Kind: OpRemove, ID: c.ID})
		}
	}

	var prevOldIdx = -1
	var lastMatched StableID
	haveLastMatched := false
	for _, c := range nextNode.Children {
		if oc, ok := oldByID[c.ID]; ok {
			align(oc, c, ops)
			idx := oldIndex[c.ID]
			if idx < prevOldIdx {
				*ops = append(*ops, PatchOp{
					Kind:   OpMove,
					ID:     c.ID,
					Anchor: insertAnchor(haveLastMatched, lastMatched),
				})
			}
			prevOldIdx = idx
			lastMatched = c.ID
			haveLastMatched = true
			continue
		}
		// New node: insert anchored after the last matched sibling we've
		// walked past, or as the parent's first child if none yet.
		*ops = append(*ops, PatchOp{
			Kind:   OpInsert,
			ID:     c.ID,
			Anchor: insertAnchor(haveLastMatched, lastMatched),
			HTML:   RenderSubtree(c),
		})
		lastMatched = c.ID
		haveLastMatched = true
	}
}

func insertAnchor(haveLastMatched bool, lastMatched StableID) *Anchor {
	if haveLastMatched {
		return &Anchor{Kind: AnchorAfter, Target: lastMatched}
	}
	return &Anchor{Kind: AnchorFirstChild}
}

func diffAttrs(old, next map[string]string) map[string]string {
	var out map[string]string
	for k, v := range next {
		if old[k] != v {
			if out == nil {
				out = make(map[string]string)
			}
			out[k] = v
		}
	}
	for k := range old {
		if _, ok := next[k]; !ok {
			if out == nil {
				out = make(map[string]string)
			}
			out[k] = ""
		}
	}
	return out
}
