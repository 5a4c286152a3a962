package vdom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignStableIDsWalksDepthFirst(t *testing.T) {
	raw := &RawDocument{Root: elem(0, "html", nil,
		elem(0, "head", nil),
		elem(0, "body", nil, textNode(0, "hi")),
	)}
	indexed := AssignStableIDs(raw, 10)

	require.Equal(t, StableID(10), indexed.Root.ID)
	require.Equal(t, StableID(11), indexed.Root.Children[0].ID)
	require.Equal(t, StableID(12), indexed.Root.Children[1].ID)
	require.Equal(t, StableID(13), indexed.Root.Children[1].Children[0].ID)
	require.Equal(t, StableID(14), indexed.NextID, "NextID is the allocator high-water mark, not the last used ID")
}

func TestAssignStableIDsOnNilRootIsSafe(t *testing.T) {
	indexed := AssignStableIDs(&RawDocument{Root: nil}, 1)
	require.Nil(t, indexed.Root)
	require.Equal(t, StableID(1), indexed.NextID)
}

func TestCloneProducesIndependentCopy(t *testing.T) {
	original := elem(1, "div", map[string]string{"class": "a"}, textNode(2, "hi"))
	clone := original.Clone()

	clone.Attrs["class"] = "b"
	clone.Children[0].Text = "bye"

	require.Equal(t, "a", original.Attrs["class"], "mutating the clone must not affect the original's attrs")
	require.Equal(t, "hi", original.Children[0].Text, "mutating the clone must not affect the original's children")
}

func TestCloneOnNilReturnsNil(t *testing.T) {
	var n *Node
	require.Nil(t, n.Clone())
}

func TestAnchorKindString(t *testing.T) {
	require.Equal(t, "before", AnchorBefore.String())
	require.Equal(t, "after", AnchorAfter.String())
	require.Equal(t, "first", AnchorFirstChild.String())
	require.Equal(t, "last", AnchorLastChild.String())
}

func TestRenderSubtreeSerializesElementWithAttrsAndChildren(t *testing.T) {
	n := elem(1, "p", map[string]string{"class": "note"}, textNode(2, "hi"))
	require.Equal(t, `<p class="note">hi</p>`, string(RenderSubtree(n)))
}

func TestRenderSubtreeSerializesPlainText(t *testing.T) {
	n := textNode(1, "just text")
	require.Equal(t, "just text", string(RenderSubtree(n)))
}

func TestRenderSubtreeOnNilReturnsNil(t *testing.T) {
	require.Nil(t, RenderSubtree(nil))
}

func TestByIDIndexesEveryNodeInTree(t *testing.T) {
	root := elem(1, "html", nil,
		elem(2, "head", nil),
		elem(3, "body", nil, textNode(4, "hi")),
	)
	idx := ByID(root)

	require.Len(t, idx, 4)
	require.Same(t, root.Children[1].Children[0], idx[StableID(4)])
}
