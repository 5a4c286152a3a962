package broadcast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tola-rs/tola/internal/vdom"
)

func TestFromPatchesConvertsEveryOpKind(t *testing.T) {
	patches := []vdom.PatchOp{
		{Kind: vdom.OpText, ID: 1, Text: "hi"},
		{Kind: vdom.OpAttr, ID: 2, Attrs: map[string]string{"class": "on"}},
		{Kind: vdom.OpInsert, ID: 3, HTML: "<span></span>", Anchor: &vdom.Anchor{Kind: vdom.AnchorAfter, Target: 2}},
		{Kind: vdom.OpRemove, ID: 4},
	}

	msg := FromPatches("/a/", patches)
	require.Equal(t, TypePatch, msg.Type)
	require.Equal(t, "/a/", msg.Path)
	require.Len(t, msg.Patches, 4)

	require.Equal(t, "text", msg.Patches[0].Op)
	require.Equal(t, "hi", msg.Patches[0].Text)

	require.Equal(t, "attr", msg.Patches[1].Op)
	require.Equal(t, "on", msg.Patches[1].Attrs["class"])

	require.Equal(t, "insert", msg.Patches[2].Op)
	require.Equal(t, "<span></span>", msg.Patches[2].HTML)
	require.NotNil(t, msg.Patches[2].Anchor)
	require.Equal(t, "after", msg.Patches[2].Anchor.Kind)

	require.Equal(t, "remove", msg.Patches[3].Op)
}

func TestMessageJSONRoundTrip(t *testing.T) {
	original := ReloadWithReason("/a/", "head changed")
	data, err := original.ToJSON()
	require.NoError(t, err)

	got, err := FromJSON(data)
	require.NoError(t, err)
	require.Equal(t, original, got)
}

func TestConnectedReportsProtocolVersion(t *testing.T) {
	msg := Connected()
	require.Equal(t, TypeConnected, msg.Type)
	require.Equal(t, ProtocolVersion, msg.Version)
}
