package core

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContentKindFromExtensionIsCaseInsensitive(t *testing.T) {
	require.Equal(t, ContentMarkdown, ContentKindFromExtension("MD"))
	require.Equal(t, ContentMarkdown, ContentKindFromExtension(".markdown"))
	require.Equal(t, ContentTypst, ContentKindFromExtension("typ"))
	require.Equal(t, ContentUnknown, ContentKindFromExtension("html"))
}

func TestContentKindFromPathUsesFinalExtension(t *testing.T) {
	require.Equal(t, ContentMarkdown, ContentKindFromPath("/content/post.md"))
	require.Equal(t, ContentTypst, ContentKindFromPath("/content/doc.typ"))
	require.Equal(t, ContentUnknown, ContentKindFromPath("/content/noext"))
}

func TestIsContentFileMatchesCompilableExtensionsOnly(t *testing.T) {
	require.True(t, IsContentFile("a.md"))
	require.True(t, IsContentFile("a.typ"))
	require.False(t, IsContentFile("a.css"))
	require.False(t, IsContentFile("a.toml"))
}

func TestContentKindNameAndExtensions(t *testing.T) {
	require.Equal(t, "markdown", ContentMarkdown.Name())
	require.Equal(t, "typst", ContentTypst.Name())
	require.Equal(t, "unknown", ContentUnknown.Name())
	require.ElementsMatch(t, []string{"md", "markdown"}, ContentMarkdown.Extensions())
	require.ElementsMatch(t, []string{"typ"}, ContentTypst.Extensions())
}

func TestPageKindFromPackagesDetectsIterativeAccess(t *testing.T) {
	require.Equal(t, PageIterative, PageKindFromPackages(map[string]bool{"@tola/pages": true}))
	require.Equal(t, PageIterative, PageKindFromPackages(map[string]bool{"@tola/current": true}))
	require.Equal(t, PageDirect, PageKindFromPackages(map[string]bool{"@tola/site": true}))
	require.Equal(t, PageDirect, PageKindFromPackages(nil))
}

func TestPageKindString(t *testing.T) {
	require.Equal(t, "iterative", PageIterative.String())
	require.Equal(t, "direct", PageDirect.String())
}

func TestPriorityOrderingFollowsIntComparison(t *testing.T) {
	require.True(t, PriorityActive > PriorityDirect)
	require.True(t, PriorityDirect > PriorityAffected)
	require.True(t, PriorityAffected > PriorityBackground)
}

func TestPriorityString(t *testing.T) {
	require.Equal(t, "active", PriorityActive.String())
	require.Equal(t, "direct", PriorityDirect.String())
	require.Equal(t, "affected", PriorityAffected.String())
	require.Equal(t, "background", PriorityBackground.String())
}

func TestNewPermalinkNormalizes(t *testing.T) {
	require.Equal(t, Permalink("/"), NewPermalink(""))
	require.Equal(t, Permalink("/"), NewPermalink("/"))
	require.Equal(t, Permalink("/a/b"), NewPermalink("a/b/"))
	require.Equal(t, Permalink("/a/b"), NewPermalink("//a//b//"))
	require.Equal(t, Permalink("/a"), NewPermalink("  /a  "))
}

func TestPermalinkParentAndIsRoot(t *testing.T) {
	require.True(t, Permalink("/").IsRoot())
	require.False(t, Permalink("/a").IsRoot())
	require.Equal(t, Permalink("/"), Permalink("/").Parent())
	require.Equal(t, Permalink("/a"), Permalink("/a/b").Parent())
}

func TestSourcePathUnder(t *testing.T) {
	root := SourcePath("/a/b")
	require.True(t, root.Under(root))
	require.True(t, SourcePath("/a/b/c.md").Under(root))
	require.False(t, SourcePath("/a/other/c.md").Under(root))
	require.False(t, SourcePath("/a/bc/c.md").Under(root))
}

func TestSourcePathRelativeTo(t *testing.T) {
	root := SourcePath("/a/b")
	rel := SourcePath("/a/b/c/d.md").RelativeTo(root)
	require.Equal(t, filepath.Join("c", "d.md"), rel)

	unrelated := SourcePath("/x/y.md")
	require.Equal(t, "/x/y.md", unrelated.RelativeTo(root))
}

func TestHealthAndServingFlagsRoundTrip(t *testing.T) {
	SetServing(true)
	require.True(t, IsServing())
	SetServing(false)
	require.False(t, IsServing())

	SetHealthy(true)
	require.True(t, IsHealthy())
	SetHealthy(false)
	require.False(t, IsHealthy())
}

func TestRequestShutdownIsOneDirectional(t *testing.T) {
	require.False(t, IsShutdownRequested())
	RequestShutdown()
	require.True(t, IsShutdownRequested())
}
