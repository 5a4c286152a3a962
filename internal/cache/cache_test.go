package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tola-rs/tola/internal/core"
	"github.com/tola-rs/tola/internal/vdom"
)

func TestPersistAndRestoreRoundTrip(t *testing.T) {
	root := t.TempDir()

	store := NewStore()
	doc := &vdom.IndexedDocument{
		Root:   &vdom.Node{ID: 1, Kind: vdom.KindElement, Tag: "html"},
		NextID: 2,
	}
	store.Set("/blog/post", Entry{Doc: doc, Version: 1})

	index := NewIndex(time.Now())
	sources := map[core.Permalink]core.SourcePath{"/blog/post": core.SourcePath(root + "/post.md")}

	require.NoError(t, Persist(root, store, index, sources))
	require.True(t, HasCache(root))

	restoredStore := NewStore()
	restoredIndex, err := Restore(root, restoredStore)
	require.NoError(t, err)
	require.Len(t, restoredIndex.Entries, 1)

	entry, ok := restoredStore.Get("/blog/post")
	require.True(t, ok)
	require.Equal(t, doc.Root.Tag, entry.Doc.Root.Tag)
}

func TestColdStartWithNoCacheIsNotAnError(t *testing.T) {
	root := t.TempDir()
	store := NewStore()
	index, err := Restore(root, store)
	require.NoError(t, err)
	require.Empty(t, index.Entries)
	require.False(t, HasCache(root))
}

func TestURLToFilename(t *testing.T) {
	require.Equal(t, "_", URLToFilename("/"))
	require.Equal(t, "_blog_post", URLToFilename("/blog/post"))
}
