package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryJSON(t *testing.T) {
	t.Run("path entry is a string", func(t *testing.T) {
		data, err := json.Marshal(PathEntry("gallery/Modern/1.jpg"))
		require.NoError(t, err)
		assert.JSONEq(t, `"gallery/Modern/1.jpg"`, string(data))
	})

	t.Run("link entry is a typed object", func(t *testing.T) {
		data, err := json.Marshal(LinkEntry("gallery/Modern/og_1.png", "https://example.com", "Example"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"type":"link","thumbnail":"gallery/Modern/og_1.png","url":"https://example.com","title":"Example"}`, string(data))
	})

	t.Run("decodes mixed arrays", func(t *testing.T) {
		var entries []Entry
		err := json.Unmarshal([]byte(`["gallery/a/1.jpg", {"type":"link","thumbnail":"gallery/a/og_2.jpg","url":"u","title":"t"}]`), &entries)
		require.NoError(t, err)
		require.Len(t, entries, 2)

		assert.False(t, entries[0].IsLink())
		assert.Equal(t, "gallery/a/1.jpg", entries[0].EffectivePath())
		assert.True(t, entries[1].IsLink())
		assert.Equal(t, "gallery/a/og_2.jpg", entries[1].EffectivePath())
		assert.Equal(t, "t", entries[1].Link.Title)
	})

	t.Run("rejects unknown object types", func(t *testing.T) {
		var e Entry
		assert.Error(t, json.Unmarshal([]byte(`{"type":"video","thumbnail":"x"}`), &e))
	})
}

func TestCatalogKeepsKeyOrder(t *testing.T) {
	input := `{"Zeta":["gallery/Zeta/1.jpg"],"Alpha":[],"Modern":["gallery/Modern/2.jpg"]}`

	var c Catalog
	require.NoError(t, json.Unmarshal([]byte(input), &c))
	assert.Equal(t, []string{"Zeta", "Alpha", "Modern"}, c.Names())

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
}

func TestCatalogRejectsNonObject(t *testing.T) {
	var c Catalog
	assert.Error(t, json.Unmarshal([]byte(`["a","b"]`), &c))
}

func TestCatalogAppendDeduplicatesByEffectivePath(t *testing.T) {
	c := &Catalog{}

	assert.True(t, c.Append("Modern", PathEntry("gallery/Modern/1.jpg")))
	assert.False(t, c.Append("Modern", PathEntry("gallery/Modern/1.jpg")))
	assert.False(t, c.Append("Modern", LinkEntry("gallery/Modern/1.jpg", "https://x", "x")))
	assert.True(t, c.Append("Classic", PathEntry("gallery/Modern/1.jpg")))

	entries, ok := c.Entries("Modern")
	require.True(t, ok)
	assert.Len(t, entries, 1)
}

func TestCatalogRemove(t *testing.T) {
	c := &Catalog{}
	c.Append("Modern", PathEntry("gallery/Modern/1.jpg"))
	c.Append("Modern", LinkEntry("gallery/Modern/og_2.jpg", "https://x", "x"))

	assert.True(t, c.RemoveEntry("Modern", "gallery/Modern/og_2.jpg"))
	entries, _ := c.Entries("Modern")
	assert.Equal(t, []Entry{PathEntry("gallery/Modern/1.jpg")}, entries)

	assert.False(t, c.RemoveEntry("Missing", "gallery/Missing/1.jpg"))
	assert.False(t, c.RemoveCategory("Missing"))
	assert.True(t, c.RemoveCategory("Modern"))
	assert.Empty(t, c.Names())
}

func TestCatalogCloneIsDeep(t *testing.T) {
	c := &Catalog{}
	c.Append("Modern", LinkEntry("gallery/Modern/og_1.jpg", "https://x", "before"))

	clone := c.Clone()
	clone.Categories[0].Entries[0].Link.Title = "after"
	clone.Append("Modern", PathEntry("gallery/Modern/2.jpg"))

	entries, _ := c.Entries("Modern")
	require.Len(t, entries, 1)
	assert.Equal(t, "before", entries[0].Link.Title)
}

func TestCatalogEntriesAreDeepCopies(t *testing.T) {
	c := &Catalog{}
	c.Append("Links", LinkEntry("gallery/Links/og_1.jpg", "https://example.com", "Example"))

	assert.True(t, c.Has("Links"))
	assert.False(t, c.Has("Nature"))

	entries, ok := c.Entries("Links")
	require.True(t, ok)
	entries[0].Link.Title = "changed"

	again, _ := c.Entries("Links")
	assert.Equal(t, "Example", again[0].Link.Title)
	assert.NotSame(t, entries[0].Link, again[0].Link)

	_, ok = c.Entries("Nature")
	assert.False(t, ok)
}

func TestValidDisplayMode(t *testing.T) {
	assert.True(t, ValidDisplayMode(1))
	assert.True(t, ValidDisplayMode(2))
	assert.False(t, ValidDisplayMode(0))
	assert.False(t, ValidDisplayMode(3))
}
