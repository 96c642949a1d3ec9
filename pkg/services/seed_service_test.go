package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery/pkg/blobstore"
)

func TestSeederGenerate(t *testing.T) {
	blobs, err := blobstore.NewLocalStore(filepath.Join(t.TempDir(), "gallery"))
	require.NoError(t, err)
	ctx := context.Background()

	for _, f := range []struct{ category, name string }{
		{"Modern", "b.png"},
		{"Modern", "a.jpg"},
		{"Modern", "notes.txt"},
		{"Classic", "c.jpeg"},
		{"Classic", "D.JPG"},
	} {
		_, err := blobs.Put(ctx, f.category, f.name, strings.NewReader("x"))
		require.NoError(t, err)
	}
	require.NoError(t, blobs.EnsureCategory(ctx, "Empty"))

	doc, err := NewSeeder(blobs).Generate(ctx)
	require.NoError(t, err)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Classic":["gallery/Classic/D.JPG","gallery/Classic/c.jpeg"],"Empty":[],"Modern":["gallery/Modern/a.jpg","gallery/Modern/b.png"]}`,
		string(data))
}

func TestSeederSeedReplacesCatalog(t *testing.T) {
	f := newCatalogFixture(t, 0)
	ctx := context.Background()

	_, err := f.catalog.AppendEntry(ctx, "Stale", f.entry("gallery/Stale/old.jpg"))
	require.NoError(t, err)
	f.put(t, "Modern", "a.jpg")

	doc, err := NewSeeder(f.blobs).Seed(ctx, f.catalog)
	require.NoError(t, err)
	assert.Equal(t, []string{"Modern"}, doc.Names())
	assert.Equal(t, []string{"Modern"}, f.catalog.ListCategories(ctx))
}
