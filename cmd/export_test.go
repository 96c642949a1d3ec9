package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"media-gallery/pkg/models"
)

func TestSortCatalog(t *testing.T) {
	doc := &models.Catalog{Categories: []models.Category{
		{Name: "Trip 10", Entries: []models.Entry{models.PathEntry("gallery/Trip 10/a.jpg")}},
		{Name: "Trip 2"},
		{Name: "Album"},
	}}

	sorted := sortCatalog(doc)

	assert.Equal(t, []string{"Album", "Trip 2", "Trip 10"}, sorted.Names())
	entries, ok := sorted.Entries("Trip 10")
	assert.True(t, ok)
	assert.Len(t, entries, 1)
	assert.Equal(t, []string{"Trip 10", "Trip 2", "Album"}, doc.Names())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "seed", "list-categories", "list-images", "add-link", "delete-image", "delete-category", "display-mode", "export"} {
		assert.Contains(t, names, want)
	}
}
