package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"media-gallery/pkg/blobstore"
	"media-gallery/pkg/models"
)

// seedImagePattern matches the files the seeder registers
var seedImagePattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)

// Seeder rebuilds the catalog from the blob tree
type Seeder struct {
	blobs blobstore.Store
}

// NewSeeder creates a seeder reading from blobs
func NewSeeder(blobs blobstore.Store) *Seeder {
	return &Seeder{blobs: blobs}
}

// Generate walks every category directory in lexical order and returns a
// catalog listing its image files, also in lexical order. Link entries are
// not reconstructed.
func (s *Seeder) Generate(ctx context.Context) (*models.Catalog, error) {
	categories, err := s.blobs.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	doc := &models.Catalog{Categories: make([]models.Category, 0, len(categories))}
	for _, category := range categories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		files, err := s.blobs.Files(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("failed to list files in %s: %w", category, err)
		}

		entries := make([]models.Entry, 0, len(files))
		for _, file := range files {
			if !seedImagePattern.MatchString(file) {
				continue
			}
			entries = append(entries, models.PathEntry(blobstore.RelPath(category, file)))
		}

		doc.Categories = append(doc.Categories, models.Category{Name: category, Entries: entries})
		slog.DebugContext(ctx, "Seeded category", "category", category, "images", len(entries))
	}
	return doc, nil
}

// Seed regenerates the catalog and replaces the stored document with it
func (s *Seeder) Seed(ctx context.Context, catalog *CatalogStore) (*models.Catalog, error) {
	doc, err := s.Generate(ctx)
	if err != nil {
		return nil, err
	}
	if err := catalog.Replace(ctx, doc); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "Catalog seeded", "categories", len(doc.Categories))
	return doc, nil
}
