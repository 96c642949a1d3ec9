package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"media-gallery/pkg/blobstore"
	"media-gallery/pkg/metrics"
	"media-gallery/pkg/models"
)

const catalogCacheKey = "catalog"

// CatalogStore maintains the gallery JSON document and keeps the blob tree
// in step with it. Build one per document path: the write lock lives in the
// store value.
type CatalogStore struct {
	path  string
	blobs blobstore.Store

	// writeMu serializes every read-modify-write cycle
	writeMu sync.Mutex

	// fileMu orders cache fills against document replacement
	fileMu sync.RWMutex
	cache  *cache.Cache
}

// NewCatalogStore creates a store for the document at path. A cacheTTL of
// zero disables the read cache.
func NewCatalogStore(path string, blobs blobstore.Store, cacheTTL time.Duration) *CatalogStore {
	c := &CatalogStore{
		path:  path,
		blobs: blobs,
	}
	if cacheTTL > 0 {
		c.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

// load reads and parses the document from disk. A missing or blank file is
// an empty catalog.
func (c *CatalogStore) load() (*models.Catalog, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &models.Catalog{}, nil
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", ErrPersistence, c.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &models.Catalog{}, nil
	}

	var doc models.Catalog
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrPersistence, c.path, err)
	}
	return &doc, nil
}

// read returns the current document for read-only use. The returned value
// may be shared with the cache and must not be modified.
func (c *CatalogStore) read() (*models.Catalog, error) {
	c.fileMu.RLock()
	defer c.fileMu.RUnlock()

	if c.cache != nil {
		if cached, found := c.cache.Get(catalogCacheKey); found {
			return cached.(*models.Catalog), nil
		}
	}

	doc, err := c.load()
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Set(catalogCacheKey, doc, cache.DefaultExpiration)
	}
	return doc, nil
}

// save replaces the document on disk. Caller must hold writeMu.
func (c *CatalogStore) save(doc *models.Catalog) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode catalog: %v", ErrPersistence, err)
	}

	c.fileMu.Lock()
	defer c.fileMu.Unlock()

	if err := writeFileAtomic(c.path, data, 0644); err != nil {
		if c.cache != nil {
			c.cache.Delete(catalogCacheKey)
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if c.cache != nil {
		c.cache.Set(catalogCacheKey, doc.Clone(), cache.DefaultExpiration)
	}
	return nil
}

// ListCategories returns the category names in document order. Read and
// parse failures yield an empty list.
func (c *CatalogStore) ListCategories(ctx context.Context) []string {
	doc, err := c.read()
	if err != nil {
		slog.WarnContext(ctx, "Listing categories from unreadable catalog", "path", c.path, "error", err)
		return []string{}
	}
	return doc.Names()
}

// ListEntries returns the entries of a category, or an empty list when the
// category is missing or the document cannot be read.
func (c *CatalogStore) ListEntries(ctx context.Context, category string) []models.Entry {
	doc, err := c.read()
	if err != nil {
		slog.WarnContext(ctx, "Listing entries from unreadable catalog", "path", c.path, "error", err)
		return []models.Entry{}
	}

	entries, ok := doc.Entries(category)
	if !ok {
		return []models.Entry{}
	}
	return entries
}

// Snapshot returns a private copy of the whole document
func (c *CatalogStore) Snapshot(_ context.Context) (*models.Catalog, error) {
	doc, err := c.read()
	if err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// AppendEntry adds entry to category, creating the category when needed.
// Appending an effective path that is already present succeeds without
// duplicating it. The stored path is returned.
func (c *CatalogStore) AppendEntry(ctx context.Context, category string, entry models.Entry) (path string, err error) {
	defer func(started time.Time) { metrics.RecordCatalogOperation(metrics.OpAppend, started, err) }(time.Now())

	if err := blobstore.ValidateName(category); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	path = entry.EffectivePath()
	if path == "" {
		return "", fmt.Errorf("%w: entry has no path", ErrValidation)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	doc, err := c.load()
	if err != nil {
		return "", err
	}

	if !doc.Append(category, entry) {
		slog.DebugContext(ctx, "Entry already present", "category", category, "path", path)
		return path, nil
	}

	if err := c.save(doc); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Entry added", "category", category, "path", path, "link", entry.IsLink())
	return path, nil
}

// RemoveEntry drops every entry of category whose effective path is path and
// deletes the blob. Blob deletion is best-effort and restricted to the
// category's own directory.
func (c *CatalogStore) RemoveEntry(ctx context.Context, category, path string) (err error) {
	defer func(started time.Time) { metrics.RecordCatalogOperation(metrics.OpRemoveEntry, started, err) }(time.Now())

	// no category can be named "", so a blank one is simply missing
	if category == "" {
		return fmt.Errorf("%w: %q", ErrNotFound, category)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	doc, err := c.load()
	if err != nil {
		return err
	}

	if !doc.Has(category) {
		return fmt.Errorf("%w: %s", ErrNotFound, category)
	}
	if path == "" {
		return fmt.Errorf("%w: path is required", ErrValidation)
	}

	if !doc.RemoveEntry(category, path) {
		return fmt.Errorf("%w: %s", ErrNotFound, category)
	}

	if err := c.save(doc); err != nil {
		return err
	}

	if strings.HasPrefix(path, blobstore.CategoryPrefix(category)) {
		if err := c.blobs.Delete(ctx, path); err != nil {
			slog.WarnContext(ctx, "Failed to delete blob", "path", path, "error", err)
		}
	} else {
		slog.WarnContext(ctx, "Not deleting blob outside its category", "category", category, "path", path)
	}

	slog.InfoContext(ctx, "Entry removed", "category", category, "path", path)
	return nil
}

// RemoveCategory deletes the category from the document and removes its
// blob directory.
func (c *CatalogStore) RemoveCategory(ctx context.Context, category string) (err error) {
	defer func(started time.Time) { metrics.RecordCatalogOperation(metrics.OpRemoveCategory, started, err) }(time.Now())

	if category == "" {
		return fmt.Errorf("%w: %q", ErrNotFound, category)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	doc, err := c.load()
	if err != nil {
		return err
	}

	if !doc.RemoveCategory(category) {
		return fmt.Errorf("%w: %s", ErrNotFound, category)
	}

	if err := c.save(doc); err != nil {
		return err
	}

	if blobstore.ValidateName(category) == nil {
		if err := c.blobs.DeleteCategory(ctx, category); err != nil {
			slog.WarnContext(ctx, "Failed to delete category blobs", "category", category, "error", err)
		}
	}

	slog.InfoContext(ctx, "Category removed", "category", category)
	return nil
}

// Replace overwrites the whole document
func (c *CatalogStore) Replace(ctx context.Context, doc *models.Catalog) (err error) {
	defer func(started time.Time) { metrics.RecordCatalogOperation(metrics.OpReplace, started, err) }(time.Now())

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.save(doc.Clone()); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Catalog replaced", "path", c.path, "categories", len(doc.Categories))
	return nil
}
