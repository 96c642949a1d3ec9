package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"media-gallery/pkg/blobstore"
	"media-gallery/pkg/config"
	"media-gallery/pkg/models"
)

// Service wires the blob store, catalog, settings, link resolver and seeder
// together and implements the upload and delete flows.
type Service struct {
	config *config.Config

	Blobs    blobstore.Store
	Catalog  *CatalogStore
	Settings *SettingsStore
	Links    *LinkResolver
	Seeder   *Seeder
}

var (
	// defaultService is the singleton instance of Service
	defaultService *Service
	initErr        error
	once           sync.Once
)

// OpenBlobStore creates the blob backend selected by the configuration
func OpenBlobStore(ctx context.Context, cfg *config.Config) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case config.BackendGCS:
		return blobstore.NewGCSStore(ctx, cfg.BucketName)
	case config.BackendS3:
		return blobstore.NewS3Store(ctx, cfg.BucketName, cfg.AWSRegion)
	case config.BackendLocal, "":
		return blobstore.NewLocalStore(cfg.GalleryDir)
	default:
		return nil, fmt.Errorf("%w: got %q", config.ErrInvalidBackend, cfg.BlobBackend)
	}
}

// NewService builds a service on top of an already opened blob store
func NewService(cfg *config.Config, blobs blobstore.Store) *Service {
	client := &http.Client{Timeout: cfg.LinkTimeout}
	return &Service{
		config:   cfg,
		Blobs:    blobs,
		Catalog:  NewCatalogStore(cfg.CatalogPath, blobs, cfg.CacheTTL),
		Settings: NewSettingsStore(cfg.SettingsPath),
		Links:    NewLinkResolver(blobs, client, cfg.MaxImageBytes()),
		Seeder:   NewSeeder(blobs),
	}
}

// InitService initializes the process-wide service with the given
// configuration. Only the first call has any effect.
func InitService(cfg *config.Config) error {
	once.Do(func() {
		blobs, err := OpenBlobStore(context.Background(), cfg)
		if err != nil {
			initErr = fmt.Errorf("failed to open blob store: %w", err)
			return
		}
		defaultService = NewService(cfg, blobs)
	})
	return initErr
}

// Default returns the service created by InitService
func Default() *Service {
	return defaultService
}

// Config returns the configuration the service was built with
func (s *Service) Config() *config.Config {
	return s.config
}

// GetCategories returns the category names in catalog order
func GetCategories(ctx context.Context) []string {
	return defaultService.Catalog.ListCategories(ctx)
}

// GetEntries returns the entries of one category
func GetEntries(ctx context.Context, category string) []models.Entry {
	return defaultService.Catalog.ListEntries(ctx, category)
}

// UploadFile stores r as <category>/<filename> and registers the path. The
// blob is written before the catalog lock is taken; if the catalog update
// fails the blob is left in place for the next seed.
func (s *Service) UploadFile(ctx context.Context, category, filename string, r io.Reader) (string, error) {
	category = strings.TrimSpace(category)
	if err := blobstore.ValidateName(category); err != nil {
		return "", fmt.Errorf("%w: category: %v", ErrValidation, err)
	}
	if err := blobstore.ValidateName(filename); err != nil {
		return "", fmt.Errorf("%w: file name: %v", ErrValidation, err)
	}

	relPath, err := s.Blobs.Put(ctx, category, filename, r)
	if err != nil {
		if errors.Is(err, blobstore.ErrInvalidName) {
			return "", fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return "", fmt.Errorf("%w: failed to store upload: %v", ErrPersistence, err)
	}

	path, err := s.Catalog.AppendEntry(ctx, category, models.PathEntry(relPath))
	if err != nil {
		slog.WarnContext(ctx, "Stored blob is not referenced by the catalog", "path", relPath, "error", err)
		return "", err
	}
	return path, nil
}

// IngestLink downloads the preview image of link into category and registers
// a link entry for it. The catalog is only touched after a complete download.
func (s *Service) IngestLink(ctx context.Context, category, link string) (string, error) {
	category = strings.TrimSpace(category)
	link = strings.TrimSpace(link)

	result, err := s.Links.Resolve(ctx, category, link)
	if err != nil {
		slog.WarnContext(ctx, "Link ingestion failed", "category", category, "link", link, "error", err)
		return "", err
	}

	path, err := s.Catalog.AppendEntry(ctx, category, models.LinkEntry(result.Path, link, result.Title))
	if err != nil {
		slog.WarnContext(ctx, "Stored thumbnail is not referenced by the catalog", "path", result.Path, "error", err)
		return "", err
	}
	return path, nil
}

// DeleteImage removes an entry and its blob
func (s *Service) DeleteImage(ctx context.Context, category, path string) error {
	return s.Catalog.RemoveEntry(ctx, category, path)
}

// DeleteCategory removes a category and all its blobs
func (s *Service) DeleteCategory(ctx context.Context, category string) error {
	return s.Catalog.RemoveCategory(ctx, category)
}

// Index returns everything the gallery page needs in one snapshot
func (s *Service) Index(ctx context.Context) (*models.Index, error) {
	doc, err := s.Catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Index{
		Categories:  doc.Categories,
		DisplayMode: s.Settings.Get(ctx).DisplayMode,
	}, nil
}

// Close releases the blob backend
func (s *Service) Close() error {
	return s.Blobs.Close()
}
